package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"olmvault/internal/store"
	"olmvault/internal/util/memzero"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <user-id>",
		Short: "Open an account store and print schema version and row counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			userID := args[0]

			key, ok, err := appCtx.Keyring.Get(keyName(userID))
			if err != nil {
				return fmt.Errorf("read key: %w", err)
			}
			if !ok {
				return fmt.Errorf("no store key for %s (run create first)", userID)
			}
			defer memzero.Zero(key)

			repos, err := appCtx.Accounts.Load(cmd.Context(), userID, key)
			if err != nil {
				return storageError(err)
			}
			defer repos.Close()

			version, err := repos.SchemaVersion()
			if err != nil {
				return err
			}
			counts, err := repos.RowCounts()
			if err != nil {
				return err
			}

			fmt.Printf("Account: %s\nSchema version: %d\n", userID, version)
			for _, table := range store.Tables {
				fmt.Printf("  %-26s %d\n", table, counts[table])
			}
			return nil
		},
	}
}
