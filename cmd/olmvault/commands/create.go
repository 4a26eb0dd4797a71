package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"olmvault/internal/keyring"
	"olmvault/internal/util/memzero"
)

func createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <user-id>",
		Short: "Create a new encrypted store for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			userID := args[0]

			repos, key, err := appCtx.Accounts.Create(cmd.Context(), userID)
			if err != nil {
				return storageError(err)
			}
			defer repos.Close()
			defer memzero.Zero(key)

			if err := appCtx.Keyring.Put(keyName(userID), key); err != nil {
				// The store exists but its key was not saved; tear it down
				// rather than leave an unopenable database behind.
				if wipeErr := appCtx.Accounts.Wipe(userID); wipeErr != nil {
					return fmt.Errorf("save key: %v (cleanup also failed: %w)", err, wipeErr)
				}
				return fmt.Errorf("save key: %w", err)
			}

			fmt.Printf("Store created for %s.\nKey fingerprint: %s\n", userID, keyring.Fingerprint(key))
			return nil
		},
	}
}
