package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func wipeCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "wipe <user-id>",
		Short: "Delete an account's store and its keyring entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID := args[0]
			if !yes {
				return fmt.Errorf("refusing to wipe %s without --yes", userID)
			}
			if err := appCtx.Accounts.Wipe(userID); err != nil {
				return err
			}
			if err := appCtx.Keyring.Delete(keyName(userID)); err != nil {
				return fmt.Errorf("delete key: %w", err)
			}
			fmt.Printf("Wiped local state for %s.\n", userID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}
