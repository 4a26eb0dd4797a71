package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"olmvault/internal/app"
	"olmvault/internal/domain"
)

var (
	root       string
	passphrase string
	verbose    bool
	appCtx     *app.Wire
)

// Execute runs the CLI.
func Execute() error {
	rootCmd := &cobra.Command{
		Use:   "olmvault",
		Short: "Per-account encrypted store for Olm/Megolm session state",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logrus.SetLevel(logrus.WarnLevel)
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
			if root == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				root = filepath.Join(dir, ".olmvault")
			}
			if err := os.MkdirAll(root, 0o700); err != nil {
				return err
			}
			appCtx = app.NewWire(app.Config{Root: root, Passphrase: passphrase})
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&root, "root", "", "state dir (default ~/.olmvault)")
	rootCmd.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the keyring")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(createCmd(), statusCmd(), wipeCmd())
	return rootCmd.Execute()
}

// keyName is the keyring entry holding an account's raw store key.
func keyName(userID string) string { return "store-key:" + userID }

// storageError rewraps fatal store-open failures so they read as a local
// storage problem, never as connectivity trouble.
func storageError(err error) error {
	switch {
	case errors.Is(err, domain.ErrMissingEncryptionKey),
		errors.Is(err, domain.ErrInvalidKeySize),
		errors.Is(err, domain.ErrEncryptionUnsupported),
		errors.Is(err, domain.ErrMigrationFailure):
		return fmt.Errorf("local storage unavailable: %w", err)
	}
	return err
}
