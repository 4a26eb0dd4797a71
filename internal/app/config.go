package app

// Config holds runtime wiring options for building the app.
type Config struct {
	Root       string // state directory, e.g. $HOME/.olmvault
	Passphrase string // passphrase protecting the keyring
}
