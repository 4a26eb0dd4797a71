package keyring

// SecretStore is the minimal capability needed to keep a raw store key.
//
// Get returns (nil, false, nil) when the secret does not exist; absence is
// not an error.
type SecretStore interface {
	Get(name string) ([]byte, bool, error)
	Put(name string, value []byte) error
	Delete(name string) error
}
