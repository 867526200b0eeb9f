package secret

import (
	"fmt"
	"runtime"

	"mdnotes/internal/domain"
)

// SecretStore provides a pluggable interface for storing sensitive data
// such as remote database passwords.
type SecretStore interface {
	// Set stores a secret value under the given key.
	Set(key string, value []byte) error

	// Get retrieves the secret value for the given key.
	// Returns empty slice and nil error if key does not exist.
	Get(key string) ([]byte, error)

	// Delete removes the secret for the given key.
	Delete(key string) error
}

// Default returns the Keychain on macOS and the environment elsewhere.
func Default() SecretStore {
	if runtime.GOOS == "darwin" {
		return NewKeychainStore()
	}
	return NewEnvStore()
}

// ConnectionKey is the secret key under which a connection's password lives.
func ConnectionKey(conn *domain.DatabaseConnection) string {
	return fmt.Sprintf("%s://%s@%s/%s", conn.Driver, conn.Username, conn.Host, conn.Database)
}
