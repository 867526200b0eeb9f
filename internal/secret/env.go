package secret

import (
	"os"
	"strings"
)

// EnvPrefix starts every variable read by EnvStore.
const EnvPrefix = "MDNOTES_SECRET_"

// EnvStore reads secrets from environment variables. Keys are upper-cased
// and every non-alphanumeric character becomes an underscore, so
// "postgres://me@db/notes" is read from MDNOTES_SECRET_POSTGRES___ME_DB_NOTES.
type EnvStore struct{}

func NewEnvStore() *EnvStore {
	return &EnvStore{}
}

// EnvName returns the variable holding key.
func EnvName(key string) string {
	return EnvPrefix + strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '_'
	}, key)
}

func (EnvStore) Set(key string, value []byte) error {
	return os.Setenv(EnvName(key), string(value))
}

func (EnvStore) Get(key string) ([]byte, error) {
	v, ok := os.LookupEnv(EnvName(key))
	if !ok {
		return nil, nil
	}
	return []byte(v), nil
}

func (EnvStore) Delete(key string) error {
	return os.Unsetenv(EnvName(key))
}
