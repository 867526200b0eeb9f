package secret

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdnotes/internal/domain"
)

func TestConnectionKey(t *testing.T) {
	key := ConnectionKey(&domain.DatabaseConnection{
		Driver: domain.DatabaseDriverPostgres, Username: "me", Host: "db", Database: "notes",
	})
	assert.Equal(t, "postgres://me@db/notes", key)
	assert.Equal(t, "MDNOTES_SECRET_POSTGRES___ME_DB_NOTES", EnvName(key))
}

func TestEnvStore(t *testing.T) {
	s := NewEnvStore()
	key := "mysql://u@h/d"
	t.Setenv(EnvName(key), "")

	require.NoError(t, s.Set(key, []byte("pw")))
	got, err := s.Get(key)
	require.NoError(t, err)
	assert.Equal(t, []byte("pw"), got)

	require.NoError(t, s.Delete(key))
	got, err = s.Get(key)
	require.NoError(t, err)
	assert.Nil(t, got)
}
