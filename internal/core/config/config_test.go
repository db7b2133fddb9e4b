package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesFileAndDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
jwt:
  secret: test-secret
db:
  driver: sqlite
  dsn: "file::memory:"
google:
  clientid: cid
  clientsecret: cs
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	c := Load(path)

	assert.Equal(t, "test-secret", c.JWT.Secret)
	assert.Equal(t, "sqlite", c.DB.Driver)
	assert.Equal(t, "cid", c.Google.ClientID)

	// defaults fill what the file omits
	assert.Equal(t, 8080, c.App.HTTP.Port)
	assert.Equal(t, 60, c.JWT.AccessTokenTTLMin)
	assert.Equal(t, "/main", c.Google.SuccessRedirect)
	assert.Equal(t, "/login", c.Google.FailureRedirect)
	assert.True(t, c.DB.AutoMigrate)
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jwt:\n  secret: from-file\n"), 0o600))

	t.Setenv("APP_JWT_SECRET", "from-env")
	c := Load(path)
	assert.Equal(t, "from-env", c.JWT.Secret)
}
