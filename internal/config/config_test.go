package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDoesNotInjectWeakAuthDefaults(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("AUTH_SECRET", "")
	t.Setenv("ADMIN_PASSWORD", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.AuthSecret)
	assert.Empty(t, cfg.AdminPassword)
	assert.Error(t, cfg.Validate())
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Address())
	assert.Equal(t, "file", cfg.StorageDriver)
	assert.Equal(t, "none", cfg.RemoteDriver)
	assert.Equal(t, 50, cfg.ActivityLogLimit)
	assert.Equal(t, int64(50000), cfg.VIPSpendThreshold)
	assert.Equal(t, 10*time.Second, cfg.SyncRemoteTimeout)
	assert.Equal(t, 8*time.Hour, cfg.AccessTokenTTL())
	assert.False(t, cfg.SMTPConfigured())
}

func TestLoadReadsEnvFileWithoutOverridingEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("REMOTE_DRIVER=Mongo\nMONGODB_URI=mongodb://localhost:27017\nPORT=9000\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	t.Setenv("PORT", "7000")
	t.Setenv("SYNC_REMOTE_TIMEOUT", "3s")
	t.Cleanup(func() {
		os.Unsetenv("REMOTE_DRIVER")
		os.Unsetenv("MONGODB_URI")
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "mongo", cfg.RemoteDriver)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.SyncRemoteTimeout)
}

func TestValidate(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	cfg, err := Load()
	require.NoError(t, err)
	cfg.AuthSecret = "0123456789abcdef0123456789abcdef"
	require.NoError(t, cfg.Validate())

	cfg.StorageDriver = "postgres"
	assert.ErrorContains(t, cfg.Validate(), "DATABASE_URL")

	cfg.StorageDriver = "memory"
	cfg.RemoteDriver = "firestore"
	assert.ErrorContains(t, cfg.Validate(), "FIREBASE_PROJECT_ID")

	cfg.RemoteDriver = "dynamo"
	assert.ErrorContains(t, cfg.Validate(), "unknown REMOTE_DRIVER")
}
