package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPolicyDefaults(t *testing.T) {
	policy, err := LoadPolicy(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)

	assert.False(t, policy.StrictChecksum)
	assert.False(t, policy.RefreshOnScan)
	assert.Equal(t, 2*time.Second, policy.DebounceWindow)
	assert.Equal(t, 10*time.Second, policy.SubmitTimeout)
	assert.Equal(t, []string{"googlebooks", "openlibrary"}, policy.Providers)
	assert.Equal(t, 20, policy.EnrichBatchSize)
}

func TestLoadPolicyFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shelfscan.yaml")
	contents := `
strict_checksum: true
refresh_on_scan: true
debounce_window: 500ms
providers:
  - openlibrary
enrich_batch_size: 5
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	policy, err := LoadPolicy(path)
	require.NoError(t, err)

	assert.True(t, policy.StrictChecksum)
	assert.True(t, policy.RefreshOnScan)
	assert.Equal(t, 500*time.Millisecond, policy.DebounceWindow)
	assert.Equal(t, []string{"openlibrary"}, policy.Providers)
	assert.Equal(t, 5, policy.EnrichBatchSize)
	// Unset keys keep their defaults.
	assert.Equal(t, 10*time.Second, policy.SubmitTimeout)
}

func TestLoadPolicyEnvOverride(t *testing.T) {
	t.Setenv("SHELFSCAN_STRICT_CHECKSUM", "true")
	t.Setenv("SHELFSCAN_GOOGLE_BOOKS_API_KEY", "test-key")

	policy, err := LoadPolicy(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)

	assert.True(t, policy.StrictChecksum)
	assert.Equal(t, "test-key", policy.GoogleBooksAPIKey)
}

func TestNewConfigTestEnvironment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("CONFIG_DIRECTORY", t.TempDir())

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, ":memory:", cfg.DatabaseFilePath)
	assert.Equal(t, 0, cfg.ServerPort)
	assert.NotNil(t, cfg.Policy)
}
