package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// Policy holds the tunable scan pipeline settings. Values come from the
// policy file (if present) overlaid with SHELFSCAN_-prefixed environment
// variables, so a deployment can flip strict checksum validation or
// re-enrichment without a rebuild.
type Policy struct {
	// StrictChecksum rejects format-valid codes whose ISBN check digit is
	// wrong before a scan event is recorded.
	StrictChecksum bool `koanf:"strict_checksum"`

	// RefreshOnScan re-enriches an already-known book on every repeat scan
	// instead of keeping the metadata from the first lookup.
	RefreshOnScan bool `koanf:"refresh_on_scan"`

	// DebounceWindow is how long a scanner suppresses repeat detections of
	// the same code.
	DebounceWindow time.Duration `koanf:"debounce_window"`

	// SubmitTimeout bounds a single scan submission request.
	SubmitTimeout time.Duration `koanf:"submit_timeout"`

	// ProviderTimeout bounds a single metadata provider request.
	ProviderTimeout time.Duration `koanf:"provider_timeout"`

	// Providers lists the metadata providers to query, in priority order.
	Providers []string `koanf:"providers"`

	// GoogleBooksAPIKey is optional; unauthenticated requests work with a
	// lower quota.
	GoogleBooksAPIKey string `koanf:"google_books_api_key"`

	// EnrichRetryInterval is how often the worker retries enrichment for
	// stub books.
	EnrichRetryInterval time.Duration `koanf:"enrich_retry_interval"`

	// EnrichBatchSize caps how many stub books one worker pass picks up.
	EnrichBatchSize int `koanf:"enrich_batch_size"`
}

const envPrefix = "SHELFSCAN_"

func policyFilePath() string {
	configDir := os.Getenv("CONFIG_DIRECTORY")
	if configDir == "" {
		configDir = "/config"
	}

	return filepath.Join(configDir, "shelfscan.yaml")
}

func defaultPolicy() *Policy {
	return &Policy{
		DebounceWindow:      2 * time.Second,
		SubmitTimeout:       10 * time.Second,
		ProviderTimeout:     10 * time.Second,
		Providers:           []string{"googlebooks", "openlibrary"},
		EnrichRetryInterval: 15 * time.Minute,
		EnrichBatchSize:     20,
	}
}

// LoadPolicy reads the policy file and environment overrides. A missing file
// is fine; defaults apply.
func LoadPolicy(path string) (*Policy, error) {
	k := koanf.New(".")

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load policy file: %s", path)
		}
	}

	// SHELFSCAN_STRICT_CHECKSUM=true overrides strict_checksum, and so on.
	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	policy := defaultPolicy()
	if err := k.Unmarshal("", policy); err != nil {
		return nil, errors.WithStack(err)
	}

	return policy, nil
}
