package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
)

type Config struct {
	DatabaseConnectRetryCount int
	DatabaseConnectRetryDelay time.Duration
	DatabaseBusyTimeout       time.Duration
	DatabaseMaxRetries        int
	DatabaseDebug             bool
	DatabaseFilePath          string
	Hostname                  string
	ServerHost                string
	ServerPort                int
	WorkerProcesses           int

	// Policy holds the operator-tunable scan pipeline settings loaded from
	// the config file and environment.
	Policy *Policy
}

const environmentENV = "ENVIRONMENT"

func New() (*Config, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cfg := &Config{
		DatabaseConnectRetryCount: 5,
		DatabaseConnectRetryDelay: 2 * time.Second,
		DatabaseBusyTimeout:       5 * time.Second,
		DatabaseMaxRetries:        5,
		Hostname:                  hostname,
		ServerPort:                4280,
		WorkerProcesses:           2,
	}

	switch os.Getenv(environmentENV) {
	case "development", "":
		loadDevelopmentConfig(cfg)
	case "test":
		loadTestConfig(cfg)
	case "production":
		loadProductionConfig(cfg)
	}

	policy, err := LoadPolicy(policyFilePath())
	if err != nil {
		return nil, err
	}
	cfg.Policy = policy

	return cfg, nil
}

// NewForTest returns a Config with test defaults and without touching the
// environment or policy file.
func NewForTest() *Config {
	cfg := &Config{
		DatabaseConnectRetryCount: 1,
		DatabaseConnectRetryDelay: 10 * time.Millisecond,
		DatabaseBusyTimeout:       time.Second,
		DatabaseMaxRetries:        5,
		Hostname:                  "test",
		WorkerProcesses:           1,
		Policy:                    defaultPolicy(),
	}
	loadTestConfig(cfg)
	return cfg
}
