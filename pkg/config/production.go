package config

import (
	"os"
	"path/filepath"
	"strconv"
)

func loadProductionConfig(cfg *Config) {
	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err == nil {
		cfg.ServerPort = port
	}

	dataDir := os.Getenv("DATA_DIRECTORY")
	if dataDir == "" {
		dataDir = "/data"
	}

	cfg.DatabaseFilePath = filepath.Join(dataDir, "shelfscan.sqlite")
	cfg.ServerHost = "0.0.0.0"
}
