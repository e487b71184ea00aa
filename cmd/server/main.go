package main

import (
	"fmt"
	"os"

	"clinic-automation/internal/config"
	"clinic-automation/pkg/logger"

	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Path, cfg.Logging.Level); err != nil {
		panic(err)
	}
	defer logger.Sync()
	defer logger.Info("Server shutting down")

	// Setup and start server
	srv, store, err := SetupServer(cfg)
	if err != nil {
		logger.Fatal("Failed to setup server", zap.Error(err))
	}

	// Shutdown has drained in-flight requests by the time StartServer returns
	serveErr := StartServer(srv)
	if err := store.Close(); err != nil {
		logger.Warn("Failed to close delivery log store", zap.Error(err))
	}
	if serveErr != nil {
		logger.Fatal("Server error", zap.Error(serveErr))
	}
}

// loadConfig reads .env files, the optional JSON file named by CONFIG_PATH
// and the environment, in increasing order of precedence
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(".env", ".env.local"); err != nil {
		return nil, err
	}

	cfg := config.DefaultConfig()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
