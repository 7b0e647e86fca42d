package cmd

import (
	"fmt"

	"github.com/ziadkadry99/chatview/internal/catalog"
	"github.com/ziadkadry99/chatview/internal/config"
	"github.com/ziadkadry99/chatview/internal/db"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `chatview init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// openCatalog opens the render catalog named by cfg.Database. It returns a
// nil store when no database is configured. The returned func closes it.
func openCatalog(cfg *config.Config) (*catalog.Store, func(), error) {
	if cfg.Database == "" {
		return nil, func() {}, nil
	}
	database, err := db.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("opening catalog: %w", err)
	}
	return catalog.NewStore(database), func() { database.Close() }, nil
}
