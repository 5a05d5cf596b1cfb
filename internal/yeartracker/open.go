package yeartracker

import (
	"fmt"

	"github.com/username/year-dots/internal/config"
	"github.com/username/year-dots/internal/daystate"
	"go.uber.org/zap"
)

// OpenBackend creates the persistence backend selected by cfg.Storage
func OpenBackend(cfg *config.Config, logger *zap.Logger) (daystate.Backend, error) {
	key := cfg.StorageKey()

	switch cfg.Storage.Backend {
	case "json", "":
		return daystate.NewJSONFileBackend(cfg.Storage.Dir, key, logger), nil
	case "sqlite":
		backend, err := daystate.NewSQLiteBackend(cfg.Storage.SQLitePath, key, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite backend: %w", err)
		}
		return backend, nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Storage.Backend)
	}
}

// Open builds a Manager from cfg. Call Init before use.
func Open(cfg *config.Config, logger *zap.Logger) (*Manager, error) {
	backend, err := OpenBackend(cfg, logger)
	if err != nil {
		return nil, err
	}

	manager := NewManager(cfg, daystate.NewStore(backend, logger), logger)
	return manager, nil
}
