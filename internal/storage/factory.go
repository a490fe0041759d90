package storage

import (
	"dailytrack/internal/providers"
	"dailytrack/internal/structures"
	"fmt"
	"os"
	"path/filepath"
)

// NewGatewayFromConfig builds the gateway selected by persistence.driver.
func NewGatewayFromConfig(conf *structures.Config, compressor CompressorInterface, logger providers.Logger) (GatewayInterface, error) {
	switch conf.Persistence.Driver {
	case "file":
		logger.Infof(providers.TypeStorage, "Using file storage in %s", conf.Persistence.Dir)
		return NewFileGateway(conf.Persistence.Dir, compressor)
	case "sqlite":
		if err := os.MkdirAll(conf.Persistence.Dir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		path := filepath.Join(conf.Persistence.Dir, "dailytrack.db")
		logger.Infof(providers.TypeStorage, "Using sqlite storage at %s", path)
		return NewSQLiteGateway(path)
	case "memory":
		logger.Warnf(providers.TypeStorage, "Using in-memory storage, nothing will survive a restart")
		return NewMemoryGateway(), nil
	default:
		return nil, fmt.Errorf("unknown persistence driver: %s", conf.Persistence.Driver)
	}
}
