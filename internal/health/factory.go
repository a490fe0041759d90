package health

import (
	"dailytrack/internal/providers"
	"dailytrack/internal/structures"
	"fmt"
)

// NewClientFromConfig builds the client selected by health.driver.
func NewClientFromConfig(conf *structures.Config, logger providers.Logger) (ClientInterface, error) {
	switch conf.Health.Driver {
	case "bridge":
		logger.Infof(providers.TypeHealth, "Using health bridge at %s", conf.Health.BridgeURL)
		return NewBridgeClient(conf.Health.BridgeURL, conf.Health.Timeout), nil
	case "memory":
		return NewMemoryClient(), nil
	case "none", "":
		logger.Infof(providers.TypeHealth, "Health data service disabled")
		return NoopClient{}, nil
	default:
		return nil, fmt.Errorf("unknown health driver: %s", conf.Health.Driver)
	}
}
