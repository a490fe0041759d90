package providers

import (
	"dailytrack/internal/models"
	"dailytrack/internal/structures"
	"fmt"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

// Validate checks struct tag rules first, then the cross-field rules tags
// cannot express.
func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return v.Errors
	}

	if _, err := models.ParseTimeOfDay(cv.conf.Fasting.StartOfFast); err != nil {
		return fmt.Errorf("fasting.startOfFast: %w", err)
	}
	if cv.conf.Persistence.Driver != "memory" && cv.conf.Persistence.Dir == "" {
		return fmt.Errorf("persistence.dir is required for driver %q", cv.conf.Persistence.Driver)
	}
	if cv.conf.Health.Driver == "bridge" && cv.conf.Health.BridgeURL == "" {
		return fmt.Errorf("health.bridgeURL is required for the bridge driver")
	}
	if cv.conf.Health.SyncInterval < 0 {
		return fmt.Errorf("health.syncInterval must not be negative")
	}
	return nil
}
