package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration against its struct tags plus the
// cross-field rules the tags cannot express.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			e := errs[0]
			return fmt.Errorf("field %s failed on the '%s' rule", e.Namespace(), e.Tag())
		}
		return err
	}

	if cfg.Monitoring.Enabled && cfg.Monitoring.Endpoint == "" {
		return fmt.Errorf("monitoring endpoint is required when monitoring is enabled")
	}

	return nil
}
