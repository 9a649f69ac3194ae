package config

import "fmt"

// validate performs basic sanity checks on loaded configuration, the way
// the teacher's validator.ValidateAll checks cross-references and required
// fields before Initialize hands the Config to the rest of the app.
func validate(cfg *Config) error {
	if cfg.Database.DSN == "" {
		return fmt.Errorf("%w: database.dsn is required", ErrValidationFailed)
	}
	if cfg.Catalog.ModelsFile == "" {
		return fmt.Errorf("%w: catalog.models_file is required", ErrValidationFailed)
	}
	if cfg.Credits.PerUSD < 1000 {
		return fmt.Errorf("%w: credits.per_usd must be >= 1000, got %d", ErrValidationFailed, cfg.Credits.PerUSD)
	}
	if cfg.Watchdog.Interval <= 0 {
		return fmt.Errorf("%w: watchdog.interval must be positive", ErrValidationFailed)
	}
	if cfg.Watchdog.Threshold <= 0 {
		return fmt.Errorf("%w: watchdog.threshold must be positive", ErrValidationFailed)
	}
	return nil
}
