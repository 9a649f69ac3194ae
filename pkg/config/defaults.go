package config

import "time"

// DefaultServerConfig returns the built-in HTTP server defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{Port: "8080"}
}

// DefaultDatabaseConfig returns the built-in pool sizing defaults.
func DefaultDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 30 * time.Minute,
	}
}

// DefaultCatalogConfig returns the built-in catalog file location.
func DefaultCatalogConfig() *CatalogConfig {
	return &CatalogConfig{ModelsFile: "config/models.yaml"}
}

// DefaultProvidersConfig returns the built-in provider credential env names.
func DefaultProvidersConfig() *ProvidersConfig {
	return &ProvidersConfig{
		OpenAIAPIKeyEnv:    "OPENAI_API_KEY",
		AnthropicAPIKeyEnv: "ANTHROPIC_API_KEY",
	}
}

// DefaultCreditsConfig returns the built-in credit scaling factor, matching
// catalog.DefaultCreditsPerUSD.
func DefaultCreditsConfig() *CreditsConfig {
	return &CreditsConfig{PerUSD: 100000}
}

// DefaultWatchdogConfig returns the built-in sweep cadence and staleness
// threshold.
func DefaultWatchdogConfig() *WatchdogConfig {
	return &WatchdogConfig{
		Interval:  time.Minute,
		Threshold: 30 * time.Minute,
	}
}
