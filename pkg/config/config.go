// Package config loads contestcore's configuration: a YAML file expanded
// against the environment, merged with built-in defaults, and validated
// before use — the same load/merge/validate/return shape as the teacher's
// config.Initialize, scoped down to the settings this service actually has
// (database, HTTP server, provider credentials, credit economy, watchdog)
// instead of tarsy's agents/chains/MCP-server/runbook/Slack surface.
package config

import "time"

// Config is the fully-resolved, ready-to-use configuration object returned
// by Initialize.
type Config struct {
	configDir string

	Server    *ServerConfig
	Database  *DatabaseConfig
	Catalog   *CatalogConfig
	Providers *ProvidersConfig
	Credits   *CreditsConfig
	Watchdog  *WatchdogConfig
}

// ConfigDir returns the directory the configuration was loaded from.
func (c *Config) ConfigDir() string { return c.configDir }

// ServerConfig controls the echo HTTP listener.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// DatabaseConfig controls the pgx pool opened by pkg/store.Open.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int32         `yaml:"max_open_conns"`
	MaxIdleConns    int32         `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// CatalogConfig points at the Model Catalog file (spec §6).
type CatalogConfig struct {
	ModelsFile string `yaml:"models_file"`
}

// ProvidersConfig names the environment variables holding provider API keys,
// the same env-indirection convention as the teacher's
// config.LLMProviderConfig.APIKeyEnv — the YAML never holds a raw secret.
type ProvidersConfig struct {
	OpenAIAPIKeyEnv    string `yaml:"openai_api_key_env"`
	OpenAIBaseURL      string `yaml:"openai_base_url"`
	AnthropicAPIKeyEnv string `yaml:"anthropic_api_key_env"`
}

// CreditsConfig controls the ledger's USD-to-credit scaling (spec §4.1).
type CreditsConfig struct {
	PerUSD int64 `yaml:"per_usd"`
}

// WatchdogConfig controls the stale-execution sweep (SPEC_FULL.md's
// watchdog addition).
type WatchdogConfig struct {
	Interval  time.Duration `yaml:"interval"`
	Threshold time.Duration `yaml:"threshold"`
}
