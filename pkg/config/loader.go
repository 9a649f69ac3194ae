package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// YAMLConfig represents the complete contestcore.yaml file structure.
type YAMLConfig struct {
	Server    *ServerConfig    `yaml:"server"`
	Database  *DatabaseConfig  `yaml:"database"`
	Catalog   *CatalogConfig   `yaml:"catalog"`
	Providers *ProvidersConfig `yaml:"providers"`
	Credits   *CreditsConfig   `yaml:"credits"`
	Watchdog  *WatchdogConfig  `yaml:"watchdog"`
}

// Initialize loads, validates, and returns ready-to-use configuration. This
// is the primary entry point for configuration loading.
//
// Steps performed:
//  1. Load contestcore.yaml from configDir
//  2. Expand environment variables
//  3. Parse YAML into structs
//  4. Merge built-in defaults for anything unset
//  5. Validate all configuration
//  6. Return Config ready for use
func Initialize(_ context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("initializing configuration")

	cfg, err := load(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	log.Info("configuration initialized successfully",
		"server_port", cfg.Server.Port,
		"catalog_file", cfg.Catalog.ModelsFile,
		"credits_per_usd", cfg.Credits.PerUSD)
	return cfg, nil
}

func load(configDir string) (*Config, error) {
	loader := &configLoader{configDir: configDir}

	yamlCfg, err := loader.loadContestcoreYAML()
	if err != nil {
		return nil, NewLoadError("contestcore.yaml", err)
	}

	server := DefaultServerConfig()
	if yamlCfg.Server != nil {
		if err := mergo.Merge(server, yamlCfg.Server, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merge server config: %w", err)
		}
	}

	database := DefaultDatabaseConfig()
	if yamlCfg.Database != nil {
		if err := mergo.Merge(database, yamlCfg.Database, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merge database config: %w", err)
		}
	}

	catalogCfg := DefaultCatalogConfig()
	if yamlCfg.Catalog != nil {
		if err := mergo.Merge(catalogCfg, yamlCfg.Catalog, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merge catalog config: %w", err)
		}
	}

	providers := DefaultProvidersConfig()
	if yamlCfg.Providers != nil {
		if err := mergo.Merge(providers, yamlCfg.Providers, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merge providers config: %w", err)
		}
	}

	credits := DefaultCreditsConfig()
	if yamlCfg.Credits != nil {
		if err := mergo.Merge(credits, yamlCfg.Credits, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merge credits config: %w", err)
		}
	}

	watchdog := DefaultWatchdogConfig()
	if yamlCfg.Watchdog != nil {
		if err := mergo.Merge(watchdog, yamlCfg.Watchdog, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merge watchdog config: %w", err)
		}
	}

	return &Config{
		configDir: configDir,
		Server:    server,
		Database:  database,
		Catalog:   catalogCfg,
		Providers: providers,
		Credits:   credits,
		Watchdog:  watchdog,
	}, nil
}

type configLoader struct {
	configDir string
}

func (l *configLoader) loadYAML(filename string, target any) error {
	path := filepath.Join(l.configDir, filename)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return err
	}

	data = ExpandEnv(data)

	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	return nil
}

func (l *configLoader) loadContestcoreYAML() (*YAMLConfig, error) {
	var cfg YAMLConfig
	if err := l.loadYAML("contestcore.yaml", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
