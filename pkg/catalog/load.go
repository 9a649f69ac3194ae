package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// modelsFile is the on-disk shape of the Model Catalog file (spec §6): a
// top-level "models" list, matching config.YAMLConfig's nested-section
// convention.
type modelsFile struct {
	Models []Model `yaml:"models"`
}

// LoadModelsFile reads the Model Catalog file and builds a Registry from
// it, the same read-then-unmarshal shape as the teacher's
// configLoader.loadYAML.
func LoadModelsFile(path string, creditsPerUSD int64) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}

	var file modelsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}

	return NewRegistry(file.Models, creditsPerUSD)
}
