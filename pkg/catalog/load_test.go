package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadModelsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "models.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
models:
  - id: gpt-4o-mini
    name: GPT-4o mini
    provider: openai
    context_window_k: 128
    input_cost_usd_per_1k_tokens: 0.00015
    output_cost_usd_per_1k_tokens: 0.0006
    available: true
`), 0o644))

	reg, err := LoadModelsFile(path, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())
	assert.True(t, reg.Has("gpt-4o-mini"))
}

func TestLoadModelsFile_MissingFile(t *testing.T) {
	_, err := LoadModelsFile("/nonexistent/models.yaml", 0)
	assert.Error(t, err)
}
