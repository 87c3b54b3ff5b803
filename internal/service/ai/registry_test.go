package ai

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/kapu/sdg-pulse/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistryResolvesEveryTask(t *testing.T) {
	reg, err := LoadRegistry("")
	require.NoError(t, err)

	for _, name := range []string{
		TaskGeneration, TaskSDGClassification, TaskClassification, TaskEmotionDetection,
		TaskSupport, TaskResponseGeneration, TaskTest,
	} {
		task, err := reg.Resolve(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, task.Model, name)

		_, err = reg.Model(task.Model)
		assert.NoError(t, err, name)
	}

	sdg, err := reg.Resolve(TaskSDGClassification)
	require.NoError(t, err)
	assert.Equal(t, "anthropic/claude-opus-4.1", sdg.Model)
	assert.Equal(t, 0.1, sdg.Params["temperature"])
	assert.Equal(t, 512, sdg.Params["max_tokens"])
}

func TestResolveUnknownTask(t *testing.T) {
	reg, err := LoadRegistry("")
	require.NoError(t, err)

	_, err = reg.Resolve("summarization")
	require.Error(t, err)

	var cfgErr *apperrors.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, err.Error(), "unknown task")
}

func TestResolveReturnsIndependentParams(t *testing.T) {
	reg, err := LoadRegistry("")
	require.NoError(t, err)

	first, _ := reg.Resolve(TaskGeneration)
	first.Params["temperature"] = 2.0

	second, _ := reg.Resolve(TaskGeneration)
	assert.Equal(t, 0.8, second.Params["temperature"])
}

func TestParseRegistryRejectsMissingModel(t *testing.T) {
	_, err := ParseRegistry([]byte(`
tasks:
  generation:
    model: vendor/ghost
models:
  vendor/real:
    endpoint: chat/completions
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vendor/ghost")
}

func TestLoadRegistryFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
tasks:
  test:
    model: vendor/tiny
    params: {temperature: 0}
models:
  vendor/tiny:
    endpoint: chat/completions
    supported_params: [temperature]
    default_temperature: 1
`), 0o644))

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"test"}, reg.TaskNames())
}

func TestModelSpecResolve(t *testing.T) {
	spec := ModelSpec{
		Endpoint:        "chat/completions",
		SupportedParams: []string{"temperature", "max_tokens", "top_p"},
		Extra: map[string]any{
			"default_temperature": 0.7,
			"default_max_tokens":  256,
			"default_seed":        7,
		},
	}

	params, dropped := spec.Resolve(Params{"temperature": 0.1, "presence_penalty": 0.5})

	assert.Equal(t, Params{"temperature": 0.1, "max_tokens": 256}, params)
	assert.Equal(t, []string{"presence_penalty"}, dropped)
}
