package ai

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	apperrors "github.com/kapu/sdg-pulse/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed config/models.yaml
var defaultRegistryYAML []byte

// Task names known to the pipeline.
const (
	TaskGeneration         = "generation"
	TaskSDGClassification  = "sdg_classification"
	TaskClassification     = "classification"
	TaskEmotionDetection   = "emotion_detection"
	TaskSupport            = "support"
	TaskResponseGeneration = "response_generation"
	TaskTest               = "test"
)

const defaultParamPrefix = "default_"

// Params holds sampling parameters keyed by their wire name (temperature, max_tokens, ...).
type Params map[string]any

// Merge returns a copy of p with other's entries layered on top.
func (p Params) Merge(other Params) Params {
	out := make(Params, len(p)+len(other))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// ModelSpec describes what one model accepts. Flat default_<param> keys from
// the registry file end up in Extra.
type ModelSpec struct {
	Endpoint        string         `yaml:"endpoint"`
	SupportedParams []string       `yaml:"supported_params"`
	Extra           map[string]any `yaml:",inline"`
}

// Defaults returns the model's default_<param> values keyed by param name.
func (m ModelSpec) Defaults() Params {
	out := make(Params)
	for key, value := range m.Extra {
		if name, ok := strings.CutPrefix(key, defaultParamPrefix); ok {
			out[name] = value
		}
	}
	return out
}

// Supports reports whether param may be sent to this model.
func (m ModelSpec) Supports(param string) bool {
	for _, p := range m.SupportedParams {
		if p == param {
			return true
		}
	}
	return false
}

// Resolve merges overrides over the model defaults and keeps only supported
// params. Dropped override keys are returned so callers can log them.
func (m ModelSpec) Resolve(overrides Params) (Params, []string) {
	defaults := m.Defaults()
	out := make(Params, len(m.SupportedParams))
	for _, key := range m.SupportedParams {
		if value, ok := overrides[key]; ok && value != nil {
			out[key] = value
			continue
		}
		if value, ok := defaults[key]; ok && value != nil {
			out[key] = value
		}
	}

	var dropped []string
	for key := range overrides {
		if !m.Supports(key) {
			dropped = append(dropped, key)
		}
	}
	sort.Strings(dropped)
	return out, dropped
}

type taskEntry struct {
	Model  string `yaml:"model"`
	Params Params `yaml:"params"`
}

type registryFile struct {
	Tasks  map[string]taskEntry `yaml:"tasks"`
	Models map[string]ModelSpec `yaml:"models"`
}

// Task is a resolved task binding.
type Task struct {
	Name   string
	Model  string
	Params Params
}

// Registry maps task names to models and model identifiers to their specs.
// It is read-only after loading and safe for concurrent use.
type Registry struct {
	tasks  map[string]taskEntry
	models map[string]ModelSpec
}

// LoadRegistry reads the registry from path, or the embedded default when path is empty.
func LoadRegistry(path string) (*Registry, error) {
	data := defaultRegistryYAML
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read model registry %s: %w", path, err)
		}
		data = content
	}
	return ParseRegistry(data)
}

func ParseRegistry(data []byte) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse model registry: %w", err)
	}

	reg := &Registry{
		tasks:  file.Tasks,
		models: file.Models,
	}
	if err := reg.validate(); err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *Registry) validate() error {
	if len(r.tasks) == 0 {
		return apperrors.NewConfigError("model registry defines no tasks", "tasks")
	}
	for _, name := range r.TaskNames() {
		entry := r.tasks[name]
		if entry.Model == "" {
			return apperrors.NewConfigError(fmt.Sprintf("task %q has no model", name), name)
		}
		spec, ok := r.models[entry.Model]
		if !ok {
			return apperrors.NewConfigError(fmt.Sprintf("model config for %q (task %q) not found", entry.Model, name), entry.Model)
		}
		if spec.Endpoint == "" {
			return apperrors.NewConfigError(fmt.Sprintf("model %q has no endpoint", entry.Model), entry.Model)
		}
	}
	return nil
}

// Resolve returns the model and task parameters for a task name.
func (r *Registry) Resolve(task string) (Task, error) {
	entry, ok := r.tasks[task]
	if !ok {
		return Task{}, apperrors.NewConfigError(fmt.Sprintf("unknown task: %s", task), task)
	}
	return Task{
		Name:   task,
		Model:  entry.Model,
		Params: Params{}.Merge(entry.Params),
	}, nil
}

// Model returns the spec for a model identifier.
func (r *Registry) Model(id string) (ModelSpec, error) {
	spec, ok := r.models[id]
	if !ok {
		return ModelSpec{}, apperrors.NewConfigError(fmt.Sprintf("model config for %q not found", id), id)
	}
	return spec, nil
}

// TaskNames returns registered task names in sorted order.
func (r *Registry) TaskNames() []string {
	names := make([]string, 0, len(r.tasks))
	for name := range r.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
