package pipeline

import (
	"gopkg.in/yaml.v3"
)

// Trigger describes one way a pipeline can be started besides a manual
// trigger. Exactly one field is set.
type Trigger struct {
	Cron    string `yaml:"cron,omitempty" json:"cron,omitempty"`
	Webhook string `yaml:"webhook,omitempty" json:"webhook,omitempty"`
}

// Task is one unit of work, executed on its own ephemeral environment.
// Setup steps run before test steps; all steps run strictly in listed
// order and the first non-zero exit aborts the rest of the task.
type Task struct {
	Name      string   `yaml:"name" json:"name"`
	Image     string   `yaml:"image" json:"image"`
	Setup     []string `yaml:"setup,omitempty" json:"setup,omitempty"`
	Test      []string `yaml:"test" json:"test"`
	DependsOn []string `yaml:"depends_on,omitempty" json:"depends_on,omitempty"`
}

// Steps returns the full ordered command list of the task.
func (t Task) Steps() []string {
	steps := make([]string, 0, len(t.Setup)+len(t.Test))
	steps = append(steps, t.Setup...)
	steps = append(steps, t.Test...)
	return steps
}

// Spec is a full pipeline definition.
type Spec struct {
	Name        string    `yaml:"name" json:"name"`
	Description string    `yaml:"description,omitempty" json:"description,omitempty"`
	Triggers    []Trigger `yaml:"triggers,omitempty" json:"triggers,omitempty"`
	Tasks       []Task    `yaml:"tasks" json:"tasks"`
}

// Parse decodes and validates a pipeline definition.
func Parse(yamlContent string) (*Spec, error) {
	var spec Spec
	if err := yaml.Unmarshal([]byte(yamlContent), &spec); err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// Marshal renders the spec back to YAML.
func (s *Spec) Marshal() (string, error) {
	out, err := yaml.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
