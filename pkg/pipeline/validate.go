package pipeline

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// denyWarnings is the linter flag that turns every warning into a hard
// failure. Lint steps without it would let a warning-producing build go
// green, so Validate rejects them.
const denyWarnings = "-D warnings"

// lintCommand marks a step as a linter invocation.
const lintCommand = "cargo clippy"

// Validate checks the structural rules a pipeline definition must hold
// before it can be stored or executed.
func (s *Spec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("pipeline name is required")
	}
	if len(s.Tasks) == 0 {
		return fmt.Errorf("pipeline %q has no tasks", s.Name)
	}

	for i, trigger := range s.Triggers {
		if trigger.Cron == "" && trigger.Webhook == "" {
			return fmt.Errorf("trigger %d must set cron or webhook", i)
		}
		if trigger.Cron != "" {
			if _, err := cron.ParseStandard(trigger.Cron); err != nil {
				return fmt.Errorf("trigger %d has invalid cron expression %q: %v", i, trigger.Cron, err)
			}
		}
	}

	names := make(map[string]bool, len(s.Tasks))
	for _, task := range s.Tasks {
		if task.Name == "" {
			return fmt.Errorf("task name is required")
		}
		if names[task.Name] {
			return fmt.Errorf("duplicate task name %q", task.Name)
		}
		names[task.Name] = true

		if len(task.Test) == 0 {
			return fmt.Errorf("task %q has no test steps", task.Name)
		}
		for _, step := range task.Steps() {
			if strings.TrimSpace(step) == "" {
				return fmt.Errorf("task %q has an empty step", task.Name)
			}
			if strings.Contains(step, lintCommand) && !strings.Contains(step, denyWarnings) {
				return fmt.Errorf("task %q: lint step %q must deny warnings", task.Name, step)
			}
		}
	}

	// dependencies are checked after every name is known
	for _, task := range s.Tasks {
		for _, dep := range task.DependsOn {
			if !names[dep] {
				return fmt.Errorf("task %q depends on unknown task %q", task.Name, dep)
			}
			if dep == task.Name {
				return fmt.Errorf("task %q depends on itself", task.Name)
			}
		}
	}

	return nil
}
