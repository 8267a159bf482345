package engine

import (
	"context"
	"strings"

	"forge/pkg/pipeline"
)

// StepResult is the outcome of one shell step.
type StepResult struct {
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
}

// Result is the outcome of a whole task. Status is success only if every
// step exited zero; the first non-zero exit aborts the remaining steps.
type Result struct {
	Status string // success/failed
	Steps  []StepResult
	Stdout string
	Stderr string
}

func combineOutput(steps []StepResult, pick func(StepResult) string) string {
	var b strings.Builder
	for _, s := range steps {
		b.WriteString(pick(s))
	}
	return b.String()
}

// Engine runs one task on a fresh ephemeral environment.
type Engine interface {
	RunTask(ctx context.Context, task pipeline.Task) (Result, error)
}
