package engine

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"forge/pkg/pipeline"
)

// Local executes task steps as shell processes on this machine. Every
// task gets its own scratch directory which doubles as HOME, so steps
// share filesystem state with each other and nothing else.
type Local struct {
	Timeout time.Duration // per task, zero means no limit
}

func NewLocal() *Local {
	return &Local{Timeout: 30 * time.Minute}
}

func (e *Local) RunTask(ctx context.Context, task pipeline.Task) (Result, error) {
	workdir, err := os.MkdirTemp("", "forge-task-")
	if err != nil {
		return Result{}, err
	}
	defer os.RemoveAll(workdir)

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	res := Result{Status: pipeline.StatusSuccess}
	for _, step := range task.Steps() {
		sr := e.runStep(ctx, workdir, step)
		res.Steps = append(res.Steps, sr)
		if sr.ExitCode != 0 {
			res.Status = pipeline.StatusFailed
			break
		}
	}

	res.Stdout = combineOutput(res.Steps, func(s StepResult) string { return s.Stdout })
	res.Stderr = combineOutput(res.Steps, func(s StepResult) string { return s.Stderr })
	return res, nil
}

func (e *Local) runStep(ctx context.Context, workdir, step string) StepResult {
	cmd := exec.CommandContext(ctx, "sh", "-c", step)
	cmd.Dir = workdir
	cmd.Env = append(os.Environ(), "HOME="+workdir)

	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	sr := StepResult{Command: step}
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			sr.ExitCode = exitErr.ExitCode()
		} else {
			// the step never ran (bad shell, cancelled context)
			sr.ExitCode = -1
			stderr.WriteString(err.Error())
		}
	}
	sr.Stdout = stdout.String()
	sr.Stderr = stderr.String()
	return sr
}
