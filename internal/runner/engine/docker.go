package engine

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"forge/pkg/pipeline"
)

// Docker runs each task in its own throwaway container. Steps are chained
// with && so the first non-zero exit aborts the rest, matching the
// step-by-step contract; output is the combined task output.
type Docker struct {
	cli          *client.Client
	defaultImage string
	timeout      time.Duration
}

func NewDocker(defaultImage string) (*Docker, error) {
	cli, err := client.NewClientWithOpts(
		client.FromEnv,
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, err
	}
	return &Docker{
		cli:          cli,
		defaultImage: defaultImage,
		timeout:      30 * time.Minute,
	}, nil
}

func (d *Docker) RunTask(ctx context.Context, task pipeline.Task) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	image := task.Image
	if image == "" {
		image = d.defaultImage
	}
	script := strings.Join(task.Steps(), " && ")

	resp, err := d.cli.ContainerCreate(
		ctx,
		&container.Config{
			Image: image,
			Cmd:   []string{"sh", "-c", script},
		},
		nil, nil, nil, "",
	)
	if err != nil {
		return Result{}, err
	}
	containerID := resp.ID

	defer func() {
		// container is kept until logs are read, then force removed
		rmCtx, rmCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer rmCancel()
		_ = d.cli.ContainerRemove(rmCtx, containerID, container.RemoveOptions{Force: true})
	}()

	if err := d.cli.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		return Result{}, fmt.Errorf("fail to start container: %w", err)
	}

	res := Result{Status: pipeline.StatusSuccess}
	exitCode := 0

	statusCh, errCh := d.cli.ContainerWait(ctx, containerID, container.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		if err != nil {
			return Result{}, err
		}
	case status := <-statusCh:
		exitCode = int(status.StatusCode)
		if status.StatusCode != 0 {
			res.Status = pipeline.StatusFailed
		}
	}

	out, err := d.cli.ContainerLogs(ctx, containerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil {
		return Result{}, fmt.Errorf("fail to get container logs: %w", err)
	}

	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	if _, err := stdcopy.StdCopy(stdout, stderr, out); err != nil {
		return Result{}, fmt.Errorf("fail to copy container logs: %w", err)
	}

	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	res.Steps = []StepResult{{
		Command:  script,
		ExitCode: exitCode,
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
	}}
	return res, nil
}
