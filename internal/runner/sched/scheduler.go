package sched

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"forge/internal/runner/engine"
	"forge/pkg/pipeline"
	"forge/pkg/taskrpc"
)

// Scheduler runs the tasks of one pipeline execution. Independent tasks
// run in parallel up to maxConcurrency; a task runs once every task it
// depends on has succeeded. Tasks whose dependencies can never succeed
// are marked skipped, and the pipeline is green only if every task
// succeeded.
type Scheduler struct {
	eng              engine.Engine
	maxConcurrency   int
	taskCallback     func(*taskrpc.TaskStatusUpdate) error
	pipelineCallback func(*taskrpc.PipelineStatusUpdate) error
	logger           *zap.Logger
}

// pipelineRun carries the state of a single pipeline execution.
type pipelineRun struct {
	uuid       string
	depGraph   map[string][]string // task -> tasks that depend on it
	taskMap    map[string]pipeline.Task
	taskStatus map[string]string
	semaphore  chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
	execute    func(pipeline.Task)
}

func New(eng engine.Engine, maxConcurrency int,
	taskCallback func(*taskrpc.TaskStatusUpdate) error,
	pipelineCallback func(*taskrpc.PipelineStatusUpdate) error,
	logger *zap.Logger) *Scheduler {

	return &Scheduler{
		eng:              eng,
		maxConcurrency:   maxConcurrency,
		taskCallback:     taskCallback,
		pipelineCallback: pipelineCallback,
		logger:           logger,
	}
}

// SchedulePipeline executes every task of the request and blocks until
// the pipeline reaches a final status.
func (s *Scheduler) SchedulePipeline(ctx context.Context, req *taskrpc.ExecutePipelineRequest) error {
	taskMap := make(map[string]pipeline.Task, len(req.Tasks))
	for _, task := range req.Tasks {
		taskMap[task.Name] = task
	}

	depGraph, err := buildDependencyGraph(req.Tasks)
	if err != nil {
		// the execution row on the server side must not stay running
		s.pushPipelineStatus(req.ExecutionUUID, pipeline.StatusFailed)
		return err
	}

	run := &pipelineRun{
		uuid:       req.ExecutionUUID,
		depGraph:   depGraph,
		taskMap:    taskMap,
		taskStatus: make(map[string]string, len(req.Tasks)),
		semaphore:  make(chan struct{}, s.maxConcurrency),
	}

	s.pushPipelineStatus(run.uuid, pipeline.StatusRunning)
	for _, task := range req.Tasks {
		run.taskStatus[task.Name] = pipeline.StatusPending
		s.pushTaskStatus(run, task.Name, pipeline.StatusPending, nil)
	}

	run.execute = func(task pipeline.Task) {
		defer run.wg.Done()

		// the concurrency slot is taken inside the goroutine so a
		// finishing task never blocks while starting its dependents
		run.semaphore <- struct{}{}
		defer func() { <-run.semaphore }()

		run.mu.Lock()
		run.taskStatus[task.Name] = pipeline.StatusRunning
		run.mu.Unlock()
		s.pushTaskStatus(run, task.Name, pipeline.StatusRunning, nil)

		res, err := s.eng.RunTask(ctx, task)
		status := res.Status
		if err != nil {
			s.logger.Error("task execution error",
				zap.String("task", task.Name), zap.Error(err))
			status = pipeline.StatusFailed
		}

		run.mu.Lock()
		run.taskStatus[task.Name] = status
		run.mu.Unlock()
		s.pushTaskStatus(run, task.Name, status, &res)

		s.startDependents(ctx, run, task.Name)
	}

	for _, task := range findInitialTasks(req.Tasks) {
		run.wg.Add(1)
		go run.execute(task)
	}

	run.wg.Wait()

	// anything still pending had a failed or skipped dependency
	finalStatus := pipeline.StatusSuccess
	run.mu.Lock()
	for name, status := range run.taskStatus {
		if status == pipeline.StatusPending {
			run.taskStatus[name] = pipeline.StatusSkipped
			status = pipeline.StatusSkipped
		}
		if status != pipeline.StatusSuccess {
			finalStatus = pipeline.StatusFailed
		}
	}
	skipped := make([]string, 0)
	for name, status := range run.taskStatus {
		if status == pipeline.StatusSkipped {
			skipped = append(skipped, name)
		}
	}
	run.mu.Unlock()

	for _, name := range skipped {
		s.pushTaskStatus(run, name, pipeline.StatusSkipped, nil)
	}
	s.pushPipelineStatus(run.uuid, finalStatus)
	return nil
}

func (s *Scheduler) startDependents(ctx context.Context, run *pipelineRun, completed string) {
	for _, name := range run.depGraph[completed] {
		task, exists := run.taskMap[name]
		if !exists {
			continue
		}

		run.mu.Lock()
		claimed := run.taskStatus[name] == pipeline.StatusPending &&
			s.dependenciesSatisfiedLocked(run, task)
		if claimed {
			// claim under the lock so two completing dependencies
			// cannot both start the same task
			run.taskStatus[name] = pipeline.StatusRunning
		}
		run.mu.Unlock()

		if !claimed {
			continue
		}

		run.wg.Add(1)
		go run.execute(task)
	}
}

// dependenciesSatisfiedLocked expects run.mu to be held.
func (s *Scheduler) dependenciesSatisfiedLocked(run *pipelineRun, task pipeline.Task) bool {
	for _, dep := range task.DependsOn {
		if run.taskStatus[dep] != pipeline.StatusSuccess {
			return false
		}
	}
	return true
}

func (s *Scheduler) pushTaskStatus(run *pipelineRun, taskName, status string, res *engine.Result) {
	update := &taskrpc.TaskStatusUpdate{
		ExecutionUUID: run.uuid,
		TaskName:      taskName,
		Status:        status,
	}
	if res != nil {
		update.Stdout = res.Stdout
		update.Stderr = res.Stderr
		for _, step := range res.Steps {
			update.Steps = append(update.Steps, taskrpc.StepResult{
				Command:  step.Command,
				ExitCode: step.ExitCode,
				Stdout:   step.Stdout,
				Stderr:   step.Stderr,
			})
		}
	}
	if err := s.taskCallback(update); err != nil {
		s.logger.Error("push task status failed",
			zap.String("task", taskName), zap.Error(err))
	}
}

func (s *Scheduler) pushPipelineStatus(uuid, status string) {
	err := s.pipelineCallback(&taskrpc.PipelineStatusUpdate{
		ExecutionUUID: uuid,
		Status:        status,
	})
	if err != nil {
		s.logger.Error("push pipeline status failed",
			zap.String("execution", uuid), zap.Error(err))
	}
}

// buildDependencyGraph maps every task to the tasks that depend on it.
func buildDependencyGraph(tasks []pipeline.Task) (map[string][]string, error) {
	graph := make(map[string][]string, len(tasks))
	taskNames := make(map[string]bool, len(tasks))

	for _, task := range tasks {
		if taskNames[task.Name] {
			return nil, fmt.Errorf("duplicate task name: %s", task.Name)
		}
		taskNames[task.Name] = true
		graph[task.Name] = []string{}
	}

	for _, task := range tasks {
		for _, dep := range task.DependsOn {
			if !taskNames[dep] {
				return nil, fmt.Errorf("task %s depends on unknown task: %s", task.Name, dep)
			}
			graph[dep] = append(graph[dep], task.Name)
		}
	}

	return graph, nil
}

func findInitialTasks(tasks []pipeline.Task) []pipeline.Task {
	var initial []pipeline.Task
	for _, task := range tasks {
		if len(task.DependsOn) == 0 {
			initial = append(initial, task)
		}
	}
	return initial
}
