package handler

import (
	"forge/internal/server/model"
	"forge/pkg/taskrpc"
)

// PipelineRunner sends a pipeline execution to the runner.
type PipelineRunner interface {
	ExecutePipeline(req *taskrpc.ExecutePipelineRequest) error
}

// ScheduleUpdater keeps cron triggers in sync with stored pipelines.
type ScheduleUpdater interface {
	UpsertPipelineSchedule(p *model.Pipeline) error
}

var (
	runner PipelineRunner
	sched  ScheduleUpdater
)

// SetRunner wires the runner client; called once at startup (tests inject
// a fake).
func SetRunner(r PipelineRunner) {
	runner = r
}

func SetScheduler(s ScheduleUpdater) {
	sched = s
}
