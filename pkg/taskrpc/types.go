package taskrpc

import "forge/pkg/pipeline"

type ExecutePipelineRequest struct {
	ExecutionUUID string          `json:"execution_uuid"`
	Tasks         []pipeline.Task `json:"tasks"`
}

type ExecutePipelineResponse struct {
}

type StepResult struct {
	Command  string `json:"command"`
	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
}

type TaskStatusUpdate struct {
	ExecutionUUID string       `json:"execution_uuid"`
	TaskName      string       `json:"task_name"`
	Status        string       `json:"status"` // pending/running/success/failed/skipped
	Steps         []StepResult `json:"steps,omitempty"`
	Stdout        string       `json:"stdout"`
	Stderr        string       `json:"stderr"`
}

type TaskStatusUpdateRequest struct {
	TaskStatusUpdate TaskStatusUpdate `json:"task_status_update"`
}

type TaskStatusUpdateResponse struct {
}

type PipelineStatusUpdate struct {
	ExecutionUUID string `json:"execution_uuid"`
	Status        string `json:"status"` // running/success/failed
}

type PipelineStatusUpdateRequest struct {
	PipelineStatusUpdate PipelineStatusUpdate `json:"pipeline_status_update"`
}

type PipelineStatusUpdateResponse struct {
}
