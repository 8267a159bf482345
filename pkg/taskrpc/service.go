package taskrpc

// TaskRunnerService is the RPC surface of the runner. ExecutePipeline
// returns immediately; the tasks run asynchronously and report back
// through the callback service.
type TaskRunnerService interface {
	ExecutePipeline(req *ExecutePipelineRequest, resp *ExecutePipelineResponse) error
}

// BackendCallbackService is implemented by the server; the runner pushes
// status transitions through it.
type BackendCallbackService interface {
	PushTaskStatus(req *TaskStatusUpdateRequest, resp *TaskStatusUpdateResponse) error
	PushPipelineStatus(req *PipelineStatusUpdateRequest, resp *PipelineStatusUpdateResponse) error
}
