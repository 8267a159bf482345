package pipeline

// Task execution states. Pipelines only use Running, Success and Failed.
const (
	StatusPending = "pending"
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)
