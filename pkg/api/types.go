package api

type PipelineBrief struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     int    `json:"version"`
}

type PipelineDetail struct {
	Config string `json:"config"` // latest version, raw YAML
}

type ExecutionHistoryBrief struct {
	ID          uint   `json:"id"`
	PipelineID  uint   `json:"pipeline_id"`
	Status      string `json:"status"`       // running/success/failed
	TriggerType string `json:"trigger_type"` // manual/crontab/webhook
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time,omitempty"`
}

type TaskDetail struct {
	TaskName  string `json:"task_name"`
	Status    string `json:"status"`
	Stdout    string `json:"stdout"`
	Stderr    string `json:"stderr"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
}

type ExecutionHistoryDetail struct {
	Config string       `json:"config"`
	Tasks  []TaskDetail `json:"tasks"`
}
