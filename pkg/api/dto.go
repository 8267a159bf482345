package api

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TriggerRequest struct {
	PipelineID int `json:"pipeline_id"`
}

type TriggerResponse struct {
	ExecutionID   uint   `json:"execution_id"`
	ExecutionUUID string `json:"execution_uuid"`
}
