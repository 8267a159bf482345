package model

import "gorm.io/gorm"

// trigger types
const (
	TriggerManual  = "manual"
	TriggerCrontab = "crontab"
	TriggerWebhook = "webhook"
)

type PipelineExecution struct {
	gorm.Model
	PipelineID    uint   `gorm:"not null;index"`
	Version       int    `gorm:"not null"`
	ExecutionUUID string `gorm:"type:varchar(50);not null;uniqueIndex"`
	TriggerType   string `gorm:"type:varchar(20);not null"` // manual/crontab/webhook
	Status        string `gorm:"type:varchar(20);not null"` // running/success/failed
}
