package model

import "gorm.io/gorm"

type TaskExecution struct {
	gorm.Model
	ExecutionUUID string `gorm:"type:varchar(50);not null;uniqueIndex:idx_execution_uuid_task_name"`
	TaskName      string `gorm:"type:varchar(255);not null;uniqueIndex:idx_execution_uuid_task_name"`
	Status        string `gorm:"type:varchar(20);not null"` // pending/running/success/failed/skipped
	Stdout        string `gorm:"type:text"`
	Stderr        string `gorm:"type:text"`
}
