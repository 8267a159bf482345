package dao

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"forge/internal/server/model"
)

type TaskExecDao interface {
	Upsert(ctx context.Context, taskExec *model.TaskExecution) error
	GetByUUID(ctx context.Context, uuid string) ([]*model.TaskExecution, error)
}

type taskExecDAO struct {
}

func NewTaskExecDao() TaskExecDao {
	return &taskExecDAO{}
}

func (p *taskExecDAO) Upsert(ctx context.Context, newTaskExec *model.TaskExecution) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taskExec model.TaskExecution
		err := tx.Where("execution_uuid = ? AND task_name = ?",
			newTaskExec.ExecutionUUID, newTaskExec.TaskName).Take(&taskExec).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return tx.Create(newTaskExec).Error
			}
			return err
		}

		taskExec.Status = newTaskExec.Status
		taskExec.Stdout = newTaskExec.Stdout
		taskExec.Stderr = newTaskExec.Stderr
		return tx.Save(&taskExec).Error
	})
}

func (p *taskExecDAO) GetByUUID(ctx context.Context, uuid string) ([]*model.TaskExecution, error) {
	var taskExecs []*model.TaskExecution
	if err := db.WithContext(ctx).Where("execution_uuid = ?", uuid).Find(&taskExecs).Error; err != nil {
		return nil, err
	}
	return taskExecs, nil
}
