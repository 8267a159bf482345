package dao

import (
	"context"

	"gorm.io/gorm"

	"forge/internal/server/model"
)

type PipelineExecDao interface {
	Create(ctx context.Context, exec *model.PipelineExecution) error
	UpdateStatus(ctx context.Context, uuid, status string) error
	GetByUUID(ctx context.Context, uuid string) (*model.PipelineExecution, error)
	GetByID(ctx context.Context, id uint) (*model.PipelineExecution, error)
	ListRecent(ctx context.Context, limit int) ([]*model.PipelineExecution, error)
}

type pipelineExecDAO struct {
}

func NewPipelineExecDao() PipelineExecDao {
	return &pipelineExecDAO{}
}

func (p *pipelineExecDAO) Create(ctx context.Context, exec *model.PipelineExecution) error {
	return db.WithContext(ctx).Create(exec).Error
}

func (p *pipelineExecDAO) UpdateStatus(ctx context.Context, uuid, status string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exec model.PipelineExecution
		if err := tx.Where("execution_uuid = ?", uuid).Take(&exec).Error; err != nil {
			return err
		}
		exec.Status = status
		return tx.Save(&exec).Error
	})
}

func (p *pipelineExecDAO) GetByUUID(ctx context.Context, uuid string) (*model.PipelineExecution, error) {
	var exec model.PipelineExecution
	if err := db.WithContext(ctx).Where("execution_uuid = ?", uuid).Take(&exec).Error; err != nil {
		return nil, err
	}
	return &exec, nil
}

func (p *pipelineExecDAO) GetByID(ctx context.Context, id uint) (*model.PipelineExecution, error) {
	var exec model.PipelineExecution
	if err := db.WithContext(ctx).Where("id = ?", id).Take(&exec).Error; err != nil {
		return nil, err
	}
	return &exec, nil
}

func (p *pipelineExecDAO) ListRecent(ctx context.Context, limit int) ([]*model.PipelineExecution, error) {
	var execs []*model.PipelineExecution
	q := db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&execs).Error; err != nil {
		return nil, err
	}
	return execs, nil
}
