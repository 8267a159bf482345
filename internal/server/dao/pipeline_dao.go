package dao

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"forge/internal/common"
	"forge/internal/server/model"
)

type PipelineDao interface {
	// Create inserts one pipeline version row.
	Create(ctx context.Context, pipeline *model.Pipeline) error
	GetByID(ctx context.Context, id uint) (*model.Pipeline, error)
	GetNewestVersionByName(ctx context.Context, name string) (*model.Pipeline, error)
	// ListNewest returns the newest version of every pipeline.
	ListNewest(ctx context.Context) ([]*model.Pipeline, error)
}

type pipelineDAO struct {
}

func NewPipelineDao() PipelineDao {
	return &pipelineDAO{}
}

func (d *pipelineDAO) Create(ctx context.Context, pipeline *model.Pipeline) error {
	if err := db.WithContext(ctx).Create(pipeline).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return common.NewErrNo(common.PipelineExists)
		}
		return err
	}
	return nil
}

func (d *pipelineDAO) GetByID(ctx context.Context, id uint) (*model.Pipeline, error) {
	var pipeline model.Pipeline
	if err := db.WithContext(ctx).Where("id = ?", id).Take(&pipeline).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewErrNo(common.PipelineNotExists)
		}
		return nil, err
	}
	return &pipeline, nil
}

func (d *pipelineDAO) GetNewestVersionByName(ctx context.Context, name string) (*model.Pipeline, error) {
	var pipeline model.Pipeline
	err := db.WithContext(ctx).
		Where("name = ?", name).
		Order("version DESC").
		Take(&pipeline).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewErrNo(common.PipelineNotExists)
		}
		return nil, err
	}
	return &pipeline, nil
}

func (d *pipelineDAO) ListNewest(ctx context.Context) ([]*model.Pipeline, error) {
	var pipelines []*model.Pipeline
	if err := db.WithContext(ctx).Order("name, version").Find(&pipelines).Error; err != nil {
		return nil, err
	}

	newest := make(map[string]*model.Pipeline)
	var order []string
	for _, p := range pipelines {
		if _, seen := newest[p.Name]; !seen {
			order = append(order, p.Name)
		}
		newest[p.Name] = p
	}

	result := make([]*model.Pipeline, 0, len(order))
	for _, name := range order {
		result = append(result, newest[name])
	}
	return result, nil
}
