package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"forge/internal/common"
	"forge/internal/server/dao"
	"forge/internal/server/model"
	"forge/pkg/api"
	"forge/pkg/pipeline"
)

func CreatePipeline(c *gin.Context) {
	yamlContent, err := c.GetRawData()
	if err != nil {
		common.Error(c, common.NewErrNo(common.RequestInvalid))
		return
	}

	spec, err := pipeline.Parse(string(yamlContent))
	if err != nil {
		common.Error(c, common.NewErrNo(common.YamlInvalid))
		return
	}

	stored := &model.Pipeline{
		Name:        spec.Name,
		Description: spec.Description,
		Version:     1,
		Config:      string(yamlContent),
	}
	if err := dao.NewPipelineDao().Create(c, stored); err != nil {
		common.Error(c, err)
		return
	}

	upsertSchedule(c, stored)
	common.Success(c, nil)
}

func UpdatePipeline(c *gin.Context) {
	name := c.Param("name")
	yamlContent, err := c.GetRawData()
	if err != nil {
		common.Error(c, common.NewErrNo(common.RequestInvalid))
		return
	}

	spec, err := pipeline.Parse(string(yamlContent))
	if err != nil {
		common.Error(c, common.NewErrNo(common.YamlInvalid))
		return
	}
	// renaming through an update would fork the version history
	if spec.Name != name {
		common.Error(c, common.NewErrNo(common.RequestInvalid))
		return
	}

	pipelineDAO := dao.NewPipelineDao()
	current, err := pipelineDAO.GetNewestVersionByName(c, name)
	if err != nil {
		common.Error(c, err)
		return
	}

	stored := &model.Pipeline{
		Name:        spec.Name,
		Description: spec.Description,
		Version:     current.Version + 1,
		Config:      string(yamlContent),
	}
	if err := pipelineDAO.Create(c, stored); err != nil {
		common.Error(c, err)
		return
	}

	upsertSchedule(c, stored)
	common.Success(c, nil)
}

func ListPipelines(c *gin.Context) {
	pipelines, err := dao.NewPipelineDao().ListNewest(c)
	if err != nil {
		common.Error(c, err)
		return
	}

	briefs := make([]api.PipelineBrief, 0, len(pipelines))
	for _, p := range pipelines {
		briefs = append(briefs, api.PipelineBrief{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Version:     p.Version,
		})
	}
	common.Success(c, briefs)
}

func ListPipelineDetail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		common.Error(c, common.NewErrNo(common.RequestInvalid))
		return
	}

	p, err := dao.NewPipelineDao().GetByID(c, uint(id))
	if err != nil {
		common.Error(c, err)
		return
	}
	common.Success(c, api.PipelineDetail{Config: p.Config})
}

func upsertSchedule(c *gin.Context, stored *model.Pipeline) {
	if sched == nil {
		return
	}
	if err := sched.UpsertPipelineSchedule(stored); err != nil {
		common.GetLogger().Sugar().Errorw("upsert schedule failed",
			"pipeline", stored.Name, "error", err)
	}
}
