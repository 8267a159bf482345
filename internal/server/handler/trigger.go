package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"forge/internal/common"
	"forge/internal/server/dao"
	"forge/internal/server/model"
	"forge/pkg/api"
	"forge/pkg/pipeline"
	"forge/pkg/taskrpc"
)

func TriggerPipeline(c *gin.Context) {
	var req api.TriggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, common.NewErrNo(common.RequestInvalid))
		return
	}

	stored, err := dao.NewPipelineDao().GetByID(c, uint(req.PipelineID))
	if err != nil {
		common.Error(c, err)
		return
	}

	execID, execUUID, err := StartExecution(c, stored, model.TriggerManual)
	if err != nil {
		common.Error(c, err)
		return
	}

	common.Success(c, api.TriggerResponse{
		ExecutionID:   execID,
		ExecutionUUID: execUUID,
	})
}

// StartExecution records a new execution of the stored pipeline version
// and hands its tasks to the runner. Shared by the manual, cron and
// webhook trigger paths.
func StartExecution(ctx context.Context, stored *model.Pipeline, triggerType string) (uint, string, error) {
	spec, err := stored.Spec()
	if err != nil {
		return 0, "", common.NewErrNo(common.YamlInvalid)
	}

	exec := &model.PipelineExecution{
		PipelineID:    stored.ID,
		Version:       stored.Version,
		ExecutionUUID: uuid.NewString(),
		TriggerType:   triggerType,
		Status:        pipeline.StatusRunning,
	}
	if err := dao.NewPipelineExecDao().Create(ctx, exec); err != nil {
		return 0, "", err
	}

	if runner == nil {
		return 0, "", common.NewErrNo(common.RunnerUnavailable)
	}
	err = runner.ExecutePipeline(&taskrpc.ExecutePipelineRequest{
		ExecutionUUID: exec.ExecutionUUID,
		Tasks:         spec.Tasks,
	})
	if err != nil {
		// runner never received the work, record the failure
		if updateErr := dao.NewPipelineExecDao().UpdateStatus(ctx, exec.ExecutionUUID, pipeline.StatusFailed); updateErr != nil {
			common.GetLogger().Sugar().Errorw("mark execution failed",
				"execution", exec.ExecutionUUID, "error", updateErr)
		}
		return 0, "", common.NewErrNo(common.PipelineStartFail)
	}

	return exec.ID, exec.ExecutionUUID, nil
}

// TriggerByID is the entry point used by the cron scheduler.
func TriggerByID(ctx context.Context, pipelineID uint) error {
	stored, err := dao.NewPipelineDao().GetByID(ctx, pipelineID)
	if err != nil {
		return err
	}
	_, _, err = StartExecution(ctx, stored, model.TriggerCrontab)
	return err
}
