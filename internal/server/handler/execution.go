package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"forge/internal/common"
	"forge/internal/server/dao"
	"forge/pkg/api"
	"forge/pkg/pipeline"
)

const historyLimit = 50

const timeLayout = "2006-01-02 15:04:05"

func ListExecutionHistory(c *gin.Context) {
	historyList, err := dao.NewPipelineExecDao().ListRecent(c, historyLimit)
	if err != nil {
		common.Error(c, common.NewErrNo(common.GetHistoryFail))
		return
	}

	briefs := make([]api.ExecutionHistoryBrief, 0, len(historyList))
	for _, history := range historyList {
		brief := api.ExecutionHistoryBrief{
			ID:          history.ID,
			PipelineID:  history.PipelineID,
			Status:      history.Status,
			TriggerType: history.TriggerType,
			StartTime:   history.CreatedAt.Format(timeLayout),
		}
		if brief.Status == pipeline.StatusSuccess || brief.Status == pipeline.StatusFailed {
			brief.EndTime = history.UpdatedAt.Format(timeLayout)
		}
		briefs = append(briefs, brief)
	}

	// running executions first
	running := make([]api.ExecutionHistoryBrief, 0)
	finished := make([]api.ExecutionHistoryBrief, 0)
	for _, brief := range briefs {
		if brief.Status == pipeline.StatusRunning {
			running = append(running, brief)
		} else {
			finished = append(finished, brief)
		}
	}
	common.Success(c, append(running, finished...))
}

func ListExecutionHistoryDetail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		common.Error(c, common.NewErrNo(common.RequestInvalid))
		return
	}

	history, err := dao.NewPipelineExecDao().GetByID(c, uint(id))
	if err != nil {
		common.Error(c, common.NewErrNo(common.GetHistoryDetailFail))
		return
	}

	stored, err := dao.NewPipelineDao().GetByID(c, history.PipelineID)
	if err != nil {
		common.Error(c, common.NewErrNo(common.GetHistoryDetailFail))
		return
	}

	taskExecs, err := dao.NewTaskExecDao().GetByUUID(c, history.ExecutionUUID)
	if err != nil {
		common.Error(c, common.NewErrNo(common.GetHistoryDetailFail))
		return
	}

	detail := &api.ExecutionHistoryDetail{
		Config: stored.Config,
	}
	for _, taskExec := range taskExecs {
		task := api.TaskDetail{
			TaskName: taskExec.TaskName,
			Status:   taskExec.Status,
			Stdout:   taskExec.Stdout,
			Stderr:   taskExec.Stderr,
		}
		if task.Status != pipeline.StatusSkipped && task.Status != pipeline.StatusPending {
			task.StartTime = taskExec.CreatedAt.Format(timeLayout)
		}
		if task.Status == pipeline.StatusSuccess || task.Status == pipeline.StatusFailed {
			task.EndTime = taskExec.UpdatedAt.Format(timeLayout)
		}
		detail.Tasks = append(detail.Tasks, task)
	}
	common.Success(c, detail)
}
