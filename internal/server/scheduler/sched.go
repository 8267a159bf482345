package scheduler

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"forge/internal/server/dao"
	"forge/internal/server/model"
)

const taskTypePipelineExecute = "pipeline:execute"

type pipelineExecutePayload struct {
	PipelineID uint `json:"pipeline_id"`
}

// TriggerFunc starts one execution of the stored pipeline version.
type TriggerFunc func(ctx context.Context, pipelineID uint) error

// Service keeps the cron triggers of every stored pipeline registered
// with asynq and consumes the resulting jobs.
type Service struct {
	scheduler *asynq.Scheduler
	server    *asynq.Server
	trigger   TriggerFunc
	logger    *zap.Logger

	mu            sync.Mutex
	scheduledJobs map[uint]string // pipeline ID -> scheduler entry ID
}

func New(redisOpt asynq.RedisClientOpt, trigger TriggerFunc, logger *zap.Logger) *Service {
	return &Service{
		scheduler: asynq.NewScheduler(redisOpt, nil),
		server: asynq.NewServer(redisOpt, asynq.Config{
			Concurrency: 4,
		}),
		trigger:       trigger,
		logger:        logger,
		scheduledJobs: make(map[uint]string),
	}
}

// Start runs the cron scheduler and the job consumer.
func (s *Service) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(taskTypePipelineExecute, s.handlePipelineExecute)

	if err := s.scheduler.Start(); err != nil {
		return err
	}
	return s.server.Start(mux)
}

func (s *Service) Shutdown() {
	s.scheduler.Shutdown()
	s.server.Shutdown()
}

func (s *Service) handlePipelineExecute(ctx context.Context, t *asynq.Task) error {
	var payload pipelineExecutePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}
	s.logger.Info("cron trigger", zap.Uint("pipeline", payload.PipelineID))
	return s.trigger(ctx, payload.PipelineID)
}

// UpsertPipelineSchedule replaces the registered cron entry of the
// pipeline with the triggers of the given (newest) version.
func (s *Service) UpsertPipelineSchedule(stored *model.Pipeline) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, exists := s.scheduledJobs[stored.ID]; exists {
		if err := s.scheduler.Unregister(entryID); err != nil {
			s.logger.Warn("unregister schedule failed",
				zap.Uint("pipeline", stored.ID), zap.Error(err))
		}
		delete(s.scheduledJobs, stored.ID)
	}

	spec, err := stored.Spec()
	if err != nil {
		return err
	}

	for _, trigger := range spec.Triggers {
		if trigger.Cron == "" {
			continue
		}
		payload, err := json.Marshal(pipelineExecutePayload{PipelineID: stored.ID})
		if err != nil {
			return err
		}
		entryID, err := s.scheduler.Register(trigger.Cron, asynq.NewTask(taskTypePipelineExecute, payload))
		if err != nil {
			return err
		}
		s.scheduledJobs[stored.ID] = entryID
		s.logger.Info("registered cron schedule",
			zap.Uint("pipeline", stored.ID), zap.String("cron", trigger.Cron))
		break
	}
	return nil
}

// LoadAllSchedules registers the cron triggers of every stored pipeline;
// called once at startup.
func (s *Service) LoadAllSchedules(ctx context.Context) error {
	pipelines, err := dao.NewPipelineDao().ListNewest(ctx)
	if err != nil {
		return err
	}
	for _, stored := range pipelines {
		if err := s.UpsertPipelineSchedule(stored); err != nil {
			s.logger.Error("schedule pipeline failed",
				zap.String("pipeline", stored.Name), zap.Error(err))
		}
	}
	return nil
}
