package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"forge/internal/common"
	"forge/internal/server/dao"
	"forge/internal/server/handler"
	"forge/internal/server/rpccall"
	"forge/internal/server/scheduler"
)

func main() {
	common.InitConf()
	common.InitLog()
	logger := common.GetLogger()
	defer logger.Sync()
	cfg := common.GetConfig()

	if err := dao.Init(); err != nil {
		logger.Fatal("open database", zap.Error(err))
	}

	runnerClient, err := rpccall.NewClient(cfg.RunnerAddr)
	if err != nil {
		logger.Fatal("connect runner", zap.String("addr", cfg.RunnerAddr), zap.Error(err))
	}
	handler.SetRunner(runnerClient)

	callback := rpccall.NewCallbackServer(logger)
	go func() {
		if err := callback.Start(cfg.CallbackAddr); err != nil {
			logger.Fatal("callback service", zap.Error(err))
		}
	}()

	sched := scheduler.New(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword},
		handler.TriggerByID,
		logger,
	)
	if err := sched.Start(); err != nil {
		logger.Fatal("start scheduler", zap.Error(err))
	}
	defer sched.Shutdown()
	handler.SetScheduler(sched)
	if err := sched.LoadAllSchedules(context.Background()); err != nil {
		logger.Error("load schedules", zap.Error(err))
	}

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := handler.NewRouter()
	logger.Info("server listening", zap.String("addr", cfg.ServerAddr))
	if err := r.Run(cfg.ServerAddr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
