package main

import (
	"go.uber.org/zap"

	"forge/internal/common"
	"forge/internal/runner/engine"
	"forge/internal/runner/rpcserver"
	"forge/internal/runner/sched"
)

const maxConcurrency = 5

func main() {
	common.InitConf()
	common.InitLog()
	logger := common.GetLogger()
	defer logger.Sync()
	cfg := common.GetConfig()

	var eng engine.Engine
	switch cfg.Engine {
	case "local":
		eng = engine.NewLocal()
	default:
		dockerEngine, err := engine.NewDocker(cfg.TaskImage)
		if err != nil {
			logger.Fatal("connect docker", zap.Error(err))
		}
		eng = dockerEngine
	}

	callback, err := rpcserver.NewCallbackClient(cfg.CallbackAddr)
	if err != nil {
		logger.Fatal("connect callback service",
			zap.String("addr", cfg.CallbackAddr), zap.Error(err))
	}
	defer callback.Close()

	scheduler := sched.New(eng, maxConcurrency,
		callback.PushTaskStatus, callback.PushPipelineStatus, logger)

	server := rpcserver.New(scheduler, logger)
	if err := server.Start(cfg.RunnerAddr); err != nil {
		logger.Fatal("runner stopped", zap.Error(err))
	}
}
