package rpcserver

import (
	"context"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"

	"go.uber.org/zap"

	"forge/internal/runner/sched"
	"forge/pkg/taskrpc"
)

// Server exposes the runner over JSON-RPC.
type Server struct {
	sched  *sched.Scheduler
	logger *zap.Logger
}

func New(scheduler *sched.Scheduler, logger *zap.Logger) *Server {
	return &Server{
		sched:  scheduler,
		logger: logger,
	}
}

// ExecutePipeline accepts a pipeline execution and returns immediately;
// the tasks run asynchronously and report through the callback service.
func (s *Server) ExecutePipeline(req *taskrpc.ExecutePipelineRequest, resp *taskrpc.ExecutePipelineResponse) error {
	go func() {
		if err := s.sched.SchedulePipeline(context.Background(), req); err != nil {
			s.logger.Error("schedule pipeline failed",
				zap.String("execution", req.ExecutionUUID), zap.Error(err))
		}
	}()
	return nil
}

func (s *Server) Start(addr string) error {
	if err := rpc.RegisterName("TaskRunnerService", s); err != nil {
		return err
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	defer listener.Close()

	s.logger.Info("runner listening", zap.String("addr", addr))
	for {
		conn, err := listener.Accept()
		if err != nil {
			continue
		}
		go jsonrpc.ServeConn(conn)
	}
}
