package rpccall

import (
	"context"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"

	"go.uber.org/zap"

	"forge/internal/server/dao"
	"forge/internal/server/model"
	"forge/pkg/taskrpc"
)

// CallbackServer receives status pushes from the runner and persists
// them.
type CallbackServer struct {
	logger *zap.Logger
}

func NewCallbackServer(logger *zap.Logger) *CallbackServer {
	return &CallbackServer{logger: logger}
}

func (s *CallbackServer) PushTaskStatus(req *taskrpc.TaskStatusUpdateRequest, resp *taskrpc.TaskStatusUpdateResponse) error {
	update := req.TaskStatusUpdate
	return dao.NewTaskExecDao().Upsert(context.Background(), &model.TaskExecution{
		ExecutionUUID: update.ExecutionUUID,
		TaskName:      update.TaskName,
		Status:        update.Status,
		Stdout:        update.Stdout,
		Stderr:        update.Stderr,
	})
}

func (s *CallbackServer) PushPipelineStatus(req *taskrpc.PipelineStatusUpdateRequest, resp *taskrpc.PipelineStatusUpdateResponse) error {
	update := req.PipelineStatusUpdate
	return dao.NewPipelineExecDao().UpdateStatus(context.Background(), update.ExecutionUUID, update.Status)
}

func (s *CallbackServer) Start(addr string) error {
	if err := rpc.RegisterName("BackendCallbackService", s); err != nil {
		return err
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	defer listener.Close()

	s.logger.Info("callback service listening", zap.String("addr", addr))
	for {
		conn, err := listener.Accept()
		if err != nil {
			continue
		}
		go jsonrpc.ServeConn(conn)
	}
}
