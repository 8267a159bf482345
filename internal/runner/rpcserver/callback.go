package rpcserver

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"

	"forge/pkg/taskrpc"
)

// CallbackClient pushes status updates to the server's callback
// service.
type CallbackClient struct {
	rpcClient *rpc.Client
}

func NewCallbackClient(callbackAddr string) (*CallbackClient, error) {
	conn, err := net.Dial("tcp", callbackAddr)
	if err != nil {
		return nil, err
	}
	return &CallbackClient{
		rpcClient: jsonrpc.NewClient(conn),
	}, nil
}

func (c *CallbackClient) PushTaskStatus(update *taskrpc.TaskStatusUpdate) error {
	var resp taskrpc.TaskStatusUpdateResponse
	return c.rpcClient.Call("BackendCallbackService.PushTaskStatus",
		&taskrpc.TaskStatusUpdateRequest{TaskStatusUpdate: *update}, &resp)
}

func (c *CallbackClient) PushPipelineStatus(update *taskrpc.PipelineStatusUpdate) error {
	var resp taskrpc.PipelineStatusUpdateResponse
	return c.rpcClient.Call("BackendCallbackService.PushPipelineStatus",
		&taskrpc.PipelineStatusUpdateRequest{PipelineStatusUpdate: *update}, &resp)
}

func (c *CallbackClient) Close() error {
	return c.rpcClient.Close()
}
