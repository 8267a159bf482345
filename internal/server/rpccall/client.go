package rpccall

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"

	"forge/pkg/taskrpc"
)

// Client talks to the runner's JSON-RPC service.
type Client struct {
	rpcClient *rpc.Client
}

func NewClient(runnerAddr string) (*Client, error) {
	conn, err := net.Dial("tcp", runnerAddr)
	if err != nil {
		return nil, err
	}
	return &Client{
		rpcClient: jsonrpc.NewClient(conn),
	}, nil
}

func (c *Client) ExecutePipeline(req *taskrpc.ExecutePipelineRequest) error {
	var resp taskrpc.ExecutePipelineResponse
	return c.rpcClient.Call("TaskRunnerService.ExecutePipeline", req, &resp)
}

func (c *Client) Close() error {
	return c.rpcClient.Close()
}
