package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Lumen.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop asks the daemon process to shut down.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Lumen.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Scenes lists declared scenes.
func (c *Client) Scenes() (*ScenesResponse, error) {
	var resp ScenesResponse
	if err := c.client.Call("Lumen.Scenes", ScenesRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Next advances to the following scene.
func (c *Client) Next() (*NavigateResponse, error) {
	var resp NavigateResponse
	if err := c.client.Call("Lumen.Next", NextRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Previous steps back to the preceding scene.
func (c *Client) Previous() (*NavigateResponse, error) {
	var resp NavigateResponse
	if err := c.client.Call("Lumen.Previous", PreviousRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Load switches to the scene at index.
func (c *Client) Load(index int) (*LoadResponse, error) {
	var resp LoadResponse
	if err := c.client.Call("Lumen.Load", LoadRequest{Index: index}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RunScript re-executes a scene script on the daemon.
func (c *Client) RunScript(req RunScriptRequest) (*RunScriptResponse, error) {
	var resp RunScriptResponse
	if err := c.client.Call("Lumen.RunScript", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
