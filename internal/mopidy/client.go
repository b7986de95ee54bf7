package mopidy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

// DefaultPort is the port the Mopidy HTTP frontend listens on.
const DefaultPort = 6680

// Client speaks JSON-RPC 2.0 to a single Mopidy server over HTTP POST.
// Push events use a separate websocket connection, see Listen.
type Client struct {
	host string
	port int

	rpcURL     string
	wsURL      string
	httpClient *http.Client
	seq        atomic.Int64
}

// New creates a client for the Mopidy server at host:port.
func New(host string, port int) *Client {
	if port == 0 {
		port = DefaultPort
	}
	return &Client{
		host:   host,
		port:   port,
		rpcURL: fmt.Sprintf("http://%s:%d/mopidy/rpc", host, port),
		wsURL:  fmt.Sprintf("ws://%s:%d/mopidy/ws", host, port),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Host returns the configured host.
func (c *Client) Host() string { return c.host }

// Port returns the configured port.
func (c *Client) Port() int { return c.port }

// BaseURL returns the server's HTTP base URL, used to absolutize
// server-relative artwork paths.
func (c *Client) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.host, c.port)
}

// TransportError indicates the server could not be reached or the
// connection dropped mid-call. It is recoverable: callers degrade to
// last-known state and mark the device unavailable.
type TransportError struct {
	Method string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("mopidy: %s: %v", e.Method, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RPCError is an error returned by the server itself, e.g. for an
// unknown method or invalid params.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("mopidy: rpc error %d: %s", e.Code, e.Message)
}

type rpcRequest struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      int64          `json:"id"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// Call invokes a remote method and decodes the result into out, which
// may be nil when the result is not needed. Connection-level failures
// are returned as *TransportError, server-side failures as *RPCError.
func (c *Client) Call(ctx context.Context, method string, params map[string]any, out any) error {
	if params == nil {
		params = map[string]any{}
	}

	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      c.seq.Add(1),
		Method:  method,
		Params:  params,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &TransportError{Method: method, Err: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return &TransportError{Method: method, Err: err}
	}

	if httpResp.StatusCode != http.StatusOK {
		return &TransportError{
			Method: method,
			Err:    fmt.Errorf("status %d: %s", httpResp.StatusCode, respBody),
		}
	}

	var resp rpcResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return &TransportError{Method: method, Err: fmt.Errorf("decode response: %w", err)}
	}
	if resp.Error != nil {
		return resp.Error
	}

	if out != nil && len(resp.Result) > 0 && string(resp.Result) != "null" {
		if err := json.Unmarshal(resp.Result, out); err != nil {
			return fmt.Errorf("%s: decode result: %w", method, err)
		}
	}
	return nil
}
