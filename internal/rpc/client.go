// Package rpc fetches lead pages from remote nodes over JSON-RPC 2.0 on a
// websocket, with failover, reconnect backoff and a circuit breaker.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/creachadair/jrpc2"

	"leadlist-tui/pkg/types"
)

// Client is a JSON-RPC client for lead nodes. It connects lazily on the
// first call and reconnects after a transport failure.
type Client struct {
	reconnector    *ReconnectionManager
	circuitBreaker *CircuitBreaker

	conn   *jrpc2.Client
	node   string
	send   func(tea.Msg)
	closed bool
	mutex  sync.Mutex
}

// NewClient creates a client over nodes
func NewClient(nodes []string) *Client {
	return &Client{
		reconnector:    NewReconnectionManager(nodes),
		circuitBreaker: NewCircuitBreaker(),
	}
}

// SetSender installs the function used to post connection events to the UI,
// usually tea.Program.Send
func (c *Client) SetSender(send func(tea.Msg)) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.send = send
}

// Call invokes method and decodes its result into result
func (c *Client) Call(ctx context.Context, method string, params, result any) error {
	if err := c.circuitBreaker.Allow(); err != nil {
		return err
	}

	conn, err := c.connect(ctx)
	if err != nil {
		if !errors.Is(err, ErrBackingOff) {
			c.circuitBreaker.RecordFailure()
		}
		return err
	}

	err = conn.CallResult(ctx, method, params, result)
	if err == nil {
		c.circuitBreaker.RecordSuccess()
		return nil
	}

	var rpcErr *jrpc2.Error
	if errors.As(err, &rpcErr) {
		// the node answered, the transport is fine
		c.circuitBreaker.RecordSuccess()
		return fmt.Errorf("%s: %w", method, err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	c.circuitBreaker.RecordFailure()
	c.drop(conn, err)
	return fmt.Errorf("%s: %w", method, err)
}

// FetchPage requests one page of leads
func (c *Client) FetchPage(ctx context.Context, req types.PageRequest) (types.Page, error) {
	var page types.Page
	if err := c.Call(ctx, types.MethodFetchPage, req, &page); err != nil {
		return types.Page{}, err
	}
	return page, nil
}

// Ping checks that a node is reachable
func (c *Client) Ping(ctx context.Context) (types.PingResult, error) {
	var result types.PingResult
	err := c.Call(ctx, types.MethodPing, nil, &result)
	return result, err
}

// Node returns the node of the current connection, empty when disconnected
func (c *Client) Node() string {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.node
}

// Close disconnects and stops further calls
func (c *Client) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.closed = true
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.node = ""
	return err
}

func (c *Client) connect(ctx context.Context) (*jrpc2.Client, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return nil, errors.New("rpc: client closed")
	}
	if c.conn != nil {
		return c.conn, nil
	}

	ws, node, err := c.reconnector.ConnectWithFailover(ctx)
	if err != nil {
		log.Warn("connect failed", "err", err)
		return nil, err
	}

	c.conn = jrpc2.NewClient(NewWebSocketStream(ws), nil)
	c.node = node
	log.Info("connected", "node", node)
	c.post(ConnectionEstablishedMsg{Node: node})
	return c.conn, nil
}

// drop discards conn after a transport error unless it was already replaced
func (c *Client) drop(conn *jrpc2.Client, cause error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.conn != conn {
		return
	}
	conn.Close()
	node := c.node
	c.conn = nil
	c.node = ""
	log.Warn("connection lost", "node", node, "err", cause)
	c.post(ConnectionLostMsg{Node: node, Err: cause})
}

// post must be called with the mutex held
func (c *Client) post(msg tea.Msg) {
	if c.send != nil {
		go c.send(msg)
	}
}

// Message types for UI updates
type ConnectionEstablishedMsg struct {
	Node string
}

type ConnectionLostMsg struct {
	Node string
	Err  error
}
