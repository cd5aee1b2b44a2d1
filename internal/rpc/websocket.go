package rpc

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var (
	ErrNoNodes     = errors.New("rpc: no nodes configured")
	ErrBackingOff  = errors.New("rpc: waiting before reconnecting")
	ErrCircuitOpen = errors.New("rpc: circuit breaker is open")
)

// WebSocketStream implements channel.Channel for jrpc2 over a websocket,
// one JSON-RPC message per text frame
type WebSocketStream struct {
	conn      *websocket.Conn
	writeLock sync.Mutex
}

// NewWebSocketStream wraps conn
func NewWebSocketStream(conn *websocket.Conn) *WebSocketStream {
	return &WebSocketStream{conn: conn}
}

// Send writes one message. Writes are serialised, gorilla allows a single writer.
func (ws *WebSocketStream) Send(data []byte) error {
	ws.writeLock.Lock()
	defer ws.writeLock.Unlock()
	return ws.conn.WriteMessage(websocket.TextMessage, data)
}

// Recv reads the next message
func (ws *WebSocketStream) Recv() ([]byte, error) {
	_, data, err := ws.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Close closes the underlying connection
func (ws *WebSocketStream) Close() error {
	return ws.conn.Close()
}

// ReconnectionManager dials the configured nodes in turn, starting from the
// last one that worked, and backs off once all of them have failed
type ReconnectionManager struct {
	nodes            []string
	currentNode      int
	retryBackoff     *ExponentialBackoff
	retryAt          time.Time
	handshakeTimeout time.Duration
	now              func() time.Time
	mutex            sync.Mutex
}

// NewReconnectionManager creates a reconnection manager over nodes
func NewReconnectionManager(nodes []string) *ReconnectionManager {
	return &ReconnectionManager{
		nodes:            nodes,
		retryBackoff:     NewExponentialBackoff(),
		handshakeTimeout: 5 * time.Second,
		now:              time.Now,
	}
}

// ConnectWithFailover returns a connection to the first reachable node
func (rm *ReconnectionManager) ConnectWithFailover(ctx context.Context) (*websocket.Conn, string, error) {
	rm.mutex.Lock()
	defer rm.mutex.Unlock()

	if len(rm.nodes) == 0 {
		return nil, "", ErrNoNodes
	}
	if wait := rm.retryAt.Sub(rm.now()); wait > 0 {
		return nil, "", fmt.Errorf("%w: retry in %s", ErrBackingOff, wait.Round(time.Millisecond))
	}

	var lastErr error
	for i := 0; i < len(rm.nodes); i++ {
		index := (rm.currentNode + i) % len(rm.nodes)
		nodeURL := rm.nodes[index]

		u, err := url.Parse(nodeURL)
		if err != nil {
			lastErr = err
			continue
		}

		dialer := websocket.Dialer{HandshakeTimeout: rm.handshakeTimeout}
		conn, _, err := dialer.DialContext(ctx, u.String(), nil)
		if err != nil {
			lastErr = fmt.Errorf("dial %s: %w", nodeURL, err)
			continue
		}

		rm.currentNode = index
		rm.retryBackoff.Reset()
		rm.retryAt = time.Time{}
		return conn, nodeURL, nil
	}

	rm.retryAt = rm.now().Add(rm.retryBackoff.Delay())
	rm.retryBackoff.Increment()
	return nil, "", lastErr
}

// CurrentNode returns the node the next attempt starts with
func (rm *ReconnectionManager) CurrentNode() string {
	rm.mutex.Lock()
	defer rm.mutex.Unlock()
	if len(rm.nodes) == 0 {
		return ""
	}
	return rm.nodes[rm.currentNode]
}

// CircuitState is the state of a CircuitBreaker
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker fails calls fast after repeated transport failures
type CircuitBreaker struct {
	failureCount     int
	successCount     int
	failureThreshold int
	successThreshold int
	state            CircuitState
	lastFailureTime  time.Time
	timeout          time.Duration
	now              func() time.Time
	mutex            sync.Mutex
}

// NewCircuitBreaker opens after 5 failures for 30 seconds and closes again
// after 3 successes in half-open state
func NewCircuitBreaker() *CircuitBreaker {
	return &CircuitBreaker{
		failureThreshold: 5,
		successThreshold: 3,
		timeout:          30 * time.Second,
		state:            CircuitClosed,
		now:              time.Now,
	}
}

// Allow returns ErrCircuitOpen while the breaker is open
func (cb *CircuitBreaker) Allow() error {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	if cb.state != CircuitOpen {
		return nil
	}
	if cb.now().Sub(cb.lastFailureTime) >= cb.timeout {
		cb.state = CircuitHalfOpen
		cb.failureCount = 0
		cb.successCount = 0
		return nil
	}
	return ErrCircuitOpen
}

// RecordSuccess records a call that reached the server
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	switch cb.state {
	case CircuitHalfOpen:
		cb.successCount++
		if cb.successCount >= cb.successThreshold {
			cb.state = CircuitClosed
			cb.failureCount = 0
		}
	case CircuitClosed:
		cb.failureCount = 0
	}
}

// RecordFailure records a transport failure
func (cb *CircuitBreaker) RecordFailure() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.failureCount++
	cb.lastFailureTime = cb.now()
	if cb.state == CircuitHalfOpen || cb.failureCount >= cb.failureThreshold {
		cb.state = CircuitOpen
	}
}

// State returns the current state without advancing it
func (cb *CircuitBreaker) State() CircuitState {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.state
}

// ExponentialBackoff doubles the reconnect delay up to a ceiling
type ExponentialBackoff struct {
	baseDelay  time.Duration
	maxDelay   time.Duration
	multiplier float64
	retryCount int
}

// NewExponentialBackoff starts at one second and caps at thirty
func NewExponentialBackoff() *ExponentialBackoff {
	return &ExponentialBackoff{
		baseDelay:  time.Second,
		maxDelay:   30 * time.Second,
		multiplier: 2.0,
	}
}

// Delay returns the current delay
func (eb *ExponentialBackoff) Delay() time.Duration {
	delay := float64(eb.baseDelay)
	for i := 0; i < eb.retryCount; i++ {
		delay *= eb.multiplier
		if delay >= float64(eb.maxDelay) {
			return eb.maxDelay
		}
	}
	return time.Duration(delay)
}

// Increment increases the retry count
func (eb *ExponentialBackoff) Increment() {
	eb.retryCount++
}

// Reset resets the backoff state
func (eb *ExponentialBackoff) Reset() {
	eb.retryCount = 0
}
