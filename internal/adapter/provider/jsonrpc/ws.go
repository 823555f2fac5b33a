package jsonrpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"yield-wallet/internal/domain/entity"
	"yield-wallet/internal/pkg/apperrors"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Compile-time check
var _ Client = (*WSClient)(nil)

var errConnClosed = errors.New("websocket connection closed")

type result struct {
	resp *Response
	err  error
}

// WSClient multiplexes JSON-RPC calls over one lazily dialed WebSocket connection.
// A broken connection fails every pending call and is redialed on the next Call.
type WSClient struct {
	endpoint string
	timeout  time.Duration
	dialer   websocket.Dialer
	logger   *zap.Logger
	nextID   atomic.Uint64

	mu      sync.Mutex
	conn    *websocket.Conn
	pending map[uint64]chan result

	writeMu sync.Mutex
}

// NewWSClient creates a client for a ws(s) bridge endpoint.
func NewWSClient(endpoint entity.RPCURL, timeout time.Duration, logger *zap.Logger) *WSClient {
	handshake := timeout
	if handshake <= 0 || handshake > 10*time.Second {
		handshake = 10 * time.Second
	}
	return &WSClient{
		endpoint: endpoint.String(),
		timeout:  timeout,
		dialer: websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshake,
		},
		logger:  logger.Named("JSONRPCWS"),
		pending: make(map[uint64]chan result),
	}
}

// Call sends method with params and waits for the matching response.
func (c *WSClient) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	conn, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}

	id := c.nextID.Add(1)
	ch := make(chan result, 1)
	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	payload, err := json.Marshal(Request{JSONRPC: "2.0", ID: id, Method: method, Params: params})
	if err != nil {
		return nil, fmt.Errorf("%w: encode %s request: %v", apperrors.ErrInvalidInput, method, err)
	}

	c.writeMu.Lock()
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	wErr := conn.WriteMessage(websocket.TextMessage, payload)
	c.writeMu.Unlock()
	if wErr != nil {
		c.drop(conn, wErr)
		return nil, fmt.Errorf("%w: ws write to %s failed: %v", apperrors.ErrExternalServiceFailure, c.endpoint, wErr)
	}

	var timer <-chan time.Time
	if timeout := effectiveTimeout(ctx, c.timeout); timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, r.err
		}
		return r.resp.Result, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s on %s: %v", apperrors.ErrTimeout, method, c.endpoint, ctx.Err())
		}
		return nil, ctx.Err()
	case <-timer:
		return nil, fmt.Errorf("%w: %s on %s timed out after %v", apperrors.ErrTimeout, method, c.endpoint, c.timeout)
	}
}

// Close closes the connection and fails pending calls.
func (c *WSClient) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return nil
	}
	c.drop(conn, errConnClosed)
	return nil
}

func (c *WSClient) connect(ctx context.Context) (*websocket.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return c.conn, nil
	}

	c.logger.Debug("Dialing wallet bridge", zap.String("url", c.endpoint))
	conn, _, err := c.dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		if errors.Is(context.Cause(ctx), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: ws dial to %s timed out: %v", apperrors.ErrTimeout, c.endpoint, err)
		}
		return nil, fmt.Errorf("%w: ws dial to %s failed: %v", apperrors.ErrExternalServiceFailure, c.endpoint, err)
	}
	c.conn = conn
	go c.readLoop(conn)
	return conn, nil
}

func (c *WSClient) readLoop(conn *websocket.Conn) {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			c.drop(conn, err)
			return
		}

		resp, decodeErr := decodeResponse(c.endpoint, message)
		id, found := responseID(resp, message)
		if !found {
			c.logger.Debug("Discarding bridge message without request id", zap.Error(decodeErr))
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[id]
		c.mu.Unlock()
		if !ok {
			c.logger.Debug("Discarding response for unknown request", zap.Uint64("id", id))
			continue
		}
		select {
		case ch <- result{resp: resp, err: decodeErr}:
		default:
		}
	}
}

// responseID returns the request id of a reply, including replies decodeResponse rejected,
// so a malformed answer still fails its caller immediately.
func responseID(resp *Response, message []byte) (uint64, bool) {
	if resp != nil {
		return resp.ID, true
	}
	var envelope struct {
		ID *uint64 `json:"id"`
	}
	if err := json.Unmarshal(message, &envelope); err != nil || envelope.ID == nil {
		return 0, false
	}
	return *envelope.ID, true
}

// drop tears down conn if it is still current and fails every pending call.
func (c *WSClient) drop(conn *websocket.Conn, cause error) {
	c.mu.Lock()
	if c.conn != conn {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	pending := c.pending
	c.pending = make(map[uint64]chan result)
	c.mu.Unlock()

	_ = conn.Close()
	if !errors.Is(cause, errConnClosed) {
		c.logger.Warn("Wallet bridge connection lost", zap.String("url", c.endpoint), zap.Error(cause))
	}
	for _, ch := range pending {
		select {
		case ch <- result{err: fmt.Errorf("%w: %s: %v", apperrors.ErrExternalServiceFailure, c.endpoint, cause)}:
		default:
		}
	}
}
