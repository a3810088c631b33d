// Package resolver is the websocket client for the tracking server: it
// resolves opaque video source references into playable URLs and delivers
// the tracked hand/ball/control streams to the engine.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"lumen/internal/logging"
)

var (
	// ErrConnectionLost marks resolutions failed by a socket drop.
	ErrConnectionLost = errors.New("tracking server connection lost")
	// ErrNotConnected is returned when a resolution is requested with no
	// active connection.
	ErrNotConnected = errors.New("tracking server not connected")
)

// DefaultResolveTimeout bounds one resolution round-trip.
const DefaultResolveTimeout = 30 * time.Second

const (
	reconnectMinDelay = time.Second
	reconnectMaxDelay = 30 * time.Second
)

type resolveResult struct {
	url string
	err error
}

// Client maintains the websocket connection, correlates resolution
// responses to requests by token, and dispatches tracking pushes.
type Client struct {
	serverURL string
	handler   Handler
	logger    *slog.Logger
	timeout   time.Duration
	maxDelay  time.Duration

	mu      sync.Mutex
	conn    *websocket.Conn
	pending map[string]chan resolveResult

	writeMu sync.Mutex
}

// Option configures the client.
type Option func(*Client)

// WithResolveTimeout overrides the resolution bound.
func WithResolveTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithReconnectMaxDelay caps the reconnect backoff.
func WithReconnectMaxDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.maxDelay = d
		}
	}
}

// New constructs a client for the given ws:// URL. The handler receives
// tracking pushes from the read loop.
func New(serverURL string, handler Handler, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		serverURL: serverURL,
		handler:   handler,
		logger:    logging.NewComponentLogger(logger, "resolver"),
		timeout:   DefaultResolveTimeout,
		maxDelay:  reconnectMaxDelay,
		pending:   make(map[string]chan resolveResult),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run connects and serves the read loop, reconnecting with capped backoff
// until the context is canceled.
func (c *Client) Run(ctx context.Context) error {
	delay := reconnectMinDelay
	for {
		if err := c.connectAndServe(ctx); err != nil && ctx.Err() == nil {
			c.logger.Warn("connection lost", logging.Error(err),
				logging.Duration("retry_in", delay))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > c.maxDelay {
			delay = c.maxDelay
		}
	}
}

func (c *Client) connectAndServe(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.serverURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.serverURL, err)
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	c.logger.Info("connected", logging.String("server", c.serverURL))

	if err := c.write(envelope{Type: "start_stream"}); err != nil {
		c.teardownConn()
		return err
	}

	// Close the socket when the context ends so ReadJSON unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var msg envelope
		if err := conn.ReadJSON(&msg); err != nil {
			c.teardownConn()
			return err
		}
		c.dispatch(msg)
	}
}

// Resolve requests a playable URL for an opaque source reference. Concurrent
// outstanding requests are supported; each carries a unique correlation
// token and only the matching pending request is completed by a response.
func (c *Client) Resolve(ctx context.Context, ref string) (string, error) {
	token := uuid.NewString()
	ch := make(chan resolveResult, 1)

	c.mu.Lock()
	if c.conn == nil {
		c.mu.Unlock()
		return "", ErrNotConnected
	}
	c.pending[token] = ch
	c.mu.Unlock()

	if err := c.write(envelope{Type: "get_video_url", RequestID: token, URL: ref}); err != nil {
		c.unregister(token)
		return "", fmt.Errorf("send resolve request: %w", err)
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		return res.url, res.err
	case <-ctx.Done():
		c.unregister(token)
		return "", ctx.Err()
	case <-timer.C:
		c.unregister(token)
		return "", fmt.Errorf("resolve %s: timed out after %s", ref, c.timeout)
	}
}

func (c *Client) dispatch(msg envelope) {
	switch msg.Type {
	case "video_url":
		c.completePending(msg)
	case "frame":
		if c.handler == nil {
			return
		}
		if msg.Hands != nil {
			c.handler.HandleHands(msg.Hands.left(), msg.Hands.right())
		}
		if msg.Balls != nil {
			c.handler.HandleBalls(msg.Balls)
		}
	case "control":
		if c.handler != nil {
			c.handler.HandleControl(msg.X, msg.Y)
		}
	case "navigate":
		if c.handler != nil {
			c.handler.HandleNavigate(msg.Direction)
		}
	case "calibration":
		c.logger.Debug("calibration received")
	default:
		c.logger.Warn("unknown message type", logging.String("message_type", msg.Type))
	}
}

func (c *Client) completePending(msg envelope) {
	c.mu.Lock()
	ch, ok := c.pending[msg.RequestID]
	if ok {
		delete(c.pending, msg.RequestID)
	}
	c.mu.Unlock()
	if !ok {
		// A response without a matching token is dropped; responses
		// never complete "whichever request came first".
		c.logger.Warn("resolution response with unknown token",
			logging.String(logging.FieldCorrelationID, msg.RequestID))
		return
	}
	if !msg.Success {
		reason := msg.Error
		if reason == "" {
			reason = "resolution failed"
		}
		ch <- resolveResult{err: errors.New(reason)}
		return
	}
	ch <- resolveResult{url: msg.URL}
}

func (c *Client) write(msg envelope) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteJSON(msg)
}

func (c *Client) unregister(token string) {
	c.mu.Lock()
	delete(c.pending, token)
	c.mu.Unlock()
}

// teardownConn drops the connection and fails every outstanding resolution.
func (c *Client) teardownConn() {
	c.mu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	pending := c.pending
	c.pending = make(map[string]chan resolveResult)
	c.mu.Unlock()

	for _, ch := range pending {
		ch <- resolveResult{err: ErrConnectionLost}
	}
}
