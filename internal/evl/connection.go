package evl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/danmuck/evlctl/internal/logging"
	"github.com/danmuck/evlctl/internal/observability"
	"github.com/danmuck/evlctl/internal/tpi"
	"github.com/danmuck/evlctl/internal/tpi/frame"
)

// State is the socket lifecycle of a Connection.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateConnected
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	default:
		return "idle"
	}
}

// ConnectionConfig configures one panel socket.
type ConnectionConfig struct {
	Address        string
	ConnectTimeout time.Duration
	ReadBufferSize int
}

func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		ConnectTimeout: 5 * time.Second,
		ReadBufferSize: 4096,
	}
}

// WithDefaults fills zero values from DefaultConnectionConfig.
func (c ConnectionConfig) WithDefaults() ConnectionConfig {
	def := DefaultConnectionConfig()
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = def.ConnectTimeout
	}
	if c.ReadBufferSize <= 0 {
		c.ReadBufferSize = def.ReadBufferSize
	}
	return c
}

// Connection owns one TCP socket to the panel and turns its byte stream
// into decoded payloads.
type Connection struct {
	cfg    ConnectionConfig
	logger logging.Logger
	dial   dialFunc

	mu      sync.Mutex
	state   State
	conn    net.Conn
	closing bool
	done    chan struct{}

	writeMu sync.Mutex

	connected    emitter[struct{}]
	data         emitter[tpi.Payload]
	disconnected emitter[bool]
}

var _ Conn = (*Connection)(nil)

type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

func NewConnection(cfg ConnectionConfig, logger logging.Logger) *Connection {
	if logger == nil {
		logger = logging.Nop()
	}
	cfg = cfg.WithDefaults()
	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}
	return &Connection{
		cfg:    cfg,
		logger: logger,
		dial:   dialer.DialContext,
	}
}

func (c *Connection) Address() string {
	return c.cfg.Address
}

func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Connection) Connected() bool {
	return c.State() == StateConnected
}

func (c *Connection) OnConnected(fn func()) Subscription {
	return c.connected.subscribe(func(struct{}) { fn() })
}

func (c *Connection) OnData(fn func(tpi.Payload)) Subscription {
	return c.data.subscribe(fn)
}

func (c *Connection) OnDisconnected(fn func(hadError bool)) Subscription {
	return c.disconnected.subscribe(fn)
}

// Unsubscribe removes a callback registered with any On* method.
func (c *Connection) Unsubscribe(id Subscription) bool {
	return c.connected.unsubscribe(id) || c.data.unsubscribe(id) || c.disconnected.unsubscribe(id)
}

// Connect dials the panel. It is a no-op while connected or connecting.
// On success Connected fires on the calling goroutine and a read goroutine
// starts delivering Data and, eventually, Disconnected.
func (c *Connection) Connect(ctx context.Context) error {
	addr := strings.TrimSpace(c.cfg.Address)
	if addr == "" {
		return ErrAddressRequired
	}

	c.mu.Lock()
	if c.state == StateConnected || c.state == StateConnecting {
		c.mu.Unlock()
		return nil
	}
	c.setStateLocked(StateConnecting)
	c.mu.Unlock()

	conn, err := c.dial(ctx, "tcp", addr)
	if err != nil {
		c.mu.Lock()
		c.setStateLocked(StateDisconnected)
		c.mu.Unlock()
		c.logger.Errorf("evl.Connection dial addr=%q err=%v", addr, err)
		return fmt.Errorf("evl: dial %s: %w", addr, err)
	}

	done := make(chan struct{})
	c.mu.Lock()
	c.conn = conn
	c.closing = false
	c.done = done
	c.setStateLocked(StateConnected)
	c.mu.Unlock()

	c.logger.Infof("evl.Connection connected addr=%q", addr)
	c.connected.emit(struct{}{})

	go c.readLoop(conn, done)
	return nil
}

// Send writes data to the socket byte for byte.
func (c *Connection) Send(data string) error {
	c.mu.Lock()
	conn := c.conn
	connected := c.state == StateConnected
	c.mu.Unlock()
	if !connected || conn == nil {
		return ErrNotConnected
	}

	c.logger.Tracef("evl.Connection send bytes=%d", len(data))

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	n, err := conn.Write([]byte(data))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteRejected, err)
	}
	if n != len(data) {
		return fmt.Errorf("%w: %w", ErrWriteRejected, io.ErrShortWrite)
	}
	return nil
}

// Disconnect closes the socket when connected and is a no-op otherwise.
// Disconnected(false) follows from the read goroutine.
func (c *Connection) Disconnect() error {
	c.mu.Lock()
	if c.state != StateConnected || c.conn == nil {
		c.mu.Unlock()
		return nil
	}
	c.closing = true
	conn := c.conn
	c.mu.Unlock()

	c.logger.Debugf("evl.Connection disconnect requested addr=%q", c.cfg.Address)
	return conn.Close()
}

// Done is closed when the current read goroutine exits. It is nil before
// the first successful Connect.
func (c *Connection) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

func (c *Connection) readLoop(conn net.Conn, done chan struct{}) {
	defer close(done)
	defer func() {
		if r := recover(); r != nil {
			c.logger.Errorf("evl.Connection read loop panic: %v\n%s", r, debug.Stack())
			c.handleClose(conn, true)
		}
	}()

	buf := make([]byte, c.cfg.ReadBufferSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			c.handleChunk(string(buf[:n]))
		}
		if err != nil {
			hadError := !errors.Is(err, io.EOF) && !c.closeRequested()
			if hadError {
				c.logger.Errorf("evl.Connection read addr=%q err=%v", c.cfg.Address, err)
			}
			c.handleClose(conn, hadError)
			return
		}
	}
}

// handleChunk decodes every complete segment of one read. A trailing
// fragment is dropped, not carried into the next read.
func (c *Connection) handleChunk(chunk string) {
	segments, fragment := frame.Split(chunk)
	for _, segment := range segments {
		payload, err := tpi.GetPayload(segment)
		if err != nil {
			observability.RecordDropped(observability.DropMalformed)
			c.logger.Errorf("evl.Connection dropped segment=%q err=%v", segment, err)
			continue
		}
		observability.RecordPacket(string(payload.Command))
		c.data.emit(payload)
	}
	if fragment != "" {
		observability.RecordDropped(observability.DropFragment)
		c.logger.Errorf("evl.Connection discarded unterminated fragment=%q", fragment)
	}
}

func (c *Connection) handleClose(conn net.Conn, hadError bool) {
	c.mu.Lock()
	if c.conn != conn {
		c.mu.Unlock()
		return
	}
	_ = conn.Close()
	c.conn = nil
	c.closing = false
	c.setStateLocked(StateDisconnected)
	c.mu.Unlock()

	c.logger.Infof("evl.Connection disconnected addr=%q had_error=%t", c.cfg.Address, hadError)
	c.disconnected.emit(hadError)
}

func (c *Connection) closeRequested() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closing
}

func (c *Connection) setStateLocked(s State) {
	c.state = s
	observability.SetConnectionState(int(s))
}
