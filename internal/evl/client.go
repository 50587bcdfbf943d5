package evl

import (
	"context"

	"github.com/danmuck/evlctl/internal/logging"
	"github.com/danmuck/evlctl/internal/observability"
	"github.com/danmuck/evlctl/internal/tpi"
)

// Conn is the connection surface the Client drives. *Connection satisfies it.
type Conn interface {
	Connected() bool
	Connect(ctx context.Context) error
	Disconnect() error
	Send(data string) error
	OnData(fn func(tpi.Payload)) Subscription
	OnDisconnected(fn func(hadError bool)) Subscription
}

// Client runs the login handshake on top of a Conn and re-emits every
// payload and disconnect to its own subscribers.
type Client struct {
	conn     Conn
	password string
	logger   logging.Logger

	commands     emitter[tpi.Payload]
	disconnected emitter[bool]
}

// NewClient subscribes to conn immediately; events that arrive before any
// Client subscriber exists are still handled by the login logic.
func NewClient(conn Conn, password string, logger logging.Logger) *Client {
	if logger == nil {
		logger = logging.Nop()
	}
	c := &Client{
		conn:     conn,
		password: password,
		logger:   logger,
	}
	conn.OnData(c.handleData)
	conn.OnDisconnected(c.handleDisconnected)
	return c
}

func (c *Client) Connected() bool {
	return c.conn.Connected()
}

// Connect delegates to the connection unless it is already connected.
func (c *Client) Connect(ctx context.Context) error {
	if c.conn.Connected() {
		return nil
	}
	return c.conn.Connect(ctx)
}

func (c *Client) Disconnect() error {
	return c.conn.Disconnect()
}

func (c *Client) Send(data string) error {
	if !c.conn.Connected() {
		return ErrNotConnected
	}
	return c.conn.Send(data)
}

// OnCommand registers fn for every decoded payload, login traffic included.
func (c *Client) OnCommand(fn func(tpi.Payload)) Subscription {
	return c.commands.subscribe(fn)
}

func (c *Client) OnDisconnected(fn func(hadError bool)) Subscription {
	return c.disconnected.subscribe(fn)
}

func (c *Client) Unsubscribe(id Subscription) bool {
	return c.commands.unsubscribe(id) || c.disconnected.unsubscribe(id)
}

func (c *Client) handleData(p tpi.Payload) {
	c.logger.Debugf("evl.Client received command=%s data=%+v", p.Command, p.Data)

	if p.Command == tpi.CommandLogin {
		c.handleLogin(p)
	}

	c.commands.emit(p)
}

func (c *Client) handleLogin(p tpi.Payload) {
	switch p.Data.Value {
	case tpi.LoginPasswordRequest:
		observability.RecordLoginResponse("password_request")
		c.logger.Infof("evl.Client password requested, sending login")
		if err := c.Send(tpi.MakeLoginPacket(c.password)); err != nil {
			c.logger.Errorf("evl.Client send login err=%v", err)
		}
	case tpi.LoginTimeout:
		observability.RecordLoginResponse("timeout")
		c.logger.Errorf("evl.Client login timed out")
	case tpi.LoginFailed:
		observability.RecordLoginResponse("failed")
		c.logger.Errorf("evl.Client login failed")
	case tpi.LoginSuccess:
		observability.RecordLoginResponse("success")
		c.logger.Infof("evl.Client login succeeded")
	default:
		observability.RecordLoginResponse("unknown")
		c.logger.Warnf("evl.Client unknown login response value=%q", p.Data.Value)
	}
}

func (c *Client) handleDisconnected(hadError bool) {
	c.logger.Infof("evl.Client disconnected had_error=%t", hadError)
	c.disconnected.emit(hadError)
}
