package evl

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/evlctl/internal/testutil/testlog"
	"github.com/danmuck/evlctl/internal/tpi"
	"github.com/danmuck/evlctl/internal/tpi/frame"
)

const waitTimeout = 2 * time.Second

func packet(cmd tpi.Command, data string) string {
	return strings.TrimSuffix(tpi.EncodePacket(cmd, data), tpi.PacketTerminator)
}

// panelServer accepts one connection and hands it to serve.
func panelServer(t *testing.T, serve func(conn net.Conn)) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() {
		defer ln.Close()
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		serve(conn)
	}()
	return ln.Addr().String()
}

type recorder struct {
	payloads     chan tpi.Payload
	disconnected chan bool
}

func record(c *Connection) *recorder {
	r := &recorder{
		payloads:     make(chan tpi.Payload, 16),
		disconnected: make(chan bool, 1),
	}
	c.OnData(func(p tpi.Payload) { r.payloads <- p })
	c.OnDisconnected(func(hadError bool) { r.disconnected <- hadError })
	return r
}

func (r *recorder) nextPayload(t *testing.T) tpi.Payload {
	t.Helper()
	select {
	case p := <-r.payloads:
		return p
	case <-time.After(waitTimeout):
		t.Fatalf("timed out waiting for payload")
		return tpi.Payload{}
	}
}

func (r *recorder) nextDisconnect(t *testing.T) bool {
	t.Helper()
	select {
	case hadError := <-r.disconnected:
		return hadError
	case <-time.After(waitTimeout):
		t.Fatalf("timed out waiting for disconnect")
		return false
	}
}

func TestConnectionRequiresAddress(t *testing.T) {
	testlog.Start(t)
	c := NewConnection(ConnectionConfig{}, testlog.Logger(t))
	if err := c.Connect(context.Background()); !errors.Is(err, ErrAddressRequired) {
		t.Fatalf("expected ErrAddressRequired, got %v", err)
	}
}

func TestConnectionSendNotConnected(t *testing.T) {
	testlog.Start(t)
	c := NewConnection(ConnectionConfig{Address: "127.0.0.1:1"}, testlog.Logger(t))
	if err := c.Send("5000052A\r\n"); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
	if err := c.Disconnect(); err != nil {
		t.Fatalf("disconnect while idle should be a no-op, got %v", err)
	}
	if c.State() != StateIdle {
		t.Fatalf("unexpected state %s", c.State())
	}
}

func TestConnectionDialFailure(t *testing.T) {
	testlog.Start(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	c := NewConnection(ConnectionConfig{Address: addr, ConnectTimeout: 500 * time.Millisecond}, testlog.Logger(t))
	if err := c.Connect(context.Background()); err == nil {
		t.Fatalf("expected dial error")
	}
	if c.State() != StateDisconnected {
		t.Fatalf("unexpected state %s", c.State())
	}
}

func TestConnectionDecodesFramesAndReportsClose(t *testing.T) {
	testlog.Start(t)
	zoneOpen := packet(tpi.CommandZoneOpen, "004")
	armed := packet(tpi.CommandPartitionArmed, "10")

	addr := panelServer(t, func(conn net.Conn) {
		_, _ = conn.Write([]byte(frame.Join(zoneOpen, "609004FF", armed)))
	})

	c := NewConnection(ConnectionConfig{Address: addr}, testlog.Logger(t))
	connected := 0
	c.OnConnected(func() { connected++ })
	rec := record(c)

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if connected != 1 {
		t.Fatalf("expected one connected event, got %d", connected)
	}
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("second connect: %v", err)
	}

	first := rec.nextPayload(t)
	if first.Command != tpi.CommandZoneOpen || first.Data.Zone != "004" {
		t.Fatalf("unexpected first payload: %+v", first)
	}
	second := rec.nextPayload(t)
	if second.Command != tpi.CommandPartitionArmed || second.Data.Partition != 1 || second.Data.Value != "0" {
		t.Fatalf("unexpected second payload: %+v", second)
	}
	if hadError := rec.nextDisconnect(t); hadError {
		t.Fatalf("server close should not report an error")
	}
	if c.Connected() {
		t.Fatalf("connection still reports connected")
	}
	select {
	case p := <-rec.payloads:
		t.Fatalf("corrupted frame leaked through: %+v", p)
	default:
	}
}

func TestConnectionDiscardsFragments(t *testing.T) {
	testlog.Start(t)
	ack := packet(tpi.CommandAcknowledge, "000")
	poll := packet(tpi.CommandPoll, "")
	proceed := make(chan struct{})

	addr := panelServer(t, func(conn net.Conn) {
		// "609" + "001" + checksum would be a valid zone-open frame if the
		// fragment were joined with the next read.
		_, _ = conn.Write([]byte(frame.Join(ack) + "609"))
		<-proceed
		_, _ = conn.Write([]byte("001" + string(tpi.CalculateChecksum("609001")) + tpi.PacketTerminator + frame.Join(poll)))
	})

	c := NewConnection(ConnectionConfig{Address: addr}, testlog.Logger(t))
	rec := record(c)
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}

	if p := rec.nextPayload(t); p.Command != tpi.CommandAcknowledge {
		t.Fatalf("unexpected payload: %+v", p)
	}
	close(proceed)
	if p := rec.nextPayload(t); p.Command != tpi.CommandPoll {
		t.Fatalf("fragment was reassembled or poll lost: %+v", p)
	}
	rec.nextDisconnect(t)
}

func TestConnectionSendAndDisconnect(t *testing.T) {
	testlog.Start(t)
	received := make(chan string, 1)
	addr := panelServer(t, func(conn net.Conn) {
		line, err := bufio.NewReader(conn).ReadString('\n')
		if err != nil {
			return
		}
		received <- line
		_, _ = bufio.NewReader(conn).ReadString('\n')
	})

	c := NewConnection(ConnectionConfig{Address: addr}, testlog.Logger(t))
	rec := record(c)
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}

	want := tpi.MakeLoginPacket("user")
	if err := c.Send(want); err != nil {
		t.Fatalf("send: %v", err)
	}
	select {
	case got := <-received:
		if got != want {
			t.Fatalf("server got %q want %q", got, want)
		}
	case <-time.After(waitTimeout):
		t.Fatalf("timed out waiting for server read")
	}

	if err := c.Disconnect(); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	if hadError := rec.nextDisconnect(t); hadError {
		t.Fatalf("requested disconnect should not report an error")
	}
	<-c.Done()
	if c.State() != StateDisconnected {
		t.Fatalf("unexpected state %s", c.State())
	}
	if err := c.Send("5000052A\r\n"); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected after disconnect, got %v", err)
	}
}

// failingConn is one end of a pipe whose writes misbehave.
type failingConn struct {
	net.Conn
	short bool
}

func (f failingConn) Write(b []byte) (int, error) {
	if f.short {
		return len(b) - 1, nil
	}
	return 0, errors.New("socket buffer full")
}

func pipeDialer(short bool) (dialFunc, net.Conn) {
	client, server := net.Pipe()
	return func(context.Context, string, string) (net.Conn, error) {
		return failingConn{Conn: client, short: short}, nil
	}, server
}

func TestConnectionSendWriteRejected(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		name  string
		short bool
		cause error
	}{
		{name: "write error"},
		{name: "short write", short: true, cause: io.ErrShortWrite},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewConnection(ConnectionConfig{Address: "panel.test:4025"}, testlog.Logger(t))
			dial, server := pipeDialer(tc.short)
			defer server.Close()
			c.dial = dial
			rec := record(c)
			if err := c.Connect(context.Background()); err != nil {
				t.Fatalf("connect: %v", err)
			}

			err := c.Send(tpi.MakeLoginPacket("user"))
			if !errors.Is(err, ErrWriteRejected) {
				t.Fatalf("expected ErrWriteRejected, got %v", err)
			}
			if tc.cause != nil && !errors.Is(err, tc.cause) {
				t.Fatalf("expected %v in chain, got %v", tc.cause, err)
			}
			if c.State() != StateConnected {
				t.Fatalf("rejected write should not drop the socket, state=%s", c.State())
			}

			if err := c.Disconnect(); err != nil {
				t.Fatalf("disconnect: %v", err)
			}
			if hadError := rec.nextDisconnect(t); hadError {
				t.Fatalf("requested disconnect should not report an error")
			}
		})
	}
}

func TestConnectionPeerResetReportsError(t *testing.T) {
	testlog.Start(t)
	addr := panelServer(t, func(conn net.Conn) {
		if tcp, ok := conn.(*net.TCPConn); ok {
			_ = tcp.SetLinger(0)
		}
	})

	c := NewConnection(ConnectionConfig{Address: addr}, testlog.Logger(t))
	rec := record(c)
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if hadError := rec.nextDisconnect(t); !hadError {
		t.Fatalf("connection reset should report hadError=true")
	}
	<-c.Done()
	if c.State() != StateDisconnected {
		t.Fatalf("unexpected state %s", c.State())
	}
}

func TestClientHandshakeOverConnection(t *testing.T) {
	testlog.Start(t)
	loginLine := make(chan string, 1)
	addr := panelServer(t, func(conn net.Conn) {
		_, _ = conn.Write([]byte(frame.Join(packet(tpi.CommandLogin, tpi.LoginPasswordRequest))))
		line, err := bufio.NewReader(conn).ReadString('\n')
		if err != nil {
			return
		}
		loginLine <- line
		_, _ = conn.Write([]byte(frame.Join(packet(tpi.CommandLogin, tpi.LoginSuccess))))
	})

	conn := NewConnection(ConnectionConfig{Address: addr}, testlog.Logger(t))
	client := NewClient(conn, "user", testlog.Logger(t))
	commands := make(chan tpi.Payload, 4)
	disconnected := make(chan bool, 1)
	client.OnCommand(func(p tpi.Payload) { commands <- p })
	client.OnDisconnected(func(hadError bool) { disconnected <- hadError })

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}

	select {
	case line := <-loginLine:
		if line != tpi.MakeLoginPacket("user") {
			t.Fatalf("unexpected login line %q", line)
		}
	case <-time.After(waitTimeout):
		t.Fatalf("timed out waiting for login")
	}

	for _, want := range []string{tpi.LoginPasswordRequest, tpi.LoginSuccess} {
		select {
		case p := <-commands:
			if p.Command != tpi.CommandLogin || p.Data.Value != want {
				t.Fatalf("unexpected command %+v want value %q", p, want)
			}
		case <-time.After(waitTimeout):
			t.Fatalf("timed out waiting for login command %q", want)
		}
	}

	select {
	case hadError := <-disconnected:
		if hadError {
			t.Fatalf("unexpected error disconnect")
		}
	case <-time.After(waitTimeout):
		t.Fatalf("timed out waiting for disconnect")
	}
}
