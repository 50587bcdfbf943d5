package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danmuck/evlctl/internal/evl"
	"github.com/danmuck/evlctl/internal/logging"
	"github.com/danmuck/evlctl/internal/notify"
	"github.com/danmuck/evlctl/internal/observability"
	"github.com/danmuck/evlctl/internal/server"
)

const drainTimeout = 2 * time.Second

// errPanelDropped reports a connection the panel side closed with an error.
var errPanelDropped = errors.New("panel connection lost")

func main() {
	logging.ConfigureRuntime()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "evlctl: %v\n", err)
		os.Exit(1)
	}
}

// run wires config, logging, the panel session, notifiers and the status
// server, then blocks until ctx ends or the panel disconnects.
func run(ctx context.Context, args []string, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, err := logging.New("evlctl", cfg.Logging)
	if err != nil {
		return err
	}
	defer logger.Close()

	notifiers, err := notify.FromDestinations(cfg.Notifiers, cfg.Labels())
	if err != nil {
		return err
	}
	broadcaster := notify.NewBroadcaster(notifiers...)
	observability.RegisterMetrics()

	parent := ctx
	ctx, cancel := context.WithCancelCause(parent)
	defer cancel(nil)

	conn := evl.NewConnection(cfg.ConnectionConfig(), logger)
	client := evl.NewClient(conn, cfg.Password, logger)
	client.OnCommand(broadcaster.Notify)
	client.OnDisconnected(func(hadError bool) {
		broadcaster.Disconnect(hadError)
		if hadError {
			cancel(errPanelDropped)
			return
		}
		cancel(nil)
	})

	serverDone := make(chan error, 1)
	if cfg.Status.Addr != "" {
		tracker := server.NewTracker(server.TrackerConfig{
			Labels:      cfg.Labels(),
			EventBuffer: cfg.Status.EventBuffer,
			LastSeenTTL: cfg.Status.LastSeenTTL,
			Connected:   client.Connected,
		})
		tracker.Attach(client)
		status := server.New(server.Config{
			Addr:        cfg.Status.Addr,
			CorsOrigins: cfg.Status.CorsOrigins,
			Token:       cfg.Status.Token,
		}, tracker, logger.Zerolog())
		go func() { serverDone <- status.Run(ctx) }()
	} else {
		serverDone <- nil
	}

	logger.Infof("evlctl connecting addr=%s notifiers=%d", cfg.Address(), broadcaster.Count())
	if err := client.Connect(ctx); err != nil {
		// A signal that lands mid-dial is a shutdown, not a failure.
		if parent.Err() != nil {
			cancel(nil)
			<-serverDone
			logger.Infof("evlctl stopped while connecting")
			return nil
		}
		cancel(err)
		<-serverDone
		return err
	}

	<-ctx.Done()
	if err := client.Disconnect(); err != nil {
		logger.Warnf("evlctl disconnect err=%v", err)
	}
	select {
	case <-conn.Done():
	case <-time.After(drainTimeout):
		logger.Warnf("evlctl read loop did not exit within %s", drainTimeout)
	}
	if err := <-serverDone; err != nil {
		return fmt.Errorf("status server: %w", err)
	}

	if cause := context.Cause(ctx); errors.Is(cause, errPanelDropped) {
		return cause
	}
	return nil
}
