// Package server implements the handshake-then-transfer server: one accept
// loop that hands every connection to its own handler goroutine.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/1ureka/ackstream/internal/config"
	"github.com/1ureka/ackstream/internal/payload"
	"github.com/1ureka/ackstream/internal/util"
)

// Accept retry backoff bounds.
const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = 1 * time.Second
)

// Server holds the immutable payload and counters shared by every handler.
// Handlers read payload concurrently; nothing writes it after New.
type Server struct {
	cfg     config.Config
	payload []byte
	stats   *util.Stats
}

// New validates cfg and builds the payload buffer.
func New(cfg config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Server{
		cfg:     cfg,
		payload: payload.Generate(cfg.PayloadSize),
		stats:   &util.Stats{},
	}, nil
}

// Stats returns the server's live counters.
func (s *Server) Stats() *util.Stats { return s.stats }

// ListenAndServe binds the TCP listener (and the WebSocket listener when
// configured) and serves until ctx is cancelled. Bind and listen failures
// are returned before any connection is accepted.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ln, err := Listen(ctx, s.cfg.Host, s.cfg.Port, config.ConnectionQueueSize)
	if err != nil {
		return err
	}

	if s.cfg.WSAddr != "" {
		wsLn, err := net.Listen("tcp", s.cfg.WSAddr)
		if err != nil {
			ln.Close()
			return fmt.Errorf("failed to listen on %s: %w", s.cfg.WSAddr, err)
		}
		util.LogInfo("websocket endpoint on ws://%s/ws", wsLn.Addr())
		go s.serveWS(ctx, wsLn)
	}

	util.StartStatsReporter(ctx, s.stats, s.cfg.StatsInterval)
	util.LogInfo("server is ready on %s (%d payload bytes per client)", ln.Addr(), len(s.payload))

	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, spawning one
// handler goroutine per connection without waiting on it. Accept errors
// are logged and retried. Serve closes ln on return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()
	defer ln.Close()

	var delay time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil // normal shutdown
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("accept error: %w", err)
			}

			delay = nextAcceptDelay(delay)
			util.LogWarning("failed to accept connection request: %v (retrying in %v)", err, delay)
			time.Sleep(delay)
			continue
		}
		delay = 0

		s.stats.AddAccepted()
		go s.HandleConn(conn)
	}
}

func nextAcceptDelay(d time.Duration) time.Duration {
	if d == 0 {
		return minAcceptDelay
	}
	return min(d*2, maxAcceptDelay)
}
