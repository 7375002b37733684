package server

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/1ureka/ackstream/internal/transport"
	"github.com/1ureka/ackstream/internal/util"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WebSocketHandler serves the same protocol on GET /ws, one binary
// message stream per connection.
func (s *Server) WebSocketHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		util.LogDebug("websocket upgrade from %s failed: %v", r.RemoteAddr, err)
		return
	}

	s.stats.AddAccepted()
	s.HandleConn(transport.NewWSConn(ws))
}

// serveWS runs the WebSocket endpoint on ln until ctx is cancelled.
func (s *Server) serveWS(ctx context.Context, ln net.Listener) {
	srv := &http.Server{
		Handler:           s.WebSocketHandler(),
		ReadHeaderTimeout: s.cfg.HandshakeTimeout,
	}
	stop := context.AfterFunc(ctx, func() { srv.Close() })
	defer stop()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		util.LogError("websocket endpoint stopped: %v", err)
	}
}
