package server

import (
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/pterm/pterm"

	"github.com/1ureka/ackstream/internal/protocol"
	"github.com/1ureka/ackstream/internal/util"
)

// errZeroWrite reports a Write that sent nothing and returned no error.
var errZeroWrite = errors.New("write sent 0 bytes")

// HandleConn runs the full protocol on conn and closes it on every path.
// Failures are logged and counted; nothing is returned to the caller.
//
// Writes to a peer that has gone away fail with EPIPE or ECONNRESET: the Go
// runtime ignores SIGPIPE on sockets, so no write can kill the process.
func (s *Server) HandleConn(conn net.Conn) {
	defer conn.Close()

	id := util.ConnID(conn)
	util.ConnLog(id, pterm.LogLevelDebug, "received request from %s", conn.RemoteAddr())

	if err := s.serveConn(id, conn); err != nil {
		s.stats.AddFailed()
		util.ConnLog(id, pterm.LogLevelError, "%v", err)
		return
	}

	s.stats.AddCompleted()
	util.ConnLog(id, pterm.LogLevelDebug, "client handled")
}

// serveConn is handshake read → response → payload transfer. The first
// failure ends the exchange.
func (s *Server) serveConn(id uint32, conn net.Conn) error {
	req, err := readHandshake(conn, s.cfg.HandshakeTimeout)
	if err != nil {
		return fmt.Errorf("did not read client hello message: %w", err)
	}
	util.ConnLog(id, pterm.LogLevelInfo, "packet ID: %d, type: %s", req.ID, req.Type)
	if req.Type != protocol.Request {
		util.ConnLog(id, pterm.LogLevelWarn, "expected %s, answering %s anyway", protocol.Request, req.Type)
	}

	resp := protocol.Reply(req, int32(len(s.payload)))
	if err := protocol.WritePacket(conn, resp); err != nil {
		// Nothing after a failed acknowledgment can succeed; stop here.
		return fmt.Errorf("failed to send acknowledgment message to client: %w", err)
	}
	util.ConnLog(id, pterm.LogLevelDebug, "message acknowledged, sending %d bytes", len(s.payload))

	sent, err := s.sendPayload(id, conn)
	if err != nil {
		return fmt.Errorf("data packet failed to send to client after %d of %d bytes: %w", sent, len(s.payload), err)
	}
	util.ConnLog(id, pterm.LogLevelInfo, "sent %d bytes", sent)
	return nil
}

// readHandshake reads exactly one packet under a single deadline covering
// the whole read, then clears the deadline.
func readHandshake(conn net.Conn, timeout time.Duration) (protocol.Packet, error) {
	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return protocol.NewPacket(), err
	}
	pkt, err := protocol.ReadPacket(conn)
	if err != nil {
		return pkt, err
	}
	if err := conn.SetReadDeadline(time.Time{}); err != nil {
		return pkt, err
	}
	return pkt, nil
}

// sendPayload writes the unsent suffix of the payload until all of it is
// out. A write that errors or sends nothing abandons the transfer.
func (s *Server) sendPayload(id uint32, w io.Writer) (int, error) {
	total := 0
	for total < len(s.payload) {
		n, err := w.Write(s.payload[total:])
		if n > 0 {
			total += n
			s.stats.AddSent(n)
			util.ConnLog(id, pterm.LogLevelDebug, "sent data packet: %d", n)
		}
		if err != nil {
			return total, err
		}
		if n <= 0 {
			return total, errZeroWrite
		}
	}
	return total, nil
}
