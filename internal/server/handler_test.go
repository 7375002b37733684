package server

import (
	"bytes"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/1ureka/ackstream/internal/config"
	"github.com/1ureka/ackstream/internal/payload"
	"github.com/1ureka/ackstream/internal/protocol"
)

var errBoom = errors.New("boom")

// scriptedConn is an in-memory net.Conn whose writes can be split or made to
// fail on a chosen call.
type scriptedConn struct {
	r io.Reader

	chunk     int  // cap on bytes per write after the first; 0 = no cap
	failOn    int  // 1-based write call that fails; 0 = never
	zeroWrite bool // payload writes send nothing and report no error

	writes  int
	written bytes.Buffer
	closed  int
}

func (c *scriptedConn) Read(p []byte) (int, error) { return c.r.Read(p) }

func (c *scriptedConn) Write(p []byte) (int, error) {
	c.writes++
	if c.writes == c.failOn {
		return 0, errBoom
	}
	n := len(p)
	if c.writes > 1 {
		if c.zeroWrite {
			return 0, nil
		}
		if c.chunk > 0 && n > c.chunk {
			n = c.chunk
		}
	}
	c.written.Write(p[:n])
	return n, nil
}

func (c *scriptedConn) Close() error                     { c.closed++; return nil }
func (c *scriptedConn) LocalAddr() net.Addr              { return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 8080} }
func (c *scriptedConn) RemoteAddr() net.Addr             { return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 50000} }
func (c *scriptedConn) SetDeadline(time.Time) error      { return nil }
func (c *scriptedConn) SetReadDeadline(time.Time) error  { return nil }
func (c *scriptedConn) SetWriteDeadline(time.Time) error { return nil }

func newScriptedConn(req protocol.Packet) *scriptedConn {
	return &scriptedConn{r: bytes.NewReader(protocol.Encode(req))}
}

func newTestServer(t *testing.T, size int) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.PayloadSize = size
	srv, err := New(cfg)
	require.NoError(t, err)
	return srv
}

// TestHandleConnPartialWrites verifies short writes are resumed from the
// unsent suffix until the whole payload is out.
func TestHandleConnPartialWrites(t *testing.T) {
	srv := newTestServer(t, 100)
	conn := newScriptedConn(protocol.Packet{ID: 5, Type: protocol.Request})
	conn.chunk = 7

	srv.HandleConn(conn)

	out := conn.written.Bytes()
	require.Len(t, out, protocol.PacketSize+100)

	resp, err := protocol.Decode(out)
	require.NoError(t, err)
	require.Equal(t, protocol.Packet{ID: 6, Type: protocol.Response, PayloadSize: 100}, resp)
	require.Equal(t, payload.Generate(100), out[protocol.PacketSize:])

	require.Equal(t, 1+15, conn.writes) // header + ceil(100/7)
	require.Equal(t, 1, conn.closed)
	require.EqualValues(t, 1, srv.Stats().Completed.Load())
	require.EqualValues(t, 100, srv.Stats().BytesSent.Load())
}

// TestHandleConnAckFailureAborts verifies a failed acknowledgment ends the
// exchange: no payload write is attempted.
func TestHandleConnAckFailureAborts(t *testing.T) {
	srv := newTestServer(t, 100)
	conn := newScriptedConn(protocol.Packet{ID: 5, Type: protocol.Request})
	conn.failOn = 1

	srv.HandleConn(conn)

	require.Equal(t, 1, conn.writes)
	require.Zero(t, conn.written.Len())
	require.Equal(t, 1, conn.closed)
	require.EqualValues(t, 1, srv.Stats().Failed.Load())
	require.Zero(t, srv.Stats().BytesSent.Load())
}

// TestHandleConnWriteErrorMidTransfer verifies the transfer is abandoned on
// the first failing write without retrying it.
func TestHandleConnWriteErrorMidTransfer(t *testing.T) {
	srv := newTestServer(t, 100)
	conn := newScriptedConn(protocol.Packet{ID: 5, Type: protocol.Request})
	conn.chunk = 10
	conn.failOn = 4

	srv.HandleConn(conn)

	require.Equal(t, 4, conn.writes)
	require.Equal(t, 1, conn.closed)
	require.EqualValues(t, 20, srv.Stats().BytesSent.Load())
	require.EqualValues(t, 1, srv.Stats().Failed.Load())
	require.Zero(t, srv.Stats().Completed.Load())
}

func TestHandleConnZeroWrite(t *testing.T) {
	srv := newTestServer(t, 100)
	conn := newScriptedConn(protocol.Packet{ID: 5, Type: protocol.Request})
	conn.zeroWrite = true

	srv.HandleConn(conn)

	require.Equal(t, 2, conn.writes)
	require.Equal(t, 1, conn.closed)
	require.EqualValues(t, 1, srv.Stats().Failed.Load())
}

// TestHandleConnTruncatedRequest verifies nothing is written for a request
// that ends before a full packet arrives.
func TestHandleConnTruncatedRequest(t *testing.T) {
	srv := newTestServer(t, 100)
	conn := &scriptedConn{r: bytes.NewReader(protocol.Encode(protocol.Packet{ID: 5})[:5])}

	srv.HandleConn(conn)

	require.Zero(t, conn.writes)
	require.Equal(t, 1, conn.closed)
	require.EqualValues(t, 1, srv.Stats().Failed.Load())
}

// TestHandleConnNonRequestType mirrors the reference server, which answers
// whatever type the client sent.
func TestHandleConnNonRequestType(t *testing.T) {
	srv := newTestServer(t, 3)
	conn := newScriptedConn(protocol.Packet{ID: 0, Type: protocol.BadMessage})

	srv.HandleConn(conn)

	require.Len(t, conn.written.Bytes(), protocol.PacketSize+3)
	require.EqualValues(t, 1, srv.Stats().Completed.Load())
}
