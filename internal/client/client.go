// Package client is the receiving side of the transfer protocol: it sends
// the handshake, reads the declared payload and checks its pattern.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/gorilla/websocket"

	"github.com/1ureka/ackstream/internal/payload"
	"github.com/1ureka/ackstream/internal/protocol"
	"github.com/1ureka/ackstream/internal/transport"
)

// ErrUnexpectedResponse is returned when the server's reply is not a
// RESPONSE correlated with our request.
var ErrUnexpectedResponse = errors.New("unexpected response")

const readBufferSize = 32 * 1024

// Result describes one completed fetch.
type Result struct {
	Response protocol.Packet
	Received int // payload bytes read and verified
	Elapsed  time.Duration
}

// Dial opens a TCP connection to addr.
func Dial(ctx context.Context, addr string) (net.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	return conn, nil
}

// DialWebSocket connects to a server's /ws endpoint and returns it as a
// byte-stream connection.
func DialWebSocket(ctx context.Context, url string) (net.Conn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to WS server: %w", err)
	}
	return transport.NewWSConn(ws), nil
}

// Handshake sends REQUEST{id} and returns the validated RESPONSE.
func Handshake(conn net.Conn, id int32) (protocol.Packet, error) {
	req := protocol.Packet{ID: id, Type: protocol.Request}
	if err := protocol.WritePacket(conn, req); err != nil {
		return protocol.NewPacket(), fmt.Errorf("failed to send request: %w", err)
	}

	resp, err := protocol.ReadPacket(conn)
	if err != nil {
		return resp, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.Type != protocol.Response:
		return resp, fmt.Errorf("%w: type %s", ErrUnexpectedResponse, resp.Type)
	case resp.ID != id+1:
		return resp, fmt.Errorf("%w: id %d for request %d", ErrUnexpectedResponse, resp.ID, id)
	case resp.PayloadSize < 0:
		return resp, fmt.Errorf("%w: payload size %d", ErrUnexpectedResponse, resp.PayloadSize)
	}
	return resp, nil
}

// Receive reads exactly size payload bytes from r, verifying each chunk
// against the pattern as it arrives. It returns the count verified.
func Receive(r io.Reader, size int) (int, error) {
	buf := make([]byte, readBufferSize)
	total := 0
	for total < size {
		n, err := r.Read(buf[:min(len(buf), size-total)])
		if n > 0 {
			if verr := payload.Verify(buf[:n], total); verr != nil {
				return total, verr
			}
			total += n
		}
		if err != nil {
			if errors.Is(err, io.EOF) && total < size {
				err = io.ErrUnexpectedEOF
			}
			return total, fmt.Errorf("stream ended after %d of %d payload bytes: %w", total, size, err)
		}
	}
	return total, nil
}

// Fetch runs one full exchange on conn. Cancelling ctx aborts any blocked
// read or write. The caller still owns and closes conn.
func Fetch(ctx context.Context, conn net.Conn, id int32) (*Result, error) {
	stop := context.AfterFunc(ctx, func() { conn.SetDeadline(time.Now()) })
	defer stop()

	start := time.Now()
	res, err := fetch(conn, id)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, fmt.Errorf("%w: %v", ctxErr, err)
		}
		return res, err
	}
	res.Elapsed = time.Since(start)
	return res, nil
}

func fetch(conn net.Conn, id int32) (*Result, error) {
	resp, err := Handshake(conn, id)
	if err != nil {
		return nil, err
	}

	res := &Result{Response: resp}
	res.Received, err = Receive(conn, int(resp.PayloadSize))
	if err != nil {
		return res, err
	}
	return res, nil
}
