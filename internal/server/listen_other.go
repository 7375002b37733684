//go:build !linux

package server

import (
	"context"
	"net"
	"strconv"
)

// listenCandidate falls back to the runtime's listener, which sets
// SO_REUSEADDR on unix platforms and sizes the backlog itself.
func listenCandidate(addr net.IPAddr, port, _ int) (net.Listener, error) {
	var lc net.ListenConfig
	return lc.Listen(context.Background(), "tcp", net.JoinHostPort(addr.String(), strconv.Itoa(port)))
}
