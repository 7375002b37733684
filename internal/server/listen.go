package server

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/1ureka/ackstream/internal/util"
)

// ErrNoBindableAddress is returned when every resolved candidate failed to
// create a socket or bind.
var ErrNoBindableAddress = errors.New("failed to bind socket")

// ListenError is a failure after a socket was created that ends the candidate
// search instead of moving on to the next address.
type ListenError struct {
	Op   string
	Addr string
	Err  error
}

func (e *ListenError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *ListenError) Unwrap() error { return e.Err }

// resolveCandidates returns the addresses to try, in order. An empty host
// yields the passive wildcard addresses, IPv4 first, as getaddrinfo orders
// them for AF_UNSPEC with AI_PASSIVE.
func resolveCandidates(ctx context.Context, host string) ([]net.IPAddr, error) {
	if host == "" {
		return []net.IPAddr{
			{IP: net.IPv4zero},
			{IP: net.IPv6unspecified},
		}, nil
	}

	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", host, err)
	}
	return addrs, nil
}

// Listen binds a TCP listener on port, trying each address host resolves to
// until one can be created and bound. SO_REUSEADDR is set before bind and
// the listener is opened with the given backlog.
func Listen(ctx context.Context, host string, port, backlog int) (net.Listener, error) {
	addrs, err := resolveCandidates(ctx, host)
	if err != nil {
		return nil, err
	}

	for _, addr := range addrs {
		ln, err := listenCandidate(addr, port, backlog)
		if err == nil {
			return ln, nil
		}

		var le *ListenError
		if errors.As(err, &le) {
			return nil, err
		}
		util.LogDebug("skipping %s: %v", addr.String(), err)
	}

	return nil, fmt.Errorf("%w on port %d", ErrNoBindableAddress, port)
}
