// Package config holds the server configuration passed in at startup.
package config

import (
	"errors"
	"fmt"
	"math"
	"net"
	"strconv"
	"time"
)

// Protocol and listener constants.
const (
	DefaultPort         = 8080
	DefaultPayloadSize  = 1_000_000
	ConnectionQueueSize = 10              // pending-connection backlog
	HandshakeTimeout    = 1 * time.Second // whole-read deadline for the handshake
)

// Config stores everything the server needs; it is built once and never
// mutated after the server starts.
type Config struct {
	Host        string // empty binds every local address (passive)
	Port        int    // 0 picks a free port
	PayloadSize int    // bytes streamed to each client
	Debug       bool

	// WSAddr enables the WebSocket listener (e.g. ":8081") when non-empty.
	WSAddr string

	// StatsInterval is how often traffic counters are logged; 0 disables.
	StatsInterval time.Duration

	HandshakeTimeout time.Duration
}

// Default returns the configuration used when no flags are given.
func Default() Config {
	return Config{
		Port:             DefaultPort,
		PayloadSize:      DefaultPayloadSize,
		HandshakeTimeout: HandshakeTimeout,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be 0~65535", c.Port)
	}
	if c.PayloadSize < 0 {
		return fmt.Errorf("invalid payload size %d: must not be negative", c.PayloadSize)
	}
	// The size travels as an int32 in the response packet.
	if c.PayloadSize > math.MaxInt32 {
		return fmt.Errorf("invalid payload size %d: exceeds %d", c.PayloadSize, math.MaxInt32)
	}
	if c.HandshakeTimeout <= 0 {
		return errors.New("handshake timeout must be positive")
	}
	if c.StatsInterval < 0 {
		return errors.New("stats interval must not be negative")
	}
	return nil
}

// Addr returns the host:port the TCP listener will bind.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ParsePayloadSize parses a positional payload-size argument.
func ParsePayloadSize(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid payload size %q: %w", raw, err)
	}
	return n, nil
}
