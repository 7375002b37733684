// Package util provides logging, connection tagging and traffic statistics
// shared by the server and client.
package util

import (
	"hash/fnv"
	"net"
)

// ConnID hashes a connection's local and remote addresses into a 4-byte tag
// for log lines. It identifies, it does not authenticate.
func ConnID(conn net.Conn) uint32 {
	h := fnv.New32a()
	if addr := conn.LocalAddr(); addr != nil {
		h.Write([]byte(addr.String()))
	}
	if addr := conn.RemoteAddr(); addr != nil {
		h.Write([]byte(addr.String()))
	}
	return h.Sum32()
}
