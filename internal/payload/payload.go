// Package payload builds and checks the byte sequence streamed to clients.
//
// Byte i of a payload is 'A' + i%26, so a receiver can verify integrity
// without a checksum field.
package payload

import (
	"errors"
	"fmt"
)

// ErrCorrupt is returned by Verify when a byte does not match the pattern.
var ErrCorrupt = errors.New("payload corrupt")

// At returns the expected byte at stream offset i.
func At(i int) byte {
	return byte(i%26) + 'A'
}

// Generate returns n bytes of the repeating alphabet pattern.
// The result must be treated as read-only once shared between connections.
func Generate(n int) []byte {
	if n < 0 {
		n = 0
	}
	data := make([]byte, n)
	for i := range data {
		data[i] = At(i)
	}
	return data
}

// Verify checks b against the pattern, where b[0] sits at stream offset
// offset. The error names the first mismatching offset.
func Verify(b []byte, offset int) error {
	for i, c := range b {
		if want := At(offset + i); c != want {
			return fmt.Errorf("%w at offset %d: got %q, want %q", ErrCorrupt, offset+i, c, want)
		}
	}
	return nil
}
