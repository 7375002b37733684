package util

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormatBytesWidth(t *testing.T) {
	testCases := []struct {
		in   float64
		want string
	}{
		{0, " 0.0   B"},
		{99, "99.0   B"},
		{1536, " 1.5 KiB"},
		{100 * 1024, " 0.1 MiB"},
	}

	for _, tc := range testCases {
		got := FormatBytes(tc.in)
		require.Equal(t, tc.want, got)
		require.Len(t, got, 8)
	}
}

func TestFormatStatsIdle(t *testing.T) {
	snap := Snapshot{Accepted: 3, Completed: 2, Failed: 1, BytesSent: 500}
	_, active := formatStats(snap, snap, time.Second)
	require.False(t, active)
}

func TestFormatStatsDelta(t *testing.T) {
	var s Stats
	s.AddAccepted()
	s.AddAccepted()
	s.AddCompleted()
	s.AddFailed()
	s.AddSent(2048)

	line, active := formatStats(Snapshot{}, s.Snapshot(), 2*time.Second)
	require.True(t, active)
	require.Equal(t, "Out:  1.0 KiB/s | Conn:  2↑  1✓  1✗", line)
}

func TestConnIDStable(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	require.Equal(t, ConnID(a), ConnID(a))
}
