package util

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pterm/pterm"
)

// Stats counts connections and bytes for one server. All fields are safe
// for concurrent use by handler goroutines.
type Stats struct {
	Accepted  atomic.Int64 // connections handed to a handler
	Completed atomic.Int64 // transfers that sent the whole payload
	Failed    atomic.Int64 // connections abandoned on any error
	BytesSent atomic.Int64 // payload bytes written, including partial transfers
}

func (s *Stats) AddAccepted()  { s.Accepted.Add(1) }
func (s *Stats) AddCompleted() { s.Completed.Add(1) }
func (s *Stats) AddFailed()    { s.Failed.Add(1) }
func (s *Stats) AddSent(n int) { s.BytesSent.Add(int64(n)) }

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	Accepted, Completed, Failed, BytesSent int64
}

func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Accepted:  s.Accepted.Load(),
		Completed: s.Completed.Load(),
		Failed:    s.Failed.Load(),
		BytesSent: s.BytesSent.Load(),
	}
}

// StartStatsReporter logs traffic deltas every interval, skipping idle
// intervals. It stops when ctx is cancelled; interval <= 0 disables it.
func StartStatsReporter(ctx context.Context, s *Stats, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var prev Snapshot
		for {
			select {
			case <-ticker.C:
				cur := s.Snapshot()
				if line, active := formatStats(prev, cur, interval); active {
					pterm.DefaultLogger.Info(line)
				}
				prev = cur

			case <-ctx.Done():
				return
			}
		}
	}()
}

var byteUnits = []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB"}

// FormatBytes renders a byte count in exactly 8 characters,
// e.g. "99.0   B", " 1.5 KiB", "98.9 GiB".
func FormatBytes(b float64) string {
	unitIdx := 0

	// keep below 100 so "100.0 KiB" never widens the column
	for b > 99 && unitIdx < len(byteUnits)-1 {
		b /= 1024
		unitIdx++
	}

	return fmt.Sprintf("%4.1f %3s", b, byteUnits[unitIdx])
}

// formatStats reports the change between two snapshots and whether
// anything happened in between.
func formatStats(prev, cur Snapshot, interval time.Duration) (string, bool) {
	accepted := cur.Accepted - prev.Accepted
	completed := cur.Completed - prev.Completed
	failed := cur.Failed - prev.Failed
	sent := cur.BytesSent - prev.BytesSent

	active := accepted > 0 || completed > 0 || failed > 0 || sent > 0
	rate := float64(sent) / interval.Seconds()

	return fmt.Sprintf("Out: %s/s | Conn: %2d↑ %2d✓ %2d✗",
		FormatBytes(rate),
		accepted,
		completed,
		failed,
	), active
}
