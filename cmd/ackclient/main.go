// ackclient — test client for ackstream.
//
// Opens -n concurrent connections, performs the handshake on each, reads the
// declared payload and verifies its pattern. Exits non-zero if any fetch fails.
package main

import (
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"time"

	"github.com/1ureka/ackstream/internal/client"
	"github.com/1ureka/ackstream/internal/util"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	addr := flag.String("addr", "127.0.0.1:8080", "Server TCP address")
	wsURL := flag.String("ws", "", "Server WebSocket URL (e.g. ws://127.0.0.1:8081/ws); overrides -addr")
	count := flag.Int("n", 1, "Number of concurrent clients")
	firstID := flag.Int("id", 0, "Request id of the first client; each further client adds 1")
	timeout := flag.Duration("timeout", 30*time.Second, "Per-client time limit")
	debugMode := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *debugMode {
		util.EnableDebug()
	}
	if *count < 1 {
		util.LogError("invalid -n: must be at least 1")
		os.Exit(1)
	}

	var failed atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < *count; i++ {
		id := int32(*firstID + i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fetchOne(ctx, *addr, *wsURL, id, *timeout); err != nil {
				failed.Add(1)
				util.LogError("client %d: %v", id, err)
			}
		}()
	}
	wg.Wait()

	if n := failed.Load(); n > 0 {
		util.LogError("%d of %d clients failed", n, *count)
		os.Exit(1)
	}
	util.LogInfo("all %d clients verified", *count)
}

// fetchOne runs one client from dial to verified payload.
func fetchOne(ctx context.Context, addr, wsURL string, id int32, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		conn net.Conn
		err  error
	)
	if wsURL != "" {
		conn, err = client.DialWebSocket(ctx, wsURL)
	} else {
		conn, err = client.Dial(ctx, addr)
	}
	if err != nil {
		return err
	}
	defer conn.Close()

	res, err := client.Fetch(ctx, conn, id)
	if err != nil {
		return err
	}

	rate := float64(res.Received) / max(res.Elapsed.Seconds(), 1e-9)
	util.LogInfo("client %d: response id %d, received %d bytes in %v (%s/s)",
		id, res.Response.ID, res.Received, res.Elapsed.Round(time.Millisecond), util.FormatBytes(rate))
	return nil
}
