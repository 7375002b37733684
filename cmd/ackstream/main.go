// ackstream — transfer server entry point.
//
// Each client sends one handshake packet; the server answers with the payload
// size and streams that many bytes of a repeating A–Z pattern, then closes.
//
// Usage:
//
//	ackstream [flags] [payload-size]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/pterm/pterm"

	"github.com/1ureka/ackstream/internal/config"
	"github.com/1ureka/ackstream/internal/server"
	"github.com/1ureka/ackstream/internal/util"
)

var version = "dev"

func main() {
	// Root context — cancelled on Ctrl+C.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := config.Default()

	// CLI flags.
	flag.StringVar(&cfg.Host, "host", "", "Address to bind (default: all local addresses)")
	flag.IntVar(&cfg.Port, "port", config.DefaultPort, "TCP port to listen on, 0~65535")
	flag.IntVar(&cfg.PayloadSize, "size", config.DefaultPayloadSize, "Payload bytes sent to each client")
	flag.StringVar(&cfg.WSAddr, "ws", "", "Also serve the protocol over WebSocket on this address, e.g. :8081")
	flag.DurationVar(&cfg.StatsInterval, "stats", 0, "Log traffic statistics at this interval (0 disables)")
	flag.BoolVar(&cfg.Debug, "debug", false, "Enable debug logging")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [payload-size]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	// A positional size wins over -size.
	if flag.NArg() > 1 {
		flag.Usage()
		os.Exit(2)
	}
	if flag.NArg() == 1 {
		n, err := config.ParsePayloadSize(flag.Arg(0))
		if err != nil {
			util.LogError("%v", err)
			os.Exit(1)
		}
		cfg.PayloadSize = n
	}

	if cfg.Debug {
		util.EnableDebug()
	}

	pterm.Info.Println(fmt.Sprintf("ackstream — v%s", version))
	pterm.Println()

	srv, err := server.New(cfg)
	if err != nil {
		util.LogError("%v", err)
		os.Exit(1)
	}

	if err := srv.ListenAndServe(ctx); err != nil {
		util.LogError("%v", err)
		os.Exit(1)
	}

	util.LogInfo("server stopped")
}
