// Package main starts the proposals gRPC service process lifecycle.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	proposalscmd "github.com/louisbranch/proposals/internal/cmd/proposals"
)

func main() {
	cfg, err := proposalscmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		slog.Error("parse flags", "error", err)
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := proposalscmd.Run(ctx, cfg); err != nil {
		slog.Error("failed to serve", "error", err)
		os.Exit(1)
	}
}
