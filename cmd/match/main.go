// Package main provides a CLI that plays rock-paper-scissors matches between
// two opponent-modeling policies.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	matchcmd "github.com/louisbranch/roshambo/internal/cmd/match"
	entrypoint "github.com/louisbranch/roshambo/internal/platform/cmd"
	"github.com/louisbranch/roshambo/internal/platform/config"
)

func main() {
	log.SetPrefix(entrypoint.LogPrefix(entrypoint.ServiceMatch))
	cfg, err := matchcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := matchcmd.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		entrypoint.Fail(err)
	}
}
