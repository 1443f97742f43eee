// Package main runs the rucket command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattwparas/Rucket/internal/cli"
	"github.com/mattwparas/Rucket/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "rucket: %v\n", err)
		os.Exit(cli.ExitCommandError)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand(cfg)
	root.SilenceErrors = true
	err = root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rucket: %v\n", err)
	}
	stop()
	os.Exit(cli.GetExitCode(err))
}
