package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"image-workbench/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCmd(cli.NewRoot()).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
