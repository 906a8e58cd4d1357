package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hongminglow/medtour-be/internal/cli"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := cli.ExecuteContext(ctx, version); err != nil {
		os.Exit(1)
	}
}
