package main

import (
	"context"
	"os"
	"os/signal"

	"webbpsf/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Run(ctx, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
