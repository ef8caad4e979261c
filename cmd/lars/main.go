package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/axondata/go-lars/internal/cli"
	"github.com/axondata/go-lars/internal/iostreams"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := cli.Execute(ctx, iostreams.GetOSIOStreams())
	stop()
	os.Exit(int(code))
}
