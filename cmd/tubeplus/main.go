// Package main is the entrypoint of tubeplus.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tubeplus/internal/cfg"
)

func main() {
	// Interrupts cancel every download before the process exits
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cfg.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "tubeplus exiting with error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}
