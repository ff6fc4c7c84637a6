package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// newCommandContext returns a context cancelled on SIGINT or SIGTERM, which
// also kills a running lsblk child.
func newCommandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
