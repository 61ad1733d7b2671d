// Command frontdesk is the hotel front desk command line.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"frontdesk/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
