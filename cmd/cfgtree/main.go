// Package main is the entry point for the cfgtree CLI.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/thoreinstein/cfgtree/cmd/cfgtree/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := commands.Execute(ctx)
	stop()
	os.Exit(code)
}
