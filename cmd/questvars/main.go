// Questvars plays Lua-authored dialogue content against a quest variable
// tree, and validates or migrates that content and its saves.
// Usage: questvars [--plain] [--script <file>] [--trace] <content_dir>
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
