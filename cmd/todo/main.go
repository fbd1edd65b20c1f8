// Command todo is the CLI entrypoint.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nibzard/todo-cli/cmd"
	"github.com/nibzard/todo-cli/internal/ui"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	code := exitCode(ctx, cmd.Run(ctx, os.Args[1:]))
	cancel()
	os.Exit(code)
}

// exitCode maps the result of a run to the process exit status: 0 on
// success, 130 when interrupted or a prompt was cancelled, 1 otherwise.
func exitCode(ctx context.Context, err error) int {
	switch {
	case err == nil:
		return 0
	case ctx.Err() != nil:
		fmt.Fprintln(os.Stderr, "\nInterrupted")
		return 130
	case errors.Is(err, ui.ErrCancelled):
		fmt.Fprintln(os.Stderr, "Cancelled")
		return 130
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
}
