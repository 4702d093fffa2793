package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/igbanam/himalaya/cmd/himalaya/cmd"
)

const (
	exitCodeError       = 1
	exitCodeInterrupted = 130 // 128 + SIGINT, mirrors shell convention
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// The OS mailto handler passes the URI as a single positional argument.
	// It must be routed before cobra parses argv, which would otherwise
	// reject it as an unknown command. Order-sensitive: keep this first.
	if len(os.Args) > 1 && strings.HasPrefix(os.Args[1], "mailto:") {
		if err := cmd.Mailto(ctx, os.Args[1]); err != nil {
			if isSignalCanceled(err, ctx) {
				return exitCodeInterrupted
			}
			os.Stderr.WriteString("himalaya: " + err.Error() + "\n")
			return exitCodeError
		}
		return 0
	}

	if err := cmd.ExecuteContext(ctx); err != nil {
		if isSignalCanceled(err, ctx) {
			return exitCodeInterrupted
		}
		return exitCodeError
	}
	return 0
}

func isSignalCanceled(err error, ctx context.Context) bool {
	return errors.Is(err, context.Canceled) && ctx.Err() == context.Canceled
}
