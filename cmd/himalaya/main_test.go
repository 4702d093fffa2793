package main

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// Long-running commands surface context.Canceled on SIGINT; run() must map
// that to the interrupt exit code, not a plain failure.
func TestIsSignalCanceled(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	live := context.Background()

	tests := []struct {
		name string
		err  error
		ctx  context.Context
		want bool
	}{
		{"cancellation after signal", context.Canceled, canceled, true},
		{"wrapped cancellation after signal", fmt.Errorf("watch: %w", context.Canceled), canceled, true},
		{"cancellation without signal", context.Canceled, live, false},
		{"ordinary failure after signal", errors.New("LOGIN failed"), canceled, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isSignalCanceled(tt.err, tt.ctx); got != tt.want {
				t.Errorf("isSignalCanceled(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
