// Package editor opens the user's editor for draft composition.
package editor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// Edit writes initial to a temp file, runs $EDITOR (falling back to vi) on
// it, and returns the edited content.
func Edit(ctx context.Context, initial string) (string, error) {
	f, err := os.CreateTemp("", "himalaya-*.eml")
	if err != nil {
		return "", fmt.Errorf("create draft file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.WriteString(initial); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write draft: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("write draft: %w", err)
	}

	name := os.Getenv("EDITOR")
	if name == "" {
		name = "vi"
	}
	cmd := exec.CommandContext(ctx, name, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("run editor %q: %w", name, err)
	}

	edited, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read draft back: %w", err)
	}
	return string(edited), nil
}
