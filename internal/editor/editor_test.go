package editor

import (
	"context"
	"testing"
)

func TestEditPassthrough(t *testing.T) {
	// "true" exits without touching the draft, so Edit must hand the
	// initial content back unchanged.
	t.Setenv("EDITOR", "true")

	const draft = "Subject: hi\n\nbody\n"
	got, err := Edit(context.Background(), draft)
	if err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	if got != draft {
		t.Errorf("Edit = %q, want %q", got, draft)
	}
}

func TestEditMissingEditor(t *testing.T) {
	t.Setenv("EDITOR", "definitely-not-a-real-editor")
	if _, err := Edit(context.Background(), "x"); err == nil {
		t.Error("Edit with missing editor = nil error, want failure")
	}
}
