package imap

import (
	"testing"

	imap "github.com/emersion/go-imap/v2"
)

// mustParseFlags calls ParseFlags and fails the test on error.
func mustParseFlags(t *testing.T, text string) *FlagSet {
	t.Helper()
	s, err := ParseFlags(text)
	if err != nil {
		t.Fatalf("ParseFlags(%q) failed: %v", text, err)
	}
	return s
}

func TestParseFlagsVocabulary(t *testing.T) {
	tests := []struct {
		text string
		want []imap.Flag
	}{
		{"seen", []imap.Flag{imap.FlagSeen}},
		{"Seen", []imap.Flag{imap.FlagSeen}},
		{`\Seen`, []imap.Flag{imap.FlagSeen}},
		{"seen answered", []imap.Flag{imap.FlagAnswered, imap.FlagSeen}},
		{"seen,answered", []imap.Flag{imap.FlagAnswered, imap.FlagSeen}},
		{"DELETED draft flagged", []imap.Flag{imap.FlagDeleted, imap.FlagDraft, imap.FlagFlagged}},
	}
	for _, tt := range tests {
		got := mustParseFlags(t, tt.text).Flags()
		if len(got) != len(tt.want) {
			t.Errorf("ParseFlags(%q) = %v, want %v", tt.text, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ParseFlags(%q)[%d] = %q, want %q", tt.text, i, got[i], tt.want[i])
			}
		}
	}
}

func TestParseFlagsCustomKeyword(t *testing.T) {
	s := mustParseFlags(t, "seen MyKeyword")
	if !s.Has(imap.FlagSeen) {
		t.Error("missing Seen")
	}
	if !s.Has(imap.Flag("MyKeyword")) {
		t.Error("custom keyword not preserved")
	}
	// Membership is case-insensitive even for keywords.
	if !s.Has(imap.Flag("mykeyword")) {
		t.Error("keyword membership should be case-insensitive")
	}
}

func TestParseFlagsEmpty(t *testing.T) {
	for _, text := range []string{"", "  ", ", ,"} {
		if _, err := ParseFlags(text); err == nil {
			t.Errorf("ParseFlags(%q) = nil error, want FlagParseError", text)
		}
	}
}

func TestFlagSetAlgebra(t *testing.T) {
	s := NewFlagSet(imap.FlagSeen)

	// Adding a present flag is a no-op.
	s.Add(imap.FlagSeen)
	if s.Len() != 1 {
		t.Errorf("Len after duplicate add = %d, want 1", s.Len())
	}

	// add then remove of a flag not already present restores the set.
	before := NewFlagSet(s.Flags()...)
	s.Add(imap.FlagFlagged)
	s.Remove(imap.FlagFlagged)
	if !s.Equal(before) {
		t.Errorf("add+remove changed set: %v != %v", s.Flags(), before.Flags())
	}

	// Removing an absent flag is a no-op.
	s.Remove(imap.FlagDraft)
	if !s.Equal(before) {
		t.Errorf("remove of absent flag changed set")
	}
}

func TestFlagSetUnionDifference(t *testing.T) {
	a := NewFlagSet(imap.FlagSeen, imap.FlagAnswered)
	b := NewFlagSet(imap.FlagAnswered, imap.FlagDraft)

	union := a.Union(b)
	for _, f := range []imap.Flag{imap.FlagSeen, imap.FlagAnswered, imap.FlagDraft} {
		if !union.Has(f) {
			t.Errorf("union missing %q", f)
		}
	}
	if union.Len() != 3 {
		t.Errorf("union Len = %d, want 3", union.Len())
	}

	diff := a.Difference(b)
	if !diff.Equal(NewFlagSet(imap.FlagSeen)) {
		t.Errorf("difference = %v, want [\\Seen]", diff.Flags())
	}
}

func TestFlagSetString(t *testing.T) {
	s := NewFlagSet(imap.FlagSeen, imap.FlagAnswered)
	if got, want := s.String(), `\Answered \Seen`; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
