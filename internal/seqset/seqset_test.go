package seqset

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// mustParse calls ParseRange and fails the test on error.
func mustParse(t *testing.T, text string) *SeqRange {
	t.Helper()
	r, err := ParseRange(text)
	if err != nil {
		t.Fatalf("ParseRange(%q) failed: %v", text, err)
	}
	return r
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		text string
		want []uint32
	}{
		{"1", []uint32{1}},
		{"1,3:5,9", []uint32{1, 3, 4, 5, 9}},
		{"9,1,3:5", []uint32{1, 3, 4, 5, 9}},
		{"2,2,2", []uint32{2}},
		{"3:3", []uint32{3}},
		{"1:4,2:6", []uint32{1, 2, 3, 4, 5, 6}},
		{" 7 , 8 ", []uint32{7, 8}},
	}
	for _, tt := range tests {
		got := mustParse(t, tt.text)
		if diff := cmp.Diff(tt.want, got.Nums()); diff != "" {
			t.Errorf("ParseRange(%q) mismatch (-want +got):\n%s", tt.text, diff)
		}
	}
}

func TestParseRangeErrors(t *testing.T) {
	for _, text := range []string{"", "  ", "5:1", "a", "1,,2", "1:b", "0", "-3", "1:0"} {
		_, err := ParseRange(text)
		if err == nil {
			t.Errorf("ParseRange(%q) = nil error, want ParseError", text)
			continue
		}
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("ParseRange(%q) error type = %T, want *ParseError", text, err)
		}
	}
}

// A grammar-valid span addressing billions of messages must be rejected at
// parse time instead of materialized.
func TestParseRangeRejectsHugeSpan(t *testing.T) {
	for _, text := range []string{"1:4000000000", "1:1000000,2000000:4000000000"} {
		_, err := ParseRange(text)
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("ParseRange(%q) error = %v, want *ParseError", text, err)
		}
	}
	// The bound itself still parses.
	r := mustParse(t, "1:1048576")
	if r.Len() != maxMembers {
		t.Errorf("Len() = %d, want %d", r.Len(), maxMembers)
	}
}

func TestParseErrorToken(t *testing.T) {
	_, err := ParseRange("1,5:1,9")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error type = %T, want *ParseError", err)
	}
	if perr.Token != "5:1" {
		t.Errorf("ParseError.Token = %q, want %q", perr.Token, "5:1")
	}
}

func TestStringRoundTrip(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"1,3:5,9", "1,3:5,9"},
		{"9,1,3,4,5", "1,3:5,9"},
		{"1,2,3", "1:3"},
		{"4", "4"},
		{"1:2", "1:2"},
	}
	for _, tt := range tests {
		got := mustParse(t, tt.text).String()
		if got != tt.want {
			t.Errorf("ParseRange(%q).String() = %q, want %q", tt.text, got, tt.want)
		}
		// Normalized form is stable under re-parsing.
		again := mustParse(t, got).String()
		if again != got {
			t.Errorf("re-parse of %q changed form to %q", got, again)
		}
	}
}

func TestContains(t *testing.T) {
	r := mustParse(t, "1,3:5,9")
	for _, n := range []uint32{1, 3, 4, 5, 9} {
		if !r.Contains(n) {
			t.Errorf("Contains(%d) = false, want true", n)
		}
	}
	for _, n := range []uint32{2, 6, 8, 10} {
		if r.Contains(n) {
			t.Errorf("Contains(%d) = true, want false", n)
		}
	}
}

func TestFromNums(t *testing.T) {
	r := FromNums(5, 1, 5, 0, 2)
	if diff := cmp.Diff([]uint32{1, 2, 5}, r.Nums()); diff != "" {
		t.Errorf("FromNums mismatch (-want +got):\n%s", diff)
	}
}
