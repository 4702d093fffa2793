package imap

import (
	"fmt"
	"sort"
	"strings"

	imap "github.com/emersion/go-imap/v2"
)

// standardFlags maps lowercase flag names to their canonical IMAP form.
// Names match case-insensitively, with or without the leading backslash.
var standardFlags = map[string]imap.Flag{
	"seen":     imap.FlagSeen,
	"answered": imap.FlagAnswered,
	"flagged":  imap.FlagFlagged,
	"deleted":  imap.FlagDeleted,
	"draft":    imap.FlagDraft,
}

// FlagSet is a set of IMAP flags. Membership is case-insensitive; adding a
// present flag and removing an absent flag are both no-ops. The zero value
// is not usable, use NewFlagSet or ParseFlags.
type FlagSet struct {
	flags map[string]imap.Flag // lowercase name -> canonical form
}

// NewFlagSet builds a FlagSet from flags.
func NewFlagSet(flags ...imap.Flag) *FlagSet {
	s := &FlagSet{flags: make(map[string]imap.Flag, len(flags))}
	for _, f := range flags {
		s.Add(f)
	}
	return s
}

// ParseFlags parses a whitespace- or comma-separated flag list. Standard
// flag names are normalized to their canonical form; unknown tokens are kept
// as custom keywords, since IMAP permits arbitrary keyword flags.
func ParseFlags(text string) (*FlagSet, error) {
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(tokens) == 0 {
		return nil, &FlagParseError{Text: text}
	}
	s := NewFlagSet()
	for _, token := range tokens {
		name := strings.ToLower(strings.TrimPrefix(token, "\\"))
		if canonical, ok := standardFlags[name]; ok {
			s.Add(canonical)
			continue
		}
		s.Add(imap.Flag(strings.TrimPrefix(token, "\\")))
	}
	return s, nil
}

// FlagParseError reports an empty flag list.
type FlagParseError struct {
	Text string
}

func (e *FlagParseError) Error() string {
	return fmt.Sprintf("no flags in %q", e.Text)
}

func flagKey(f imap.Flag) string {
	return strings.ToLower(strings.TrimPrefix(string(f), "\\"))
}

// Add inserts f. Adding a flag already present is a no-op.
func (s *FlagSet) Add(f imap.Flag) {
	s.flags[flagKey(f)] = f
}

// Remove deletes f. Removing an absent flag is a no-op.
func (s *FlagSet) Remove(f imap.Flag) {
	delete(s.flags, flagKey(f))
}

// Has reports membership, case-insensitively.
func (s *FlagSet) Has(f imap.Flag) bool {
	_, ok := s.flags[flagKey(f)]
	return ok
}

// Len returns the number of flags.
func (s *FlagSet) Len() int { return len(s.flags) }

// Union returns a new set containing the flags of both sets.
func (s *FlagSet) Union(other *FlagSet) *FlagSet {
	out := NewFlagSet(s.Flags()...)
	for _, f := range other.Flags() {
		out.Add(f)
	}
	return out
}

// Difference returns a new set with other's flags removed.
func (s *FlagSet) Difference(other *FlagSet) *FlagSet {
	out := NewFlagSet(s.Flags()...)
	for _, f := range other.Flags() {
		out.Remove(f)
	}
	return out
}

// Equal reports whether both sets hold the same flags.
func (s *FlagSet) Equal(other *FlagSet) bool {
	if s.Len() != other.Len() {
		return false
	}
	for key := range s.flags {
		if _, ok := other.flags[key]; !ok {
			return false
		}
	}
	return true
}

// Flags returns the members in canonical form, sorted by name.
func (s *FlagSet) Flags() []imap.Flag {
	keys := make([]string, 0, len(s.flags))
	for key := range s.flags {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]imap.Flag, len(keys))
	for i, key := range keys {
		out[i] = s.flags[key]
	}
	return out
}

// String renders the set as a space-separated list in canonical form.
func (s *FlagSet) String() string {
	flags := s.Flags()
	parts := make([]string, len(flags))
	for i, f := range flags {
		parts[i] = string(f)
	}
	return strings.Join(parts, " ")
}
