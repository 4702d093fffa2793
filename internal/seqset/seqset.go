// Package seqset parses and normalizes textual message sequence sets.
//
// A sequence set is a comma-separated list of tokens, each either a bare
// positive integer ("9") or an inclusive span ("3:5"). The parsed form is
// always normalized: ascending, de-duplicated members.
package seqset

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ParseError reports a malformed sequence-set token.
type ParseError struct {
	Token  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid sequence set token %q: %s", e.Token, e.Reason)
}

// SeqRange is an ordered, de-duplicated set of message sequence numbers.
// The zero value is an empty set.
type SeqRange struct {
	nums []uint32
}

// maxMembers bounds the materialized size of a parsed set. Spans are stored
// member-by-member, so an unbounded "1:4000000000" would exhaust memory on
// input that never touches the server.
const maxMembers = 1 << 20

// ParseRange parses text like "1,3:5,9" into a normalized SeqRange.
func ParseRange(text string) (*SeqRange, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &ParseError{Token: text, Reason: "empty sequence set"}
	}

	seen := make(map[uint32]struct{})
	var nums []uint32
	add := func(n uint32) {
		if _, ok := seen[n]; ok {
			return
		}
		seen[n] = struct{}{}
		nums = append(nums, n)
	}

	for _, token := range strings.Split(text, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			return nil, &ParseError{Token: token, Reason: "empty token"}
		}
		start, end, isSpan, err := parseToken(token)
		if err != nil {
			return nil, err
		}
		if isSpan && start > end {
			return nil, &ParseError{Token: token, Reason: "span start exceeds end"}
		}
		if uint64(len(nums))+uint64(end)-uint64(start)+1 > maxMembers {
			return nil, &ParseError{Token: token, Reason: fmt.Sprintf("set exceeds %d members", maxMembers)}
		}
		for n := start; n <= end; n++ {
			add(n)
		}
	}

	sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })
	return &SeqRange{nums: nums}, nil
}

func parseToken(token string) (start, end uint32, isSpan bool, err error) {
	if idx := strings.IndexByte(token, ':'); idx >= 0 {
		start, err = parseNum(token, token[:idx])
		if err != nil {
			return 0, 0, false, err
		}
		end, err = parseNum(token, token[idx+1:])
		if err != nil {
			return 0, 0, false, err
		}
		return start, end, true, nil
	}
	n, err := parseNum(token, token)
	return n, n, false, err
}

func parseNum(token, s string) (uint32, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, &ParseError{Token: token, Reason: "not a positive integer"}
	}
	if n == 0 {
		return 0, &ParseError{Token: token, Reason: "sequence numbers start at 1"}
	}
	return uint32(n), nil
}

// FromNums builds a SeqRange from explicit sequence numbers, normalizing
// order and duplicates. Zero values are dropped.
func FromNums(nums ...uint32) *SeqRange {
	seen := make(map[uint32]struct{}, len(nums))
	out := make([]uint32, 0, len(nums))
	for _, n := range nums {
		if n == 0 {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return &SeqRange{nums: out}
}

// Nums returns the members in ascending order. The returned slice is shared;
// callers must not modify it.
func (r *SeqRange) Nums() []uint32 {
	if r == nil {
		return nil
	}
	return r.nums
}

// Len returns the number of members.
func (r *SeqRange) Len() int {
	if r == nil {
		return 0
	}
	return len(r.nums)
}

// Empty reports whether the set has no members.
func (r *SeqRange) Empty() bool { return r.Len() == 0 }

// Contains reports whether n is a member.
func (r *SeqRange) Contains(n uint32) bool {
	if r == nil {
		return false
	}
	i := sort.Search(len(r.nums), func(i int) bool { return r.nums[i] >= n })
	return i < len(r.nums) && r.nums[i] == n
}

// String renders the normalized form, collapsing consecutive runs back into
// "start:end" spans. Re-parsing the result yields an equal set.
func (r *SeqRange) String() string {
	if r.Len() == 0 {
		return ""
	}
	var b strings.Builder
	start := r.nums[0]
	prev := start
	flush := func() {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		if start == prev {
			b.WriteString(strconv.FormatUint(uint64(start), 10))
		} else {
			b.WriteString(strconv.FormatUint(uint64(start), 10))
			b.WriteByte(':')
			b.WriteString(strconv.FormatUint(uint64(prev), 10))
		}
	}
	for _, n := range r.nums[1:] {
		if n == prev+1 {
			prev = n
			continue
		}
		flush()
		start, prev = n, n
	}
	flush()
	return b.String()
}
