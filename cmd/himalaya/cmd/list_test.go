package cmd

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/igbanam/himalaya/internal/msg"
	"github.com/igbanam/himalaya/internal/seqset"
)

func TestPageOf(t *testing.T) {
	matches := seqset.FromNums(1, 2, 3, 4, 5, 6, 7)

	tests := []struct {
		name string
		size int
		page int
		want []uint32
	}{
		{"first page is newest", 3, 1, []uint32{5, 6, 7}},
		{"second page", 3, 2, []uint32{2, 3, 4}},
		{"last partial page", 3, 3, []uint32{1}},
		{"page past the end", 3, 4, nil},
		{"oversized page", 20, 1, []uint32{1, 2, 3, 4, 5, 6, 7}},
		{"zero size falls back to default", 0, 1, []uint32{1, 2, 3, 4, 5, 6, 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pageOf(matches, tt.size, tt.page)
			if diff := cmp.Diff(tt.want, got.Nums()); diff != "" {
				t.Errorf("pageOf mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReverseMsgs(t *testing.T) {
	msgs := []*msg.Msg{{Seq: 1}, {Seq: 2}, {Seq: 3}}
	reverseMsgs(msgs)
	for i, want := range []uint32{3, 2, 1} {
		if msgs[i].Seq != want {
			t.Errorf("msgs[%d].Seq = %d, want %d", i, msgs[i].Seq, want)
		}
	}
}
