package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/igbanam/himalaya/internal/imap"
	"github.com/igbanam/himalaya/internal/msg"
	"github.com/igbanam/himalaya/internal/seqset"
)

var (
	pageSize int
	page     int
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"lst", "l"},
	Short:   "List messages in the mailbox, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runListing(cmd, "")
	},
}

var searchCmd = &cobra.Command{
	Use:     "search <query>...",
	Aliases: []string{"s"},
	Short:   "Search messages matching a text query",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runListing(cmd, strings.Join(args, " "))
	},
}

// runListing pages through the (optionally filtered) mailbox and prints the
// requested page of summaries, newest first.
func runListing(cmd *cobra.Command, query string) error {
	p, err := printer()
	if err != nil {
		return err
	}

	sess, _, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer sess.Logout()

	matches, err := sess.Search(cmd.Context(), query)
	if err != nil {
		return err
	}
	pageSet := pageOf(matches, pageSize, page)
	if pageSet.Empty() {
		return p.Messages(nil)
	}

	msgs, err := sess.Fetch(cmd.Context(), pageSet, imap.DetailSummary)
	if err != nil {
		return err
	}
	reverseMsgs(msgs)
	return p.Messages(msgs)
}

// pageOf takes the requested page counted from the newest (highest)
// sequence numbers. Page numbering starts at 1.
func pageOf(matches *seqset.SeqRange, size, page int) *seqset.SeqRange {
	nums := matches.Nums()
	if size <= 0 {
		size = 10
	}
	if page <= 0 {
		page = 1
	}
	end := len(nums) - (page-1)*size
	if end <= 0 {
		return seqset.FromNums()
	}
	start := end - size
	if start < 0 {
		start = 0
	}
	return seqset.FromNums(nums[start:end]...)
}

func reverseMsgs(msgs []*msg.Msg) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}

func init() {
	for _, c := range []*cobra.Command{listCmd, searchCmd} {
		c.Flags().IntVarP(&pageSize, "page-size", "s", 10, "number of messages per page")
		c.Flags().IntVarP(&page, "page", "p", 1, "page number, starting at 1")
	}
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
}
