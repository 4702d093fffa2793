package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	imapsession "github.com/igbanam/himalaya/internal/imap"
	"github.com/igbanam/himalaya/internal/seqset"
)

var flagsCmd = &cobra.Command{
	Use:     "flags",
	Aliases: []string{"flag"},
	Short:   "Manage message flags",
}

// flagOp names one of the three STORE operations. Dispatch is a closed set
// over these three subcommands; a new operation means a new subcommand.
type flagOp func(context.Context, *imapsession.Session, *seqset.SeqRange, *imapsession.FlagSet) error

func flagSubcommand(use, short, verb string, op flagOp) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <seq-range> <flags>...",
		Short: short,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := printer()
			if err != nil {
				return err
			}
			set, err := seqset.ParseRange(args[0])
			if err != nil {
				return err
			}
			flags, err := imapsession.ParseFlags(strings.Join(args[1:], " "))
			if err != nil {
				return err
			}

			sess, _, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Logout()

			if err := op(cmd.Context(), sess, set, flags); err != nil {
				return err
			}
			return p.OK(fmt.Sprintf("flag(s) %q %s on message(s) %s", flags, verb, set))
		},
	}
}

func init() {
	flagsCmd.AddCommand(flagSubcommand("set", "Replace the flags of messages", "set",
		func(ctx context.Context, s *imapsession.Session, set *seqset.SeqRange, f *imapsession.FlagSet) error {
			return s.SetFlags(ctx, set, f)
		}))
	flagsCmd.AddCommand(flagSubcommand("add", "Add flags to messages", "added",
		func(ctx context.Context, s *imapsession.Session, set *seqset.SeqRange, f *imapsession.FlagSet) error {
			return s.AddFlags(ctx, set, f)
		}))
	flagsCmd.AddCommand(flagSubcommand("remove", "Remove flags from messages", "removed",
		func(ctx context.Context, s *imapsession.Session, set *seqset.SeqRange, f *imapsession.FlagSet) error {
			return s.RemoveFlags(ctx, set, f)
		}))
	rootCmd.AddCommand(flagsCmd)
}
