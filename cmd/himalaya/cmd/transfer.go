package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	imapsession "github.com/igbanam/himalaya/internal/imap"
	"github.com/igbanam/himalaya/internal/seqset"
)

var copyCmd = &cobra.Command{
	Use:     "copy <seq-range> <target-mailbox>",
	Aliases: []string{"cp"},
	Short:   "Copy messages to another mailbox",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransfer(cmd, args, false)
	},
}

var moveCmd = &cobra.Command{
	Use:     "move <seq-range> <target-mailbox>",
	Aliases: []string{"mv"},
	Short:   "Move messages to another mailbox",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransfer(cmd, args, true)
	},
}

func runTransfer(cmd *cobra.Command, args []string, move bool) error {
	p, err := printer()
	if err != nil {
		return err
	}
	set, err := seqset.ParseRange(args[0])
	if err != nil {
		return err
	}
	target := args[1]

	sess, _, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer sess.Logout()

	verb := "copied"
	if move {
		err = sess.Move(cmd.Context(), set, target)
		verb = "moved"
	} else {
		err = sess.Copy(cmd.Context(), set, target)
	}
	if err != nil {
		return err
	}
	return p.OK(fmt.Sprintf("message(s) %s %s to %q", set, verb, target))
}

var deleteCmd = &cobra.Command{
	Use:     "delete <seq-range>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete messages",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := printer()
		if err != nil {
			return err
		}
		set, err := seqset.ParseRange(args[0])
		if err != nil {
			return err
		}

		sess, _, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer sess.Logout()

		if err := sess.Delete(cmd.Context(), set); err != nil {
			return err
		}
		return p.OK(fmt.Sprintf("message(s) %s deleted", set))
	},
}

var saveCmd = &cobra.Command{
	Use:   "save <target-mailbox> [raw-message]",
	Short: "Append a raw message to a mailbox without sending it",
	Long: `Append a raw RFC 2822 message to a mailbox without going through
SMTP delivery. The message is taken from the second argument, or from
stdin when omitted.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := printer()
		if err != nil {
			return err
		}

		var raw []byte
		if len(args) == 2 {
			raw = []byte(args[1])
		} else {
			raw, err = io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("read message from stdin: %w", err)
			}
		}
		if len(raw) == 0 {
			return fmt.Errorf("empty message")
		}

		sess, _, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer sess.Logout()

		if err := sess.Append(cmd.Context(), args[0], raw, imapsession.NewFlagSet()); err != nil {
			return err
		}
		return p.OK(fmt.Sprintf("message saved to %q", args[0]))
	},
}

func init() {
	rootCmd.AddCommand(copyCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(saveCmd)
}
