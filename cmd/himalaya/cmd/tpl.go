package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/igbanam/himalaya/internal/tpl"
)

var (
	tplReplyAll    bool
	tplAttachments bool
)

var tplCmd = &cobra.Command{
	Use:     "template",
	Aliases: []string{"tpl"},
	Short:   "Generate message templates without sending",
}

var tplNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Generate a template for a new message",
	RunE: func(cmd *cobra.Command, args []string) error {
		acc, err := selectedAccount()
		if err != nil {
			return err
		}
		fmt.Print(tpl.New(acc).String())
		return nil
	},
}

var tplReplyCmd = &cobra.Command{
	Use:   "reply <seq>",
	Short: "Generate a reply template for a message",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seq, err := parseSeqArg(args[0])
		if err != nil {
			return err
		}

		sess, acc, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer sess.Logout()

		source, err := sess.FetchOne(cmd.Context(), seq)
		if err != nil {
			return err
		}
		fmt.Print(tpl.Reply(acc, source, tplReplyAll).String())
		return nil
	},
}

var tplForwardCmd = &cobra.Command{
	Use:   "forward <seq>",
	Short: "Generate a forward template for a message",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seq, err := parseSeqArg(args[0])
		if err != nil {
			return err
		}

		sess, acc, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer sess.Logout()

		source, err := sess.FetchOne(cmd.Context(), seq)
		if err != nil {
			return err
		}
		fmt.Print(tpl.Forward(acc, source, tplAttachments).String())
		return nil
	},
}

func init() {
	tplReplyCmd.Flags().BoolVarP(&tplReplyAll, "all", "A", false, "reply to all recipients")
	tplForwardCmd.Flags().BoolVar(&tplAttachments, "attachments", false, "carry the original attachments over")

	tplCmd.AddCommand(tplNewCmd)
	tplCmd.AddCommand(tplReplyCmd)
	tplCmd.AddCommand(tplForwardCmd)
	rootCmd.AddCommand(tplCmd)
}
