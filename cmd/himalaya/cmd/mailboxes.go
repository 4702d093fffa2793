package cmd

import (
	"github.com/spf13/cobra"
)

var mailboxesCmd = &cobra.Command{
	Use:     "mailboxes",
	Aliases: []string{"mboxes", "mb"},
	Short:   "List all mailboxes of the account",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := printer()
		if err != nil {
			return err
		}

		sess, _, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer sess.Logout()

		names, err := sess.ListMailboxes(cmd.Context())
		if err != nil {
			return err
		}
		return p.Mailboxes(names)
	},
}

func init() {
	rootCmd.AddCommand(mailboxesCmd)
}
