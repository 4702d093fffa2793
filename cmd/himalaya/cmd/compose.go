package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	goimap "github.com/emersion/go-imap/v2"
	"github.com/spf13/cobra"
	"github.com/wneessen/go-mail"

	"github.com/igbanam/himalaya/internal/config"
	"github.com/igbanam/himalaya/internal/editor"
	imapsession "github.com/igbanam/himalaya/internal/imap"
	"github.com/igbanam/himalaya/internal/msg"
	"github.com/igbanam/himalaya/internal/tpl"
)

var (
	attachPaths        []string
	replyAll           bool
	forwardAttachments bool
)

var writeCmd = &cobra.Command{
	Use:     "write",
	Aliases: []string{"w"},
	Short:   "Write and send a new message",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, acc, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer sess.Logout()

		return editAndSend(cmd.Context(), sess, acc, tpl.New(acc))
	},
}

var replyCmd = &cobra.Command{
	Use:   "reply <seq>",
	Short: "Reply to a message",
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
		return editAndSend(cmd.Context(), sess, acc, tpl.Reply(acc, source, replyAll))
	},
}

var forwardCmd = &cobra.Command{
	Use:     "forward <seq>",
	Aliases: []string{"fwd"},
	Short:   "Forward a message",
	Args:    cobra.ExactArgs(1),
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
		return editAndSend(cmd.Context(), sess, acc, tpl.Forward(acc, source, forwardAttachments))
	},
}

var sendCmd = &cobra.Command{
	Use:   "send [raw-message]",
	Short: "Send a raw message as-is",
	Long: `Send a raw RFC 2822 message without opening the editor. The message
is taken from the first argument, or from stdin when omitted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := printer()
		if err != nil {
			return err
		}

		var raw []byte
		if len(args) == 1 {
			raw = []byte(args[0])
		} else {
			raw, err = io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("read message from stdin: %w", err)
			}
		}
		m, err := mail.EMLToMsgFromString(string(raw))
		if err != nil {
			return fmt.Errorf("parse raw message: %w", err)
		}

		sess, acc, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer sess.Logout()

		if err := deliver(cmd.Context(), sess, acc, m); err != nil {
			return err
		}
		return p.OK("message sent")
	},
}

// editAndSend runs the draft through the editor, sends the result, and
// appends the sent copy to the account's Sent mailbox.
func editAndSend(ctx context.Context, sess *imapsession.Session, acc *config.Account, t *tpl.Template) error {
	p, err := printer()
	if err != nil {
		return err
	}

	if err := attachFiles(t, attachPaths); err != nil {
		return err
	}

	text, err := editor.Edit(ctx, t.String())
	if err != nil {
		return err
	}
	if err := t.Parse(text); err != nil {
		return err
	}

	m, err := t.Build()
	if err != nil {
		return err
	}
	if err := deliver(ctx, sess, acc, m); err != nil {
		return err
	}
	return p.OK("message sent")
}

// deliver submits m over SMTP and records a Seen copy in the Sent mailbox.
func deliver(ctx context.Context, sess *imapsession.Session, acc *config.Account, m *mail.Msg) error {
	sender, err := openSender(acc)
	if err != nil {
		return err
	}
	defer sender.Close()

	if err := sender.Send(ctx, m); err != nil {
		return err
	}

	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return fmt.Errorf("render sent copy: %w", err)
	}
	if err := sess.Append(ctx, acc.SentMailbox, buf.Bytes(), imapsession.NewFlagSet(goimap.FlagSeen)); err != nil {
		return fmt.Errorf("record sent copy: %w", err)
	}
	return nil
}

// attachFiles loads local files onto the draft.
func attachFiles(t *tpl.Template, paths []string) error {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read attachment %q: %w", path, err)
		}
		t.Attachments = append(t.Attachments, msg.Attachment{
			Filename: filepath.Base(path),
			Content:  data,
		})
	}
	return nil
}

func init() {
	for _, c := range []*cobra.Command{writeCmd, replyCmd, forwardCmd} {
		c.Flags().StringSliceVar(&attachPaths, "attach", nil, "path of a file to attach (repeatable)")
	}
	replyCmd.Flags().BoolVarP(&replyAll, "all", "A", false, "reply to all recipients")
	forwardCmd.Flags().BoolVar(&forwardAttachments, "attachments", false, "carry the original attachments over")

	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(replyCmd)
	rootCmd.AddCommand(forwardCmd)
	rootCmd.AddCommand(sendCmd)
}
