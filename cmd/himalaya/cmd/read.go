package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	readRaw  bool
	readMime string
)

var readCmd = &cobra.Command{
	Use:     "read <seq>",
	Aliases: []string{"r"},
	Short:   "Read a message",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := printer()
		if err != nil {
			return err
		}
		seq, err := parseSeqArg(args[0])
		if err != nil {
			return err
		}

		sess, _, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer sess.Logout()

		m, err := sess.FetchOne(cmd.Context(), seq)
		if err != nil {
			return err
		}
		return p.Message(m, readRaw, readMime)
	},
}

var attachmentsCmd = &cobra.Command{
	Use:     "attachments <seq>",
	Aliases: []string{"att"},
	Short:   "Download all attachments of a message",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := printer()
		if err != nil {
			return err
		}
		seq, err := parseSeqArg(args[0])
		if err != nil {
			return err
		}

		sess, _, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer sess.Logout()

		m, err := sess.FetchOne(cmd.Context(), seq)
		if err != nil {
			return err
		}
		if len(m.Attachments) == 0 {
			return p.OK(fmt.Sprintf("message %d has no attachments", seq))
		}

		if err := os.MkdirAll(cfg.DownloadsDir, 0o700); err != nil {
			return fmt.Errorf("create downloads dir: %w", err)
		}
		for _, att := range m.Attachments {
			name := att.Filename
			if name == "" {
				name = fmt.Sprintf("attachment-%d", seq)
			}
			path := filepath.Join(cfg.DownloadsDir, filepath.Base(name))
			if err := os.WriteFile(path, att.Content, 0o600); err != nil {
				return fmt.Errorf("write attachment %q: %w", name, err)
			}
			logger.Debug("attachment saved", "path", path, "bytes", len(att.Content))
		}
		return p.OK(fmt.Sprintf("%d attachment(s) saved to %s", len(m.Attachments), cfg.DownloadsDir))
	},
}

// parseSeqArg parses a single message sequence number argument.
func parseSeqArg(arg string) (uint32, error) {
	n, err := strconv.ParseUint(arg, 10, 32)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid sequence number %q", arg)
	}
	return uint32(n), nil
}

func init() {
	readCmd.Flags().BoolVar(&readRaw, "raw", false, "print the raw MIME message")
	readCmd.Flags().StringVarP(&readMime, "mime", "t", "plain", "body part to show (plain or html)")
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(attachmentsCmd)
}
