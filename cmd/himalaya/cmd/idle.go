package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"github.com/igbanam/himalaya/internal/msg"
)

var keepaliveSecs int

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the mailbox for changes until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, _, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer sess.Logout()

		return sess.Watch(cmd.Context(), keepalive())
	},
}

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Notify on new messages until interrupted",
	Long: `Block on the mailbox and run a notification for every newly arrived
message. When notify_cmd is set in the config it is run per message with
HIMALAYA_SENDER and HIMALAYA_SUBJECT in the environment; otherwise the
arrival is printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, _, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer sess.Logout()

		return sess.Notify(cmd.Context(), keepalive(), notifyHook)
	},
}

func keepalive() time.Duration {
	return time.Duration(keepaliveSecs) * time.Second
}

// notifyHook is invoked once per newly-seen message.
func notifyHook(m *msg.Msg) error {
	if cfg.NotifyCmd == "" {
		fmt.Printf("New message from %s: %s\n", m.Sender(), m.Subject)
		return nil
	}
	c := exec.Command("sh", "-c", cfg.NotifyCmd)
	c.Env = append(os.Environ(),
		"HIMALAYA_SENDER="+m.Sender().String(),
		"HIMALAYA_SUBJECT="+m.Subject,
	)
	if err := c.Run(); err != nil {
		return fmt.Errorf("notify command: %w", err)
	}
	return nil
}

func init() {
	for _, c := range []*cobra.Command{watchCmd, notifyCmd} {
		c.Flags().IntVarP(&keepaliveSecs, "keepalive", "k", 500, "seconds between IDLE keepalive re-issues")
	}
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(notifyCmd)
}
