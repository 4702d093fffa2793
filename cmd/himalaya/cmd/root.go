package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/igbanam/himalaya/internal/config"
	"github.com/igbanam/himalaya/internal/imap"
	"github.com/igbanam/himalaya/internal/output"
	"github.com/igbanam/himalaya/internal/smtp"
)

var (
	cfgFile     string
	accountName string
	mailboxName string
	outputFmt   string
	verbose     bool

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "himalaya",
	Short: "CLI email client",
	Long: `himalaya is a command-line email client.

It reads mail over IMAP (list, search, read, flag, copy, move, delete,
watch) and sends mail over SMTP (write, reply, forward, send), driven by
accounts declared in a TOML config file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		initLogging()

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		return nil
	},
}

// loggingInitialized guards the process-wide logger setup: logging is
// one-time init-before-use state, never reconfigured after first use.
var loggingInitialized bool

func initLogging() {
	if loggingInitialized {
		return
	}
	loggingInitialized = true

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

// Execute runs the root command with a background context.
// Prefer ExecuteContext for signal-aware execution.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with the given context, enabling
// graceful shutdown when the context is cancelled.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// printer builds the Printer for the selected output format.
func printer() (*output.Printer, error) {
	format, err := output.ParseFormat(outputFmt)
	if err != nil {
		return nil, err
	}
	return output.NewPrinter(os.Stdout, format), nil
}

// selectedAccount resolves --account against the loaded config.
func selectedAccount() (*config.Account, error) {
	return cfg.Account(accountName)
}

// openSession connects a mailbox session and selects the working mailbox
// (--mailbox, falling back to the account default). The caller owns the
// session and must defer Logout.
func openSession(ctx context.Context) (*imap.Session, *config.Account, error) {
	acc, err := selectedAccount()
	if err != nil {
		return nil, nil, err
	}
	password, err := acc.IMAPPasswd()
	if err != nil {
		return nil, nil, err
	}

	sess := imap.NewSession(acc.IMAPConfig(), password, imap.WithLogger(logger))
	mbox := mailboxName
	if mbox == "" {
		mbox = acc.Mailbox
	}
	if err := sess.Select(ctx, mbox); err != nil {
		_ = sess.Logout()
		return nil, nil, err
	}
	return sess, acc, nil
}

// openSender builds the delivery session for acc. The caller must defer
// Close.
func openSender(acc *config.Account) (*smtp.Sender, error) {
	smtpCfg, err := acc.SMTPConfig()
	if err != nil {
		return nil, err
	}
	return smtp.NewSender(smtpCfg, smtp.WithLogger(logger)), nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default ~/.config/himalaya/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&accountName, "account", "a", "", "account to use (default: the account marked default)")
	rootCmd.PersistentFlags().StringVarP(&mailboxName, "mailbox", "m", "", "mailbox to work on (default: the account's mailbox)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "plain", "output format: plain or json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
