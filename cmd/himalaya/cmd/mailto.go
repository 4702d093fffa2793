package cmd

import (
	"context"
	"fmt"

	"github.com/igbanam/himalaya/internal/config"
	"github.com/igbanam/himalaya/internal/imap"
	"github.com/igbanam/himalaya/internal/tpl"
)

// Mailto handles a mailto: URI passed as the sole argument, bypassing
// regular subcommand routing. It resolves the default account, prefills a
// draft from the URI, and runs the usual edit-and-send flow.
func Mailto(ctx context.Context, rawURI string) error {
	initLogging()

	var err error
	cfg, err = config.Load("")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	acc, err := cfg.Account("")
	if err != nil {
		return err
	}

	t, err := tpl.FromMailto(acc, rawURI)
	if err != nil {
		return err
	}

	password, err := acc.IMAPPasswd()
	if err != nil {
		return err
	}
	sess := imap.NewSession(acc.IMAPConfig(), password, imap.WithLogger(logger))
	if err := sess.Connect(ctx); err != nil {
		return err
	}
	defer sess.Logout()

	return editAndSend(ctx, sess, acc, t)
}
