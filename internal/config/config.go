// Package config handles loading and managing himalaya configuration.
package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/BurntSushi/toml"
	"golang.org/x/term"

	"github.com/igbanam/himalaya/internal/imap"
	"github.com/igbanam/himalaya/internal/smtp"
)

// Config represents the himalaya configuration file.
type Config struct {
	Name         string             `toml:"name"`          // default display name
	DownloadsDir string             `toml:"downloads_dir"` // where attachments land
	NotifyCmd    string             `toml:"notify_cmd"`    // shell command run per new message
	Accounts     map[string]Account `toml:"accounts"`
}

// Account holds one account's identity and protocol endpoints. Immutable
// once loaded.
type Account struct {
	Name    string `toml:"name"` // display name, falls back to Config.Name
	Email   string `toml:"email"`
	Default bool   `toml:"default"`

	Mailbox     string `toml:"mailbox"`      // default "INBOX"
	SentMailbox string `toml:"sent_mailbox"` // default "Sent"

	IMAPHost        string `toml:"imap_host"`
	IMAPPort        int    `toml:"imap_port"`
	IMAPStartTLS    bool   `toml:"imap_starttls"`
	IMAPInsecure    bool   `toml:"imap_insecure"` // no TLS at all
	IMAPLogin       string `toml:"imap_login"`
	IMAPPassword    string `toml:"imap_password"`
	IMAPPasswordCmd string `toml:"imap_password_cmd"`

	SMTPHost        string `toml:"smtp_host"`
	SMTPPort        int    `toml:"smtp_port"`
	SMTPStartTLS    bool   `toml:"smtp_starttls"`
	SMTPInsecure    bool   `toml:"smtp_insecure"`
	SMTPLogin       string `toml:"smtp_login"`
	SMTPPassword    string `toml:"smtp_password"`
	SMTPPasswordCmd string `toml:"smtp_password_cmd"`
}

// DefaultPath returns the default config file location. Respects
// HIMALAYA_CONFIG, then XDG_CONFIG_HOME.
func DefaultPath() string {
	if p := os.Getenv("HIMALAYA_CONFIG"); p != "" {
		return p
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "himalaya", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".himalaya", "config.toml")
	}
	return filepath.Join(home, ".config", "himalaya", "config.toml")
}

// Load reads the configuration from path, or the default location when path
// is empty.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	if len(cfg.Accounts) == 0 {
		return nil, fmt.Errorf("config %s defines no accounts", path)
	}

	cfg.DownloadsDir = expandPath(cfg.DownloadsDir)
	if cfg.DownloadsDir == "" {
		cfg.DownloadsDir = os.TempDir()
	}

	for name, acc := range cfg.Accounts {
		if acc.Email == "" {
			return nil, fmt.Errorf("account %q: email is required", name)
		}
		if acc.IMAPHost == "" {
			return nil, fmt.Errorf("account %q: imap_host is required", name)
		}
		if acc.SMTPHost == "" {
			return nil, fmt.Errorf("account %q: smtp_host is required", name)
		}
		if acc.Name == "" {
			acc.Name = cfg.Name
		}
		if acc.Mailbox == "" {
			acc.Mailbox = "INBOX"
		}
		if acc.SentMailbox == "" {
			acc.SentMailbox = "Sent"
		}
		if acc.IMAPLogin == "" {
			acc.IMAPLogin = acc.Email
		}
		if acc.SMTPLogin == "" {
			acc.SMTPLogin = acc.Email
		}
		cfg.Accounts[name] = acc
	}

	return cfg, nil
}

// Account resolves the account to use: the named one, else the one marked
// default, else the sole configured account.
func (c *Config) Account(name string) (*Account, error) {
	if name != "" {
		acc, ok := c.Accounts[name]
		if !ok {
			return nil, fmt.Errorf("account %q not found", name)
		}
		return &acc, nil
	}
	for _, acc := range c.Accounts {
		if acc.Default {
			acc := acc
			return &acc, nil
		}
	}
	if len(c.Accounts) == 1 {
		for _, acc := range c.Accounts {
			acc := acc
			return &acc, nil
		}
	}
	return nil, fmt.Errorf("no account selected and none marked default")
}

// Addr renders the account identity as "Name <email>".
func (a *Account) Addr() string {
	if a.Name == "" {
		return a.Email
	}
	return a.Name + " <" + a.Email + ">"
}

// IMAPConfig returns the retrieval endpoint settings.
func (a *Account) IMAPConfig() *imap.Config {
	return &imap.Config{
		Host:     a.IMAPHost,
		Port:     a.IMAPPort,
		TLS:      !a.IMAPStartTLS && !a.IMAPInsecure,
		STARTTLS: a.IMAPStartTLS,
		Username: a.IMAPLogin,
	}
}

// SMTPConfig returns the delivery endpoint settings, with the password
// already resolved.
func (a *Account) SMTPConfig() (*smtp.Config, error) {
	password, err := resolvePassword(a.SMTPPassword, a.SMTPPasswordCmd, a.SMTPLogin, a.SMTPHost)
	if err != nil {
		return nil, err
	}
	return &smtp.Config{
		Host:     a.SMTPHost,
		Port:     a.SMTPPort,
		TLS:      !a.SMTPStartTLS && !a.SMTPInsecure,
		STARTTLS: a.SMTPStartTLS,
		Username: a.SMTPLogin,
		Password: password,
	}, nil
}

// IMAPPasswd resolves the retrieval password: literal config value, then
// password command, then interactive prompt.
func (a *Account) IMAPPasswd() (string, error) {
	return resolvePassword(a.IMAPPassword, a.IMAPPasswordCmd, a.IMAPLogin, a.IMAPHost)
}

func resolvePassword(literal, command, login, host string) (string, error) {
	if literal != "" {
		return literal, nil
	}
	if command != "" {
		out, err := exec.Command("sh", "-c", command).Output()
		if err != nil {
			return "", fmt.Errorf("password command: %w", err)
		}
		return strings.TrimSpace(string(out)), nil
	}
	// Prompt on the terminal so the password never lands in shell history
	// or process listings.
	fmt.Fprintf(os.Stderr, "Password for %s@%s: ", login, host)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("password is required")
	}
	return string(raw), nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
