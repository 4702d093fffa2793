package imap

import "testing"

func TestConfigAddr(t *testing.T) {
	tests := []struct {
		cfg  Config
		want string
	}{
		{Config{Host: "mail.example.com", TLS: true}, "mail.example.com:993"},
		{Config{Host: "mail.example.com"}, "mail.example.com:143"},
		{Config{Host: "mail.example.com", STARTTLS: true}, "mail.example.com:143"},
		{Config{Host: "mail.example.com", Port: 1143}, "mail.example.com:1143"},
	}
	for _, tt := range tests {
		if got := tt.cfg.Addr(); got != tt.want {
			t.Errorf("Addr() = %q, want %q", got, tt.want)
		}
	}
}
