package smtp

import (
	"errors"
	"testing"
)

func TestDeliveryErrorUnwrap(t *testing.T) {
	base := errors.New("connection refused")
	err := &DeliveryError{Host: "smtp.example.com", Err: base}
	if !errors.Is(err, base) {
		t.Errorf("DeliveryError does not unwrap to the cause")
	}
	want := "smtp: deliver via smtp.example.com: connection refused"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestConfigPortDefaults(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want int
	}{
		{"explicit port wins", Config{Port: 2525, TLS: true}, 2525},
		{"implicit TLS", Config{TLS: true}, 465},
		{"starttls submission", Config{STARTTLS: true}, 587},
		{"plaintext", Config{}, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.port(); got != tt.want {
				t.Errorf("port() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSenderLazyAndCloseIdempotent(t *testing.T) {
	s := NewSender(&Config{Host: "smtp.example.com", Port: 465, TLS: true})
	if s.client != nil {
		t.Fatalf("sender connected before first Send")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close on never-connected sender: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
