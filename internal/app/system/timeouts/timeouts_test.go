package timeouts

import (
	"testing"
	"time"
)

func TestConfigureOverridesNonZeroValues(t *testing.T) {
	t.Cleanup(Reset)

	Configure(Config{Short: 2 * time.Second, Long: time.Minute})

	if got := Short(); got != 2*time.Second {
		t.Errorf("Short: got %s, want 2s", got)
	}
	if got := Long(); got != time.Minute {
		t.Errorf("Long: got %s, want 1m", got)
	}
	// zero values keep the defaults
	if got := Ping(); got != DefaultPing {
		t.Errorf("Ping: got %s, want default %s", got, DefaultPing)
	}
	if got := Medium(); got != DefaultMedium {
		t.Errorf("Medium: got %s, want default %s", got, DefaultMedium)
	}
}

func TestReset(t *testing.T) {
	Configure(Config{Ping: time.Hour})
	Reset()
	if got := Ping(); got != DefaultPing {
		t.Errorf("Ping after Reset: got %s, want %s", got, DefaultPing)
	}
}
