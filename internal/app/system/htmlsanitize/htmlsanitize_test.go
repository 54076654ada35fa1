package htmlsanitize_test

import (
	"testing"

	"github.com/dalemusser/flockhub/internal/app/system/htmlsanitize"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain text", "Hello, World!", "Hello, World!"},
		{"strips tags", "<p>North <strong>Tribe</strong></p>", "North Tribe"},
		{"strips script", "desc<script>alert('xss')</script>", "desc"},
		{"strips attributes", `<a href="javascript:alert(1)">Click</a>`, "Click"},
		{"trims space", "  123 Main St  ", "123 Main St"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := htmlsanitize.Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
