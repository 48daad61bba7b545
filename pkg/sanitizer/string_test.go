package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"only spaces", "    ", ""},
		{"leading and trailing", "  Ada Lovelace  ", "Ada Lovelace"},
		{"inner runs collapse", "Ada   \t Lovelace", "Ada Lovelace"},
		{"newlines collapse", "Room\nService", "Room Service"},
		{"already clean", "Late Checkout", "Late Checkout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
