package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionKeyFromSender(t *testing.T) {
	tests := []struct {
		name   string
		sender string
		want   string
	}{
		{"whatsapp prefix and plus", "whatsapp:+5215512345678", "5215512345678"},
		{"whatsapp prefix only", "whatsapp:5215512345678", "5215512345678"},
		{"bare number", "5215512345678", "5215512345678"},
		{"plus only", "+5215512345678", "5215512345678"},
		{"surrounding whitespace", "  whatsapp:+5215512345678 ", "5215512345678"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SessionKeyFromSender(tt.sender))
		})
	}
}

func TestSessionKeyFromSender_StableAcrossTurns(t *testing.T) {
	// The same end-user must always map to the same session key, otherwise
	// the classifier loses its per-session memory between turns.
	first := SessionKeyFromSender("whatsapp:+5215512345678")
	second := SessionKeyFromSender("whatsapp:+5215512345678")
	assert.Equal(t, first, second)
}
