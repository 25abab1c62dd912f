package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase", "Greek Yogurt", "greek yogurt"},
		{"punctuation", "Yogurt, Greek, plain, nonfat", "yogurt greek plain nonfat"},
		{"whitespace collapse", "  chicken   breast \t raw ", "chicken breast raw"},
		{"numbers kept", "2% milk", "2 milk"},
		{"unicode letters kept", "Crème fraîche", "crème fraîche"},
		{"empty", "", ""},
		{"only punctuation", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeText(tt.input))
		})
	}
}

func TestNormalizeTextIdempotent(t *testing.T) {
	once := NormalizeText("Yogurt, Greek, plain!")
	assert.Equal(t, once, NormalizeText(once))
}
