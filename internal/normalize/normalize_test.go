package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/optimode/mailsleuth/internal/normalize"
)

func TestName(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantFirst string
		wantLast  string
	}{
		{"two tokens", "John Smith", "john", "smith"},
		{"middle token discarded", "John Quincy Adams", "john", "adams"},
		{"punctuation stripped", "Dr. Jane O'Connor, PhD", "dr", "phd"},
		{"hyphen removed from token", "Mary-Jane Watson", "maryjane", "watson"},
		{"single token", "Madonna", "madonna", ""},
		{"empty input", "", "", ""},
		{"digits only", "123 456", "", ""},
		{"whitespace variants", "jane\tdoe", "jane", "doe"},
		{"case folded", "JANE DOE", "jane", "doe"},
		{"hyphen-only token collapses", "- Smith", "", "smith"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last := normalize.Name(tt.input)
			assert.Equal(t, tt.wantFirst, first)
			assert.Equal(t, tt.wantLast, last)
		})
	}
}

func TestDomain(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain domain unchanged", "acme.com", "acme.com"},
		{"case folded", "Acme.COM", "acme.com"},
		{"scheme and path stripped", "https://www.acme.com/about", "acme.com"},
		{"http scheme", "http://acme.com", "acme.com"},
		{"www stripped", "www.acme.com", "acme.com"},
		{"surrounding space trimmed", "  acme.com  ", "acme.com"},
		{"trailing root dot stripped", "acme.com.", "acme.com"},
		{"idn converted to punycode", "münchen.de", "xn--mnchen-3ya.de"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalize.Domain(tt.input))
		})
	}
}
