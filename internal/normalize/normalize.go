// Package normalize turns free-text person names and organization
// domains into the canonical forms the discovery pipeline works on.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/net/idna"
)

// Name extracts a canonical (first, last) token pair from a free-text
// full name. The input is lower-cased and stripped of every character
// outside a-z, whitespace and hyphen, then split on whitespace: with
// two or more tokens the first and last token are used (middle tokens
// discarded), with exactly one token the last name is empty. Hyphens
// inside the chosen tokens are removed ("mary-jane" becomes
// "maryjane"). Empty output is a valid state the caller must check;
// Name never errors.
func Name(full string) (first, last string) {
	full = strings.ToLower(strings.TrimSpace(full))

	var b strings.Builder
	for _, r := range full {
		if (r >= 'a' && r <= 'z') || r == '-' || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	parts := strings.Fields(b.String())
	switch {
	case len(parts) >= 2:
		first, last = parts[0], parts[len(parts)-1]
	case len(parts) == 1:
		first = parts[0]
	}

	first = strings.ReplaceAll(first, "-", "")
	last = strings.ReplaceAll(last, "-", "")
	return first, last
}

// Domain canonicalizes an organization domain: lower-cases it, strips
// a URL scheme and any path, drops a leading "www.", and converts
// internationalized domains to their ASCII (Punycode) form so they are
// usable for DNS and SMTP. Pure-ASCII input passes through unchanged
// apart from the prefix stripping.
func Domain(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))

	if strings.HasPrefix(domain, "http") {
		if idx := strings.Index(domain, "//"); idx >= 0 {
			domain = domain[idx+2:]
		}
		if idx := strings.Index(domain, "/"); idx >= 0 {
			domain = domain[:idx]
		}
	}
	domain = strings.TrimPrefix(domain, "www.")
	// A trailing root dot is valid FQDN notation but has no place in an
	// email address.
	domain = strings.TrimSuffix(domain, ".")

	for _, r := range domain {
		if r > 127 {
			if ascii, err := idna.Lookup.ToASCII(domain); err == nil {
				domain = ascii
			}
			break
		}
	}
	return domain
}
