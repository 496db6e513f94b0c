// Package pattern synthesizes candidate email addresses for a person
// at a domain from common corporate naming conventions, each with a
// prior confidence score reflecting how widespread the convention is.
package pattern

import (
	"strings"

	"github.com/badoux/checkmail"

	"github.com/optimode/mailsleuth/types"
)

// Generate expands a normalized (first, last) name pair and a domain
// into an ordered list of candidate addresses. An empty first name or
// domain yields an empty list, not an error. With a last name present
// the full convention table is emitted; without one only the bare
// first-name address. Candidates are lower-cased and de-duplicated by
// address, keeping the first (highest-confidence) occurrence and
// preserving generation order. Generation is a pure function of its
// inputs.
func Generate(first, last, domain string) []types.Candidate {
	if first == "" || domain == "" {
		return nil
	}

	f := first[:1]
	l := ""
	if last != "" {
		l = last[:1]
	}

	type triple struct {
		local      string
		tag        string
		confidence int
	}

	var triples []triple
	if last != "" {
		triples = []triple{
			{first + "." + last, "firstname.lastname", 95},
			{first + last, "firstnamelastname", 90},
			{f + last, "flastname", 85},
			{first + "_" + last, "firstname_lastname", 80},
			{first + "-" + last, "firstname-lastname", 75},
			{last + "." + first, "lastname.firstname", 70},
			{f + "." + last, "f.lastname", 65},
			{first, "firstname", 60},
			{first + l, "firstnamel", 55},
			{f + l, "fl", 50},
		}
	} else {
		triples = []triple{{first, "firstname", 60}}
	}

	seen := make(map[string]struct{}, len(triples))
	out := make([]types.Candidate, 0, len(triples))
	for _, t := range triples {
		// Cannot be empty or start with @ given the guards above;
		// retained defensively together with a format check.
		if t.local == "" {
			continue
		}
		email := strings.ToLower(t.local + "@" + domain)
		if strings.HasPrefix(email, "@") {
			continue
		}
		if err := checkmail.ValidateFormat(email); err != nil {
			continue
		}
		if _, ok := seen[email]; ok {
			continue
		}
		seen[email] = struct{}{}
		out = append(out, types.Candidate{
			Email:      email,
			Pattern:    t.tag,
			Confidence: t.confidence,
			State:      types.StateUnknown,
		})
	}
	return out
}
