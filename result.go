package mailsleuth

import (
	"encoding/json"

	"github.com/optimode/mailsleuth/types"
)

// Report is the immutable summary of one discovery run. Given the same
// name, domain and network state, everything except live-probe outcomes
// is deterministic.
type Report struct {
	Success        bool              `json:"success"`
	Error          string            `json:"error,omitempty"`
	Name           string            `json:"name"`
	FirstName      string            `json:"firstName,omitempty"`
	LastName       string            `json:"lastName,omitempty"`
	Domain         string            `json:"domain"`
	HasMxRecords   bool              `json:"hasMxRecords"`
	MxRecords      []string          `json:"mxRecords"`
	SmtpAvailable  bool              `json:"smtpAvailable"`
	BestMatch      *types.Candidate  `json:"bestMatch"`
	VerifiedEmails []types.Candidate `json:"verifiedEmails"`
	AllCandidates  []types.Candidate `json:"allCandidates"`
	CandidateCount int               `json:"candidateCount"`
}

// MarshalJSON keeps the failure envelope slim: an input-stage failure
// carries only success, error, name and domain. Successful reports
// marshal with the full field set.
func (r Report) MarshalJSON() ([]byte, error) {
	if !r.Success {
		return json.Marshal(struct {
			Success bool   `json:"success"`
			Error   string `json:"error"`
			Name    string `json:"name"`
			Domain  string `json:"domain"`
		}{r.Success, r.Error, r.Name, r.Domain})
	}
	type report Report
	return json.Marshal(report(r))
}

// Best returns the top-ranked candidate. The second return value is
// false when the run produced no candidates.
func (r Report) Best() (types.Candidate, bool) {
	if r.BestMatch == nil {
		return types.Candidate{}, false
	}
	return *r.BestMatch, true
}

// CandidateFor returns the candidate generated by the given pattern
// tag, if it exists in the ranked list.
func (r Report) CandidateFor(tag string) (types.Candidate, bool) {
	for _, c := range r.AllCandidates {
		if c.Pattern == tag {
			return c, true
		}
	}
	return types.Candidate{}, false
}
