// Package types contains the shared types for mailsleuth.
// This package does not import anything from other mailsleuth packages
// to avoid circular imports.
package types

// VerificationState is the tri-state outcome of recipient verification.
// A candidate starts Unknown and transitions at most once, to Accepted
// or Rejected. Unknown means "no signal" and is never treated as a
// rejection.
type VerificationState string

const (
	StateUnknown  VerificationState = "unknown"
	StateAccepted VerificationState = "accepted"
	StateRejected VerificationState = "rejected"
)

// Candidate is a synthesized email address guess for a person at a
// domain, carrying the prior plausibility of its naming convention and
// the outcome of live verification, if any was attempted.
type Candidate struct {
	Email      string            `json:"email"`
	Pattern    string            `json:"pattern"`
	Confidence int               `json:"confidence"`
	State      VerificationState `json:"verificationState"`
	Message    string            `json:"verificationMessage,omitempty"`
}

// Adjust shifts the candidate's confidence by delta, clamped to [0,100].
func (c *Candidate) Adjust(delta int) {
	c.Confidence += delta
	if c.Confidence > 100 {
		c.Confidence = 100
	}
	if c.Confidence < 0 {
		c.Confidence = 0
	}
}
