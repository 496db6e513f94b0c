// Package mailsleuth infers a professional email address for a named
// person at an organization without an authoritative directory. It
// synthesizes candidates from common corporate naming conventions,
// discovers the organization's mail exchangers, and can corroborate
// candidates with partial SMTP transactions that never send a message.
//
// Basic usage:
//
//	report, err := mailsleuth.New().Discover(ctx, "Jane Doe", "acme.com")
//
// With live verification:
//
//	report, err := mailsleuth.New().
//	    WithVerification(mailsleuth.VerifyOptions{
//	        HeloDomain: "myapp.com",
//	        MailFrom:   "verify@myapp.com",
//	    }).
//	    Discover(ctx, "Jane Doe", "acme.com")
package mailsleuth

import "github.com/optimode/mailsleuth/types"

// Candidate is a re-export from the types package so that consumers
// don't need to import the types package directly.
type Candidate = types.Candidate

// VerificationState is a re-export.
type VerificationState = types.VerificationState

// State constants re-exported.
const (
	StateUnknown  = types.StateUnknown
	StateAccepted = types.StateAccepted
	StateRejected = types.StateRejected
)
