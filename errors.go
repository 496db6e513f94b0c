package mailsleuth

import "errors"

var (
	// ErrInvalidVerifyOptions is returned by Discover when
	// WithVerification was given a negative MaxProbe or RetryAttempts.
	ErrInvalidVerifyOptions = errors.New("mailsleuth: VerifyOptions MaxProbe and RetryAttempts must not be negative")
)
