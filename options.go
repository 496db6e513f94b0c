package mailsleuth

import (
	"context"
	"net"
	"time"

	"github.com/optimode/mailsleuth/internal/probe"
)

// DNSOptions configures MX resolution.
type DNSOptions struct {
	// Timeout is the maximum time for the MX lookup. Default: 5s
	Timeout time.Duration
	// Server, when set (host:port), sends the MX query straight to that
	// DNS server instead of the ambient system resolver.
	Server string
	// Lookup overrides the MX lookup function entirely (for testing).
	Lookup func(ctx context.Context, domain string) ([]*net.MX, error)
}

func defaultDNSOptions() DNSOptions {
	return DNSOptions{
		Timeout: 5 * time.Second,
	}
}

// VerifyOptions configures live SMTP verification of candidates.
type VerifyOptions struct {
	// HeloDomain is the name announced in the HELO command. Default: "mail.example.com"
	HeloDomain string
	// MailFrom is the neutral sender used in MAIL FROM. Default: "verify@example.com"
	MailFrom string
	// MaxProbe caps how many candidates are probed per run. Default: 5
	MaxProbe int
	// ConnectTimeout is the maximum time for the TCP connect. Default: 10s
	ConnectTimeout time.Duration
	// CommandTimeout bounds the whole SMTP dialogue. Default: 10s
	CommandTimeout time.Duration
	// Port is the SMTP port. Default: "25"
	Port string
	// AvailabilityHost is the well-known inbound exchanger (host:port)
	// used once per run to check that outbound SMTP is possible at all.
	// Default: gmail-smtp-in.l.google.com:25
	AvailabilityHost string
	// AvailabilityTimeout bounds the availability connect. Default: 5s
	AvailabilityTimeout time.Duration
	// DetectCatchAll probes a deliberately invalid local part first; if
	// the server accepts it, acceptances at this domain carry no signal
	// and are left unknown. Default: false (trust the first acceptance).
	DetectCatchAll bool
	// RetryAttempts re-dials probes that failed at the transport stage,
	// with capped exponential backoff. Retryable means the session
	// never reached a server reply code for the recipient: timeouts,
	// refused connects, and disconnects at any point of the dialogue.
	// A reply code is a server decision and is never retried.
	// Default: 0 (a failed probe is reported as unknown, not retried
	// within the run).
	RetryAttempts int
	// RetryBase is the first backoff interval. Default: 500ms
	RetryBase time.Duration
	// Dial is injectable for testing. Defaults to net.DialTimeout.
	Dial probe.DialFunc
}

func defaultVerifyOptions() VerifyOptions {
	return VerifyOptions{
		HeloDomain:          "mail.example.com",
		MailFrom:            "verify@example.com",
		MaxProbe:            5,
		ConnectTimeout:      10 * time.Second,
		CommandTimeout:      10 * time.Second,
		Port:                "25",
		AvailabilityHost:    probe.DefaultAvailabilityHost,
		AvailabilityTimeout: 5 * time.Second,
		RetryBase:           500 * time.Millisecond,
	}
}

// fillVerifyDefaults replaces zero values with the defaults, leaving
// explicitly set fields alone.
func fillVerifyDefaults(o VerifyOptions) VerifyOptions {
	def := defaultVerifyOptions()
	if o.HeloDomain == "" {
		o.HeloDomain = def.HeloDomain
	}
	if o.MailFrom == "" {
		o.MailFrom = def.MailFrom
	}
	if o.MaxProbe == 0 {
		o.MaxProbe = def.MaxProbe
	}
	if o.ConnectTimeout == 0 {
		o.ConnectTimeout = def.ConnectTimeout
	}
	if o.CommandTimeout == 0 {
		o.CommandTimeout = def.CommandTimeout
	}
	if o.Port == "" {
		o.Port = def.Port
	}
	if o.AvailabilityHost == "" {
		o.AvailabilityHost = def.AvailabilityHost
	}
	if o.AvailabilityTimeout == 0 {
		o.AvailabilityTimeout = def.AvailabilityTimeout
	}
	if o.RetryBase == 0 {
		o.RetryBase = def.RetryBase
	}
	return o
}
