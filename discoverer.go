package mailsleuth

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/optimode/mailsleuth/internal/normalize"
	"github.com/optimode/mailsleuth/internal/probe"
	"github.com/optimode/mailsleuth/internal/resolve"
	"github.com/optimode/mailsleuth/internal/retry"
	"github.com/optimode/mailsleuth/pattern"
	"github.com/optimode/mailsleuth/types"
)

// Discoverer is the main fluent builder struct.
// Instantiate with the New() function.
type Discoverer struct {
	dns    DNSOptions
	verify *VerifyOptions
	log    logrus.FieldLogger
	err    error // configuration error, returned on Discover()
}

// New creates a Discoverer. By default it generates and ranks
// candidates without touching any mail server; add WithVerification
// for live SMTP corroboration.
func New() *Discoverer {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &Discoverer{
		dns: defaultDNSOptions(),
		log: l,
	}
}

// WithDNS overrides the MX resolution defaults.
func (d *Discoverer) WithDNS(opts DNSOptions) *Discoverer {
	if opts.Timeout == 0 {
		opts.Timeout = defaultDNSOptions().Timeout
	}
	d.dns = opts
	return d
}

// WithVerification enables live SMTP probing of generated candidates.
// Optionally overrides the default VerifyOptions.
func (d *Discoverer) WithVerification(opts ...VerifyOptions) *Discoverer {
	o := defaultVerifyOptions()
	if len(opts) > 0 {
		o = fillVerifyDefaults(opts[0])
	}
	if o.MaxProbe < 0 || o.RetryAttempts < 0 {
		d.err = ErrInvalidVerifyOptions
		return d
	}
	d.verify = &o
	return d
}

// WithLogger attaches a structured logger for discovery progress.
// The default logger discards everything.
func (d *Discoverer) WithLogger(log logrus.FieldLogger) *Discoverer {
	if log != nil {
		d.log = log
	}
	return d
}

// Discover runs one discovery for a person at a domain: normalize the
// name, synthesize candidates, resolve the domain's mail exchangers
// and, when verification is enabled and the environment allows it,
// probe candidates against the highest-priority exchanger.
//
// Input-stage failures (no parseable first name, no candidates) surface
// as Success=false on the report. Network-stage failures degrade to
// unknown verification states; the returned error is reserved for
// builder misconfiguration. Entities live only for the duration of the
// call: nothing is cached across runs.
func (d *Discoverer) Discover(ctx context.Context, name, domain string) (Report, error) {
	if d.err != nil {
		return Report{}, d.err
	}

	first, last := normalize.Name(name)
	domain = normalize.Domain(domain)

	if first == "" {
		return Report{
			Success: false,
			Error:   "could not extract first name from input",
			Name:    name,
			Domain:  domain,
		}, nil
	}

	candidates := pattern.Generate(first, last, domain)
	if len(candidates) == 0 {
		return Report{
			Success: false,
			Error:   "could not generate email patterns",
			Name:    name,
			Domain:  domain,
		}, nil
	}

	mxHosts := d.resolver().MX(ctx, domain)
	hasMx := len(mxHosts) > 0
	d.log.WithFields(logrus.Fields{"domain": domain, "mx": len(mxHosts)}).Debug("mx resolved")

	smtpAvailable := false
	if d.verify != nil && hasMx {
		smtpAvailable = probe.PortOpen(d.verify.Dial, d.verify.AvailabilityHost, d.verify.AvailabilityTimeout)
		if !smtpAvailable {
			d.log.Warn("outbound smtp port unavailable, skipping probes")
		}
	}

	if d.verify != nil && hasMx && smtpAvailable {
		d.probeCandidates(ctx, candidates, mxHosts[0], domain)
	}

	Rank(candidates)

	report := Report{
		Success:        true,
		Name:           name,
		FirstName:      first,
		LastName:       last,
		Domain:         domain,
		HasMxRecords:   hasMx,
		MxRecords:      truncateHosts(mxHosts, 3),
		SmtpAvailable:  smtpAvailable,
		VerifiedEmails: acceptedOf(candidates),
		AllCandidates:  candidates,
		CandidateCount: len(candidates),
	}
	best := candidates[0]
	report.BestMatch = &best
	return report, nil
}

func (d *Discoverer) resolver() *resolve.Resolver {
	switch {
	case d.dns.Lookup != nil:
		return resolve.NewWithLookup(d.dns.Timeout, d.dns.Lookup)
	case d.dns.Server != "":
		return resolve.NewWithServer(d.dns.Server, d.dns.Timeout)
	default:
		return resolve.New(d.dns.Timeout)
	}
}

// probeCandidates walks candidates in generation order, up to the probe
// cap, against the highest-priority exchanger only. An acceptance ends
// the loop early: once a hit is found, further probing only burns time
// and the remote server's patience. A rejection lowers
// confidence and the loop continues; no signal leaves the candidate
// untouched.
func (d *Discoverer) probeCandidates(ctx context.Context, candidates []types.Candidate, mxHost, domain string) {
	o := d.verify
	prober := probe.New(probe.Config{
		HeloDomain:     o.HeloDomain,
		MailFrom:       o.MailFrom,
		ConnectTimeout: o.ConnectTimeout,
		CommandTimeout: o.CommandTimeout,
		Port:           o.Port,
		Dial:           o.Dial,
	})

	catchAll := false
	if o.DetectCatchAll {
		catchAll = d.detectCatchAll(ctx, prober, mxHost, domain)
	}

	max := o.MaxProbe
	if max > len(candidates) {
		max = len(candidates)
	}

	for i := 0; i < max; i++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		c := &candidates[i]
		out := d.probeOnce(ctx, prober, mxHost, c.Email)
		c.Message = out.Message
		d.log.WithFields(logrus.Fields{
			"email": c.Email,
			"mx":    mxHost,
			"state": out.State,
			"code":  out.Code,
		}).Debug("candidate probed")

		switch out.State {
		case types.StateAccepted:
			if catchAll {
				c.Message = "accepted, but server accepts any recipient (catch-all): " + out.Message
				continue
			}
			c.State = types.StateAccepted
			c.Adjust(+10)
			d.log.WithField("email", c.Email).Info("recipient accepted")
			return
		case types.StateRejected:
			c.State = types.StateRejected
			c.Adjust(-30)
		}
	}
}

// probeOnce runs one probe, optionally re-dialing transport-stage
// failures with capped exponential backoff. Replies with a code are a
// server decision and are never retried.
func (d *Discoverer) probeOnce(ctx context.Context, prober *probe.Prober, mxHost, email string) probe.Outcome {
	var out probe.Outcome
	retry.Do(ctx, d.verify.RetryAttempts, d.verify.RetryBase, func() bool {
		out = prober.Probe(mxHost, email)
		return out.State == types.StateUnknown && out.Code == 0
	})
	return out
}

// detectCatchAll probes a local part that cannot plausibly exist. An
// acceptance means the server takes any recipient, so acceptances at
// this domain carry no signal.
func (d *Discoverer) detectCatchAll(ctx context.Context, prober *probe.Prober, mxHost, domain string) bool {
	address := fmt.Sprintf("no-such-mailbox-%d@%s", time.Now().UnixNano(), domain)
	out := d.probeOnce(ctx, prober, mxHost, address)
	if out.State == types.StateAccepted {
		d.log.WithField("domain", domain).Warn("catch-all mail server detected")
		return true
	}
	return false
}

func truncateHosts(hosts []string, n int) []string {
	if len(hosts) > n {
		hosts = hosts[:n]
	}
	out := make([]string, len(hosts))
	copy(out, hosts)
	return out
}

func acceptedOf(candidates []types.Candidate) []types.Candidate {
	out := []types.Candidate{}
	for _, c := range candidates {
		if c.State == types.StateAccepted {
			out = append(out, c)
		}
	}
	return out
}
