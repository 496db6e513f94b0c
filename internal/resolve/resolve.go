// Package resolve looks up a domain's mail-exchanger hosts.
package resolve

import (
	"context"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// LookupFunc performs an MX query for a domain. Injectable for tests.
type LookupFunc func(ctx context.Context, domain string) ([]*net.MX, error)

// Resolver returns a domain's MX hosts ordered by preference. A failed
// or empty lookup yields an empty list, never an error: a domain
// without resolvable MX records simply accepts no verifiable mail.
type Resolver struct {
	timeout time.Duration
	lookup  LookupFunc
}

// New creates a Resolver backed by the ambient system resolver.
func New(timeout time.Duration) *Resolver {
	r := &net.Resolver{}
	return &Resolver{timeout: timeout, lookup: r.LookupMX}
}

// NewWithServer creates a Resolver that sends MX queries straight to
// the given DNS server address (host:port), bypassing the ambient
// resolver configuration.
func NewWithServer(server string, timeout time.Duration) *Resolver {
	client := &dns.Client{Net: "udp", Timeout: timeout}
	return &Resolver{
		timeout: timeout,
		lookup: func(ctx context.Context, domain string) ([]*net.MX, error) {
			msg := new(dns.Msg)
			msg.SetQuestion(dns.Fqdn(domain), dns.TypeMX)
			msg.RecursionDesired = true

			resp, _, err := client.ExchangeContext(ctx, msg, server)
			if err != nil {
				return nil, err
			}

			var records []*net.MX
			for _, ans := range resp.Answer {
				if mx, ok := ans.(*dns.MX); ok {
					records = append(records, &net.MX{Host: mx.Mx, Pref: mx.Preference})
				}
			}
			return records, nil
		},
	}
}

// NewWithLookup is a test-oriented constructor that overrides the MX
// lookup function.
func NewWithLookup(timeout time.Duration, fn LookupFunc) *Resolver {
	return &Resolver{timeout: timeout, lookup: fn}
}

// MX resolves the domain's mail exchangers, lowest preference value
// (highest priority) first, with trailing root dots stripped.
func (r *Resolver) MX(ctx context.Context, domain string) []string {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	records, err := r.lookup(ctx, domain)
	if err != nil || len(records) == 0 {
		return nil
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Pref < records[j].Pref
	})

	hosts := make([]string, 0, len(records))
	for _, rec := range records {
		hosts = append(hosts, strings.TrimSuffix(rec.Host, "."))
	}
	return hosts
}
