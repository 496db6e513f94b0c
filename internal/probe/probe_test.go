package probe_test

import (
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/optimode/mailsleuth/internal/probe"
	"github.com/optimode/mailsleuth/types"
)

// scriptedServer simulates a mail exchanger on one end of a net.Pipe.
// A response of "" for a prefix closes the connection at that point.
func scriptedServer(conn net.Conn, banner string, responses map[string]string) {
	defer func() { _ = conn.Close() }()

	_, _ = fmt.Fprintf(conn, "%s\r\n", banner)

	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		cmd := string(buf[:n])

		matched := false
		for prefix, resp := range responses {
			if strings.HasPrefix(cmd, prefix) {
				if resp == "" {
					return
				}
				_, _ = fmt.Fprintf(conn, "%s\r\n", resp)
				matched = true
				break
			}
		}
		if !matched && strings.HasPrefix(cmd, "QUIT") {
			_, _ = fmt.Fprintf(conn, "221 Bye\r\n")
			return
		}
	}
}

func pipeDial(banner string, responses map[string]string) probe.DialFunc {
	return func(network, address string, timeout time.Duration) (net.Conn, error) {
		client, server := net.Pipe()
		go scriptedServer(server, banner, responses)
		return client, nil
	}
}

func newProber(dial probe.DialFunc) *probe.Prober {
	return probe.New(probe.Config{
		HeloDomain:     "test.com",
		MailFrom:       "verify@test.com",
		ConnectTimeout: 2 * time.Second,
		CommandTimeout: 2 * time.Second,
		Dial:           dial,
	})
}

func TestProbe_Accepted(t *testing.T) {
	p := newProber(pipeDial("220 mx.acme.com ESMTP", map[string]string{
		"HELO":      "250 mx.acme.com",
		"MAIL FROM": "250 OK",
		"RCPT TO":   "250 2.1.5 Recipient OK",
	}))

	out := p.Probe("mx.acme.com", "john.smith@acme.com")
	assert.Equal(t, types.StateAccepted, out.State)
	assert.Equal(t, 250, out.Code)
	assert.Contains(t, out.Message, "SMTP verified")
	assert.Contains(t, out.Message, "Recipient OK")
}

func TestProbe_AcceptedOther2xx(t *testing.T) {
	p := newProber(pipeDial("220 mx.acme.com ESMTP", map[string]string{
		"HELO":      "250 mx.acme.com",
		"MAIL FROM": "250 OK",
		"RCPT TO":   "251 User not local; will forward",
	}))

	out := p.Probe("mx.acme.com", "john@acme.com")
	assert.Equal(t, types.StateAccepted, out.State)
	assert.Equal(t, 251, out.Code)
}

func TestProbe_Rejected550(t *testing.T) {
	p := newProber(pipeDial("220 mx.acme.com ESMTP", map[string]string{
		"HELO":      "250 mx.acme.com",
		"MAIL FROM": "250 OK",
		"RCPT TO":   "550 5.1.1 No such user",
	}))

	out := p.Probe("mx.acme.com", "nobody@acme.com")
	assert.Equal(t, types.StateRejected, out.State)
	assert.Equal(t, 550, out.Code)
	assert.Contains(t, out.Message, "No such user")
}

func TestProbe_InconclusiveCode(t *testing.T) {
	p := newProber(pipeDial("220 mx.acme.com ESMTP", map[string]string{
		"HELO":      "250 mx.acme.com",
		"MAIL FROM": "250 OK",
		"RCPT TO":   "451 4.7.1 Greylisted, try again later",
	}))

	out := p.Probe("mx.acme.com", "john@acme.com")
	assert.Equal(t, types.StateUnknown, out.State)
	assert.Equal(t, 451, out.Code)
	assert.Contains(t, out.Message, "inconclusive: 451")
}

func TestProbe_MultilineReply(t *testing.T) {
	p := newProber(pipeDial("220 mx.acme.com ESMTP", map[string]string{
		"HELO":      "250-mx.acme.com\r\n250-SIZE 35882577\r\n250 OK",
		"MAIL FROM": "250 OK",
		"RCPT TO":   "250 Accepted",
	}))

	out := p.Probe("mx.acme.com", "john@acme.com")
	assert.Equal(t, types.StateAccepted, out.State)
}

func TestProbe_ConnectionFailed(t *testing.T) {
	p := newProber(func(network, address string, timeout time.Duration) (net.Conn, error) {
		return nil, fmt.Errorf("connect: connection refused")
	})

	out := p.Probe("mx.acme.com", "john@acme.com")
	assert.Equal(t, types.StateUnknown, out.State)
	assert.Zero(t, out.Code)
	assert.Contains(t, out.Message, "connection failed")
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "dial tcp: i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestProbe_DialTimeout(t *testing.T) {
	p := newProber(func(network, address string, timeout time.Duration) (net.Conn, error) {
		return nil, timeoutError{}
	})

	out := p.Probe("mx.acme.com", "john@acme.com")
	assert.Equal(t, types.StateUnknown, out.State)
	assert.Contains(t, out.Message, "port 25 may be blocked")
}

func TestProbe_ServerDisconnected(t *testing.T) {
	p := newProber(pipeDial("220 mx.acme.com ESMTP", map[string]string{
		"HELO":      "250 mx.acme.com",
		"MAIL FROM": "", // server hangs up mid-transaction
	}))

	out := p.Probe("mx.acme.com", "john@acme.com")
	assert.Equal(t, types.StateUnknown, out.State)
	assert.Zero(t, out.Code)
	assert.Contains(t, out.Message, "server disconnected")
}

func TestProbe_SessionTimeout(t *testing.T) {
	// The server answers nothing after the banner, like an
	// anti-harvesting tarpit.
	p := probe.New(probe.Config{
		HeloDomain:     "test.com",
		MailFrom:       "verify@test.com",
		ConnectTimeout: time.Second,
		CommandTimeout: 100 * time.Millisecond,
		Dial:           pipeDial("220 mx.acme.com ESMTP", map[string]string{}),
	})

	out := p.Probe("mx.acme.com", "john@acme.com")
	assert.Equal(t, types.StateUnknown, out.State)
	assert.Contains(t, out.Message, "port 25 may be blocked")
}

func TestPortOpen(t *testing.T) {
	open := probe.PortOpen(func(network, address string, timeout time.Duration) (net.Conn, error) {
		client, server := net.Pipe()
		go func() { _, _ = server.Read(make([]byte, 1)) }()
		return client, nil
	}, "mx.example.com:25", time.Second)
	assert.True(t, open)

	open = probe.PortOpen(func(network, address string, timeout time.Duration) (net.Conn, error) {
		return nil, timeoutError{}
	}, "mx.example.com:25", time.Second)
	assert.False(t, open)
}

func TestPortOpen_PassesAddressThrough(t *testing.T) {
	var gotAddress string
	probe.PortOpen(func(network, address string, timeout time.Duration) (net.Conn, error) {
		gotAddress = address
		return nil, fmt.Errorf("refused")
	}, "smtp-in.example.net:25", time.Second)
	assert.Equal(t, "smtp-in.example.net:25", gotAddress)
}
