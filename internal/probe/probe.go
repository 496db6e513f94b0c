// Package probe implements the partial SMTP transaction used to test
// whether a mail exchanger would accept a recipient address, plus the
// one-time outbound port check that precedes it. No message content is
// ever transmitted: the dialogue stops at RCPT TO and the session is
// closed without DATA.
package probe

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/optimode/mailsleuth/types"
)

// DefaultAvailabilityHost is a well-known, always-reachable inbound
// mail exchanger used to test whether outbound port 25 is open at all.
const DefaultAvailabilityHost = "gmail-smtp-in.l.google.com:25"

// DialFunc opens a TCP connection. Injectable for tests; the default
// is net.DialTimeout.
type DialFunc func(network, address string, timeout time.Duration) (net.Conn, error)

// Config configures a Prober.
type Config struct {
	// HeloDomain is the name the probing client announces in HELO.
	HeloDomain string
	// MailFrom is the neutral placeholder sender for MAIL FROM.
	MailFrom string
	// ConnectTimeout bounds the TCP connect. Default: 10s
	ConnectTimeout time.Duration
	// CommandTimeout bounds the whole SMTP dialogue. Default: 10s
	CommandTimeout time.Duration
	// Port is the SMTP port. Default: "25"
	Port string
	// Dial is injectable for testing. Defaults to net.DialTimeout.
	Dial DialFunc
}

// Outcome is the result of probing one recipient on one host. Code is
// zero when the conversation never produced a server decision, which
// marks the failure as transport-stage rather than policy.
type Outcome struct {
	State   types.VerificationState
	Code    int
	Message string
}

// Prober runs single-shot recipient probes. Every probe opens its own
// TCP connection and closes it before returning; connections are never
// reused across candidates.
type Prober struct {
	cfg Config
}

// New creates a Prober, filling unset Config fields with defaults.
func New(cfg Config) *Prober {
	if cfg.Dial == nil {
		cfg.Dial = net.DialTimeout
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = 10 * time.Second
	}
	if cfg.Port == "" {
		cfg.Port = "25"
	}
	if cfg.HeloDomain == "" {
		cfg.HeloDomain = "mail.example.com"
	}
	if cfg.MailFrom == "" {
		cfg.MailFrom = "verify@example.com"
	}
	return &Prober{cfg: cfg}
}

// PortOpen reports whether the current network path permits outbound
// connections on the mail-submission port at all; many hosting
// environments block port 25 outbound. A single bare TCP connect to a
// well-known inbound exchanger answers this for the whole run instead
// of failing once per candidate. dial may be nil, host may be empty;
// defaults apply.
func PortOpen(dial DialFunc, host string, timeout time.Duration) bool {
	if dial == nil {
		dial = net.DialTimeout
	}
	if host == "" {
		host = DefaultAvailabilityHost
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	conn, err := dial("tcp", host, timeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// Probe tests whether mxHost would accept mail for email. The partial
// transaction is: connect, read banner, HELO, MAIL FROM with the
// neutral sender, RCPT TO with the candidate, then QUIT. Only the RCPT
// reply decides the outcome:
//
//	2xx  -> Accepted, carrying the server's literal response text
//	550  -> Rejected, carrying the server's literal response text
//	else -> Unknown (inconclusive), code and text recorded
//
// Transport failures fold into Unknown with a message distinguishing
// "connection failed", "server disconnected" and a timeout, which
// usually means the port is blocked upstream.
func (p *Prober) Probe(mxHost, email string) Outcome {
	address := net.JoinHostPort(mxHost, p.cfg.Port)
	conn, err := p.cfg.Dial("tcp", address, p.cfg.ConnectTimeout)
	if err != nil {
		return Outcome{State: types.StateUnknown, Message: classifyDialError(err)}
	}
	defer func() { _ = conn.Close() }()

	if err := conn.SetDeadline(time.Now().Add(p.cfg.CommandTimeout)); err != nil {
		return Outcome{State: types.StateUnknown, Message: fmt.Sprintf("connection failed: %v", err)}
	}

	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)

	// Banner. The greeting code is not inspected beyond being readable:
	// the recipient decision comes from the RCPT reply alone.
	if _, _, err := readReply(reader); err != nil {
		return Outcome{State: types.StateUnknown, Message: classifySessionError(err)}
	}

	if _, _, err := command(reader, writer, "HELO "+p.cfg.HeloDomain); err != nil {
		return Outcome{State: types.StateUnknown, Message: classifySessionError(err)}
	}

	if _, _, err := command(reader, writer, fmt.Sprintf("MAIL FROM:<%s>", p.cfg.MailFrom)); err != nil {
		return Outcome{State: types.StateUnknown, Message: classifySessionError(err)}
	}

	code, text, err := command(reader, writer, fmt.Sprintf("RCPT TO:<%s>", email))
	if err != nil {
		return Outcome{State: types.StateUnknown, Message: classifySessionError(err)}
	}

	// Best-effort QUIT; the outcome is already decided.
	_, _ = writer.WriteString("QUIT\r\n")
	_ = writer.Flush()

	switch {
	case code >= 200 && code < 300:
		return Outcome{
			State:   types.StateAccepted,
			Code:    code,
			Message: "SMTP verified: " + text,
		}
	case code == 550:
		return Outcome{
			State:   types.StateRejected,
			Code:    code,
			Message: "recipient does not exist: " + text,
		}
	default:
		return Outcome{
			State:   types.StateUnknown,
			Code:    code,
			Message: fmt.Sprintf("inconclusive: %d %s", code, text),
		}
	}
}

// command sends one SMTP command line and reads the reply.
func command(r *bufio.Reader, w *bufio.Writer, cmd string) (int, string, error) {
	if _, err := w.WriteString(cmd + "\r\n"); err != nil {
		return 0, "", err
	}
	if err := w.Flush(); err != nil {
		return 0, "", err
	}
	return readReply(r)
}

// readReply reads a (possibly multi-line) SMTP reply and returns the
// final code with the joined literal text.
func readReply(r *bufio.Reader) (int, string, error) {
	var lines []string
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return 0, "", err
		}
		line = strings.TrimRight(line, "\r\n")
		if len(line) < 3 {
			return 0, "", errors.New("SMTP reply line too short")
		}
		lines = append(lines, line)
		// A '-' after the code marks a continuation line.
		if len(line) < 4 || line[3] != '-' {
			break
		}
	}

	last := lines[len(lines)-1]
	code, err := strconv.Atoi(last[:3])
	if err != nil {
		return 0, "", fmt.Errorf("invalid SMTP reply code %q: %w", last[:3], err)
	}
	return code, strings.Join(lines, " "), nil
}

// classifyDialError describes a connect-stage failure. A timeout here
// usually means the port is blocked by the network, which is worth
// distinguishing from a refusing or absent server.
func classifyDialError(err error) string {
	if isTimeout(err) {
		return "connection timeout (port 25 may be blocked)"
	}
	return fmt.Sprintf("connection failed: %v", err)
}

// classifySessionError describes a mid-transaction failure: the
// distinction between a server that hung up and a stalled connection
// matters when diagnosing greylisting and anti-harvesting tarpits.
func classifySessionError(err error) string {
	switch {
	case isTimeout(err):
		return "connection timeout (port 25 may be blocked)"
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, io.ErrClosedPipe), errors.Is(err, net.ErrClosed),
		errors.Is(err, syscall.ECONNRESET):
		return "server disconnected"
	default:
		return fmt.Sprintf("verification error: %v", err)
	}
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
