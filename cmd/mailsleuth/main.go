// Command mailsleuth discovers a person's likely professional email
// address at a domain and prints the discovery report as JSON on
// stdout. Logs go to stderr so the output stays machine-readable.
//
// Environment defaults (optionally from a .env file):
//
//	MAILSLEUTH_HELO_DOMAIN  name announced in HELO
//	MAILSLEUTH_MAIL_FROM    neutral MAIL FROM sender
//	MAILSLEUTH_DNS_SERVER   explicit DNS server (host:port)
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/optimode/mailsleuth"
)

func main() {
	_ = godotenv.Load()

	var (
		name      = flag.String("name", "", "full name of the person")
		domain    = flag.String("domain", "", "organization domain")
		noVerify  = flag.Bool("no-verify", false, "skip live SMTP verification")
		maxProbe  = flag.Int("max-probe", 5, "maximum candidates to probe")
		catchAll  = flag.Bool("detect-catch-all", false, "probe an invalid local part before trusting acceptances")
		retries   = flag.Int("retries", 0, "retry attempts for transport-stage probe failures")
		dnsServer = flag.String("dns-server", os.Getenv("MAILSLEUTH_DNS_SERVER"), "explicit DNS server (host:port) instead of the system resolver")
		timeout   = flag.Duration("timeout", 90*time.Second, "overall run timeout")
		verbose   = flag.Bool("v", false, "log discovery progress to stderr")
	)
	flag.Parse()

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if *name == "" || *domain == "" {
		fail("usage: mailsleuth -name <full name> -domain <domain> [-no-verify] [-max-probe N]")
	}

	d := mailsleuth.New().WithLogger(log)
	if *dnsServer != "" {
		d = d.WithDNS(mailsleuth.DNSOptions{Server: *dnsServer})
	}
	if !*noVerify {
		d = d.WithVerification(mailsleuth.VerifyOptions{
			HeloDomain:     os.Getenv("MAILSLEUTH_HELO_DOMAIN"),
			MailFrom:       os.Getenv("MAILSLEUTH_MAIL_FROM"),
			MaxProbe:       *maxProbe,
			DetectCatchAll: *catchAll,
			RetryAttempts:  *retries,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	report, err := d.Discover(ctx, *name, *domain)
	if err != nil {
		fail(err.Error())
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		fail(err.Error())
	}
}

func fail(msg string) {
	b, _ := json.MarshalIndent(map[string]any{"success": false, "error": msg}, "", "  ")
	fmt.Println(string(b))
	os.Exit(1)
}
