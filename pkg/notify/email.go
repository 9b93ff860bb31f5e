package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pkgz/email"
	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/repeater/v2"

	"github.com/umputun/feed-digest/pkg/config"
)

// Email delivers rendered digests over SMTP
type Email struct {
	sender *email.Sender
	from   string
	to     []string
}

// NewEmail creates a sender from SMTP config
func NewEmail(cfg config.SMTPConfig) *Email {
	opts := []email.Option{
		email.Port(cfg.Port),
		email.ContentType("text/html"),
		email.TimeOut(cfg.Timeout),
		email.Log(lgr.Default()),
	}
	if cfg.Username != "" {
		opts = append(opts, email.Auth(cfg.Username, cfg.Password))
	}
	if cfg.TLS {
		opts = append(opts, email.TLS(true))
	}
	if cfg.StartTLS {
		opts = append(opts, email.STARTTLS(true))
	}

	return &Email{sender: email.NewSender(cfg.Host, opts...), from: cfg.From, to: cfg.To}
}

// Send delivers the digest html, retrying transient SMTP failures with
// backoff. Feeds are never re-fetched on failure; delivery is the one place
// where a retry is cheap and safe.
func (e *Email) Send(ctx context.Context, subject, htmlBody string) error {
	retrier := repeater.NewBackoff(3, time.Second, repeater.WithMaxDelay(10*time.Second))
	err := retrier.Do(ctx, func() error {
		return e.sender.Send(htmlBody, email.Params{From: e.from, To: e.to, Subject: subject})
	})
	if err != nil {
		return fmt.Errorf("send digest email: %w", err)
	}
	return nil
}
