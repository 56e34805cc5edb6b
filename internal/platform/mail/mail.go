// Copyright (c) 2026 Viewr. All rights reserved.
// Author: dev@viewr.app

/*
Package mail provides outbound email dispatch for OTPs and reset links.

Email is treated as a black-box capability: Send(to, subject, body). Two
implementations exist:

  - SMTPSender: production dispatch over SMTP.
  - LogSender: development mode — messages are logged, never sent.

Which one is wired is decided once at startup from configuration.
*/
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
)

// Sender is the outbound email contract consumed by the auth flows.
type Sender interface {

	// Send dispatches a single plain-text message.
	Send(ctx context.Context, to, subject, body string) error
}

// # SMTP Implementation

// SMTPSender delivers mail through a configured SMTP relay.
type SMTPSender struct {
	addr string
	from string
	auth smtp.Auth
}

// NewSMTPSender constructs an [SMTPSender].
//
// # Parameters
//   - host, port: SMTP relay endpoint.
//   - username, password: Relay credentials (empty disables AUTH).
//   - from: Envelope sender address.
func NewSMTPSender(host, port, username, password, from string) *SMTPSender {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPSender{
		addr: host + ":" + port,
		from: from,
		auth: auth,
	}
}

/*
Send dispatches a plain-text message over SMTP.

Parameters:
  - ctx: context.Context (reserved; net/smtp does not support cancellation)
  - to: string
  - subject: string
  - body: string

Returns:
  - error: Relay or protocol failures
*/
func (sender *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	message := []byte(
		"From: " + sender.from + "\r\n" +
			"To: " + to + "\r\n" +
			"Subject: " + subject + "\r\n" +
			"\r\n" +
			body + "\r\n",
	)

	if err := smtp.SendMail(sender.addr, sender.auth, sender.from, []string{to}, message); err != nil {
		return fmt.Errorf("mail_smtp_send_failed: %w", err)
	}

	return nil
}

// # Development Implementation

// LogSender writes messages to the structured log instead of dispatching
// them. Used in development mode so OTPs and reset links are visible in the
// console without a mail relay.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender constructs a [LogSender].
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the message and always succeeds.
func (sender *LogSender) Send(ctx context.Context, to, subject, body string) error {
	sender.logger.InfoContext(ctx, "mail_suppressed_in_development",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.String("body", body),
	)
	return nil
}
