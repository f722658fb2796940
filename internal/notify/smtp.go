// Package notify implements outbound notification delivery over SMTP.
package notify

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// SMTPSender sends plain-text mail through a single SMTP relay. It is
// injected into the reminder dispatcher at construction; there is no
// package-level client.
type SMTPSender struct {
	addr string
	from string
	auth smtp.Auth
}

// NewSMTPSender constructs an SMTPSender. Auth is skipped when user is empty.
func NewSMTPSender(host, port, user, pass, from string) (*SMTPSender, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("smtp from address is required")
	}
	var auth smtp.Auth
	if user != "" {
		auth = smtp.PlainAuth("", user, pass, host)
	}
	return &SMTPSender{
		addr: host + ":" + port,
		from: from,
		auth: auth,
	}, nil
}

// Send delivers one message. Errors are returned, never thrown past the
// boundary, and no retry happens here.
func (s *SMTPSender) Send(address, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.from, address, subject, body)
	if err := smtp.SendMail(s.addr, s.auth, s.from, []string{address}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", address, err)
	}
	return nil
}

// LogSender writes notifications to the process log instead of delivering
// them. Used when no SMTP relay is configured.
type LogSender struct{}

// Send logs the message and reports success.
func (LogSender) Send(address, subject, body string) error {
	log.Printf("notify: (log only) to=%s subject=%q", address, subject)
	return nil
}
