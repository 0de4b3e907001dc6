package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gomail/gomail"
)

const otpSubject = "GoldenTime Security Verification"

const otpBody = `<div style="font-family: sans-serif; padding: 20px; border: 1px solid #DBEAFE; border-radius: 10px;">
  <h2 style="color: #1E40AF;">Identity Verification Code</h2>
  <p>Your OTP for GoldenTime Doctor Access is:</p>
  <h1 style="letter-spacing: 5px; color: #0F172A;">%s</h1>
  <p>This code expires in %d minutes.</p>
</div>`

// Dialer sends composed messages
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer sends one-time codes over SMTP
type SMTPMailer struct {
	dialer Dialer
	from   string
}

// NewSMTPMailer creates a mailer authenticating as username
func NewSMTPMailer(host string, port int, username, password string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   username,
	}
}

// NewMailerWithDialer creates a mailer on top of an existing dialer
func NewMailerWithDialer(d Dialer, from string) *SMTPMailer {
	return &SMTPMailer{dialer: d, from: from}
}

// OTPMessage builds the verification email
func (m *SMTPMailer) OTPMessage(to, code string, ttl time.Duration) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", otpSubject)
	msg.SetBody("text/html", fmt.Sprintf(otpBody, code, int(ttl.Minutes())))
	return msg
}

// SendOTP mails the code. gomail has no context support, so ctx is only checked before dialing.
func (m *SMTPMailer) SendOTP(ctx context.Context, to, code string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(m.OTPMessage(to, code, ttl)); err != nil {
		return fmt.Errorf("error sending email: %w", err)
	}
	return nil
}
