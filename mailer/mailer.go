package mailer

import (
	"context"
	"fmt"
	"html"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/McTechie/tubecafe-backend/config"
	"github.com/sirupsen/logrus"
)

const resetSubject = "TubeCafe Account | Password Reset Token"

type Mailer interface {
	SendPasswordReset(ctx context.Context, to, resetURL string) error
}

// New returns an SMTP mailer when SMTP_HOST is configured and a mailer that
// only logs otherwise.
func New(cfg config.Mail) Mailer {
	if cfg.Host == "" {
		return LogMailer{}
	}
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail}
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type SMTPMailer struct {
	cfg  config.Mail
	send sendFunc
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	msg := BuildMessage(m.cfg.From, to, resetSubject, ResetBody(resetURL), time.Now())
	if err := m.send(addr, auth, m.cfg.From, []string{to}, msg); err != nil {
		logrus.WithField("source", "mailer").WithError(err).Error("Error sending forgot password email")
		return fmt.Errorf("send reset mail: %w", err)
	}
	return nil
}

// LogMailer writes the reset link to the log instead of sending it.
type LogMailer struct{}

func (LogMailer) SendPasswordReset(_ context.Context, to, resetURL string) error {
	logrus.WithFields(logrus.Fields{"source": "mailer", "to": to}).Infof("password reset link: %s", resetURL)
	return nil
}

func ResetBody(resetURL string) string {
	u := html.EscapeString(resetURL)
	return `<p>You requested a password reset for your TubeCafe account.</p>
<p><a href="` + u + `">Reset your password</a></p>
<p>If the link does not work, copy this URL into your browser:<br>` + u + `</p>
<p>The link expires shortly. If you did not request this, ignore this email.</p>`
}

// BuildMessage renders an RFC 5322 message with an HTML body.
func BuildMessage(from, to, subject, body string, at time.Time) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("Date: " + at.UTC().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	b.WriteString("\r\n")
	return []byte(b.String())
}
