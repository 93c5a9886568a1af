// Package smtp sends booking confirmation mail.
package smtp

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"time"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/unique-meal/member-portal/internal/domain"
)

// DefaultTimeout bounds one delivery when Config.Timeout is zero.
const DefaultTimeout = 10 * time.Second

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// Timeout bounds the whole SMTP exchange for one message.
	Timeout time.Duration
}

// sendFunc delivers a prepared message and must give up once ctx is done.
// Tests replace it to capture mail.
type sendFunc func(ctx context.Context, e *email.Email) error

// Notifier implements notifier.Notifier over SMTP.
type Notifier struct {
	cfg  Config
	log  *logrus.Logger
	send sendFunc
}

func New(cfg Config, log *logrus.Logger) *Notifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	n := &Notifier{cfg: cfg, log: log}
	n.send = n.sendSMTP
	return n
}

// BookingConfirmed mails the member. Failures are returned to the caller,
// which decides how to report them.
func (n *Notifier) BookingConfirmed(ctx context.Context, m domain.Member, b domain.MealBooking) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e := email.NewEmail()
	e.From = n.cfg.From
	e.To = []string{m.Email}
	e.Subject = "Your meal booking is confirmed"
	e.Text = []byte(fmt.Sprintf(
		"Hello %s,\n\n"+
			"Your booking for %q on %s has been recorded.\n"+
			"Booking reference: %s\n\n"+
			"See you at the table,\nUnique Meal",
		m.Username, b.MealName, b.MealDate.String(), b.ID,
	))

	ctx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()
	if err := n.send(ctx, e); err != nil {
		return fmt.Errorf("failed to send booking confirmation: %w", err)
	}
	n.log.WithField("booking_id", string(b.ID)).Info("booking confirmation sent")
	return nil
}

// sendSMTP runs the SMTP exchange on a connection bounded by ctx's deadline.
func (n *Notifier) sendSMTP(ctx context.Context, e *email.Email) error {
	raw, err := e.Bytes()
	if err != nil {
		return err
	}
	from, err := mail.ParseAddress(e.From)
	if err != nil {
		return fmt.Errorf("parse sender: %w", err)
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port)))
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			_ = conn.Close()
			return err
		}
	}
	c, err := smtp.NewClient(conn, n.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: n.cfg.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return err
		}
	}
	if n.cfg.Username != "" {
		if err := c.Auth(smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)); err != nil {
			return err
		}
	}
	if err := c.Mail(from.Address); err != nil {
		return err
	}
	for _, rcpt := range e.To {
		to, err := mail.ParseAddress(rcpt)
		if err != nil {
			return fmt.Errorf("parse recipient: %w", err)
		}
		if err := c.Rcpt(to.Address); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}
