package smtp

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/unique-meal/member-portal/internal/domain"
)

func TestNotifier_BookingConfirmed_ComposesMail(t *testing.T) {
	t.Parallel()

	log, _ := test.NewNullLogger()
	n := New(Config{Host: "smtp.example.com", Port: 25, From: "kitchen@example.com"}, log)

	var sent *email.Email
	n.send = func(_ context.Context, e *email.Email) error {
		sent = e
		return nil
	}

	d, _ := domain.ParseMealDate("2024-06-01")
	err := n.BookingConfirmed(context.Background(),
		domain.Member{ID: "m1", Username: "alice", Email: "alice@example.com"},
		domain.MealBooking{ID: "b1", MealName: "Paella", MealDate: d},
	)
	if err != nil {
		t.Fatalf("BookingConfirmed() err=%v", err)
	}
	if sent == nil {
		t.Fatalf("no mail sent")
	}
	if sent.From != "kitchen@example.com" || len(sent.To) != 1 || sent.To[0] != "alice@example.com" {
		t.Fatalf("envelope from=%q to=%v", sent.From, sent.To)
	}
	body := string(sent.Text)
	for _, want := range []string{"alice", `"Paella"`, "2024-06-01", "b1"} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q: %q", want, body)
		}
	}
}

func TestNotifier_BookingConfirmed_ReturnsSendErrorWithoutLogging(t *testing.T) {
	t.Parallel()

	log, hook := test.NewNullLogger()
	n := New(Config{Host: "smtp.example.com", Port: 25, From: "kitchen@example.com"}, log)
	boom := errors.New("connection refused")
	n.send = func(context.Context, *email.Email) error { return boom }

	err := n.BookingConfirmed(context.Background(), domain.Member{Email: "a@example.com"}, domain.MealBooking{ID: "b1"})
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v, want %v", err, boom)
	}
	for _, e := range hook.AllEntries() {
		if e.Level <= logrus.WarnLevel {
			t.Fatalf("unexpected %s log %q", e.Level, e.Message)
		}
	}
}

func TestNotifier_BookingConfirmed_GivesUpAfterTimeout(t *testing.T) {
	t.Parallel()

	log, _ := test.NewNullLogger()
	n := New(Config{Host: "smtp.example.com", Port: 25, From: "kitchen@example.com", Timeout: 50 * time.Millisecond}, log)
	n.send = func(ctx context.Context, _ *email.Email) error {
		<-ctx.Done()
		return ctx.Err()
	}

	start := time.Now()
	err := n.BookingConfirmed(context.Background(), domain.Member{Email: "a@example.com"}, domain.MealBooking{ID: "b1"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err=%v, want %v", err, context.DeadlineExceeded)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("BookingConfirmed took %v", elapsed)
	}
}

func TestNotifier_SendSMTP_SilentServerTimesOut(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	// Accept and never greet.
	held := make(chan net.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err == nil {
			held <- c
		}
	}()
	t.Cleanup(func() {
		select {
		case c := <-held:
			_ = c.Close()
		default:
		}
	})

	addr := ln.Addr().(*net.TCPAddr)
	log, _ := test.NewNullLogger()
	n := New(Config{Host: "127.0.0.1", Port: addr.Port, From: "kitchen@example.com", Timeout: 100 * time.Millisecond}, log)

	start := time.Now()
	err = n.BookingConfirmed(context.Background(), domain.Member{Email: "a@example.com"}, domain.MealBooking{ID: "b1"})
	if err == nil {
		t.Fatalf("expected an error from a silent server")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("BookingConfirmed took %v", elapsed)
	}
}

func TestNew_DefaultsTimeout(t *testing.T) {
	t.Parallel()

	log, _ := test.NewNullLogger()
	if got := New(Config{}, log).cfg.Timeout; got != DefaultTimeout {
		t.Fatalf("Timeout=%v, want %v", got, DefaultTimeout)
	}
}
