package sessions

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	memclock "github.com/unique-meal/member-portal/internal/adapters/memory/clock"
	memsessionstore "github.com/unique-meal/member-portal/internal/adapters/memory/sessionstore"
	"github.com/unique-meal/member-portal/internal/domain"
	"github.com/unique-meal/member-portal/internal/platform/auth/sessiontoken"
	"github.com/unique-meal/member-portal/internal/platform/logging"
	"github.com/unique-meal/member-portal/internal/ports/out/sessionstore"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type fixture struct {
	svc   *Service
	store *memsessionstore.Store
	clk   *memclock.ManualClock
}

func newFixture(t *testing.T, ttl time.Duration) fixture {
	t.Helper()

	clk := memclock.NewManualClock(time.Unix(1700000000, 0).UTC())
	codec, err := sessiontoken.NewWithOptions(testSecret, "member-portal", clk)
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	store := memsessionstore.NewStore()
	return fixture{
		svc:   NewService(store, codec, clk, ttl, logging.Discard()),
		store: store,
		clk:   clk,
	}
}

func TestService_StartResolveEnd(t *testing.T) {
	t.Parallel()

	f := newFixture(t, time.Hour)
	ctx := context.Background()

	cookie, sess, err := f.svc.Start(ctx, "m1")
	if err != nil {
		t.Fatalf("Start err=%v", err)
	}
	if sess.MemberID != "m1" || !sess.ExpiresAt.Equal(f.clk.Now().Add(time.Hour)) {
		t.Fatalf("session=%+v", sess)
	}
	if strings.Contains(cookie, string(sess.ID)) {
		t.Fatalf("cookie exposes the raw session id")
	}

	got, err := f.svc.Resolve(ctx, cookie)
	if err != nil {
		t.Fatalf("Resolve err=%v", err)
	}
	if got.ID != sess.ID || got.MemberID != "m1" {
		t.Fatalf("Resolve()=%+v, want %+v", got, sess)
	}

	if err := f.svc.End(ctx, cookie); err != nil {
		t.Fatalf("End err=%v", err)
	}
	if _, err := f.svc.Resolve(ctx, cookie); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Resolve(after End) err=%v, want %v", err, ErrNoSession)
	}
	if err := f.svc.End(ctx, cookie); err != nil {
		t.Fatalf("End(again) err=%v", err)
	}
}

func TestService_Resolve_ExpiredSessionIsDeleted(t *testing.T) {
	t.Parallel()

	f := newFixture(t, time.Minute)
	ctx := context.Background()

	cookie, sess, err := f.svc.Start(ctx, "m1")
	if err != nil {
		t.Fatalf("Start err=%v", err)
	}
	f.clk.Advance(2 * time.Minute)

	if _, err := f.svc.Resolve(ctx, cookie); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Resolve err=%v, want %v", err, ErrNoSession)
	}
	if _, err := f.store.Get(ctx, sess.ID); !errors.Is(err, sessionstore.ErrNotFound) {
		t.Fatalf("store.Get err=%v, want record deleted", err)
	}
}

func TestService_Resolve_RecordExpiredBeforeToken(t *testing.T) {
	t.Parallel()

	f := newFixture(t, time.Hour)
	ctx := context.Background()

	cookie, sess, err := f.svc.Start(ctx, "m1")
	if err != nil {
		t.Fatalf("Start err=%v", err)
	}
	// Shorten the server-side record; the token alone must not keep it alive.
	rec, _ := f.store.Get(ctx, sess.ID)
	rec.ExpiresAt = f.clk.Now().Add(time.Minute)
	_ = f.store.Put(ctx, rec)
	f.clk.Advance(2 * time.Minute)

	if _, err := f.svc.Resolve(ctx, cookie); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Resolve err=%v, want %v", err, ErrNoSession)
	}
	if _, err := f.store.Get(ctx, sess.ID); !errors.Is(err, sessionstore.ErrNotFound) {
		t.Fatalf("store.Get err=%v, want record deleted", err)
	}
}

func TestService_Resolve_RejectsTamperedAndForeignCookies(t *testing.T) {
	t.Parallel()

	f := newFixture(t, time.Hour)
	ctx := context.Background()
	cookie, _, err := f.svc.Start(ctx, "m1")
	if err != nil {
		t.Fatalf("Start err=%v", err)
	}

	other := newFixture(t, time.Hour)
	foreign, _, err := other.svc.Start(ctx, "m1")
	if err != nil {
		t.Fatalf("Start(other) err=%v", err)
	}

	flipped := []byte(cookie)
	i := strings.LastIndex(cookie, ".") + 2
	if flipped[i] == 'A' {
		flipped[i] = 'B'
	} else {
		flipped[i] = 'A'
	}

	for name, v := range map[string]string{
		"empty":        "",
		"garbage":      "hello",
		"bad sig":      string(flipped),
		"unknown sess": foreign,
	} {
		if _, err := f.svc.Resolve(ctx, v); !errors.Is(err, ErrNoSession) {
			t.Fatalf("%s: Resolve err=%v, want %v", name, err, ErrNoSession)
		}
	}
}

type failingStore struct{ sessionstore.Store }

func (failingStore) Get(context.Context, domain.SessionID) (sessionstore.Session, error) {
	return sessionstore.Session{}, errors.New("db down")
}

func TestService_Resolve_StoreErrorIsNotNoSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t, time.Hour)
	ctx := context.Background()
	cookie, _, err := f.svc.Start(ctx, "m1")
	if err != nil {
		t.Fatalf("Start err=%v", err)
	}

	codec, _ := sessiontoken.NewWithOptions(testSecret, "member-portal", f.clk)
	svc := NewService(failingStore{f.store}, codec, f.clk, time.Hour, logging.Discard())
	if _, err := svc.Resolve(ctx, cookie); err == nil || errors.Is(err, ErrNoSession) {
		t.Fatalf("Resolve err=%v, want store error", err)
	}
}

type unsignableCodec struct{ TokenCodec }

func (unsignableCodec) Sign(domain.SessionID, domain.MemberID, time.Time) (string, error) {
	return "", errors.New("signing key unavailable")
}

type undeletableStore struct{ sessionstore.Store }

func (undeletableStore) Delete(context.Context, domain.SessionID) error {
	return errors.New("db down")
}

func TestService_Start_SigningFailureCleansUp(t *testing.T) {
	t.Parallel()

	f := newFixture(t, time.Hour)
	ctx := context.Background()
	codec, _ := sessiontoken.NewWithOptions(testSecret, "member-portal", f.clk)

	svc := NewService(f.store, unsignableCodec{codec}, f.clk, time.Hour, logging.Discard())
	svc.newSessionID = func() domain.SessionID { return "s1" }
	if _, _, err := svc.Start(ctx, "m1"); err == nil {
		t.Fatalf("Start err=nil, want signing error")
	}
	if _, err := f.store.Get(ctx, "s1"); !errors.Is(err, sessionstore.ErrNotFound) {
		t.Fatalf("unsigned record err=%v, want %v", err, sessionstore.ErrNotFound)
	}
}

func TestService_Start_CleanupFailureIsLogged(t *testing.T) {
	t.Parallel()

	f := newFixture(t, time.Hour)
	codec, _ := sessiontoken.NewWithOptions(testSecret, "member-portal", f.clk)
	log, hook := test.NewNullLogger()

	svc := NewService(undeletableStore{f.store}, unsignableCodec{codec}, f.clk, time.Hour, log)
	if _, _, err := svc.Start(context.Background(), "m1"); err == nil {
		t.Fatalf("Start err=nil, want signing error")
	}
	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.WarnLevel || entry.Message != "failed to delete unsigned session" {
		t.Fatalf("last log entry=%+v", entry)
	}
}
