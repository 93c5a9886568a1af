package itest

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus/hooks/test"
	"golang.org/x/crypto/bcrypt"

	"github.com/unique-meal/member-portal/internal/adapters/httpapi"
	"github.com/unique-meal/member-portal/internal/adapters/lognotifier"
	membookingrepo "github.com/unique-meal/member-portal/internal/adapters/memory/bookingrepo"
	memclock "github.com/unique-meal/member-portal/internal/adapters/memory/clock"
	memmemberrepo "github.com/unique-meal/member-portal/internal/adapters/memory/memberrepo"
	memsessionstore "github.com/unique-meal/member-portal/internal/adapters/memory/sessionstore"
	pgbookingrepo "github.com/unique-meal/member-portal/internal/adapters/postgres/bookingrepo"
	pgmemberrepo "github.com/unique-meal/member-portal/internal/adapters/postgres/memberrepo"
	pgsessionstore "github.com/unique-meal/member-portal/internal/adapters/postgres/sessionstore"
	postgres_testutil "github.com/unique-meal/member-portal/internal/adapters/postgres/testutil"
	"github.com/unique-meal/member-portal/internal/adapters/sqlstore"
	"github.com/unique-meal/member-portal/internal/app/bookings"
	"github.com/unique-meal/member-portal/internal/app/members"
	"github.com/unique-meal/member-portal/internal/app/sessions"
	"github.com/unique-meal/member-portal/internal/platform/auth/sessiontoken"
	"github.com/unique-meal/member-portal/internal/platform/password"
	bookingrepoport "github.com/unique-meal/member-portal/internal/ports/out/bookingrepo"
	memberrepoport "github.com/unique-meal/member-portal/internal/ports/out/memberrepo"
	sessionstoreport "github.com/unique-meal/member-portal/internal/ports/out/sessionstore"
)

type backend string

const (
	backendMemory   backend = "memory"
	backendSQLite   backend = "sqlite"
	backendPostgres backend = "postgres"
)

const (
	cookieName = "member_session"
	sessionTTL = 2 * time.Hour
)

func backendsFromEnv(t *testing.T) []backend {
	t.Helper()
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ITEST_BACKEND"))) {
	case "", "memory":
		return []backend{backendMemory}
	case "sqlite":
		return []backend{backendSQLite}
	case "postgres":
		return []backend{backendPostgres}
	case "all":
		return []backend{backendMemory, backendSQLite, backendPostgres}
	default:
		t.Fatalf("unknown ITEST_BACKEND value (expected memory|sqlite|postgres|all)")
		return nil
	}
}

type testServer struct {
	baseURL  string
	srv      *httptest.Server
	clk      *memclock.ManualClock
	members  memberrepoport.Repository
	bookings bookingrepoport.Repository
}

func newTestServer(t *testing.T, b backend) *testServer {
	t.Helper()

	clk := memclock.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	log, _ := test.NewNullLogger()

	var (
		memberRepo  memberrepoport.Repository
		bookingRepo bookingrepoport.Repository
		store       sessionstoreport.Store
	)

	switch b {
	case backendPostgres:
		pool := postgres_testutil.OpenMigratedPool(t)
		memberRepo = pgmemberrepo.NewRepo(pool)
		bookingRepo = pgbookingrepo.NewRepo(pool)
		store = pgsessionstore.NewStore(pool)
	case backendSQLite:
		db, err := sqlstore.OpenSQLite(":memory:", log)
		if err != nil {
			t.Fatalf("OpenSQLite: %v", err)
		}
		t.Cleanup(func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		})
		memberRepo = sqlstore.NewMemberRepo(db)
		bookingRepo = sqlstore.NewBookingRepo(db)
		store = sqlstore.NewSessionStore(db)
	case backendMemory:
		mr := memmemberrepo.NewRepo()
		memberRepo = mr
		bookingRepo = membookingrepo.NewRepo(mr)
		store = memsessionstore.NewStore()
	default:
		t.Fatalf("unknown backend: %s", b)
	}

	codec, err := sessiontoken.NewWithOptions([]byte("itest-secret-itest-secret-itest-secret"), "itest", clk)
	if err != nil {
		t.Fatalf("sessiontoken: %v", err)
	}

	membersSvc := members.NewService(memberRepo, clk, password.NewHasher(bcrypt.MinCost), log)
	bookingsSvc := bookings.NewService(bookingRepo, memberRepo, lognotifier.New(log), clk, log)
	sessionsSvc := sessions.NewService(store, codec, clk, sessionTTL, log)

	reg := prometheus.NewRegistry()
	metrics, err := httpapi.NewMetrics(reg)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	api, err := httpapi.NewServer(membersSvc, bookingsSvc, sessionsSvc, log, httpapi.ServerOptions{
		// httptest serves plain http; a Secure cookie would never be sent back.
		Cookie:  httpapi.CookieOptions{Name: cookieName, Secure: false},
		Metrics: metrics,
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	handler := httpapi.NewRouterWithOptions(api, httpapi.RouterOptions{Gatherer: reg, Logger: log})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &testServer{
		baseURL:  srv.URL,
		srv:      srv,
		clk:      clk,
		members:  memberRepo,
		bookings: bookingRepo,
	}
}

// browser is a client with its own cookie jar that does not follow redirects,
// so tests can assert on 303 responses.
type browser struct {
	s      *testServer
	client *http.Client
}

func (s *testServer) newBrowser(t *testing.T) *browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	c := &http.Client{
		Transport: s.srv.Client().Transport,
		Jar:       jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &browser{s: s, client: c}
}

func (b *browser) get(t *testing.T, path string) (int, string, http.Header) {
	t.Helper()
	resp, err := b.client.Get(b.s.baseURL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return readResponse(t, resp)
}

func (b *browser) post(t *testing.T, path string, form url.Values) (int, string, http.Header) {
	t.Helper()
	resp, err := b.client.PostForm(b.s.baseURL+path, form)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return readResponse(t, resp)
}

// session returns the session cookie currently held by the browser.
func (b *browser) session(t *testing.T) *http.Cookie {
	t.Helper()
	u, err := url.Parse(b.s.baseURL)
	if err != nil {
		t.Fatalf("parse base url: %v", err)
	}
	for _, c := range b.client.Jar.Cookies(u) {
		if c.Name == cookieName {
			return c
		}
	}
	return nil
}

// setSession replaces the browser's session cookie with value.
func (b *browser) setSession(t *testing.T, value string) {
	t.Helper()
	u, err := url.Parse(b.s.baseURL)
	if err != nil {
		t.Fatalf("parse base url: %v", err)
	}
	b.client.Jar.SetCookies(u, []*http.Cookie{{Name: cookieName, Value: value, Path: "/"}})
}

func readResponse(t *testing.T, resp *http.Response) (int, string, http.Header) {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body), resp.Header
}

func requireRedirect(t *testing.T, status int, hdr http.Header, location string) {
	t.Helper()
	if status != http.StatusSeeOther {
		t.Fatalf("status=%d want=%d", status, http.StatusSeeOther)
	}
	if got := hdr.Get("Location"); got != location {
		t.Fatalf("Location=%q want=%q", got, location)
	}
}

func requireStatus(t *testing.T, status int, body string, want int) {
	t.Helper()
	if status != want {
		t.Fatalf("status=%d want=%d body=%s", status, want, body)
	}
}

func memberCount(t *testing.T, repo memberrepoport.Repository) int {
	t.Helper()
	n, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	return n
}
