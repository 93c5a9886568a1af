package contracttest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/unique-meal/member-portal/internal/domain"
	bookingrepoport "github.com/unique-meal/member-portal/internal/ports/out/bookingrepo"
	memberrepoport "github.com/unique-meal/member-portal/internal/ports/out/memberrepo"
	sessionstoreport "github.com/unique-meal/member-portal/internal/ports/out/sessionstore"
)

type CleanupFunc = func()

type MemberRepoFactory func(t *testing.T) (memberrepoport.Repository, CleanupFunc)

// BookingRepoFactory returns a booking repo together with the member repo that
// shares its storage, so the suite can seed owning members.
type BookingRepoFactory func(t *testing.T) (memberrepoport.Repository, bookingrepoport.Repository, CleanupFunc)

// SessionStoreFactory returns a session store together with the member repo that
// shares its storage.
type SessionStoreFactory func(t *testing.T) (memberrepoport.Repository, sessionstoreport.Store, CleanupFunc)

// seedMember creates a member with unique username/email so suites can run
// repeatedly against a shared database.
func seedMember(t *testing.T, ctx context.Context, repo memberrepoport.Repository, now time.Time) memberrepoport.Member {
	t.Helper()
	suffix := uuid.NewString()[:8]
	m := memberrepoport.Member{
		ID:             domain.MemberID(uuid.NewString()),
		Username:       "member-" + suffix,
		Email:          "member-" + suffix + "@example.com",
		PasswordHash:   "$2a$04$abcdefghijklmnopqrstuuJ5qfYb6Z6u0wU8n3m8b1Y0nqkzv3kG2",
		MembershipTier: domain.DefaultMembershipTier,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := repo.Create(ctx, m); err != nil {
		t.Fatalf("seed member: %v", err)
	}
	return m
}

func RunMemberRepo(t *testing.T, newRepo MemberRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	now := time.Unix(1000, 0).UTC()
	before, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}

	a := seedMember(t, ctx, repo, now)

	got, err := repo.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Username != a.Username || got.Email != a.Email || got.PasswordHash != a.PasswordHash || got.MembershipTier != a.MembershipTier {
		t.Fatalf("GetByID()=%+v, want %+v", got, a)
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("CreatedAt=%v, want %v", got.CreatedAt, now)
	}
	if got, err := repo.GetByUsername(ctx, a.Username); err != nil || got.ID != a.ID {
		t.Fatalf("GetByUsername: got=%+v err=%v", got, err)
	}
	if got, err := repo.GetByEmail(ctx, a.Email); err != nil || got.ID != a.ID {
		t.Fatalf("GetByEmail: got=%+v err=%v", got, err)
	}

	// Missing lookups.
	if _, err := repo.GetByID(ctx, domain.MemberID(uuid.NewString())); !errors.Is(err, memberrepoport.ErrNotFound) {
		t.Fatalf("GetByID(missing) err=%v, want %v", err, memberrepoport.ErrNotFound)
	}
	if _, err := repo.GetByUsername(ctx, "nobody-"+uuid.NewString()); !errors.Is(err, memberrepoport.ErrNotFound) {
		t.Fatalf("GetByUsername(missing) err=%v, want %v", err, memberrepoport.ErrNotFound)
	}
	if _, err := repo.GetByEmail(ctx, "nobody-"+uuid.NewString()+"@example.com"); !errors.Is(err, memberrepoport.ErrNotFound) {
		t.Fatalf("GetByEmail(missing) err=%v, want %v", err, memberrepoport.ErrNotFound)
	}

	// Username uniqueness.
	dupUsername := a
	dupUsername.ID = domain.MemberID(uuid.NewString())
	dupUsername.Email = "other-" + uuid.NewString()[:8] + "@example.com"
	if err := repo.Create(ctx, dupUsername); !isUniqueViolation(err, memberrepoport.ErrUsernameTaken) {
		t.Fatalf("Create(dup username) err=%v, want uniqueness error", err)
	}

	// Email uniqueness.
	dupEmail := a
	dupEmail.ID = domain.MemberID(uuid.NewString())
	dupEmail.Username = "other-" + uuid.NewString()[:8]
	if err := repo.Create(ctx, dupEmail); !isUniqueViolation(err, memberrepoport.ErrEmailTaken) {
		t.Fatalf("Create(dup email) err=%v, want uniqueness error", err)
	}

	// Rejected writes leave no rows behind.
	after, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if after != before+1 {
		t.Fatalf("Count()=%d, want %d", after, before+1)
	}
}

// isUniqueViolation accepts the specific sentinel or the generic ErrAlreadyExists,
// since not every store can attribute the violated constraint.
func isUniqueViolation(err error, specific error) bool {
	return errors.Is(err, specific) || errors.Is(err, memberrepoport.ErrAlreadyExists)
}

func RunBookingRepo(t *testing.T, newRepos BookingRepoFactory) {
	t.Helper()
	ctx := context.Background()

	members, bookings, cleanup := newRepos(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	now := time.Unix(2000, 0).UTC()
	owner := seedMember(t, ctx, members, now)
	other := seedMember(t, ctx, members, now)

	mustDate := func(s string) domain.MealDate {
		d, err := domain.ParseMealDate(s)
		if err != nil {
			t.Fatalf("ParseMealDate(%q): %v", s, err)
		}
		return d
	}

	later := bookingrepoport.Booking{
		ID:       domain.BookingID(uuid.NewString()),
		MemberID: owner.ID,
		MealName: "Sunday Roast",
		MealDate: mustDate("2024-05-12"),
		BookedOn: now,
	}
	earlier := bookingrepoport.Booking{
		ID:       domain.BookingID(uuid.NewString()),
		MemberID: owner.ID,
		MealName: "Fish & Chips, extra vinegar",
		MealDate: mustDate("2024-05-10"),
		BookedOn: now.Add(time.Minute),
	}
	for _, b := range []bookingrepoport.Booking{later, earlier} {
		if err := bookings.Create(ctx, b); err != nil {
			t.Fatalf("Create(%s): %v", b.MealName, err)
		}
	}
	if err := bookings.Create(ctx, bookingrepoport.Booking{
		ID:       domain.BookingID(uuid.NewString()),
		MemberID: other.ID,
		MealName: "Curry Night",
		MealDate: mustDate("2024-05-11"),
		BookedOn: now,
	}); err != nil {
		t.Fatalf("Create(other): %v", err)
	}

	got, err := bookings.ListByMember(ctx, owner.ID)
	if err != nil {
		t.Fatalf("ListByMember: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListByMember() len=%d, want 2", len(got))
	}
	if got[0].ID != earlier.ID || got[1].ID != later.ID {
		t.Fatalf("ListByMember() order=%v, want [%s %s]", []domain.BookingID{got[0].ID, got[1].ID}, earlier.ID, later.ID)
	}
	// Exact round-trip of the submitted values.
	if got[0].MealName != earlier.MealName || got[0].MealDate != earlier.MealDate || got[0].MemberID != owner.ID {
		t.Fatalf("ListByMember()[0]=%+v, want %+v", got[0], earlier)
	}
	if !got[0].BookedOn.Equal(earlier.BookedOn) {
		t.Fatalf("BookedOn=%v, want %v", got[0].BookedOn, earlier.BookedOn)
	}

	n, err := bookings.CountByMember(ctx, owner.ID)
	if err != nil {
		t.Fatalf("CountByMember: %v", err)
	}
	if n != 2 {
		t.Fatalf("CountByMember()=%d, want 2", n)
	}

	// Owning member must exist.
	err = bookings.Create(ctx, bookingrepoport.Booking{
		ID:       domain.BookingID(uuid.NewString()),
		MemberID: domain.MemberID(uuid.NewString()),
		MealName: "Orphan",
		MealDate: mustDate("2024-05-12"),
		BookedOn: now,
	})
	if !errors.Is(err, bookingrepoport.ErrMemberNotFound) {
		t.Fatalf("Create(orphan) err=%v, want %v", err, bookingrepoport.ErrMemberNotFound)
	}

	empty, err := bookings.ListByMember(ctx, domain.MemberID(uuid.NewString()))
	if err != nil {
		t.Fatalf("ListByMember(unknown): %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("ListByMember(unknown) len=%d, want 0", len(empty))
	}
}

func RunSessionStore(t *testing.T, newStore SessionStoreFactory) {
	t.Helper()
	ctx := context.Background()

	members, store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	now := time.Unix(3000, 0).UTC()
	m := seedMember(t, ctx, members, now)

	sess := sessionstoreport.Session{
		ID:        domain.SessionID(uuid.NewString()),
		MemberID:  m.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.MemberID != m.ID || !got.ExpiresAt.Equal(sess.ExpiresAt) || !got.CreatedAt.Equal(sess.CreatedAt) {
		t.Fatalf("Get()=%+v, want %+v", got, sess)
	}

	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, sess.ID); !errors.Is(err, sessionstoreport.ErrNotFound) {
		t.Fatalf("Get(after delete) err=%v, want %v", err, sessionstoreport.ErrNotFound)
	}
	// Idempotent delete.
	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete(again): %v", err)
	}
}
