package bookingrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/unique-meal/member-portal/internal/domain"
	"github.com/unique-meal/member-portal/internal/ports/out/bookingrepo"
)

// MemberLookup is the subset of the member repository used to enforce the
// booking -> member reference.
type MemberLookup interface {
	Exists(id domain.MemberID) bool
}

// Repo is an in-memory implementation of bookingrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex

	byID     map[domain.BookingID]bookingrepo.Booking
	byMember map[domain.MemberID][]domain.BookingID

	members MemberLookup
}

// NewRepo returns a booking repo. When members is nil, member references are not checked.
func NewRepo(members MemberLookup) *Repo {
	return &Repo{
		byID:     make(map[domain.BookingID]bookingrepo.Booking),
		byMember: make(map[domain.MemberID][]domain.BookingID),
		members:  members,
	}
}

func (r *Repo) Create(ctx context.Context, b bookingrepo.Booking) error {
	_ = ctx
	if r.members != nil && !r.members.Exists(b.MemberID) {
		return bookingrepo.ErrMemberNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[b.ID]; ok {
		return bookingrepo.ErrAlreadyExists
	}
	r.byID[b.ID] = b
	r.byMember[b.MemberID] = append(r.byMember[b.MemberID], b.ID)
	return nil
}

func (r *Repo) ListByMember(ctx context.Context, memberID domain.MemberID) ([]bookingrepo.Booking, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byMember[memberID]
	out := make([]bookingrepo.Booking, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.byID[id])
	}
	sortBookings(out)
	return out, nil
}

func (r *Repo) CountByMember(ctx context.Context, memberID domain.MemberID) (int, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byMember[memberID]), nil
}

func sortBookings(bs []bookingrepo.Booking) {
	sort.Slice(bs, func(i, j int) bool {
		a, b := bs[i], bs[j]
		if a.MealDate != b.MealDate {
			return a.MealDate.Before(b.MealDate)
		}
		if !a.BookedOn.Equal(b.BookedOn) {
			return a.BookedOn.Before(b.BookedOn)
		}
		return a.ID < b.ID
	})
}
