package memberrepo

import (
	"context"
	"sync"

	"github.com/unique-meal/member-portal/internal/domain"
	"github.com/unique-meal/member-portal/internal/ports/out/memberrepo"
)

// Repo is an in-memory implementation of memberrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex

	byID         map[domain.MemberID]memberrepo.Member
	idByUsername map[string]domain.MemberID
	idByEmail    map[string]domain.MemberID
}

func NewRepo() *Repo {
	return &Repo{
		byID:         make(map[domain.MemberID]memberrepo.Member),
		idByUsername: make(map[string]domain.MemberID),
		idByEmail:    make(map[string]domain.MemberID),
	}
}

func (r *Repo) Create(ctx context.Context, m memberrepo.Member) error {
	_ = ctx
	if m.ID == "" {
		return memberrepo.ErrAlreadyExists // treat empty ID as invalid; the app layer always assigns one
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[m.ID]; ok {
		return memberrepo.ErrAlreadyExists
	}
	if _, ok := r.idByUsername[m.Username]; ok {
		return memberrepo.ErrUsernameTaken
	}
	if _, ok := r.idByEmail[m.Email]; ok {
		return memberrepo.ErrEmailTaken
	}

	r.byID[m.ID] = m
	r.idByUsername[m.Username] = m.ID
	r.idByEmail[m.Email] = m.ID
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.MemberID) (memberrepo.Member, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byID[id]
	if !ok {
		return memberrepo.Member{}, memberrepo.ErrNotFound
	}
	return m, nil
}

func (r *Repo) GetByUsername(ctx context.Context, username string) (memberrepo.Member, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookupLocked(r.idByUsername, username)
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (memberrepo.Member, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookupLocked(r.idByEmail, email)
}

func (r *Repo) Count(ctx context.Context) (int, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID), nil
}

func (r *Repo) lookupLocked(index map[string]domain.MemberID, key string) (memberrepo.Member, error) {
	id, ok := index[key]
	if !ok {
		return memberrepo.Member{}, memberrepo.ErrNotFound
	}
	m, ok := r.byID[id]
	if !ok {
		return memberrepo.Member{}, memberrepo.ErrNotFound
	}
	return m, nil
}

// Exists reports whether a member with id is stored. It lets the in-memory
// booking repo enforce the member reference the way a foreign key would.
func (r *Repo) Exists(id domain.MemberID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byID[id]
	return ok
}
