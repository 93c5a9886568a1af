package members

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/unique-meal/member-portal/internal/domain"
	"github.com/unique-meal/member-portal/internal/platform/password"
	"github.com/unique-meal/member-portal/internal/platform/validation"
	clockport "github.com/unique-meal/member-portal/internal/ports/out/clock"
	"github.com/unique-meal/member-portal/internal/ports/out/memberrepo"
)

// PasswordHasher hashes and checks member passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	// Compare returns password.ErrMismatch when plain does not match hash.
	Compare(hash, plain string) error
	// CompareDummy spends the same work as Compare without a real hash.
	CompareDummy(plain string)
}

type Service struct {
	repo   memberrepo.Repository
	clk    clockport.Clock
	hasher PasswordHasher
	log    *logrus.Logger

	newMemberID func() domain.MemberID

	// DefaultTier is assigned to newly registered members.
	DefaultTier string
}

func NewService(repo memberrepo.Repository, clk clockport.Clock, hasher PasswordHasher, log *logrus.Logger) *Service {
	return &Service{
		repo:   repo,
		clk:    clk,
		hasher: hasher,
		log:    log,
		newMemberID: func() domain.MemberID {
			return domain.MemberID(uuid.NewString())
		},
		DefaultTier: domain.DefaultMembershipTier,
	}
}

// Register creates a member with a hashed password.
//
// Username and email must both be unused. The check runs before the insert and
// the repository enforces it again, so a racing duplicate is still rejected.
func (s *Service) Register(ctx context.Context, in RegisterInput) (domain.Member, error) {
	form := registerForm{
		Username: domain.NormalizeUsername(in.Username),
		Email:    domain.NormalizeEmail(in.Email),
		Password: in.Password,
	}
	details := validation.Struct(form)
	if len(form.Password) > password.MaxLength {
		if details == nil {
			details = map[string]any{}
		}
		details["password"] = fmt.Sprintf("must be at most %d bytes", password.MaxLength)
	}
	if len(details) > 0 {
		return domain.Member{}, &Error{
			Status:  422,
			Code:    "VALIDATION_ERROR",
			Message: "Please correct the highlighted fields.",
			Details: details,
		}
	}

	if err := s.ensureAvailable(ctx, form.Username, form.Email); err != nil {
		return domain.Member{}, err
	}

	hash, err := s.hasher.Hash(form.Password)
	if err != nil {
		return domain.Member{}, err
	}

	now := s.clk.Now()
	tier := strings.TrimSpace(s.DefaultTier)
	if tier == "" {
		tier = domain.DefaultMembershipTier
	}
	m := memberrepo.Member{
		ID:             s.newMemberID(),
		Username:       form.Username,
		Email:          form.Email,
		PasswordHash:   hash,
		MembershipTier: tier,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		switch {
		case errors.Is(err, memberrepo.ErrUsernameTaken):
			return domain.Member{}, errUsernameTaken()
		case errors.Is(err, memberrepo.ErrEmailTaken):
			return domain.Member{}, errEmailTaken()
		case errors.Is(err, memberrepo.ErrAlreadyExists):
			return domain.Member{}, &Error{
				Status:  409,
				Code:    "MEMBER_ALREADY_EXISTS",
				Message: "A member with that username or email already exists.",
			}
		}
		return domain.Member{}, err
	}

	s.log.WithField("member_id", string(m.ID)).Info("member registered")
	return toDomain(m), nil
}

func (s *Service) ensureAvailable(ctx context.Context, username, email string) error {
	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return errUsernameTaken()
	} else if !errors.Is(err, memberrepo.ErrNotFound) {
		return err
	}
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return errEmailTaken()
	} else if !errors.Is(err, memberrepo.ErrNotFound) {
		return err
	}
	return nil
}

// Authenticate checks a password for the member named by identifier, which is
// an email address when it contains "@" and a username otherwise.
//
// Unknown members and wrong passwords produce the same LOGIN_FAILED error.
func (s *Service) Authenticate(ctx context.Context, identifier, plain string) (domain.Member, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || plain == "" {
		s.hasher.CompareDummy(plain)
		return domain.Member{}, errLoginFailed()
	}

	var (
		m   memberrepo.Member
		err error
	)
	if strings.Contains(identifier, "@") {
		m, err = s.repo.GetByEmail(ctx, domain.NormalizeEmail(identifier))
	} else {
		m, err = s.repo.GetByUsername(ctx, domain.NormalizeUsername(identifier))
	}
	if err != nil {
		if errors.Is(err, memberrepo.ErrNotFound) {
			s.hasher.CompareDummy(plain)
			return domain.Member{}, errLoginFailed()
		}
		return domain.Member{}, err
	}

	if err := s.hasher.Compare(m.PasswordHash, plain); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			s.log.WithField("member_id", string(m.ID)).Info("login rejected")
			return domain.Member{}, errLoginFailed()
		}
		return domain.Member{}, err
	}
	return toDomain(m), nil
}

func (s *Service) GetProfile(ctx context.Context, id domain.MemberID) (domain.Member, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, memberrepo.ErrNotFound) {
			return domain.Member{}, &Error{
				Status:  404,
				Code:    "MEMBER_NOT_FOUND",
				Message: "No member exists for this session.",
			}
		}
		return domain.Member{}, err
	}
	return toDomain(m), nil
}

func toDomain(m memberrepo.Member) domain.Member {
	return domain.Member{
		ID:             m.ID,
		Username:       m.Username,
		Email:          m.Email,
		PasswordHash:   m.PasswordHash,
		MembershipTier: m.MembershipTier,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
