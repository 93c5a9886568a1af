package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/unique-meal/member-portal/internal/domain"
	"github.com/unique-meal/member-portal/internal/ports/out/memberrepo"
)

// MemberRepo is a gorm implementation of memberrepo.Repository.
type MemberRepo struct {
	db *gorm.DB
}

func NewMemberRepo(db *gorm.DB) *MemberRepo {
	return &MemberRepo{db: db}
}

func (r *MemberRepo) Create(ctx context.Context, m memberrepo.Member) error {
	row := memberFromPort(m)
	err := r.db.WithContext(ctx).Create(&row).Error
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return r.attributeDuplicate(ctx, m)
	}
	return fmt.Errorf("insert member: %w", err)
}

// attributeDuplicate works out which unique column a rejected insert collided
// with. Translated driver errors do not carry the constraint name.
func (r *MemberRepo) attributeDuplicate(ctx context.Context, m memberrepo.Member) error {
	var n int64
	if err := r.db.WithContext(ctx).Model(&memberModel{}).Where("username = ?", m.Username).Count(&n).Error; err == nil && n > 0 {
		return memberrepo.ErrUsernameTaken
	}
	if err := r.db.WithContext(ctx).Model(&memberModel{}).Where("email = ?", m.Email).Count(&n).Error; err == nil && n > 0 {
		return memberrepo.ErrEmailTaken
	}
	return memberrepo.ErrAlreadyExists
}

func (r *MemberRepo) GetByID(ctx context.Context, id domain.MemberID) (memberrepo.Member, error) {
	return r.first(ctx, "id = ?", string(id))
}

func (r *MemberRepo) GetByUsername(ctx context.Context, username string) (memberrepo.Member, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *MemberRepo) GetByEmail(ctx context.Context, email string) (memberrepo.Member, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *MemberRepo) Count(ctx context.Context) (int, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&memberModel{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return int(n), nil
}

func (r *MemberRepo) first(ctx context.Context, query string, arg any) (memberrepo.Member, error) {
	var row memberModel
	if err := r.db.WithContext(ctx).Where(query, arg).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return memberrepo.Member{}, memberrepo.ErrNotFound
		}
		return memberrepo.Member{}, err
	}
	return row.toPort(), nil
}
