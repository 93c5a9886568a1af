package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/unique-meal/member-portal/internal/domain"
	"github.com/unique-meal/member-portal/internal/ports/out/sessionstore"
)

// SessionStore is a gorm implementation of sessionstore.Store.
type SessionStore struct {
	db *gorm.DB
}

func NewSessionStore(db *gorm.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Put(ctx context.Context, sess sessionstore.Session) error {
	row := sessionModel{
		ID:        string(sess.ID),
		MemberID:  string(sess.MemberID),
		CreatedAt: sess.CreatedAt.UTC(),
		ExpiresAt: sess.ExpiresAt.UTC(),
	}
	err := s.db.WithContext(ctx).
		Omit("Member").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"expires_at"}),
		}).
		Create(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return fmt.Errorf("session for unknown member %s: %w", sess.MemberID, err)
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id domain.SessionID) (sessionstore.Session, error) {
	var row sessionModel
	if err := s.db.WithContext(ctx).Where("id = ?", string(id)).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return sessionstore.Session{}, sessionstore.ErrNotFound
		}
		return sessionstore.Session{}, err
	}
	return row.toPort(), nil
}

func (s *SessionStore) Delete(ctx context.Context, id domain.SessionID) error {
	if err := s.db.WithContext(ctx).Where("id = ?", string(id)).Delete(&sessionModel{}).Error; err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
