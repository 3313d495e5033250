package repository

import (
	"context"
	"errors"
	"time"

	"driftchat/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionRepository defines the interface for session data operations
type SessionRepository interface {
	GetByAlienID(ctx context.Context, alienID string) (*models.Session, error)
	GetForRoom(ctx context.Context, alienID, hash string) (*models.Session, error)
	Replace(ctx context.Context, session *models.Session) error
	CountByHash(ctx context.Context, hash string) (int64, error)
	TouchLastPostAt(ctx context.Context, alienID, hash string, at time.Time) error
	DeleteByAlienID(ctx context.Context, alienID string) error
}

// sessionRepository implements SessionRepository
type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

// GetByAlienID returns the user's current session, or (nil, nil) when the
// user holds none.
func (r *sessionRepository) GetByAlienID(ctx context.Context, alienID string) (*models.Session, error) {
	var session models.Session
	err := r.db.WithContext(ctx).First(&session, "alien_id = ?", alienID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// GetForRoom returns the user's session bound to the given room hash, or
// (nil, nil) when the user is not a member of that room.
func (r *sessionRepository) GetForRoom(ctx context.Context, alienID, hash string) (*models.Session, error) {
	var session models.Session
	err := r.db.WithContext(ctx).
		First(&session, "alien_id = ? AND hash = ?", alienID, hash).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Replace deletes any prior session for the user and inserts the new one in
// a single transaction, upholding the at-most-one-session invariant.
func (r *sessionRepository) Replace(ctx context.Context, session *models.Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("alien_id = ?", session.AlienID).
			Delete(&models.Session{}).Error; err != nil {
			return err
		}
		return tx.Create(session).Error
	})
}

func (r *sessionRepository) CountByHash(ctx context.Context, hash string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("hash = ?", hash).
		Count(&count).Error
	return count, err
}

// TouchLastPostAt stamps the cooldown clock on the user's session in the room.
func (r *sessionRepository) TouchLastPostAt(ctx context.Context, alienID, hash string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("alien_id = ? AND hash = ?", alienID, hash).
		Update("last_post_at", at).Error
}

func (r *sessionRepository) DeleteByAlienID(ctx context.Context, alienID string) error {
	return r.db.WithContext(ctx).
		Where("alien_id = ?", alienID).
		Delete(&models.Session{}).Error
}
