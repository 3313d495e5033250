package repository

import (
	"context"

	"driftchat/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	FindOrCreate(ctx context.Context, alienID string) (*models.User, error)
}

// userRepository implements UserRepository
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// FindOrCreate upserts the identity row for an externally authenticated
// alien ID. Concurrent first requests race on the insert; the conflict
// clause lets the loser fall through to the winner's row.
func (r *userRepository) FindOrCreate(ctx context.Context, alienID string) (*models.User, error) {
	user := models.User{AlienID: alienID}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "alien_id"}},
			DoNothing: true,
		}).
		Create(&user).Error; err != nil {
		return nil, err
	}

	var out models.User
	if err := r.db.WithContext(ctx).First(&out, "alien_id = ?", alienID).Error; err != nil {
		return nil, err
	}
	return &out, nil
}
