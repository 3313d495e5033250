// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"time"

	"driftchat/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RoomRepository defines the interface for room data operations
type RoomRepository interface {
	FindOrCreate(ctx context.Context, room *models.Room) (*models.Room, error)
	GetByHash(ctx context.Context, hash string) (*models.Room, error)
	AliveByHashes(ctx context.Context, hashes []string, now time.Time) ([]*models.Room, error)
	PruneExpired(ctx context.Context, now time.Time) (models.PruneResult, error)
}

// roomRepository implements RoomRepository
type roomRepository struct {
	db *gorm.DB
}

// NewRoomRepository creates a new room repository
func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &roomRepository{db: db}
}

// FindOrCreate inserts the room if no row exists for its hash, tolerating a
// race where another caller inserts first: the insert is conflict-tolerant
// and the winner's row is re-read afterwards. On a hit the stored row is
// returned unchanged and the argument's tile/slot/expiry are ignored.
func (r *roomRepository) FindOrCreate(ctx context.Context, room *models.Room) (*models.Room, error) {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "hash"}},
			DoNothing: true,
		}).
		Create(room).Error; err != nil {
		return nil, err
	}

	var out models.Room
	if err := r.db.WithContext(ctx).First(&out, "hash = ?", room.Hash).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// GetByHash returns the room for the hash, or (nil, nil) when no row exists.
func (r *roomRepository) GetByHash(ctx context.Context, hash string) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).First(&room, "hash = ?", hash).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// AliveByHashes returns the subset of rooms that exist for the given hashes
// and whose expiry has not passed. Rooms that were never created are simply
// absent from the result.
func (r *roomRepository) AliveByHashes(ctx context.Context, hashes []string, now time.Time) ([]*models.Room, error) {
	if len(hashes) == 0 {
		return nil, nil
	}
	var rooms []*models.Room
	err := r.db.WithContext(ctx).
		Where("hash IN ? AND expires_ts > ?", hashes, now).
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

// PruneExpired removes every room whose expiry has passed, cascading to the
// posts and sessions that reference it, and reports how many rows of each
// kind were removed. Safe to invoke repeatedly: a second call finds nothing.
func (r *roomRepository) PruneExpired(ctx context.Context, now time.Time) (models.PruneResult, error) {
	var result models.PruneResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var hashes []string
		if err := tx.Model(&models.Room{}).
			Where("expires_ts < ?", now).
			Pluck("hash", &hashes).Error; err != nil {
			return err
		}
		if len(hashes) == 0 {
			return nil
		}

		posts := tx.Where("hash IN ?", hashes).Delete(&models.Post{})
		if posts.Error != nil {
			return posts.Error
		}
		sessions := tx.Where("hash IN ?", hashes).Delete(&models.Session{})
		if sessions.Error != nil {
			return sessions.Error
		}
		rooms := tx.Where("hash IN ?", hashes).Delete(&models.Room{})
		if rooms.Error != nil {
			return rooms.Error
		}

		result = models.PruneResult{
			Rooms:    rooms.RowsAffected,
			Posts:    posts.RowsAffected,
			Sessions: sessions.RowsAffected,
		}
		return nil
	})
	if err != nil {
		return models.PruneResult{}, err
	}
	return result, nil
}
