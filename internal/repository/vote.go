package repository

import (
	"context"
	"errors"

	"driftchat/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VoteRepository defines the interface for vote data operations
type VoteRepository interface {
	GetByPostAndVoter(ctx context.Context, postID, voterAlienID string) (*models.Vote, error)
	Create(ctx context.Context, vote *models.Vote) error
	UpdateDirection(ctx context.Context, id, direction string, weight float64) error
	Delete(ctx context.Context, id string) error
	ListByAuthor(ctx context.Context, authorAlienID string) ([]*models.Vote, error)
	CountByVoter(ctx context.Context, voterAlienID string) (int64, error)
	ListByPostIDs(ctx context.Context, postIDs []string) ([]*models.Vote, error)
}

// voteRepository implements VoteRepository
type voteRepository struct {
	db *gorm.DB
}

// NewVoteRepository creates a new vote repository
func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

// GetByPostAndVoter returns the voter's live vote on the post, or (nil, nil)
// when none exists.
func (r *voteRepository) GetByPostAndVoter(ctx context.Context, postID, voterAlienID string) (*models.Vote, error) {
	var vote models.Vote
	err := r.db.WithContext(ctx).
		First(&vote, "post_id = ? AND voter_alien_id = ?", postID, voterAlienID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

func (r *voteRepository) Create(ctx context.Context, vote *models.Vote) error {
	if vote.ID == "" {
		vote.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(vote).Error
}

// UpdateDirection flips an existing vote in place, re-snapshotting the
// voter's weight at flip time.
func (r *voteRepository) UpdateDirection(ctx context.Context, id, direction string, weight float64) error {
	return r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Where("id = ?", id).
		Updates(map[string]any{"direction": direction, "weight": weight}).Error
}

func (r *voteRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Vote{}, "id = ?", id).Error
}

// ListByAuthor returns every vote received by the author's posts.
func (r *voteRepository) ListByAuthor(ctx context.Context, authorAlienID string) ([]*models.Vote, error) {
	var votes []*models.Vote
	err := r.db.WithContext(ctx).
		Where("author_alien_id = ?", authorAlienID).
		Find(&votes).Error
	if err != nil {
		return nil, err
	}
	return votes, nil
}

// CountByVoter counts the votes the user has cast, for the engagement bonus.
func (r *voteRepository) CountByVoter(ctx context.Context, voterAlienID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Where("voter_alien_id = ?", voterAlienID).
		Count(&count).Error
	return count, err
}

func (r *voteRepository) ListByPostIDs(ctx context.Context, postIDs []string) ([]*models.Vote, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var votes []*models.Vote
	err := r.db.WithContext(ctx).
		Where("post_id IN ?", postIDs).
		Find(&votes).Error
	if err != nil {
		return nil, err
	}
	return votes, nil
}
