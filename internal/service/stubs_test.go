package service

import (
	"context"
	"time"

	"driftchat/internal/models"
)

type roomRepoStub struct {
	findOrCreateFn  func(context.Context, *models.Room) (*models.Room, error)
	getByHashFn     func(context.Context, string) (*models.Room, error)
	aliveByHashesFn func(context.Context, []string, time.Time) ([]*models.Room, error)
	pruneExpiredFn  func(context.Context, time.Time) (models.PruneResult, error)
}

func (s *roomRepoStub) FindOrCreate(ctx context.Context, room *models.Room) (*models.Room, error) {
	return s.findOrCreateFn(ctx, room)
}
func (s *roomRepoStub) GetByHash(ctx context.Context, hash string) (*models.Room, error) {
	return s.getByHashFn(ctx, hash)
}
func (s *roomRepoStub) AliveByHashes(ctx context.Context, hashes []string, now time.Time) ([]*models.Room, error) {
	return s.aliveByHashesFn(ctx, hashes, now)
}
func (s *roomRepoStub) PruneExpired(ctx context.Context, now time.Time) (models.PruneResult, error) {
	return s.pruneExpiredFn(ctx, now)
}

type sessionRepoStub struct {
	getByAlienIDFn    func(context.Context, string) (*models.Session, error)
	getForRoomFn      func(context.Context, string, string) (*models.Session, error)
	replaceFn         func(context.Context, *models.Session) error
	countByHashFn     func(context.Context, string) (int64, error)
	touchLastPostAtFn func(context.Context, string, string, time.Time) error
	deleteByAlienIDFn func(context.Context, string) error
}

func (s *sessionRepoStub) GetByAlienID(ctx context.Context, alienID string) (*models.Session, error) {
	return s.getByAlienIDFn(ctx, alienID)
}
func (s *sessionRepoStub) GetForRoom(ctx context.Context, alienID, hash string) (*models.Session, error) {
	return s.getForRoomFn(ctx, alienID, hash)
}
func (s *sessionRepoStub) Replace(ctx context.Context, session *models.Session) error {
	return s.replaceFn(ctx, session)
}
func (s *sessionRepoStub) CountByHash(ctx context.Context, hash string) (int64, error) {
	return s.countByHashFn(ctx, hash)
}
func (s *sessionRepoStub) TouchLastPostAt(ctx context.Context, alienID, hash string, at time.Time) error {
	return s.touchLastPostAtFn(ctx, alienID, hash, at)
}
func (s *sessionRepoStub) DeleteByAlienID(ctx context.Context, alienID string) error {
	return s.deleteByAlienIDFn(ctx, alienID)
}

type postRepoStub struct {
	createFn     func(context.Context, *models.Post) error
	getByIDFn    func(context.Context, string) (*models.Post, error)
	listRecentFn func(context.Context, string, int) ([]*models.Post, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id string) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) ListRecent(ctx context.Context, hash string, limit int) ([]*models.Post, error) {
	return s.listRecentFn(ctx, hash, limit)
}

type voteRepoStub struct {
	getByPostAndVoterFn func(context.Context, string, string) (*models.Vote, error)
	createFn            func(context.Context, *models.Vote) error
	updateDirectionFn   func(context.Context, string, string, float64) error
	deleteFn            func(context.Context, string) error
	listByAuthorFn      func(context.Context, string) ([]*models.Vote, error)
	countByVoterFn      func(context.Context, string) (int64, error)
	listByPostIDsFn     func(context.Context, []string) ([]*models.Vote, error)
}

func (s *voteRepoStub) GetByPostAndVoter(ctx context.Context, postID, voterAlienID string) (*models.Vote, error) {
	return s.getByPostAndVoterFn(ctx, postID, voterAlienID)
}
func (s *voteRepoStub) Create(ctx context.Context, vote *models.Vote) error {
	return s.createFn(ctx, vote)
}
func (s *voteRepoStub) UpdateDirection(ctx context.Context, id, direction string, weight float64) error {
	return s.updateDirectionFn(ctx, id, direction, weight)
}
func (s *voteRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}
func (s *voteRepoStub) ListByAuthor(ctx context.Context, authorAlienID string) ([]*models.Vote, error) {
	return s.listByAuthorFn(ctx, authorAlienID)
}
func (s *voteRepoStub) CountByVoter(ctx context.Context, voterAlienID string) (int64, error) {
	return s.countByVoterFn(ctx, voterAlienID)
}
func (s *voteRepoStub) ListByPostIDs(ctx context.Context, postIDs []string) ([]*models.Vote, error) {
	return s.listByPostIDsFn(ctx, postIDs)
}

func noopRoomRepo() *roomRepoStub {
	return &roomRepoStub{
		findOrCreateFn: func(_ context.Context, room *models.Room) (*models.Room, error) {
			return room, nil
		},
		getByHashFn: func(context.Context, string) (*models.Room, error) { return nil, nil },
		aliveByHashesFn: func(context.Context, []string, time.Time) ([]*models.Room, error) {
			return nil, nil
		},
		pruneExpiredFn: func(context.Context, time.Time) (models.PruneResult, error) {
			return models.PruneResult{}, nil
		},
	}
}

func noopSessionRepo() *sessionRepoStub {
	return &sessionRepoStub{
		getByAlienIDFn:    func(context.Context, string) (*models.Session, error) { return nil, nil },
		getForRoomFn:      func(context.Context, string, string) (*models.Session, error) { return nil, nil },
		replaceFn:         func(context.Context, *models.Session) error { return nil },
		countByHashFn:     func(context.Context, string) (int64, error) { return 1, nil },
		touchLastPostAtFn: func(context.Context, string, string, time.Time) error { return nil },
		deleteByAlienIDFn: func(context.Context, string) error { return nil },
	}
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:     func(context.Context, *models.Post) error { return nil },
		getByIDFn:    func(context.Context, string) (*models.Post, error) { return nil, nil },
		listRecentFn: func(context.Context, string, int) ([]*models.Post, error) { return nil, nil },
	}
}

func noopVoteRepo() *voteRepoStub {
	return &voteRepoStub{
		getByPostAndVoterFn: func(context.Context, string, string) (*models.Vote, error) { return nil, nil },
		createFn:            func(context.Context, *models.Vote) error { return nil },
		updateDirectionFn:   func(context.Context, string, string, float64) error { return nil },
		deleteFn:            func(context.Context, string) error { return nil },
		listByAuthorFn:      func(context.Context, string) ([]*models.Vote, error) { return nil, nil },
		countByVoterFn:      func(context.Context, string) (int64, error) { return 0, nil },
		listByPostIDsFn:     func(context.Context, []string) ([]*models.Vote, error) { return nil, nil },
	}
}
