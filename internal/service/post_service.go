package service

import (
	"context"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"driftchat/internal/cache"
	"driftchat/internal/models"
	"driftchat/internal/repository"
)

const historyLimit = 50

type PostService struct {
	postRepo    repository.PostRepository
	sessionRepo repository.SessionRepository
	reputation  func(ctx context.Context, alienID string) (*models.Reputation, error)
	votesFor    func(ctx context.Context, postIDs []string, viewerID string) (map[string]*models.PostVotes, error)

	cooldownBase  time.Duration
	maxPostLength int
	now           func() time.Time
}

type CreatePostInput struct {
	AlienID string
	Hash    string
	Body    string
}

// HistoryPost is a post decorated with its vote tallies for one viewer.
type HistoryPost struct {
	models.Post
	Votes *models.PostVotes `json:"votes"`
}

type HistoryResult struct {
	Posts       []HistoryPost `json:"posts"`
	MemberCount int64         `json:"member_count"`
}

func NewPostService(
	postRepo repository.PostRepository,
	sessionRepo repository.SessionRepository,
	reputation func(ctx context.Context, alienID string) (*models.Reputation, error),
	votesFor func(ctx context.Context, postIDs []string, viewerID string) (map[string]*models.PostVotes, error),
	cooldownBase time.Duration,
	maxPostLength int,
	now func() time.Time,
) *PostService {
	if now == nil {
		now = time.Now
	}
	return &PostService{
		postRepo:      postRepo,
		sessionRepo:   sessionRepo,
		reputation:    reputation,
		votesFor:      votesFor,
		cooldownBase:  cooldownBase,
		maxPostLength: maxPostLength,
		now:           now,
	}
}

// CreatePost writes a message into a room the alien is currently a member
// of. Posting is throttled per alien by a cooldown scaled by reputation:
// well-regarded aliens post more often, heavily downvoted ones wait.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Hash == "" {
		return nil, models.NewValidationError("Room hash is required")
	}
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, models.NewValidationError("Post body is required")
	}
	if utf8.RuneCountInString(body) > s.maxPostLength {
		return nil, models.NewValidationError("Post body too long")
	}

	session, err := s.sessionRepo.GetForRoom(ctx, in.AlienID, in.Hash)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, models.NewNotMemberError("Join the room before posting")
	}

	now := s.now().UTC()
	if session.LastPostAt != nil {
		rep, err := s.reputation(ctx, in.AlienID)
		if err != nil {
			return nil, err
		}
		effective := time.Duration(float64(s.cooldownBase) * rep.CooldownMultiplier)
		elapsed := now.Sub(*session.LastPostAt)
		if elapsed < effective {
			remaining := int(math.Ceil((effective - elapsed).Seconds()))
			return nil, models.NewCooldownError(remaining)
		}
	}

	post := &models.Post{
		Hash:    in.Hash,
		AlienID: in.AlienID,
		Body:    body,
		Ts:      now,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	if err := s.sessionRepo.TouchLastPostAt(ctx, in.AlienID, in.Hash, now); err != nil {
		return nil, err
	}
	return post, nil
}

// History returns the room's recent posts oldest-first, each carrying its
// vote tallies and the viewer's own vote. The raw post list is served
// through the cache; vote tallies are viewer-specific and fetched fresh.
func (s *PostService) History(ctx context.Context, hash, viewerID string) (*HistoryResult, error) {
	if hash == "" {
		return nil, models.NewValidationError("Room hash is required")
	}

	var posts []*models.Post
	err := cache.Aside(ctx, cache.RoomHistoryKey(hash), &posts, cache.HistoryTTL, func() error {
		recent, err := s.postRepo.ListRecent(ctx, hash, historyLimit)
		if err != nil {
			return err
		}
		posts = recent
		return nil
	})
	if err != nil {
		return nil, err
	}

	// ListRecent returns newest-first so the limit lands on the right end.
	for i, j := 0, len(posts)-1; i < j; i, j = i+1, j-1 {
		posts[i], posts[j] = posts[j], posts[i]
	}

	postIDs := make([]string, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}
	votes, err := s.votesFor(ctx, postIDs, viewerID)
	if err != nil {
		return nil, err
	}

	out := make([]HistoryPost, len(posts))
	for i, p := range posts {
		out[i] = HistoryPost{Post: *p, Votes: votes[p.ID]}
	}

	count, err := s.sessionRepo.CountByHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	return &HistoryResult{Posts: out, MemberCount: count}, nil
}
