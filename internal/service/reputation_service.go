package service

import (
	"context"
	"math"

	"driftchat/internal/models"
	"driftchat/internal/repository"
)

// engagementBonusCap bounds how much vote participation can raise weight.
const engagementBonusCap = 0.5

type ReputationService struct {
	voteRepo repository.VoteRepository
	postRepo repository.PostRepository
}

type CastVoteInput struct {
	VoterAlienID string
	PostID       string
	Direction    string
}

type CastVoteResult struct {
	Changed bool              `json:"changed"`
	Votes   *models.PostVotes `json:"votes"`
}

func NewReputationService(
	voteRepo repository.VoteRepository,
	postRepo repository.PostRepository,
) *ReputationService {
	return &ReputationService{
		voteRepo: voteRepo,
		postRepo: postRepo,
	}
}

// CastVote records, flips, or retracts a vote. Casting the same direction
// twice removes the vote; casting the opposite direction flips it in place
// and re-snapshots the voter's weight. Voting on your own post is rejected.
func (s *ReputationService) CastVote(ctx context.Context, in CastVoteInput) (*CastVoteResult, error) {
	if in.Direction != models.VoteUp && in.Direction != models.VoteDown {
		return nil, models.NewValidationError("Direction must be 'up' or 'down'")
	}
	if in.PostID == "" {
		return nil, models.NewValidationError("Post ID is required")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, models.NewNotFoundError("Post", in.PostID)
	}
	if post.AlienID == in.VoterAlienID {
		return nil, models.NewValidationError("Cannot vote on your own post")
	}

	existing, err := s.voteRepo.GetByPostAndVoter(ctx, in.PostID, in.VoterAlienID)
	if err != nil {
		return nil, err
	}

	// A retraction never reads the voter's weight, so the reputation
	// derivation (two vote-log scans) only runs on insert and flip.
	switch {
	case existing == nil:
		rep, err := s.Reputation(ctx, in.VoterAlienID)
		if err != nil {
			return nil, err
		}
		if err := s.voteRepo.Create(ctx, &models.Vote{
			PostID:        in.PostID,
			VoterAlienID:  in.VoterAlienID,
			AuthorAlienID: post.AlienID,
			Direction:     in.Direction,
			Weight:        rep.VoteWeight,
		}); err != nil {
			return nil, err
		}
	case existing.Direction == in.Direction:
		if err := s.voteRepo.Delete(ctx, existing.ID); err != nil {
			return nil, err
		}
	default:
		rep, err := s.Reputation(ctx, in.VoterAlienID)
		if err != nil {
			return nil, err
		}
		if err := s.voteRepo.UpdateDirection(ctx, existing.ID, in.Direction, rep.VoteWeight); err != nil {
			return nil, err
		}
	}

	tallies, err := s.VotesForPosts(ctx, []string{in.PostID}, in.VoterAlienID)
	if err != nil {
		return nil, err
	}
	return &CastVoteResult{Changed: true, Votes: tallies[in.PostID]}, nil
}

// Reputation derives the alien's standing from the live vote log. Nothing is
// stored: retracted and flipped votes drop out of the result the moment they
// change. Karma discounts controversial posts, where up and down votes are
// close to even, so a polarizing post moves karma less than a unanimous one.
func (s *ReputationService) Reputation(ctx context.Context, alienID string) (*models.Reputation, error) {
	if alienID == "" {
		return nil, models.NewValidationError("Alien ID is required")
	}

	received, err := s.voteRepo.ListByAuthor(ctx, alienID)
	if err != nil {
		return nil, err
	}

	type tally struct{ up, down float64 }
	perPost := make(map[string]*tally)
	for _, v := range received {
		t := perPost[v.PostID]
		if t == nil {
			t = &tally{}
			perPost[v.PostID] = t
		}
		if v.Direction == models.VoteUp {
			t.up += v.Weight
		} else {
			t.down += v.Weight
		}
	}

	var karma float64
	for _, t := range perPost {
		total := t.up + t.down
		if total == 0 {
			continue
		}
		ratio := math.Min(t.up, t.down) / (total / 2)
		karma += (t.up - t.down) * (1 - ratio*0.8)
	}

	cast, err := s.voteRepo.CountByVoter(ctx, alienID)
	if err != nil {
		return nil, err
	}
	bonus := math.Min(float64(cast)/100, engagementBonusCap)

	k := int(math.Round(karma))
	return &models.Reputation{
		Karma:              k,
		CooldownMultiplier: cooldownMultiplier(k),
		VoteWeight:         math.Round((voteWeight(k)+bonus)*10) / 10,
	}, nil
}

func voteWeight(karma int) float64 {
	switch {
	case karma < -10:
		return 0.3
	case karma < 0:
		return 0.5
	case karma < 10:
		return 1.0
	case karma < 50:
		return 1.5
	default:
		return 2.0
	}
}

func cooldownMultiplier(karma int) float64 {
	switch {
	case karma < -20:
		return 3.0
	case karma < -10:
		return 2.0
	case karma < 0:
		return 1.5
	case karma < 10:
		return 1.0
	case karma < 50:
		return 0.5
	default:
		return 0.3
	}
}

// VotesForPosts aggregates vote tallies for a batch of posts, marking the
// viewer's own vote on each. Posts with no votes get a zeroed entry.
func (s *ReputationService) VotesForPosts(ctx context.Context, postIDs []string, viewerID string) (map[string]*models.PostVotes, error) {
	out := make(map[string]*models.PostVotes, len(postIDs))
	for _, id := range postIDs {
		out[id] = &models.PostVotes{}
	}
	if len(postIDs) == 0 {
		return out, nil
	}

	votes, err := s.voteRepo.ListByPostIDs(ctx, postIDs)
	if err != nil {
		return nil, err
	}
	for _, v := range votes {
		pv := out[v.PostID]
		if pv == nil {
			continue
		}
		if v.Direction == models.VoteUp {
			pv.Up += v.Weight
		} else {
			pv.Down += v.Weight
		}
		if v.VoterAlienID == viewerID {
			pv.UserVote = v.Direction
		}
	}
	for _, pv := range out {
		pv.Score = pv.Up - pv.Down
	}
	return out, nil
}
