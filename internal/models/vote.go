package models

import "time"

// Vote directions.
const (
	VoteUp   = "up"
	VoteDown = "down"
)

// Vote is a single voter's current verdict on a post. There is never more
// than one live vote per (post, voter) pair: casting the same direction
// again deletes the row, casting the opposite direction flips it in place.
// The author is denormalized so reputation can aggregate without joining
// through posts, and the voter's influence is snapshotted at cast time.
type Vote struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	PostID        string    `gorm:"not null;index:idx_votes_post_voter" json:"post_id"`
	VoterAlienID  string    `gorm:"not null;index:idx_votes_post_voter;index" json:"voter_alien_id"`
	AuthorAlienID string    `gorm:"not null;index" json:"author_alien_id"`
	Direction     string    `gorm:"not null;size:8" json:"direction"`
	Weight        float64   `gorm:"not null;default:1" json:"weight"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PostVotes is the aggregated vote summary for one post, as rendered in a
// feed. UserVote is the viewing user's own current direction, if any.
type PostVotes struct {
	Up       float64 `json:"up"`
	Down     float64 `json:"down"`
	Score    float64 `json:"score"`
	UserVote string  `json:"user_vote,omitempty"`
}
