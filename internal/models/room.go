// Package models contains data structures for the application's domain models.
package models

import "time"

// Room is an ephemeral chat room addressed by the digest of its tile and
// time slot. Rooms are never updated after creation; they age out when the
// slot's expiry instant passes and are removed by the prune sweep.
type Room struct {
	Hash      string    `gorm:"primaryKey;size:64" json:"hash"`
	Tile      string    `gorm:"not null;index" json:"tile"`
	Slot      int64     `gorm:"not null" json:"slot"`
	ExpiresTs time.Time `gorm:"not null;index" json:"expires_ts"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the room is dead for addressing purposes at the
// given instant, regardless of whether its row has been pruned yet.
func (r *Room) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresTs)
}

// PruneResult holds the number of rows removed by one prune sweep.
type PruneResult struct {
	Rooms    int64 `json:"rooms"`
	Posts    int64 `json:"posts"`
	Sessions int64 `json:"sessions"`
}
