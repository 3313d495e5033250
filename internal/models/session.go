package models

import "time"

// Session binds a user to a room. A user holds at most one session at any
// time; joining a room replaces any prior session. The session is the sole
// basis for membership checks and for post-cooldown timing, and it records
// the join-time position used by the roam guard.
type Session struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	AlienID    string     `gorm:"not null;index" json:"alien_id"`
	Hash       string     `gorm:"not null;index" json:"hash"`
	Lat        float64    `gorm:"not null" json:"lat"`
	Lon        float64    `gorm:"not null" json:"lon"`
	JoinedAt   time.Time  `gorm:"not null" json:"joined_at"`
	LastPostAt *time.Time `json:"last_post_at,omitempty"`
}
