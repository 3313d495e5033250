package models

import "time"

// Post is a message in a room. Posts are append-only; they are never
// mutated and are deleted only when their room is pruned.
type Post struct {
	ID      string    `gorm:"primaryKey;size:36" json:"id"`
	Hash    string    `gorm:"not null;index" json:"hash"`
	AlienID string    `gorm:"not null;index" json:"alien_id"`
	Body    string    `gorm:"type:text;not null" json:"body"`
	Ts      time.Time `gorm:"not null;index" json:"ts"`
}
