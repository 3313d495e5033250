package models

import "time"

// User anchors an externally authenticated identity. The alien ID arrives
// already verified in the bearer token's subject claim; this service never
// validates it beyond signature checks on the token itself.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AlienID   string    `gorm:"not null;uniqueIndex" json:"alien_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
