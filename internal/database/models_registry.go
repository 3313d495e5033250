package database

import "driftchat/internal/models"

// AllModels lists every persisted record kind, in migration order.
// Reputation is intentionally absent: it is derived from votes, never stored.
func AllModels() []any {
	return []any{
		&models.User{},
		&models.Room{},
		&models.Session{},
		&models.Post{},
		&models.Vote{},
	}
}
