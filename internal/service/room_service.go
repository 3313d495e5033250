package service

import (
	"context"
	"math"
	"time"

	"driftchat/internal/geo"
	"driftchat/internal/middleware"
	"driftchat/internal/models"
	"driftchat/internal/repository"
)

const (
	// roamGuardDistanceMeters is the jump distance that trips the guard.
	roamGuardDistanceMeters = 1000.0
	// roamGuardWindow is how recently the previous fix must have been taken
	// for a large jump to count as teleporting.
	roamGuardWindow = 5 * time.Minute
)

type RoomService struct {
	roomRepo    repository.RoomRepository
	sessionRepo repository.SessionRepository
	now         func() time.Time
}

type JoinInput struct {
	AlienID string
	Lat     float64
	Lon     float64
}

// JoinResult is what a client needs after landing in a room.
type JoinResult struct {
	Room        *models.Room    `json:"room"`
	Session     *models.Session `json:"session"`
	MemberCount int64           `json:"member_count"`
}

func NewRoomService(
	roomRepo repository.RoomRepository,
	sessionRepo repository.SessionRepository,
	now func() time.Time,
) *RoomService {
	if now == nil {
		now = time.Now
	}
	return &RoomService{
		roomRepo:    roomRepo,
		sessionRepo: sessionRepo,
		now:         now,
	}
}

// Join resolves the caller's coordinates to the current room for their tile
// and time slot, creating the room on first arrival. The caller's previous
// session, if any, is replaced: an alien occupies at most one room at a time.
func (s *RoomService) Join(ctx context.Context, in JoinInput) (*JoinResult, error) {
	if in.AlienID == "" {
		return nil, models.NewValidationError("Alien ID is required")
	}
	if in.Lat < -90 || in.Lat > 90 {
		return nil, models.NewValidationError("Latitude must be between -90 and 90")
	}
	if in.Lon < -180 || in.Lon > 180 {
		return nil, models.NewValidationError("Longitude must be between -180 and 180")
	}

	now := s.now().UTC()

	prev, err := s.sessionRepo.GetByAlienID(ctx, in.AlienID)
	if err != nil {
		return nil, err
	}
	if prev != nil {
		dist := geo.DistanceMeters(prev.Lat, prev.Lon, in.Lat, in.Lon)
		elapsed := now.Sub(prev.JoinedAt)
		if dist > roamGuardDistanceMeters && elapsed < roamGuardWindow {
			retry := int(math.Ceil((roamGuardWindow - elapsed).Seconds()))
			return nil, models.NewRoamGuardError(retry)
		}
	}

	tile := geo.TileOf(in.Lat, in.Lon)
	slot := geo.CurrentSlot(now)
	hash := geo.RoomHash(tile, slot)

	room, err := s.roomRepo.FindOrCreate(ctx, &models.Room{
		Hash:      hash,
		Tile:      tile,
		Slot:      slot,
		ExpiresTs: geo.SlotExpiry(slot),
	})
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		AlienID:  in.AlienID,
		Hash:     hash,
		Lat:      in.Lat,
		Lon:      in.Lon,
		JoinedAt: now,
	}
	if prev != nil && prev.Hash == hash {
		// Refreshing membership in the same room is not a move: the roam
		// guard anchor and the post cooldown clock both survive, so a
		// routine heartbeat can never re-arm the guard.
		session.JoinedAt = prev.JoinedAt
		session.LastPostAt = prev.LastPostAt
	}
	if err := s.sessionRepo.Replace(ctx, session); err != nil {
		return nil, err
	}

	count, err := s.sessionRepo.CountByHash(ctx, hash)
	if err != nil {
		return nil, err
	}

	return &JoinResult{Room: room, Session: session, MemberCount: count}, nil
}

// Heartbeat re-anchors an alien using the coordinates from their existing
// session. When the time slot has rolled over since the last call, this
// transparently moves them into the tile's new room.
func (s *RoomService) Heartbeat(ctx context.Context, alienID string) (*JoinResult, error) {
	if alienID == "" {
		return nil, models.NewValidationError("Alien ID is required")
	}
	session, err := s.sessionRepo.GetByAlienID(ctx, alienID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, models.NewNotMemberError("No active session to refresh")
	}
	return s.Join(ctx, JoinInput{AlienID: alienID, Lat: session.Lat, Lon: session.Lon})
}

// Leave drops the alien's session. Leaving with no session is a no-op.
func (s *RoomService) Leave(ctx context.Context, alienID string) error {
	if alienID == "" {
		return models.NewValidationError("Alien ID is required")
	}
	return s.sessionRepo.DeleteByAlienID(ctx, alienID)
}

// AliveNeighbors returns the rooms adjacent to the given room's tile that
// exist and have not expired, for the current time slot. Neighbor tiles
// nobody has joined yet have no room row and are simply absent.
func (s *RoomService) AliveNeighbors(ctx context.Context, hash string) ([]*models.Room, error) {
	if hash == "" {
		return nil, models.NewValidationError("Room hash is required")
	}
	room, err := s.roomRepo.GetByHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, models.NewNotFoundError("Room", hash)
	}

	now := s.now().UTC()
	slot := geo.CurrentSlot(now)
	tiles := geo.NeighborTiles(room.Tile)
	hashes := make([]string, 0, len(tiles))
	for _, tile := range tiles {
		hashes = append(hashes, geo.RoomHash(tile, slot))
	}

	return s.roomRepo.AliveByHashes(ctx, hashes, now)
}

// Prune deletes expired rooms together with their posts and sessions.
// It is called on a fixed schedule and safe to run concurrently with
// joins: a room created during the sweep has a future expiry and is
// untouched.
func (s *RoomService) Prune(ctx context.Context) (models.PruneResult, error) {
	result, err := s.roomRepo.PruneExpired(ctx, s.now().UTC())
	if err != nil {
		return models.PruneResult{}, err
	}
	middleware.PrunedEntities.WithLabelValues("rooms").Add(float64(result.Rooms))
	middleware.PrunedEntities.WithLabelValues("posts").Add(float64(result.Posts))
	middleware.PrunedEntities.WithLabelValues("sessions").Add(float64(result.Sessions))
	return result, nil
}
