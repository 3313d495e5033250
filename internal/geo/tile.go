// Package geo implements the tile/slot addressing scheme for ephemeral
// rooms: geocell encoding, time slicing, and room identity hashing.
package geo

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"strconv"
	"time"

	olc "github.com/google/open-location-code/go"
)

// tileCodeLen is the Open Location Code length used for tiles. Length 8
// yields cells of 0.0025 degrees per side, roughly 275 m at the equator.
const tileCodeLen = 8

// SlotDuration is the width of one time slot. Rooms rotate when the slot
// advances; changing this value changes every room hash.
const SlotDuration = 30 * time.Minute

const earthRadiusMeters = 6371000

// TileOf encodes coordinates to a fixed-precision cell code. Pure: two
// coordinates within the same cell always collapse to the same tile.
func TileOf(lat, lon float64) string {
	return olc.Encode(lat, lon, tileCodeLen)
}

// NeighborTiles returns the 8 grid-adjacent tiles of the given tile, at the
// same precision. A malformed tile yields an empty result, not an error:
// callers treat "no neighbors" as a valid degenerate case.
func NeighborTiles(tile string) []string {
	area, err := olc.Decode(tile)
	if err != nil {
		return nil
	}

	lat, lon := area.Center()
	latStep := area.LatHi - area.LatLo
	lonStep := area.LngHi - area.LngLo

	offsets := [8][2]float64{
		{-1, -1}, {-1, 0}, {-1, 1},
		{0, -1}, {0, 1},
		{1, -1}, {1, 0}, {1, 1},
	}

	neighbors := make([]string, 0, len(offsets))
	for _, o := range offsets {
		neighbors = append(neighbors, olc.Encode(lat+o[0]*latStep, lon+o[1]*lonStep, area.Len))
	}
	return neighbors
}

// CurrentSlot maps an instant to its discrete slot index.
func CurrentSlot(now time.Time) int64 {
	return now.UnixMilli() / SlotDuration.Milliseconds()
}

// SlotExpiry returns the instant at which the slot's rooms become dead:
// the start of the next slot.
func SlotExpiry(slot int64) time.Time {
	return time.UnixMilli((slot + 1) * SlotDuration.Milliseconds()).UTC()
}

// RoomHash derives the stable room identifier for a (tile, slot) pair: the
// hex-encoded SHA-256 digest of the tile concatenated with the decimal slot.
func RoomHash(tile string, slot int64) string {
	sum := sha256.Sum256([]byte(tile + strconv.FormatInt(slot, 10)))
	return hex.EncodeToString(sum[:])
}

// RoomHashAsync computes RoomHash off the calling goroutine. The result is
// byte-identical to the synchronous variant for the same input.
func RoomHashAsync(tile string, slot int64) <-chan string {
	out := make(chan string, 1)
	go func() {
		out <- RoomHash(tile, slot)
		close(out)
	}()
	return out
}

// DistanceMeters computes the great-circle distance between two coordinates
// using the haversine formula.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
