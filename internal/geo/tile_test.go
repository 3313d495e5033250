package geo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTileOfDeterministic(t *testing.T) {
	t.Parallel()

	a := TileOf(47.3667, 8.55)
	b := TileOf(47.3667, 8.55)
	assert.Equal(t, a, b)
	assert.Len(t, a, 9) // 8 code digits plus the separator
}

func TestTileOfCollapsesWithinCell(t *testing.T) {
	t.Parallel()

	// Cell boundaries fall on multiples of 0.0025 degrees; both points sit
	// inside the cell starting at (10.0000, 20.0000).
	a := TileOf(10.0001, 20.0001)
	b := TileOf(10.0020, 20.0020)
	assert.Equal(t, a, b)

	// A point in the next cell over must differ.
	c := TileOf(10.0030, 20.0001)
	assert.NotEqual(t, a, c)
}

func TestNeighborTiles(t *testing.T) {
	t.Parallel()

	tile := TileOf(47.3667, 8.55)
	neighbors := NeighborTiles(tile)
	require.Len(t, neighbors, 8)

	seen := map[string]struct{}{}
	for _, n := range neighbors {
		assert.NotEqual(t, tile, n)
		assert.Len(t, n, len(tile))
		seen[n] = struct{}{}
	}
	assert.Len(t, seen, 8, "neighbors must be distinct away from the poles")
}

func TestNeighborTilesMalformed(t *testing.T) {
	t.Parallel()

	assert.Empty(t, NeighborTiles("not-a-tile"))
	assert.Empty(t, NeighborTiles(""))
}

func TestCurrentSlot(t *testing.T) {
	t.Parallel()

	// 1001 slots of 30 minutes.
	at := time.UnixMilli(1001 * SlotDuration.Milliseconds())
	assert.Equal(t, int64(1001), CurrentSlot(at))

	// One millisecond before the boundary still belongs to the prior slot.
	assert.Equal(t, int64(1000), CurrentSlot(at.Add(-time.Millisecond)))
}

func TestSlotExpiry(t *testing.T) {
	t.Parallel()

	expiry := SlotExpiry(1001)
	assert.Equal(t, time.UnixMilli(1002*SlotDuration.Milliseconds()).UTC(), expiry)
	assert.Equal(t, int64(1002), CurrentSlot(expiry))
}

func TestRoomHashVector(t *testing.T) {
	t.Parallel()

	// Known digest of "8FW4V75V+1001".
	const want = "00561ed4c3fb9eb41759fec9185be97c33a594fd1d217b0c86d2f9feff496306"
	assert.Equal(t, want, RoomHash("8FW4V75V+", 1001))

	// Stable across recomputation, distinct across slots.
	assert.Equal(t, want, RoomHash("8FW4V75V+", 1001))
	assert.NotEqual(t, want, RoomHash("8FW4V75V+", 1002))
}

func TestRoomHashAsyncMatchesSync(t *testing.T) {
	t.Parallel()

	tile := TileOf(47.3667, 8.55)
	slot := int64(123456)
	assert.Equal(t, RoomHash(tile, slot), <-RoomHashAsync(tile, slot))
}

func TestDistanceMeters(t *testing.T) {
	t.Parallel()

	// One degree of longitude on the equator.
	assert.InDelta(t, 111195, DistanceMeters(0, 0, 0, 1), 10)

	assert.Zero(t, DistanceMeters(47.3667, 8.55, 47.3667, 8.55))

	// Roughly 1.1 km north of the starting point, comfortably over the
	// roam-guard threshold.
	d := DistanceMeters(47.0, 8.0, 47.01, 8.0)
	assert.Greater(t, d, 1000.0)
	assert.Less(t, d, 1300.0)
}
