package nav

// CellSize is the edge length of one navigation cell in world units.
const CellSize = 10.0

const (
	costOrthogonal = 10
	costDiagonal   = 14

	// cliffEntryPenalty is the surcharge for stepping into a pinched cell or a
	// shallow unpinched cliff cell. The 7x multiplier is tuned; changing it
	// needs design review.
	cliffEntryPenalty = 7 * costDiagonal

	// closedBridgePenalty is the surcharge for stepping onto a pinched cell of
	// an impassable bridge deck.
	closedBridgePenalty = costOrthogonal

	turnPenaltySlight  = 4
	turnPenaltyRight   = 8
	turnPenaltyReverse = 16

	maxExpandedNodes    = 500_000
	maxReconstructSteps = 2_000

	cliffHeightDelta   = 9.8
	circleCellPadding  = 0.4
	zoneBlockCells     = 10
	startPointEpsilon  = 0.01
	boxSampleHalfCells = 0.5
)

// Terrain is the base classification of a cell, fixed at build time. Bridge
// decks and obstacle footprints overlay it without overwriting it.
type Terrain uint8

const (
	TerrainClear Terrain = iota
	TerrainWater
	TerrainCliff
)

func (t Terrain) String() string {
	switch t {
	case TerrainClear:
		return "clear"
	case TerrainWater:
		return "water"
	case TerrainCliff:
		return "cliff"
	default:
		return "unknown"
	}
}

// Surface is a bitset of terrain surface categories a mover may occupy.
type Surface uint8

const (
	SurfaceGround Surface = 1 << iota
	SurfaceWater
	SurfaceCliff
	SurfaceAir
	SurfaceRubble
)

func (s Surface) Has(other Surface) bool {
	return s&other != 0
}

func (s Surface) String() string {
	if s == 0 {
		return "none"
	}
	out := ""
	appendName := func(name string) {
		if out != "" {
			out += "|"
		}
		out += name
	}
	if s.Has(SurfaceGround) {
		appendName("ground")
	}
	if s.Has(SurfaceWater) {
		appendName("water")
	}
	if s.Has(SurfaceCliff) {
		appendName("cliff")
	}
	if s.Has(SurfaceAir) {
		appendName("air")
	}
	if s.Has(SurfaceRubble) {
		appendName("rubble")
	}
	return out
}

// CellCoord addresses one grid cell.
type CellCoord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// SegmentID identifies a bridge segment. SegmentNone marks cells that belong
// to no bridge.
type SegmentID int32

const SegmentNone SegmentID = 0
