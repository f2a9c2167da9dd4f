package nav

import "regexp"

// BridgeEndpoint is one of the two marker entities that define a bridge.
type BridgeEndpoint struct {
	EntityID   string
	Position   Vec2
	Properties map[string]string
}

// BridgeSegment is one paired bridge: a rasterized deck plus the transition
// cells at both ends, sharing a single passable state.
type BridgeSegment struct {
	ID          SegmentID   `json:"id"`
	Passable    bool        `json:"passable"`
	Deck        []CellCoord `json:"deck"`
	Transitions []CellCoord `json:"transitions"`
	Controllers []string    `json:"controllers"`
}

// SegmentState is the compact external view of one segment.
type SegmentState struct {
	ID       SegmentID `json:"id"`
	Passable bool      `json:"passable"`
}

var (
	bridgeStateKeys   = regexp.MustCompile(`(?i)bridge|destroy|broken|pass|state|repair|open|close|down|up`)
	bridgeClosedState = regexp.MustCompile(`(?i)down|destroyed|broken|closed|disabled|0|false|no`)
)

// buildBridges pairs endpoint markers into segments by repeatedly matching
// each unused endpoint with its nearest unused partner, in input order.
func (g *Grid) buildBridges(endpoints []BridgeEndpoint) {
	used := make([]bool, len(endpoints))
	for i := range endpoints {
		if used[i] {
			continue
		}
		best := -1
		bestDist := 0.0
		for j := i + 1; j < len(endpoints); j++ {
			if used[j] {
				continue
			}
			d := DistSq(endpoints[i].Position, endpoints[j].Position)
			if best == -1 || d < bestDist {
				best = j
				bestDist = d
			}
		}
		used[i] = true
		if best == -1 {
			continue
		}
		used[best] = true
		g.addSegment(endpoints[i], endpoints[best])
	}
}

func (g *Grid) addSegment(a, b BridgeEndpoint) {
	ca, okA := g.CellAt(a.Position)
	cb, okB := g.CellAt(b.Position)
	if !okA || !okB {
		return
	}

	id := SegmentID(len(g.segments) + 1)
	seg := &BridgeSegment{ID: id, Passable: true}

	g.claimDeckCell(seg, ca)
	bresenhamWalk(ca, cb, func(_, to CellCoord) bool {
		g.claimDeckCell(seg, to)
		return true
	})
	if len(seg.Deck) == 0 {
		return
	}

	dirX := sign(cb.X - ca.X)
	dirY := sign(cb.Y - ca.Y)
	g.claimTransitionCell(seg, ca)
	g.claimTransitionCell(seg, cb)
	g.claimTransitionCell(seg, CellCoord{X: ca.X - dirX, Y: ca.Y - dirY})
	g.claimTransitionCell(seg, CellCoord{X: cb.X + dirX, Y: cb.Y + dirY})

	for _, ep := range [2]BridgeEndpoint{a, b} {
		if ep.EntityID == "" {
			continue
		}
		seg.Controllers = append(seg.Controllers, ep.EntityID)
		g.controllers[ep.EntityID] = id
	}

	g.segments = append(g.segments, seg)

	if endpointSignalsClosed(a.Properties) || endpointSignalsClosed(b.Properties) {
		g.setSegmentPassable(id, false)
	}
}

// claimDeckCell marks one deck cell for the segment. The first segment to
// claim a cell keeps it.
func (g *Grid) claimDeckCell(seg *BridgeSegment, c CellCoord) {
	if !g.inBounds(c.X, c.Y) {
		return
	}
	idx := g.index(c.X, c.Y)
	if g.segmentByCell[idx] != SegmentNone {
		return
	}
	g.segmentByCell[idx] = seg.ID
	g.bridge[idx] = true
	g.bridgePassable[idx] = true
	seg.Deck = append(seg.Deck, c)
}

// claimTransitionCell marks a deck endpoint or the land cell one step beyond
// it as a boundary-crossing cell for the segment.
func (g *Grid) claimTransitionCell(seg *BridgeSegment, c CellCoord) {
	if !g.inBounds(c.X, c.Y) {
		return
	}
	idx := g.index(c.X, c.Y)
	if g.segmentByCell[idx] != SegmentNone && g.segmentByCell[idx] != seg.ID {
		return
	}
	if g.bridgeTransition[idx] {
		return
	}
	g.segmentByCell[idx] = seg.ID
	g.bridgeTransition[idx] = true
	seg.Transitions = append(seg.Transitions, c)
}

func endpointSignalsClosed(props map[string]string) bool {
	for k, v := range props {
		if bridgeStateKeys.MatchString(k) && bridgeClosedState.MatchString(v) {
			return true
		}
	}
	return false
}

// setSegmentPassable rewrites the passable flag of every cell the segment
// owns. Base terrain is never touched, so toggling a segment back restores
// the exact prior state.
func (g *Grid) setSegmentPassable(id SegmentID, passable bool) bool {
	seg := g.segment(id)
	if seg == nil {
		return false
	}
	seg.Passable = passable
	for _, c := range seg.Deck {
		g.bridgePassable[g.index(c.X, c.Y)] = passable
	}
	for _, c := range seg.Transitions {
		idx := g.index(c.X, c.Y)
		if g.bridge[idx] {
			g.bridgePassable[idx] = passable
		}
	}
	g.zones.invalidate()
	return true
}

func (g *Grid) segment(id SegmentID) *BridgeSegment {
	if g == nil || id <= SegmentNone || int(id) > len(g.segments) {
		return nil
	}
	return g.segments[id-1]
}

// segmentStates snapshots every segment in id order.
func (g *Grid) segmentStates() []SegmentState {
	if g == nil || len(g.segments) == 0 {
		return nil
	}
	out := make([]SegmentState, 0, len(g.segments))
	for _, seg := range g.segments {
		out = append(out, SegmentState{ID: seg.ID, Passable: seg.Passable})
	}
	return out
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
