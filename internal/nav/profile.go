package nav

import "math"

// Profile is a mover's locomotion capability set, supplied per request and
// never stored on the grid.
type Profile struct {
	// Surfaces is the set of surface categories the mover may occupy.
	Surfaces Surface
	// DownhillOnly forbids steps into strictly higher cells.
	DownhillOnly bool
	// PassObstacles lets the mover ignore obstacle-blocked cells, typically
	// for airborne movers.
	PassObstacles bool
	// UseBridges authorizes crossing between bridge decks and land.
	UseBridges bool
	// AvoidPinched forbids entering pinched cells outright instead of merely
	// paying the cost bias.
	AvoidPinched bool
	// CanCrush lets the mover path through cells blocked only by crushable
	// entities. Executing the crush is the combat system's concern.
	CanCrush bool
}

// requiredSurfaces reports which surface categories a mover must accept to
// occupy the cell. A passable bridge deck reads as ground regardless of the
// terrain beneath it; an impassable deck reads as rubble.
func (g *Grid) requiredSurfaces(idx int) Surface {
	if g.bridge[idx] {
		if g.bridgePassable[idx] {
			return SurfaceGround | SurfaceAir
		}
		return SurfaceRubble | SurfaceAir
	}
	switch g.terrain[idx] {
	case TerrainWater:
		return SurfaceWater | SurfaceAir
	case TerrainCliff:
		return SurfaceCliff | SurfaceAir
	default:
		return SurfaceGround | SurfaceAir
	}
}

// isPinched reports whether the cell carries the narrow-passage cost bias,
// either from terrain classification or from an orthogonally adjacent
// obstacle-blocked cell.
func (g *Grid) isPinched(idx int) bool {
	if g.pinchedTerrain[idx] {
		return true
	}
	x := idx % g.cellsX
	y := idx / g.cellsX
	if x > 0 && g.blockRef[idx-1] > 0 {
		return true
	}
	if x+1 < g.cellsX && g.blockRef[idx+1] > 0 {
		return true
	}
	if y > 0 && g.blockRef[idx-g.cellsX] > 0 {
		return true
	}
	if y+1 < g.cellsY && g.blockRef[idx+g.cellsX] > 0 {
		return true
	}
	return false
}

// cellOpen reports whether the mover may occupy the cell at all, ignoring how
// it would get there.
func (g *Grid) cellOpen(p Profile, idx int) bool {
	if !p.Surfaces.Has(g.requiredSurfaces(idx)) {
		return false
	}
	if p.AvoidPinched && g.isPinched(idx) {
		return false
	}
	if g.blockRef[idx] > 0 {
		if p.PassObstacles {
			return true
		}
		if p.CanCrush && g.crushRef[idx] == g.blockRef[idx] {
			return true
		}
		return false
	}
	return true
}

// transitionLegal reports whether a step may cross the bridge/land boundary.
// Steps that stay on land or stay on a deck always pass.
func (g *Grid) transitionLegal(p Profile, fromIdx, toIdx int) bool {
	if g.bridge[fromIdx] == g.bridge[toIdx] {
		return true
	}
	if !p.UseBridges {
		return false
	}
	return g.bridgeTransition[fromIdx] || g.bridgeTransition[toIdx]
}

// stepLegal reports whether the mover may move from one cell into an adjacent
// cell. Corner cutting for diagonal steps is checked separately.
func (g *Grid) stepLegal(p Profile, fromIdx, toIdx int) bool {
	if !g.cellOpen(p, toIdx) {
		return false
	}
	if !g.transitionLegal(p, fromIdx, toIdx) {
		return false
	}
	if p.DownhillOnly && g.elevation[toIdx] > g.elevation[fromIdx] {
		return false
	}
	return true
}

// diagonalAllowed prevents corner cutting: a diagonal step needs at least one
// of its two orthogonal side cells to be enterable from the source cell.
func (g *Grid) diagonalAllowed(p Profile, x, y, dx, dy int) bool {
	fromIdx := y*g.cellsX + x
	if g.sideOpen(p, fromIdx, x+dx, y) {
		return true
	}
	return g.sideOpen(p, fromIdx, x, y+dy)
}

func (g *Grid) sideOpen(p Profile, fromIdx, x, y int) bool {
	if !g.bounds.contains(x, y) {
		return false
	}
	idx := y*g.cellsX + x
	if !g.cellOpen(p, idx) {
		return false
	}
	return g.transitionLegal(p, fromIdx, idx)
}

// entryPenalty is the cost surcharge for stepping into a cell, layered on top
// of the orthogonal/diagonal base cost. The pinched branch of an impassable
// deck wins over the generic pinch bias.
func (g *Grid) entryPenalty(fromIdx, toIdx int) int {
	if g.bridge[toIdx] && !g.bridgePassable[toIdx] && g.isPinched(toIdx) {
		return closedBridgePenalty
	}
	if g.isPinched(toIdx) {
		return cliffEntryPenalty
	}
	if g.terrain[toIdx] == TerrainCliff {
		if math.Abs(g.elevation[toIdx]-g.elevation[fromIdx]) < CellSize {
			return cliffEntryPenalty
		}
	}
	return 0
}
