package nav

import "math"

// FootprintShape selects how an entity footprint rasterizes onto the grid.
type FootprintShape uint8

const (
	// FootprintNone falls back to an integer cell radius derived from the
	// entity kind: one cell for structures, zero otherwise.
	FootprintNone FootprintShape = iota
	FootprintBox
	FootprintCircle
	FootprintCells
)

// ObstacleSpec describes one entity footprint to project onto the grid.
type ObstacleSpec struct {
	EntityID string
	Position Vec2
	// Rotation orients a box footprint, in radians.
	Rotation float64
	Shape    FootprintShape
	// HalfMajor and HalfMinor are the box half-extents along and across the
	// facing axis.
	HalfMajor float64
	HalfMinor float64
	// Radius is the circle footprint radius.
	Radius float64
	// CellRadius is the explicit integer footprint for FootprintCells.
	CellRadius int
	// Structure widens the FootprintNone fallback to one cell.
	Structure bool
	// Crushable marks the blocked cells traversable for crush-authorized
	// movers as long as no non-crushable entity claims them too.
	Crushable bool
}

type obstacleClaim struct {
	cells     []int32
	crushable bool
}

// addObstacle rasterizes the footprint, closes the slivers it creates, and
// records the claimed cells under the entity id so removal restores exactly
// the cells this entity contributed. Returns the number of claimed cells.
func (g *Grid) addObstacle(spec ObstacleSpec) int {
	if spec.EntityID == "" {
		return 0
	}
	if _, exists := g.claims[spec.EntityID]; exists {
		return 0
	}

	cells := g.rasterizeFootprint(spec)
	if len(cells) == 0 {
		return 0
	}
	g.applyClaim(cells, spec.Crushable, 1)

	closing := g.sliverScan(cells)
	g.applyClaim(closing, spec.Crushable, 1)
	cells = append(cells, closing...)

	g.claims[spec.EntityID] = &obstacleClaim{cells: cells, crushable: spec.Crushable}
	g.zones.invalidate()
	return len(cells)
}

// removeObstacle releases every cell the entity claimed, including cells the
// sliver pass closed on its behalf. Returns the number of released cells.
func (g *Grid) removeObstacle(entityID string) int {
	claim, ok := g.claims[entityID]
	if !ok {
		return 0
	}
	g.applyClaim(claim.cells, claim.crushable, -1)
	delete(g.claims, entityID)
	g.zones.invalidate()
	return len(claim.cells)
}

func (g *Grid) applyClaim(cells []int32, crushable bool, delta int) {
	for _, idx := range cells {
		if delta > 0 {
			g.blockRef[idx]++
			if crushable {
				g.crushRef[idx]++
			}
		} else {
			if g.blockRef[idx] > 0 {
				g.blockRef[idx]--
			}
			if crushable && g.crushRef[idx] > 0 {
				g.crushRef[idx]--
			}
		}
	}
}

func (g *Grid) rasterizeFootprint(spec ObstacleSpec) []int32 {
	seen := make(map[int32]struct{}, 16)
	cells := make([]int32, 0, 16)
	mark := func(x, y int) {
		if !g.inBounds(x, y) {
			return
		}
		idx := int32(g.index(x, y))
		if _, dup := seen[idx]; dup {
			return
		}
		seen[idx] = struct{}{}
		cells = append(cells, idx)
	}

	switch spec.Shape {
	case FootprintBox:
		sin, cos := math.Sincos(spec.Rotation)
		for _, s := range boxSamples(spec.HalfMajor) {
			for _, t := range boxSamples(spec.HalfMinor) {
				wx := spec.Position.X + s*cos - t*sin
				wy := spec.Position.Y + s*sin + t*cos
				mark(int(math.Floor(wx/CellSize)), int(math.Floor(wy/CellSize)))
			}
		}
	case FootprintCircle:
		radius := spec.Radius + circleCellPadding*CellSize
		minX := int(math.Floor((spec.Position.X - radius) / CellSize))
		maxX := int(math.Floor((spec.Position.X + radius) / CellSize))
		minY := int(math.Floor((spec.Position.Y - radius) / CellSize))
		maxY := int(math.Floor((spec.Position.Y + radius) / CellSize))
		for y := minY; y <= maxY; y++ {
			for x := minX; x <= maxX; x++ {
				center := g.CellCenter(CellCoord{X: x, Y: y})
				if DistSq(center, spec.Position) <= radius*radius {
					mark(x, y)
				}
			}
		}
	default:
		radius := spec.CellRadius
		if spec.Shape == FootprintNone {
			radius = 0
			if spec.Structure {
				radius = 1
			}
		}
		cx := int(math.Floor(spec.Position.X / CellSize))
		cy := int(math.Floor(spec.Position.Y / CellSize))
		for y := cy - radius; y <= cy+radius; y++ {
			for x := cx - radius; x <= cx+radius; x++ {
				mark(x, y)
			}
		}
	}
	return cells
}

// boxSamples returns offsets along one box axis at half-cell increments,
// always including both edges.
func boxSamples(halfExtent float64) []float64 {
	if halfExtent <= 0 {
		return []float64{0}
	}
	step := CellSize * boxSampleHalfCells
	n := int(math.Ceil(2 * halfExtent / step))
	out := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		s := -halfExtent + float64(i)*step
		if s > halfExtent {
			s = halfExtent
		}
		out = append(out, s)
	}
	return out
}

// sliverScan closes sub-cell gaps around freshly blocked cells: a still-open
// cell with fewer than 2 open orthogonal neighbors or fewer than 4 open
// 8-neighbors cannot fit a mover, so it blocks too. Neighbors beyond the grid
// edge count as closed.
func (g *Grid) sliverScan(blocked []int32) []int32 {
	if len(blocked) == 0 {
		return nil
	}
	minX, minY := g.cellsX, g.cellsY
	maxX, maxY := -1, -1
	for _, idx := range blocked {
		x := int(idx) % g.cellsX
		y := int(idx) / g.cellsX
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	minX--
	minY--
	maxX++
	maxY++

	out := make([]int32, 0)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if !g.inBounds(x, y) {
				continue
			}
			idx := g.index(x, y)
			if g.blockRef[idx] > 0 {
				continue
			}
			orthOpen, totalOpen := g.openNeighborCounts(x, y)
			if orthOpen < 2 || totalOpen < 4 {
				out = append(out, int32(idx))
			}
		}
	}
	return out
}

func (g *Grid) openNeighborCounts(x, y int) (int, int) {
	orth := 0
	total := 0
	for _, off := range neighborOffsets {
		nx := x + off.dx
		ny := y + off.dy
		if !g.inBounds(nx, ny) {
			continue
		}
		if g.blockRef[g.index(nx, ny)] > 0 {
			continue
		}
		total++
		if !off.diagonal {
			orth++
		}
	}
	return orth, total
}
