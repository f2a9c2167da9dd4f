package nav

// Bounds is an inclusive rectangle of playable cells. The map border sits
// outside it and is never entered by a path.
type Bounds struct {
	MinX, MinY int
	MaxX, MaxY int
}

func (b Bounds) contains(x, y int) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

func (b Bounds) Width() int {
	return b.MaxX - b.MinX + 1
}

func (b Bounds) Height() int {
	return b.MaxY - b.MinY + 1
}

// Grid is the per-map navigation index. It is built once per map load and
// mutated afterwards only by obstacle add/remove and bridge toggles; searches
// never mutate it.
type Grid struct {
	cellsX, cellsY int

	terrain        []Terrain
	elevation      []float64
	pinchedTerrain []bool

	blockRef []uint16
	crushRef []uint16

	bridge           []bool
	bridgePassable   []bool
	bridgeTransition []bool
	segmentByCell    []SegmentID

	bounds Bounds

	segments    []*BridgeSegment
	controllers map[string]SegmentID
	claims      map[string]*obstacleClaim

	zones *ZoneIndex
}

func newGrid(cellsX, cellsY, border int) *Grid {
	if cellsX < 1 {
		cellsX = 1
	}
	if cellsY < 1 {
		cellsY = 1
	}
	n := cellsX * cellsY
	g := &Grid{
		cellsX:           cellsX,
		cellsY:           cellsY,
		terrain:          make([]Terrain, n),
		elevation:        make([]float64, n),
		pinchedTerrain:   make([]bool, n),
		blockRef:         make([]uint16, n),
		crushRef:         make([]uint16, n),
		bridge:           make([]bool, n),
		bridgePassable:   make([]bool, n),
		bridgeTransition: make([]bool, n),
		segmentByCell:    make([]SegmentID, n),
		controllers:      make(map[string]SegmentID),
		claims:           make(map[string]*obstacleClaim),
	}
	g.bounds = clampBorder(cellsX, cellsY, border)
	g.zones = newZoneIndex(cellsX, cellsY)
	return g
}

func clampBorder(cellsX, cellsY, border int) Bounds {
	if border < 0 {
		border = 0
	}
	b := Bounds{MinX: border, MinY: border, MaxX: cellsX - 1 - border, MaxY: cellsY - 1 - border}
	if b.MaxX < b.MinX {
		b.MinX = 0
		b.MaxX = cellsX - 1
	}
	if b.MaxY < b.MinY {
		b.MinY = 0
		b.MaxY = cellsY - 1
	}
	return b
}

func (g *Grid) index(x, y int) int {
	return y*g.cellsX + x
}

func (g *Grid) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.cellsX && y < g.cellsY
}

// CellsX reports the grid width in cells.
func (g *Grid) CellsX() int {
	if g == nil {
		return 0
	}
	return g.cellsX
}

// CellsY reports the grid height in cells.
func (g *Grid) CellsY() int {
	if g == nil {
		return 0
	}
	return g.cellsY
}

// PlayableBounds reports the inclusive cell rectangle paths may use.
func (g *Grid) PlayableBounds() Bounds {
	if g == nil {
		return Bounds{}
	}
	return g.bounds
}

// WorldExtent reports the world-space width and height covered by the grid.
func (g *Grid) WorldExtent() (float64, float64) {
	if g == nil {
		return 0, 0
	}
	return float64(g.cellsX) * CellSize, float64(g.cellsY) * CellSize
}

// CellAt maps a world position to its cell. It reports false for positions
// outside the world extent; positions exactly on the far edge clamp into the
// last cell.
func (g *Grid) CellAt(p Vec2) (CellCoord, bool) {
	if g == nil || g.cellsX == 0 || g.cellsY == 0 {
		return CellCoord{}, false
	}
	w, h := g.WorldExtent()
	if p.X < 0 || p.Y < 0 || p.X > w || p.Y > h {
		return CellCoord{}, false
	}
	x := int(p.X / CellSize)
	y := int(p.Y / CellSize)
	if x >= g.cellsX {
		x = g.cellsX - 1
	}
	if y >= g.cellsY {
		y = g.cellsY - 1
	}
	return CellCoord{X: x, Y: y}, true
}

// CellCenter maps a cell to the world position of its center.
func (g *Grid) CellCenter(c CellCoord) Vec2 {
	return Vec2{
		X: float64(c.X)*CellSize + CellSize/2,
		Y: float64(c.Y)*CellSize + CellSize/2,
	}
}

// TerrainAt reports the base terrain classification of a cell.
func (g *Grid) TerrainAt(c CellCoord) Terrain {
	if g == nil || !g.inBounds(c.X, c.Y) {
		return TerrainClear
	}
	return g.terrain[g.index(c.X, c.Y)]
}

// ElevationAt reports the cell elevation, the mean of its four corner heights.
func (g *Grid) ElevationAt(c CellCoord) float64 {
	if g == nil || !g.inBounds(c.X, c.Y) {
		return 0
	}
	return g.elevation[g.index(c.X, c.Y)]
}

// BlockedAt reports whether any obstacle footprint claims the cell.
func (g *Grid) BlockedAt(c CellCoord) bool {
	if g == nil || !g.inBounds(c.X, c.Y) {
		return false
	}
	return g.blockRef[g.index(c.X, c.Y)] > 0
}

// CrushOnlyAt reports whether the cell is blocked exclusively by crushable
// entities.
func (g *Grid) CrushOnlyAt(c CellCoord) bool {
	if g == nil || !g.inBounds(c.X, c.Y) {
		return false
	}
	idx := g.index(c.X, c.Y)
	return g.blockRef[idx] > 0 && g.crushRef[idx] == g.blockRef[idx]
}

// PinchedAt reports whether the cell carries the narrow-passage cost bias.
func (g *Grid) PinchedAt(c CellCoord) bool {
	if g == nil || !g.inBounds(c.X, c.Y) {
		return false
	}
	return g.isPinched(g.index(c.X, c.Y))
}

// BridgeAt reports whether the cell is part of a bridge deck.
func (g *Grid) BridgeAt(c CellCoord) bool {
	if g == nil || !g.inBounds(c.X, c.Y) {
		return false
	}
	return g.bridge[g.index(c.X, c.Y)]
}

// BridgePassableAt reports whether a deck cell is currently passable. Cells
// outside any deck report false.
func (g *Grid) BridgePassableAt(c CellCoord) bool {
	if g == nil || !g.inBounds(c.X, c.Y) {
		return false
	}
	idx := g.index(c.X, c.Y)
	return g.bridge[idx] && g.bridgePassable[idx]
}

// TransitionAt reports whether the cell is a bridge transition cell.
func (g *Grid) TransitionAt(c CellCoord) bool {
	if g == nil || !g.inBounds(c.X, c.Y) {
		return false
	}
	return g.bridgeTransition[g.index(c.X, c.Y)]
}

// SegmentAt reports which bridge segment owns the cell, or SegmentNone.
func (g *Grid) SegmentAt(c CellCoord) SegmentID {
	if g == nil || !g.inBounds(c.X, c.Y) {
		return SegmentNone
	}
	return g.segmentByCell[g.index(c.X, c.Y)]
}

// OpenFor reports whether a mover with the given profile may occupy the cell.
func (g *Grid) OpenFor(p Profile, c CellCoord) bool {
	if g == nil || !g.bounds.contains(c.X, c.Y) {
		return false
	}
	return g.cellOpen(p, g.index(c.X, c.Y))
}

// nearestOpenCell relaxes a cell to the closest cell the mover may occupy,
// scanning expanding Chebyshev rings inside the playable bounds. The scan
// order inside each ring is row-major, which keeps relaxation deterministic.
func (g *Grid) nearestOpenCell(p Profile, c CellCoord) (CellCoord, bool) {
	if !g.bounds.contains(c.X, c.Y) {
		cx := c.X
		cy := c.Y
		if cx < g.bounds.MinX {
			cx = g.bounds.MinX
		} else if cx > g.bounds.MaxX {
			cx = g.bounds.MaxX
		}
		if cy < g.bounds.MinY {
			cy = g.bounds.MinY
		} else if cy > g.bounds.MaxY {
			cy = g.bounds.MaxY
		}
		c = CellCoord{X: cx, Y: cy}
	}
	if g.cellOpen(p, g.index(c.X, c.Y)) {
		return c, true
	}
	maxRadius := g.bounds.Width()
	if h := g.bounds.Height(); h > maxRadius {
		maxRadius = h
	}
	for radius := 1; radius <= maxRadius; radius++ {
		for y := c.Y - radius; y <= c.Y+radius; y++ {
			for x := c.X - radius; x <= c.X+radius; x++ {
				if chebyshev(x-c.X, y-c.Y) != radius {
					continue
				}
				if !g.bounds.contains(x, y) {
					continue
				}
				if g.cellOpen(p, g.index(x, y)) {
					return CellCoord{X: x, Y: y}, true
				}
			}
		}
	}
	return c, false
}

func chebyshev(dx, dy int) int {
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}
