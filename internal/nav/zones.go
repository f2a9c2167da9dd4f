package nav

// ZoneIndex summarizes passability over blocks of cells so clearly hopeless
// long-range requests can be rejected without a full search. It is advisory:
// searches stay correct if it is never consulted.
type ZoneIndex struct {
	blocksX, blocksY int

	obstructed  []bool
	hasPassable []bool
	labels      []int32

	dirty bool
}

func newZoneIndex(cellsX, cellsY int) *ZoneIndex {
	blocksX := (cellsX + zoneBlockCells - 1) / zoneBlockCells
	blocksY := (cellsY + zoneBlockCells - 1) / zoneBlockCells
	n := blocksX * blocksY
	return &ZoneIndex{
		blocksX:     blocksX,
		blocksY:     blocksY,
		obstructed:  make([]bool, n),
		hasPassable: make([]bool, n),
		labels:      make([]int32, n),
		dirty:       true,
	}
}

func (z *ZoneIndex) invalidate() {
	z.dirty = true
}

func (z *ZoneIndex) blockOf(c CellCoord) int {
	return (c.Y/zoneBlockCells)*z.blocksX + c.X/zoneBlockCells
}

// groundOpen is the fixed passability notion the zone summary is built on: a
// plain ground walker with no special authorizations. Profiles that only
// restrict this notion further can safely trust a disconnection verdict.
func (g *Grid) groundOpen(idx int) bool {
	x := idx % g.cellsX
	y := idx / g.cellsX
	if !g.bounds.contains(x, y) {
		return false
	}
	if g.blockRef[idx] > 0 {
		return false
	}
	return g.requiredSurfaces(idx).Has(SurfaceGround)
}

// refresh recomputes block summaries and connectivity labels if any grid
// mutation invalidated them since the last consult.
func (z *ZoneIndex) refresh(g *Grid) {
	if !z.dirty {
		return
	}

	for by := 0; by < z.blocksY; by++ {
		for bx := 0; bx < z.blocksX; bx++ {
			b := by*z.blocksX + bx
			obstructed := false
			passable := false
			maxY := min((by+1)*zoneBlockCells, g.cellsY)
			maxX := min((bx+1)*zoneBlockCells, g.cellsX)
			for y := by * zoneBlockCells; y < maxY; y++ {
				for x := bx * zoneBlockCells; x < maxX; x++ {
					if g.groundOpen(g.index(x, y)) {
						passable = true
					} else {
						obstructed = true
					}
				}
			}
			z.obstructed[b] = obstructed
			z.hasPassable[b] = passable
			z.labels[b] = 0
		}
	}

	next := int32(0)
	stack := make([]int, 0, len(z.labels))
	for seed := range z.labels {
		if !z.hasPassable[seed] || z.labels[seed] != 0 {
			continue
		}
		next++
		z.labels[seed] = next
		stack = append(stack[:0], seed)
		for len(stack) > 0 {
			b := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			bx := b % z.blocksX
			by := b / z.blocksX
			for _, off := range neighborOffsets {
				nx := bx + off.dx
				ny := by + off.dy
				if nx < 0 || ny < 0 || nx >= z.blocksX || ny >= z.blocksY {
					continue
				}
				nb := ny*z.blocksX + nx
				if !z.hasPassable[nb] || z.labels[nb] != 0 {
					continue
				}
				z.labels[nb] = next
				stack = append(stack, nb)
			}
		}
	}

	z.dirty = false
}

// disconnected reports a provable lack of any path between the two cells. It
// abstains (returns false) for profiles whose movement differs from the
// plain-ground notion in a permissive direction, and for same-block queries.
func (z *ZoneIndex) disconnected(g *Grid, p Profile, a, b CellCoord) bool {
	if p.Surfaces != SurfaceGround || p.PassObstacles || p.CanCrush {
		return false
	}
	blockA := z.blockOf(a)
	blockB := z.blockOf(b)
	if blockA == blockB {
		return false
	}
	z.refresh(g)
	la := z.labels[blockA]
	lb := z.labels[blockB]
	if la == 0 || lb == 0 {
		return false
	}
	return la != lb
}

// ZoneObstructedAt reports whether the block containing the cell has at least
// one impassable cell. Diagnostic surface for tooling.
func (g *Grid) ZoneObstructedAt(c CellCoord) bool {
	if g == nil || !g.inBounds(c.X, c.Y) {
		return false
	}
	g.zones.refresh(g)
	return g.zones.obstructed[g.zones.blockOf(c)]
}

// ZoneLabelAt reports the connectivity label of the block containing the
// cell; zero means the block has no plain-ground passable cell.
func (g *Grid) ZoneLabelAt(c CellCoord) int32 {
	if g == nil || !g.inBounds(c.X, c.Y) {
		return 0
	}
	g.zones.refresh(g)
	return g.zones.labels[g.zones.blockOf(c)]
}
