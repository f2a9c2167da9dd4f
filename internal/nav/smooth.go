package nav

// bresenhamWalk rasterizes the line from a to b and calls step for every
// cell-to-cell move along it. Walking stops early when step returns false;
// the return value reports whether b was reached.
func bresenhamWalk(a, b CellCoord, step func(from, to CellCoord) bool) bool {
	x, y := a.X, a.Y
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx := sign(b.X - a.X)
	sy := sign(b.Y - a.Y)
	err := dx + dy
	for x != b.X || y != b.Y {
		e2 := 2 * err
		nx, ny := x, y
		if e2 >= dy {
			err += dy
			nx += sx
		}
		if e2 <= dx {
			err += dx
			ny += sy
		}
		if !step(CellCoord{X: x, Y: y}, CellCoord{X: nx, Y: ny}) {
			return false
		}
		x, y = nx, ny
	}
	return true
}

// lineTraversable reports whether the rasterized line between two cells is
// legal for the profile at every step, under the same surface, transition,
// downhill, and corner-cut predicates the search uses.
func (g *Grid) lineTraversable(p Profile, a, b CellCoord) bool {
	return bresenhamWalk(a, b, func(from, to CellCoord) bool {
		dx := to.X - from.X
		dy := to.Y - from.Y
		if dx != 0 && dy != 0 && !g.diagonalAllowed(p, from.X, from.Y, dx, dy) {
			return false
		}
		return g.stepLegal(p, g.index(from.X, from.Y), g.index(to.X, to.Y))
	})
}

// smoothCellPath drops interior cells a straight walk can replace. The scan
// is greedy: the anchor advances to the farthest cell still reachable in a
// straight line, stopping its probe at the first failure, so every kept
// corner sits next to the obstruction that forced it.
func (g *Grid) smoothCellPath(p Profile, cells []CellCoord) []CellCoord {
	if len(cells) <= 2 {
		return cells
	}
	out := make([]CellCoord, 0, len(cells))
	out = append(out, cells[0])
	anchor := 0
	for anchor < len(cells)-1 {
		next := anchor + 1
		for probe := anchor + 2; probe < len(cells); probe++ {
			if !g.lineTraversable(p, cells[anchor], cells[probe]) {
				break
			}
			next = probe
		}
		out = append(out, cells[next])
		anchor = next
	}
	return out
}

// pathWorldLength sums the straight-line distances between consecutive
// waypoints.
func pathWorldLength(points []Vec2) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += Dist(points[i-1], points[i])
	}
	return total
}
