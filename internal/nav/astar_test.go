package nav

import "testing"

func TestOctileDistance(t *testing.T) {
	for _, tc := range []struct {
		name           string
		ax, ay, bx, by int
		want           int32
	}{
		{name: "same-cell", ax: 2, ay: 2, bx: 2, by: 2, want: 0},
		{name: "straight", ax: 0, ay: 0, bx: 3, by: 0, want: 30},
		{name: "diagonal", ax: 0, ay: 0, bx: 9, by: 9, want: 126},
		{name: "mixed", ax: 0, ay: 0, bx: 4, by: 7, want: 86},
		{name: "negative-delta", ax: 4, ay: 7, bx: 0, by: 0, want: 86},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := octile(tc.ax, tc.ay, tc.bx, tc.by); got != tc.want {
				t.Fatalf("octile mismatch: got %d want %d", got, tc.want)
			}
		})
	}
}

func TestTurnPenaltyPricing(t *testing.T) {
	for _, tc := range []struct {
		name                   string
		prevDX, prevDY, dx, dy int
		want                   int32
	}{
		{name: "no-previous-step", prevDX: 0, prevDY: 0, dx: 1, dy: 0, want: 0},
		{name: "straight", prevDX: 0, prevDY: -1, dx: 0, dy: -1, want: 0},
		{name: "slight-bend", prevDX: 0, prevDY: -1, dx: 1, dy: -1, want: 4},
		{name: "right-angle", prevDX: 0, prevDY: -1, dx: 1, dy: 0, want: 8},
		{name: "reversal", prevDX: 0, prevDY: -1, dx: 0, dy: 1, want: 16},
		{name: "diagonal-reversal", prevDX: 1, prevDY: -1, dx: -1, dy: 1, want: 16},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := turnPenalty(tc.prevDX, tc.prevDY, tc.dx, tc.dy); got != tc.want {
				t.Fatalf("penalty mismatch: got %d want %d", got, tc.want)
			}
		})
	}
}

func TestSearchStraightRow(t *testing.T) {
	g := buildGrid(t, flatMap(11, 11, 10))

	res := searchOn(g, groundProfile(), CellCoord{X: 0, Y: 5}, CellCoord{X: 9, Y: 5})
	if !res.found {
		t.Fatalf("expected a path")
	}
	if res.cost != 90 {
		t.Fatalf("expected cost 90, got %d", res.cost)
	}
	if len(res.cells) != 10 {
		t.Fatalf("expected 10 cells, got %d", len(res.cells))
	}
	for _, c := range res.cells {
		if c.Y != 5 {
			t.Fatalf("straight run should stay on its row, visited %+v", c)
		}
	}
}

func TestSearchDiagonalRun(t *testing.T) {
	g := buildGrid(t, flatMap(11, 11, 10))

	res := searchOn(g, groundProfile(), CellCoord{X: 0, Y: 0}, CellCoord{X: 9, Y: 9})
	if !res.found {
		t.Fatalf("expected a path")
	}
	// Nine diagonal steps with no direction change.
	if res.cost != 126 {
		t.Fatalf("expected cost 126, got %d", res.cost)
	}
	if len(res.cells) != 10 {
		t.Fatalf("expected 10 cells, got %d", len(res.cells))
	}
}

func TestSearchRoutesAroundBlockedCell(t *testing.T) {
	g := buildGrid(t, flatMap(11, 11, 10))
	if g.addObstacle(cellObstacle("rock", 5, 5)) != 1 {
		t.Fatalf("expected single-cell obstacle")
	}

	goal := CellCoord{X: 6, Y: 5}
	res := searchOn(g, groundProfile(), CellCoord{X: 4, Y: 5}, goal)
	if !res.found {
		t.Fatalf("expected a detour path")
	}
	// Cheapest detour arcs two cells around the rock and pays the pinch
	// surcharge once, on the goal cell itself.
	if res.cost != 162 {
		t.Fatalf("expected cost 162, got %d", res.cost)
	}
	if containsCell(res.cells, CellCoord{X: 5, Y: 5}) {
		t.Fatalf("path crossed the blocked cell")
	}

	// The goal hugs the obstacle, so the delivered path stops one cell
	// short, on unpinched ground.
	last := res.cells[len(res.cells)-1]
	if last == goal {
		t.Fatalf("pinched goal cell should be dropped from the path")
	}
	if g.PinchedAt(last) {
		t.Fatalf("path should end on an unpinched cell, got %+v", last)
	}
}

func TestSearchHonorsDownhillOnly(t *testing.T) {
	m := flatMap(11, 11, 15)
	// Gentle step down to the east, too small to classify as cliff.
	raiseCorners(m, 6, 0, 10, 10, 10)
	g := buildGrid(t, m)
	wheeled := Profile{Surfaces: SurfaceGround, DownhillOnly: true, UseBridges: true}

	down := searchOn(g, wheeled, CellCoord{X: 2, Y: 5}, CellCoord{X: 8, Y: 5})
	if !down.found || down.cost != 60 {
		t.Fatalf("downhill run should be a straight row: found=%v cost=%d", down.found, down.cost)
	}

	up := searchOn(g, wheeled, CellCoord{X: 8, Y: 5}, CellCoord{X: 2, Y: 5})
	if up.found {
		t.Fatalf("uphill run should be impossible for a downhill-only mover")
	}

	back := searchOn(g, groundProfile(), CellCoord{X: 8, Y: 5}, CellCoord{X: 2, Y: 5})
	if !back.found {
		t.Fatalf("unrestricted mover should climb the step")
	}
}

func TestEntryPenalties(t *testing.T) {
	t.Run("pinched-and-shallow-cliff", func(t *testing.T) {
		m := flatMap(11, 11, 10)
		rowBytes := (m.CellsX() + 7) / 8
		mask := make([]byte, rowBytes*m.CellsY())
		mask[5*rowBytes] = 1 << 5
		m.CliffMask = mask
		g := buildGrid(t, m)

		// Stepping into the pinched buffer pays the full surcharge.
		if got := g.entryPenalty(g.index(3, 5), g.index(4, 5)); got != 98 {
			t.Fatalf("pinched entry: got %d want 98", got)
		}
		// So does stepping onto a cliff cell level with its surroundings.
		if got := g.entryPenalty(g.index(4, 5), g.index(5, 5)); got != 98 {
			t.Fatalf("shallow cliff entry: got %d want 98", got)
		}
		if got := g.entryPenalty(g.index(1, 1), g.index(2, 1)); got != 0 {
			t.Fatalf("open ground entry: got %d want 0", got)
		}
	})

	t.Run("steep-cliff-face", func(t *testing.T) {
		m := flatMap(11, 11, 10)
		raiseCorners(m, 6, 0, 10, 10, 30)
		g := buildGrid(t, m)

		// A full-height climb is not surcharged; the cliff surface gate is
		// what keeps ground movers out.
		if got := g.entryPenalty(g.index(4, 5), g.index(5, 5)); got != 0 {
			t.Fatalf("steep cliff entry: got %d want 0", got)
		}
		if got := g.entryPenalty(g.index(3, 5), g.index(4, 5)); got != 98 {
			t.Fatalf("buffer entry: got %d want 98", got)
		}
	})
}

func TestSearchAttackDistanceStopsShort(t *testing.T) {
	g := buildGrid(t, flatMap(11, 11, 10))
	scratch := newSearchScratch(g.cellsX * g.cellsY)

	goal := CellCoord{X: 9, Y: 5}
	res := g.search(groundProfile(), scratch, CellCoord{X: 0, Y: 5}, goal, 30, g.CellCenter(goal))
	if !res.found {
		t.Fatalf("expected a stand-off path")
	}
	// Cell (6,5) is the first expansion whose center is within 30 world
	// units of the goal center.
	last := res.cells[len(res.cells)-1]
	if last != (CellCoord{X: 6, Y: 5}) {
		t.Fatalf("expected stand-off at (6,5), got %+v", last)
	}
	if res.cost != 60 {
		t.Fatalf("expected cost 60, got %d", res.cost)
	}
}

func TestSearchExhaustsWhenGoalSealed(t *testing.T) {
	g := buildGrid(t, flatMap(11, 11, 10))
	i := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if g.addObstacle(cellObstacle("ring-"+string(rune('a'+i)), 7+dx, 7+dy)) == 0 {
				t.Fatalf("ring piece %d claimed nothing", i)
			}
			i++
		}
	}

	res := searchOn(g, groundProfile(), CellCoord{X: 1, Y: 1}, CellCoord{X: 7, Y: 7})
	if res.found {
		t.Fatalf("sealed goal should be unreachable")
	}
	if res.capped || res.overrun {
		t.Fatalf("exhaustion is not a guard trip: capped=%v overrun=%v", res.capped, res.overrun)
	}
	if res.expanded < 50 {
		t.Fatalf("search should sweep the open component, expanded only %d", res.expanded)
	}
	if res.cells != nil {
		t.Fatalf("failed search should return no cells")
	}
}
