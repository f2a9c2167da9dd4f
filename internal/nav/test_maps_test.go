package nav

import (
	"testing"

	"github.com/discordwell/CnC-Generals-Zero-Hour-sub000/internal/mapdata"
)

// flatMap builds a heightmap of width x height corners at a uniform height,
// which classifies into an all-clear grid of (width-1) x (height-1) cells.
func flatMap(width, height int, fill float64) *mapdata.MapData {
	heights := make([]float64, width*height)
	for i := range heights {
		heights[i] = fill
	}
	return &mapdata.MapData{
		Name:    "test-map",
		Width:   width,
		Height:  height,
		Heights: heights,
	}
}

// raiseCorners sets an inclusive corner rectangle to the given height.
func raiseCorners(m *mapdata.MapData, x0, y0, x1, y1 int, height float64) {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			m.Heights[y*m.Width+x] = height
		}
	}
}

func buildGrid(t *testing.T, m *mapdata.MapData) *Grid {
	t.Helper()
	if err := m.Validate(); err != nil {
		t.Fatalf("test map invalid: %v", err)
	}
	g := newGrid(m.CellsX(), m.CellsY(), m.BorderSize)
	g.classify(m)
	return g
}

func groundProfile() Profile {
	return Profile{Surfaces: SurfaceGround, UseBridges: true}
}

// cellObstacle is a one-cell blocking footprint centered on the given cell.
func cellObstacle(id string, x, y int) ObstacleSpec {
	return ObstacleSpec{
		EntityID: id,
		Position: cellCenterOf(x, y),
		Shape:    FootprintCells,
	}
}

func cellCenterOf(x, y int) Vec2 {
	return Vec2{
		X: float64(x)*CellSize + CellSize/2,
		Y: float64(y)*CellSize + CellSize/2,
	}
}

func searchOn(g *Grid, p Profile, start, goal CellCoord) searchResult {
	scratch := newSearchScratch(g.cellsX * g.cellsY)
	return g.search(p, scratch, start, goal, 0, g.CellCenter(goal))
}

func containsCell(cells []CellCoord, c CellCoord) bool {
	for _, got := range cells {
		if got == c {
			return true
		}
	}
	return false
}
