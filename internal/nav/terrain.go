package nav

import (
	"github.com/discordwell/CnC-Generals-Zero-Hour-sub000/internal/mapdata"
)

// classify derives the base terrain layer from heightmap corners, water
// polygons, and the optional packed cliff bitmask. The two pinch passes run
// in a fixed order: the first converts clear cells hugging cliffs into a hard
// cliff buffer, the second adds a cost-only pinch ring around the result.
// Unit behavior near plateau edges depends on that ordering.
func (g *Grid) classify(m *mapdata.MapData) {
	useMask := m.CliffMaskUsable()

	for y := 0; y < g.cellsY; y++ {
		for x := 0; x < g.cellsX; x++ {
			idx := g.index(x, y)

			h00 := m.CornerHeight(x, y)
			h10 := m.CornerHeight(x+1, y)
			h01 := m.CornerHeight(x, y+1)
			h11 := m.CornerHeight(x+1, y+1)
			g.elevation[idx] = (h00 + h10 + h01 + h11) / 4

			if cellTouchesWater(m, x, y) {
				g.terrain[idx] = TerrainWater
				continue
			}

			if useMask {
				if m.CliffBit(x, y) {
					g.terrain[idx] = TerrainCliff
				}
				continue
			}

			lo, hi := h00, h00
			for _, h := range [3]float64{h10, h01, h11} {
				if h < lo {
					lo = h
				}
				if h > hi {
					hi = h
				}
			}
			if hi-lo > cliffHeightDelta {
				g.terrain[idx] = TerrainCliff
			}
		}
	}

	g.propagatePinch()
}

// propagatePinch runs the two pinch passes. Pass one collects every clear
// cell 8-adjacent to a cliff before converting any of them, so the buffer
// never cascades outward.
func (g *Grid) propagatePinch() {
	convert := make([]int, 0)
	for y := 0; y < g.cellsY; y++ {
		for x := 0; x < g.cellsX; x++ {
			idx := g.index(x, y)
			if g.terrain[idx] != TerrainClear {
				continue
			}
			if g.hasCliffNeighbor(x, y) {
				convert = append(convert, idx)
			}
		}
	}
	for _, idx := range convert {
		g.terrain[idx] = TerrainCliff
		g.pinchedTerrain[idx] = true
	}

	for y := 0; y < g.cellsY; y++ {
		for x := 0; x < g.cellsX; x++ {
			idx := g.index(x, y)
			if g.terrain[idx] != TerrainClear || g.pinchedTerrain[idx] {
				continue
			}
			if g.hasCliffNeighbor(x, y) {
				g.pinchedTerrain[idx] = true
			}
		}
	}
}

func (g *Grid) hasCliffNeighbor(x, y int) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx := x + dx
			ny := y + dy
			if !g.inBounds(nx, ny) {
				continue
			}
			if g.terrain[g.index(nx, ny)] == TerrainCliff {
				return true
			}
		}
	}
	return false
}

func cellTouchesWater(m *mapdata.MapData, x, y int) bool {
	if len(m.Water) == 0 {
		return false
	}
	for dy := 0; dy <= 1; dy++ {
		for dx := 0; dx <= 1; dx++ {
			wx := float64(x+dx) * CellSize
			wy := float64(y+dy) * CellSize
			for i := range m.Water {
				if m.Water[i].ContainsXY(wx, wy) {
					return true
				}
			}
		}
	}
	return false
}
