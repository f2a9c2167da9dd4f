// Package mapdata carries the decoded per-map inputs of navigation-grid
// construction: heightmap corner heights, the playable border, water
// polygons, and the optional packed cliff bitmask. It performs no
// classification itself.
package mapdata

import "fmt"

// MapData is one decoded map. Width and Height count heightmap corners, so
// the navigation grid derived from it has (Width-1)x(Height-1) cells.
type MapData struct {
	Name       string
	Width      int
	Height     int
	BorderSize int
	Heights    []float64
	Water      []WaterArea
	CliffMask  []byte
}

// CellsX is the number of grid cell columns.
func (m *MapData) CellsX() int {
	return m.Width - 1
}

// CellsY is the number of grid cell rows.
func (m *MapData) CellsY() int {
	return m.Height - 1
}

// CornerHeight reads one heightmap corner. Out-of-range corners clamp to the
// nearest valid one so cell classification at the map edge stays defined.
func (m *MapData) CornerHeight(x, y int) float64 {
	if x < 0 {
		x = 0
	} else if x >= m.Width {
		x = m.Width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= m.Height {
		y = m.Height - 1
	}
	return m.Heights[y*m.Width+x]
}

// Validate checks the structural invariants a grid build relies on.
func (m *MapData) Validate() error {
	if m.Width < 2 || m.Height < 2 {
		return fmt.Errorf("mapdata: map %q needs at least 2x2 corners, got %dx%d", m.Name, m.Width, m.Height)
	}
	if len(m.Heights) != m.Width*m.Height {
		return fmt.Errorf("mapdata: map %q has %d corner heights, want %d", m.Name, len(m.Heights), m.Width*m.Height)
	}
	if m.BorderSize < 0 {
		return fmt.Errorf("mapdata: map %q has negative border %d", m.Name, m.BorderSize)
	}
	return nil
}

// cliffRowBytes is the packed width of one bitmask row.
func (m *MapData) cliffRowBytes() int {
	return (m.CellsX() + 7) / 8
}

// CliffMaskUsable reports whether the cliff bitmask is present and large
// enough to cover every cell. An undersized mask is ignored entirely rather
// than read partially.
func (m *MapData) CliffMaskUsable() bool {
	if len(m.CliffMask) == 0 || m.CellsX() <= 0 || m.CellsY() <= 0 {
		return false
	}
	return len(m.CliffMask) >= m.cliffRowBytes()*m.CellsY()
}

// CliffBit reads the cliff flag for one cell. Rows are packed row-major,
// least significant bit first.
func (m *MapData) CliffBit(x, y int) bool {
	rowBytes := m.cliffRowBytes()
	return m.CliffMask[y*rowBytes+x/8]&(1<<(x%8)) != 0
}
