package mapdata

import "testing"

func validMap() *MapData {
	heights := make([]float64, 11*11)
	for i := range heights {
		heights[i] = 10
	}
	return &MapData{Name: "valid", Width: 11, Height: 11, Heights: heights}
}

func TestValidate(t *testing.T) {
	for _, tc := range []struct {
		name    string
		mutate  func(*MapData)
		wantErr bool
	}{
		{name: "valid", mutate: func(*MapData) {}},
		{name: "too-narrow", mutate: func(m *MapData) { m.Width = 1 }, wantErr: true},
		{name: "too-short", mutate: func(m *MapData) { m.Height = 0 }, wantErr: true},
		{name: "height-count-mismatch", mutate: func(m *MapData) { m.Heights = m.Heights[:50] }, wantErr: true},
		{name: "negative-border", mutate: func(m *MapData) { m.BorderSize = -1 }, wantErr: true},
		{name: "positive-border", mutate: func(m *MapData) { m.BorderSize = 3 }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			m := validMap()
			tc.mutate(m)
			err := m.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestCellCountsAreCornerCountsMinusOne(t *testing.T) {
	m := &MapData{Width: 11, Height: 21}
	if m.CellsX() != 10 || m.CellsY() != 20 {
		t.Fatalf("expected 10x20 cells, got %dx%d", m.CellsX(), m.CellsY())
	}
}

func TestCornerHeightClampsToEdge(t *testing.T) {
	m := &MapData{
		Width:   3,
		Height:  3,
		Heights: []float64{0, 1, 2, 3, 4, 5, 6, 7, 8},
	}

	for _, tc := range []struct {
		name string
		x, y int
		want float64
	}{
		{name: "interior", x: 1, y: 2, want: 7},
		{name: "west-clamp", x: -5, y: 1, want: 3},
		{name: "east-clamp", x: 9, y: 1, want: 5},
		{name: "north-clamp", x: 1, y: -2, want: 1},
		{name: "south-east-clamp", x: 5, y: 5, want: 8},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := m.CornerHeight(tc.x, tc.y); got != tc.want {
				t.Fatalf("corner (%d,%d): got %v want %v", tc.x, tc.y, got, tc.want)
			}
		})
	}
}

func TestCliffMaskUsable(t *testing.T) {
	// 10 cells per row pack into 2 bytes, 10 rows need 20.
	m := validMap()
	if m.CliffMaskUsable() {
		t.Fatalf("missing mask should not be usable")
	}

	m.CliffMask = make([]byte, 20)
	if !m.CliffMaskUsable() {
		t.Fatalf("exact-size mask should be usable")
	}

	m.CliffMask = make([]byte, 19)
	if m.CliffMaskUsable() {
		t.Fatalf("undersized mask should be ignored")
	}

	m.CliffMask = make([]byte, 64)
	if !m.CliffMaskUsable() {
		t.Fatalf("oversized mask should be usable")
	}

	degenerate := &MapData{Width: 1, Height: 1, CliffMask: make([]byte, 8)}
	if degenerate.CliffMaskUsable() {
		t.Fatalf("mask without cells should not be usable")
	}
}

func TestCliffBitPacksRowMajorLSBFirst(t *testing.T) {
	m := validMap()
	m.CliffMask = make([]byte, 20)
	m.CliffMask[0] = 1 << 2  // cell (2,0)
	m.CliffMask[1] = 1 << 1  // cell (9,0)
	m.CliffMask[2*7] = 1     // cell (0,7)
	m.CliffMask[2*7+1] = 1   // cell (8,7)

	set := map[[2]int]bool{{2, 0}: true, {9, 0}: true, {0, 7}: true, {8, 7}: true}
	for y := 0; y < m.CellsY(); y++ {
		for x := 0; x < m.CellsX(); x++ {
			if got := m.CliffBit(x, y); got != set[[2]int{x, y}] {
				t.Fatalf("cliff bit (%d,%d): got %v want %v", x, y, got, set[[2]int{x, y}])
			}
		}
	}
}
