package mapdata

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// WaterArea is one water or river trigger polygon in world space. The ring
// is stored closed; the cached bound makes the common miss cheap.
type WaterArea struct {
	ring  orb.Ring
	bound orb.Bound
}

// NewWaterArea builds a WaterArea from ordered world-space vertices, closing
// the ring if the input leaves it open. Fewer than three vertices yield an
// area that contains nothing.
func NewWaterArea(points []orb.Point) WaterArea {
	if len(points) < 3 {
		return WaterArea{}
	}
	ring := make(orb.Ring, 0, len(points)+1)
	ring = append(ring, points...)
	if ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return WaterArea{ring: ring, bound: ring.Bound()}
}

// ContainsXY reports whether a world point lies inside the polygon, boundary
// included.
func (w *WaterArea) ContainsXY(x, y float64) bool {
	if len(w.ring) == 0 {
		return false
	}
	p := orb.Point{x, y}
	if !w.bound.Contains(p) {
		return false
	}
	return planar.RingContains(w.ring, p)
}
