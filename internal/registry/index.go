package registry

import (
	"math"

	"github.com/dhconnelly/rtreego"

	"github.com/discordwell/CnC-Generals-Zero-Hour-sub000/internal/nav"
)

// entityEntry wraps an entity for R-tree storage.
type entityEntry struct {
	entity *Entity
	bbox   rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (e *entityEntry) Bounds() rtreego.Rect {
	return e.bbox
}

// spatialIndex answers region queries over entity footprints.
type spatialIndex struct {
	tree    *rtreego.Rtree
	entries map[string]*entityEntry
}

func newSpatialIndex() *spatialIndex {
	return &spatialIndex{
		tree:    rtreego.NewTree(2, 25, 50),
		entries: make(map[string]*entityEntry),
	}
}

// footprintExtent is a rotation-safe half-extent covering the entity's
// geometry, never smaller than half a cell so degenerate rects stay legal.
func footprintExtent(e *Entity) float64 {
	extent := nav.CellSize / 2
	switch e.Footprint.Shape {
	case nav.FootprintBox:
		extent = math.Max(extent, math.Hypot(e.Footprint.HalfMajor, e.Footprint.HalfMinor))
	case nav.FootprintCircle:
		extent = math.Max(extent, e.Footprint.Radius)
	case nav.FootprintCells:
		extent = math.Max(extent, (float64(e.Footprint.CellRadius)+0.5)*nav.CellSize)
	}
	return extent
}

func (si *spatialIndex) insert(e *Entity) {
	extent := footprintExtent(e)
	bbox, err := rtreego.NewRect(
		rtreego.Point{e.Position.X - extent, e.Position.Y - extent},
		[]float64{2 * extent, 2 * extent},
	)
	if err != nil {
		return
	}
	entry := &entityEntry{entity: e, bbox: bbox}
	si.entries[e.ID] = entry
	si.tree.Insert(entry)
}

func (si *spatialIndex) remove(e *Entity) {
	entry, ok := si.entries[e.ID]
	if !ok {
		return
	}
	delete(si.entries, e.ID)
	si.tree.Delete(entry)
}

func (si *spatialIndex) search(center nav.Vec2, halfExtent float64) []*Entity {
	if halfExtent <= 0 {
		return nil
	}
	bbox, err := rtreego.NewRect(
		rtreego.Point{center.X - halfExtent, center.Y - halfExtent},
		[]float64{2 * halfExtent, 2 * halfExtent},
	)
	if err != nil {
		return nil
	}
	results := si.tree.SearchIntersect(bbox)
	found := make([]*Entity, 0, len(results))
	for _, item := range results {
		found = append(found, item.(*entityEntry).entity)
	}
	return found
}
