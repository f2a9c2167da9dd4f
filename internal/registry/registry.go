// Package registry tracks the entities a navigation grid is built from:
// structures and units with blocking footprints, bridge endpoint markers,
// and the locomotor templates movement profiles derive from.
package registry

import (
	"fmt"
	"sort"

	"github.com/discordwell/CnC-Generals-Zero-Hour-sub000/internal/mapdata"
	"github.com/discordwell/CnC-Generals-Zero-Hour-sub000/internal/nav"
)

// Kind classifies an entity for grid construction.
type Kind string

const (
	KindUnit      Kind = "unit"
	KindStructure Kind = "structure"
	KindBridge    Kind = "bridge"
)

// Footprint is the obstacle geometry an entity projects onto the grid.
type Footprint struct {
	Shape      nav.FootprintShape
	HalfMajor  float64
	HalfMinor  float64
	Radius     float64
	CellRadius int
}

// Entity is one registered world object.
type Entity struct {
	ID         string
	Kind       Kind
	Position   nav.Vec2
	Rotation   float64
	Footprint  Footprint
	Crushable  bool
	Locomotor  string
	Properties map[string]string
}

// Registry holds entities in insertion order. Order matters: bridge endpoint
// pairing and obstacle rasterization both follow it, so replays that add
// entities in the same order get the same grid.
type Registry struct {
	entities   map[string]*Entity
	order      []string
	index      *spatialIndex
	locomotors map[string]LocomotorTemplate
}

// New constructs an empty registry preloaded with the default locomotors.
func New() *Registry {
	r := &Registry{
		entities:   make(map[string]*Entity),
		index:      newSpatialIndex(),
		locomotors: make(map[string]LocomotorTemplate),
	}
	for _, tmpl := range DefaultLocomotors() {
		r.locomotors[tmpl.Name] = tmpl
	}
	return r
}

// Add registers an entity. Ids are unique; re-adding is an error so callers
// notice double placement instead of silently replacing geometry.
func (r *Registry) Add(e Entity) error {
	if e.ID == "" {
		return fmt.Errorf("registry: entity needs an id")
	}
	if _, exists := r.entities[e.ID]; exists {
		return fmt.Errorf("registry: duplicate entity id %q", e.ID)
	}
	stored := e
	r.entities[e.ID] = &stored
	r.order = append(r.order, e.ID)
	r.index.insert(&stored)
	return nil
}

// Remove forgets an entity. Returns false when the id is unknown.
func (r *Registry) Remove(id string) bool {
	e, ok := r.entities[id]
	if !ok {
		return false
	}
	delete(r.entities, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.index.remove(e)
	return true
}

// Get looks an entity up by id.
func (r *Registry) Get(id string) (*Entity, bool) {
	e, ok := r.entities[id]
	return e, ok
}

// Len reports the number of registered entities.
func (r *Registry) Len() int {
	return len(r.entities)
}

// Obstacles lists the footprint specs of every blocking entity, in insertion
// order. Mobile units without explicit geometry contribute nothing; bridges
// are handled separately. Implements nav.EntitySource.
func (r *Registry) Obstacles() []nav.ObstacleSpec {
	specs := make([]nav.ObstacleSpec, 0, len(r.order))
	for _, id := range r.order {
		e := r.entities[id]
		if e.Kind == KindBridge {
			continue
		}
		if e.Footprint.Shape == nav.FootprintNone && e.Kind != KindStructure {
			continue
		}
		specs = append(specs, e.ObstacleSpec())
	}
	return specs
}

// BridgeEndpoints lists bridge marker entities in insertion order.
// Implements nav.EntitySource.
func (r *Registry) BridgeEndpoints() []nav.BridgeEndpoint {
	ends := make([]nav.BridgeEndpoint, 0, 4)
	for _, id := range r.order {
		e := r.entities[id]
		if e.Kind != KindBridge {
			continue
		}
		ends = append(ends, nav.BridgeEndpoint{
			EntityID:   e.ID,
			Position:   e.Position,
			Properties: e.Properties,
		})
	}
	return ends
}

// Near returns the entities whose footprint bounds intersect a square of the
// given half-extent around center, sorted by id.
func (r *Registry) Near(center nav.Vec2, halfExtent float64) []*Entity {
	found := r.index.search(center, halfExtent)
	sort.Slice(found, func(i, j int) bool { return found[i].ID < found[j].ID })
	return found
}

// Profile resolves a locomotor name to a movement profile. Unknown names get
// the plain ground profile so a missing template degrades to default
// movement instead of failing the request.
func (r *Registry) Profile(locomotor string) nav.Profile {
	if tmpl, ok := r.locomotors[locomotor]; ok {
		return tmpl.Profile()
	}
	return GroundProfile()
}

// ProfileFor resolves the profile of a registered entity by id.
func (r *Registry) ProfileFor(entityID string) nav.Profile {
	if e, ok := r.entities[entityID]; ok {
		return r.Profile(e.Locomotor)
	}
	return GroundProfile()
}

// RegisterLocomotor adds or replaces a locomotor template.
func (r *Registry) RegisterLocomotor(tmpl LocomotorTemplate) error {
	if tmpl.Name == "" {
		return fmt.Errorf("registry: locomotor needs a name")
	}
	r.locomotors[tmpl.Name] = tmpl
	return nil
}

// Locomotors lists the registered templates sorted by name.
func (r *Registry) Locomotors() []LocomotorTemplate {
	out := make([]LocomotorTemplate, 0, len(r.locomotors))
	for _, tmpl := range r.locomotors {
		out = append(out, tmpl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ObstacleSpec converts the entity to the grid's footprint input.
func (e *Entity) ObstacleSpec() nav.ObstacleSpec {
	return nav.ObstacleSpec{
		EntityID:   e.ID,
		Position:   e.Position,
		Rotation:   e.Rotation,
		Shape:      e.Footprint.Shape,
		HalfMajor:  e.Footprint.HalfMajor,
		HalfMinor:  e.Footprint.HalfMinor,
		Radius:     e.Footprint.Radius,
		CellRadius: e.Footprint.CellRadius,
		Structure:  e.Kind == KindStructure,
		Crushable:  e.Crushable,
	}
}

// FromFixture seeds a registry with the entities, bridges, and locomotors of
// a fixture map.
func FromFixture(fx *mapdata.Fixture) (*Registry, error) {
	r := New()
	for _, spec := range fx.Locomotors {
		tmpl, err := LocomotorFromSpec(spec)
		if err != nil {
			return nil, err
		}
		if err := r.RegisterLocomotor(tmpl); err != nil {
			return nil, err
		}
	}
	for _, spec := range fx.Entities {
		kind, err := parseKind(spec.Kind)
		if err != nil {
			return nil, fmt.Errorf("registry: entity %q: %w", spec.ID, err)
		}
		shape, err := parseShape(spec.Footprint.Shape)
		if err != nil {
			return nil, fmt.Errorf("registry: entity %q: %w", spec.ID, err)
		}
		err = r.Add(Entity{
			ID:       spec.ID,
			Kind:     kind,
			Position: nav.Vec2{X: spec.Position.X, Y: spec.Position.Y},
			Rotation: spec.Rotation,
			Footprint: Footprint{
				Shape:      shape,
				HalfMajor:  spec.Footprint.HalfMajor,
				HalfMinor:  spec.Footprint.HalfMinor,
				Radius:     spec.Footprint.Radius,
				CellRadius: spec.Footprint.CellRadius,
			},
			Crushable: spec.Crushable,
			Locomotor: spec.Locomotor,
		})
		if err != nil {
			return nil, err
		}
	}
	for _, spec := range fx.Bridges {
		err := r.Add(Entity{
			ID:         spec.ID,
			Kind:       KindBridge,
			Position:   nav.Vec2{X: spec.Position.X, Y: spec.Position.Y},
			Properties: spec.Properties,
		})
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

func parseKind(raw string) (Kind, error) {
	switch raw {
	case "", "unit":
		return KindUnit, nil
	case "structure":
		return KindStructure, nil
	case "bridge":
		return KindBridge, nil
	default:
		return "", fmt.Errorf("unknown kind %q", raw)
	}
}

func parseShape(raw string) (nav.FootprintShape, error) {
	switch raw {
	case "", "none":
		return nav.FootprintNone, nil
	case "box":
		return nav.FootprintBox, nil
	case "circle":
		return nav.FootprintCircle, nil
	case "cells":
		return nav.FootprintCells, nil
	default:
		return nav.FootprintNone, fmt.Errorf("unknown footprint shape %q", raw)
	}
}
