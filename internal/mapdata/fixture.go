package mapdata

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"
)

// Fixture is the YAML form of a test or tooling map: terrain plus the entity
// and bridge placements a registry seeds itself from.
type Fixture struct {
	Name       string          `yaml:"name" json:"name"`
	Width      int             `yaml:"width" json:"width"`
	Height     int             `yaml:"height" json:"height"`
	Border     int             `yaml:"border" json:"border"`
	Heights    HeightSpec      `yaml:"heights" json:"heights"`
	CliffMask  []byte          `yaml:"cliff_mask" json:"cliff_mask"`
	Water      []PolygonSpec   `yaml:"water" json:"water"`
	Entities   []EntitySpec    `yaml:"entities" json:"entities"`
	Bridges    []BridgeSpec    `yaml:"bridges" json:"bridges"`
	Locomotors []LocomotorSpec `yaml:"locomotors" json:"locomotors"`
}

// HeightSpec fills the whole heightmap with one value and then stamps
// rectangular patches over it.
type HeightSpec struct {
	Fill    float64     `yaml:"fill" json:"fill"`
	Patches []PatchSpec `yaml:"patches" json:"patches"`
}

// PatchSpec raises or lowers an inclusive corner rectangle.
type PatchSpec struct {
	X0     int     `yaml:"x0" json:"x0"`
	Y0     int     `yaml:"y0" json:"y0"`
	X1     int     `yaml:"x1" json:"x1"`
	Y1     int     `yaml:"y1" json:"y1"`
	Height float64 `yaml:"height" json:"height"`
}

// PointSpec is a world-space position.
type PointSpec struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// PolygonSpec is an ordered vertex list.
type PolygonSpec struct {
	Points []PointSpec `yaml:"points" json:"points"`
}

// EntitySpec places one obstacle-bearing entity.
type EntitySpec struct {
	ID        string        `yaml:"id" json:"id"`
	Kind      string        `yaml:"kind" json:"kind"`
	Position  PointSpec     `yaml:"position" json:"position"`
	Rotation  float64       `yaml:"rotation" json:"rotation"`
	Footprint FootprintSpec `yaml:"footprint" json:"footprint"`
	Crushable bool          `yaml:"crushable" json:"crushable"`
	Locomotor string        `yaml:"locomotor" json:"locomotor"`
}

// FootprintSpec selects the footprint geometry: box, circle, cells, or none.
type FootprintSpec struct {
	Shape      string  `yaml:"shape" json:"shape"`
	HalfMajor  float64 `yaml:"half_major" json:"half_major"`
	HalfMinor  float64 `yaml:"half_minor" json:"half_minor"`
	Radius     float64 `yaml:"radius" json:"radius"`
	CellRadius int     `yaml:"cell_radius" json:"cell_radius"`
}

// BridgeSpec places one bridge endpoint marker.
type BridgeSpec struct {
	ID         string            `yaml:"id" json:"id"`
	Position   PointSpec         `yaml:"position" json:"position"`
	Properties map[string]string `yaml:"properties" json:"properties"`
}

// LocomotorSpec declares a named movement profile.
type LocomotorSpec struct {
	Name          string   `yaml:"name" json:"name"`
	Surfaces      []string `yaml:"surfaces" json:"surfaces"`
	DownhillOnly  bool     `yaml:"downhill_only" json:"downhill_only"`
	PassObstacles bool     `yaml:"pass_obstacles" json:"pass_obstacles"`
	UseBridges    bool     `yaml:"use_bridges" json:"use_bridges"`
	AvoidPinched  bool     `yaml:"avoid_pinched" json:"avoid_pinched"`
	CanCrush      bool     `yaml:"can_crush" json:"can_crush"`
}

// LoadFixture reads and decodes a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mapdata: load %s: %w", path, err)
	}
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("mapdata: unmarshal %s: %w", path, err)
	}
	if fx.Name == "" {
		fx.Name = path
	}
	return &fx, nil
}

// MapData expands the fixture terrain into a validated MapData.
func (fx *Fixture) MapData() (*MapData, error) {
	m := &MapData{
		Name:       fx.Name,
		Width:      fx.Width,
		Height:     fx.Height,
		BorderSize: fx.Border,
		CliffMask:  fx.CliffMask,
	}
	if err := buildHeights(m, fx.Heights); err != nil {
		return nil, err
	}
	for i, poly := range fx.Water {
		if len(poly.Points) < 3 {
			return nil, fmt.Errorf("mapdata: fixture %q water polygon %d has %d points, want >= 3", fx.Name, i, len(poly.Points))
		}
		points := make([]orb.Point, len(poly.Points))
		for j, p := range poly.Points {
			points[j] = orb.Point{p.X, p.Y}
		}
		m.Water = append(m.Water, NewWaterArea(points))
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func buildHeights(m *MapData, spec HeightSpec) error {
	if m.Width < 2 || m.Height < 2 {
		return fmt.Errorf("mapdata: fixture %q needs at least 2x2 corners, got %dx%d", m.Name, m.Width, m.Height)
	}
	m.Heights = make([]float64, m.Width*m.Height)
	for i := range m.Heights {
		m.Heights[i] = spec.Fill
	}
	for _, patch := range spec.Patches {
		if patch.X0 < 0 || patch.Y0 < 0 || patch.X1 >= m.Width || patch.Y1 >= m.Height || patch.X0 > patch.X1 || patch.Y0 > patch.Y1 {
			return fmt.Errorf("mapdata: fixture %q patch (%d,%d)-(%d,%d) out of range", m.Name, patch.X0, patch.Y0, patch.X1, patch.Y1)
		}
		for y := patch.Y0; y <= patch.Y1; y++ {
			for x := patch.X0; x <= patch.X1; x++ {
				m.Heights[y*m.Width+x] = patch.Height
			}
		}
	}
	return nil
}
