package registry

import (
	"fmt"
	"strings"

	"github.com/discordwell/CnC-Generals-Zero-Hour-sub000/internal/mapdata"
	"github.com/discordwell/CnC-Generals-Zero-Hour-sub000/internal/nav"
)

// LocomotorTemplate is a named movement capability set. Units reference a
// template by name; path requests carry the derived nav.Profile.
type LocomotorTemplate struct {
	Name          string
	Surfaces      nav.Surface
	DownhillOnly  bool
	PassObstacles bool
	UseBridges    bool
	AvoidPinched  bool
	CanCrush      bool
}

// Profile converts the template to the per-request form.
func (t LocomotorTemplate) Profile() nav.Profile {
	return nav.Profile{
		Surfaces:      t.Surfaces,
		DownhillOnly:  t.DownhillOnly,
		PassObstacles: t.PassObstacles,
		UseBridges:    t.UseBridges,
		AvoidPinched:  t.AvoidPinched,
		CanCrush:      t.CanCrush,
	}
}

// DefaultLocomotors covers the stock mover classes. Map fixtures may
// override any of them by name.
func DefaultLocomotors() []LocomotorTemplate {
	return []LocomotorTemplate{
		{Name: "infantry", Surfaces: nav.SurfaceGround, UseBridges: true},
		{Name: "vehicle", Surfaces: nav.SurfaceGround, UseBridges: true, CanCrush: true},
		{Name: "hover", Surfaces: nav.SurfaceGround | nav.SurfaceWater, UseBridges: true},
		{Name: "amphibious", Surfaces: nav.SurfaceGround | nav.SurfaceWater, UseBridges: true, CanCrush: true},
		{Name: "ship", Surfaces: nav.SurfaceWater},
		{Name: "climber", Surfaces: nav.SurfaceGround | nav.SurfaceCliff, UseBridges: true},
		{Name: "air", Surfaces: nav.SurfaceAir, PassObstacles: true},
	}
}

// GroundProfile is the fallback profile for unknown locomotors.
func GroundProfile() nav.Profile {
	return nav.Profile{Surfaces: nav.SurfaceGround, UseBridges: true}
}

// ParseSurfaces folds surface names into a bitset.
func ParseSurfaces(names []string) (nav.Surface, error) {
	var surfaces nav.Surface
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "ground":
			surfaces |= nav.SurfaceGround
		case "water":
			surfaces |= nav.SurfaceWater
		case "cliff":
			surfaces |= nav.SurfaceCliff
		case "air":
			surfaces |= nav.SurfaceAir
		case "rubble":
			surfaces |= nav.SurfaceRubble
		default:
			return 0, fmt.Errorf("registry: unknown surface %q", name)
		}
	}
	if surfaces == 0 {
		return 0, fmt.Errorf("registry: locomotor needs at least one surface")
	}
	return surfaces, nil
}

// LocomotorFromSpec converts a fixture locomotor declaration.
func LocomotorFromSpec(spec mapdata.LocomotorSpec) (LocomotorTemplate, error) {
	if spec.Name == "" {
		return LocomotorTemplate{}, fmt.Errorf("registry: locomotor needs a name")
	}
	surfaces, err := ParseSurfaces(spec.Surfaces)
	if err != nil {
		return LocomotorTemplate{}, fmt.Errorf("registry: locomotor %q: %w", spec.Name, err)
	}
	return LocomotorTemplate{
		Name:          spec.Name,
		Surfaces:      surfaces,
		DownhillOnly:  spec.DownhillOnly,
		PassObstacles: spec.PassObstacles,
		UseBridges:    spec.UseBridges,
		AvoidPinched:  spec.AvoidPinched,
		CanCrush:      spec.CanCrush,
	}, nil
}
