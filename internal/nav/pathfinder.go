package nav

import (
	"context"
	"fmt"

	"github.com/discordwell/CnC-Generals-Zero-Hour-sub000/internal/mapdata"
	"github.com/discordwell/CnC-Generals-Zero-Hour-sub000/logging"
	loggingnavigation "github.com/discordwell/CnC-Generals-Zero-Hour-sub000/logging/navigation"
)

// EntitySource supplies the entity-derived inputs of a grid build: blocking
// footprints and bridge endpoint markers. The registry implements it.
type EntitySource interface {
	Obstacles() []ObstacleSpec
	BridgeEndpoints() []BridgeEndpoint
}

// Deps bundles the runtime dependencies of a Pathfinder.
type Deps struct {
	Publisher logging.Publisher
}

// PathRequest is a single findPath query. AttackDistance, when positive,
// accepts any cell within that world distance of the goal instead of the
// goal cell itself.
type PathRequest struct {
	Start          Vec2
	Goal           Vec2
	Profile        Profile
	AttackDistance float64
}

// SearchStats reports what the most recent FindPath call did.
type SearchStats struct {
	Expanded     int
	PathCost     int32
	PathCells    int
	PathLength   float64
	Found        bool
	Capped       bool
	StartRelaxed bool
	GoalRelaxed  bool
	ZoneRejected bool
}

// Pathfinder owns one navigation grid and answers path queries against it.
// It is not safe for concurrent use: callers serialize queries and mutations
// the same way the simulation tick does.
type Pathfinder struct {
	publisher logging.Publisher
	grid      *Grid
	scratch   *searchScratch
	stats     SearchStats
}

// New constructs a Pathfinder with no grid. Build must run before queries.
func New(deps Deps) *Pathfinder {
	publisher := deps.Publisher
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	return &Pathfinder{publisher: publisher}
}

// Build classifies the map into a fresh navigation grid, replacing any
// previous one. Entity footprints and bridges come from src; a nil src
// builds a terrain-only grid.
func (pf *Pathfinder) Build(m *mapdata.MapData, src EntitySource) error {
	if pf == nil {
		return fmt.Errorf("nav: nil pathfinder")
	}
	if m == nil {
		return fmt.Errorf("nav: nil map data")
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("nav: invalid map data: %w", err)
	}

	grid := newGrid(m.CellsX(), m.CellsY(), m.BorderSize)
	grid.classify(m)

	obstacles := 0
	if src != nil {
		grid.buildBridges(src.BridgeEndpoints())
		for _, ob := range src.Obstacles() {
			if grid.addObstacle(ob) > 0 {
				obstacles++
			}
		}
	}

	pf.grid = grid
	pf.scratch = newSearchScratch(grid.cellsX * grid.cellsY)
	pf.stats = SearchStats{}

	water, cliff, pinched := 0, 0, 0
	for i := range grid.terrain {
		switch grid.terrain[i] {
		case TerrainWater:
			water++
		case TerrainCliff:
			cliff++
		}
		if grid.pinchedTerrain[i] {
			pinched++
		}
	}
	loggingnavigation.GridBuilt(context.Background(), pf.publisher,
		logging.EntityRef{ID: m.Name, Kind: logging.EntityKindMap},
		loggingnavigation.GridBuiltPayload{
			CellsX:    grid.cellsX,
			CellsY:    grid.cellsY,
			Water:     water,
			Cliff:     cliff,
			Pinched:   pinched,
			Bridges:   len(grid.segments),
			Obstacles: obstacles,
		})
	return nil
}

// Grid exposes the current navigation grid for probes and tests. It is nil
// until Build succeeds.
func (pf *Pathfinder) Grid() *Grid {
	if pf == nil {
		return nil
	}
	return pf.grid
}

// LastSearchStats reports diagnostics from the most recent FindPath call.
func (pf *Pathfinder) LastSearchStats() SearchStats {
	if pf == nil {
		return SearchStats{}
	}
	return pf.stats
}

// FindPath computes world-space waypoints from start to goal for the given
// profile. An empty result means unreachable, endpoints off the map, or no
// grid; callers treat it as hold position.
func (pf *Pathfinder) FindPath(req PathRequest) []Vec2 {
	if pf == nil || pf.grid == nil {
		return nil
	}
	g := pf.grid
	pf.stats = SearchStats{}

	start, ok := g.CellAt(req.Start)
	if !ok {
		return nil
	}
	goal, ok := g.CellAt(req.Goal)
	if !ok {
		return nil
	}

	if !g.OpenFor(req.Profile, start) {
		relaxed, ok := g.nearestOpenCell(req.Profile, start)
		if !ok {
			return nil
		}
		start = relaxed
		pf.stats.StartRelaxed = true
	}
	if !g.OpenFor(req.Profile, goal) {
		relaxed, ok := g.nearestOpenCell(req.Profile, goal)
		if !ok {
			return nil
		}
		goal = relaxed
		pf.stats.GoalRelaxed = true
	}

	if g.zones.disconnected(g, req.Profile, start, goal) {
		pf.stats.ZoneRejected = true
		return nil
	}

	res := g.search(req.Profile, pf.scratch, start, goal, req.AttackDistance, req.Goal)
	pf.stats.Expanded = res.expanded
	pf.stats.Capped = res.capped || res.overrun
	if res.capped || res.overrun {
		guard := "expansion"
		if res.overrun {
			guard = "reconstruction"
		}
		loggingnavigation.SearchCapped(context.Background(), pf.publisher,
			logging.EntityRef{Kind: logging.EntityKindGrid},
			loggingnavigation.SearchCappedPayload{Guard: guard, Expanded: res.expanded})
		return nil
	}
	if !res.found || len(res.cells) == 0 {
		return nil
	}
	pf.stats.Found = true
	pf.stats.PathCost = res.cost

	cells := g.smoothCellPath(req.Profile, res.cells)
	points := make([]Vec2, 0, len(cells)+1)
	if Dist(req.Start, g.CellCenter(cells[0])) > startPointEpsilon {
		points = append(points, req.Start)
	}
	for _, c := range cells {
		points = append(points, g.CellCenter(c))
	}
	pf.stats.PathCells = len(cells)
	pf.stats.PathLength = pathWorldLength(points)
	return points
}

// AddObstacle claims the cells of an entity footprint. Returns the number of
// cells the claim touched; zero means the footprint was rejected or off-grid.
func (pf *Pathfinder) AddObstacle(ob ObstacleSpec) int {
	if pf == nil || pf.grid == nil {
		return 0
	}
	cells := pf.grid.addObstacle(ob)
	if cells > 0 {
		loggingnavigation.Obstacle(context.Background(), pf.publisher,
			obstacleRef(ob), loggingnavigation.ObstaclePayload{Action: "add", Cells: cells})
	}
	return cells
}

// RemoveObstacle releases a previous claim by entity id. Returns the number
// of cells released; zero means no claim was held.
func (pf *Pathfinder) RemoveObstacle(entityID string) int {
	if pf == nil || pf.grid == nil {
		return 0
	}
	cells := pf.grid.removeObstacle(entityID)
	if cells > 0 {
		loggingnavigation.Obstacle(context.Background(), pf.publisher,
			logging.EntityRef{ID: entityID, Kind: logging.EntityKindStructure},
			loggingnavigation.ObstaclePayload{Action: "remove", Cells: cells})
	}
	return cells
}

// SetSegmentPassable toggles one bridge segment. Returns false for an
// unknown segment id.
func (pf *Pathfinder) SetSegmentPassable(id SegmentID, passable bool) bool {
	return pf.toggleSegment(id, passable, "toggle")
}

// SetBridgePassableAt toggles the bridge segment owning the cell at a world
// position. Returns false when the position holds no bridge.
func (pf *Pathfinder) SetBridgePassableAt(x, y float64, passable bool) bool {
	if pf == nil || pf.grid == nil {
		return false
	}
	cell, ok := pf.grid.CellAt(Vec2{X: x, Y: y})
	if !ok {
		return false
	}
	return pf.toggleSegment(pf.grid.SegmentAt(cell), passable, "toggle")
}

// HandleObjectDestroyed reacts to an entity death: if the entity controls a
// bridge segment, the segment turns impassable. Returns whether a segment
// changed hands.
func (pf *Pathfinder) HandleObjectDestroyed(entityID string) bool {
	return pf.handleControllerEvent(entityID, false, "destroyed")
}

// HandleObjectRepaired reacts to an entity repair: if the entity controls a
// bridge segment, the segment turns passable again.
func (pf *Pathfinder) HandleObjectRepaired(entityID string) bool {
	return pf.handleControllerEvent(entityID, true, "repaired")
}

// SegmentStates lists every bridge segment with its current passability, in
// segment id order.
func (pf *Pathfinder) SegmentStates() []SegmentState {
	if pf == nil || pf.grid == nil {
		return nil
	}
	return pf.grid.segmentStates()
}

func (pf *Pathfinder) handleControllerEvent(entityID string, passable bool, cause string) bool {
	if pf == nil || pf.grid == nil {
		return false
	}
	id, ok := pf.grid.controllers[entityID]
	if !ok {
		return false
	}
	return pf.toggleSegment(id, passable, cause)
}

func (pf *Pathfinder) toggleSegment(id SegmentID, passable bool, cause string) bool {
	if pf == nil || pf.grid == nil {
		return false
	}
	if !pf.grid.setSegmentPassable(id, passable) {
		return false
	}
	loggingnavigation.BridgeSegment(context.Background(), pf.publisher,
		logging.EntityRef{ID: fmt.Sprintf("segment-%d", id), Kind: logging.EntityKindBridge},
		loggingnavigation.BridgeSegmentPayload{Segment: int(id), Passable: passable, Cause: cause})
	return true
}

func obstacleRef(ob ObstacleSpec) logging.EntityRef {
	kind := logging.EntityKindUnit
	if ob.Structure {
		kind = logging.EntityKindStructure
	}
	return logging.EntityRef{ID: ob.EntityID, Kind: kind}
}
