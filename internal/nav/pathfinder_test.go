package nav

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/paulmach/orb"

	"github.com/discordwell/CnC-Generals-Zero-Hour-sub000/internal/mapdata"
	"github.com/discordwell/CnC-Generals-Zero-Hour-sub000/logging"
	loggingnavigation "github.com/discordwell/CnC-Generals-Zero-Hour-sub000/logging/navigation"
)

type stubSource struct {
	obstacles []ObstacleSpec
	bridges   []BridgeEndpoint
}

func (s stubSource) Obstacles() []ObstacleSpec         { return s.obstacles }
func (s stubSource) BridgeEndpoints() []BridgeEndpoint { return s.bridges }

func TestBuildRejectsBadMapData(t *testing.T) {
	pf := New(Deps{})
	if err := pf.Build(nil, nil); err == nil {
		t.Fatalf("nil map should fail")
	}

	short := flatMap(11, 11, 10)
	short.Heights = short.Heights[:50]
	if err := pf.Build(short, nil); err == nil {
		t.Fatalf("truncated heightmap should fail")
	}
	if pf.Grid() != nil {
		t.Fatalf("failed builds should leave no grid")
	}

	if err := pf.Build(flatMap(11, 11, 10), nil); err != nil {
		t.Fatalf("valid map rejected: %v", err)
	}
	if g := pf.Grid(); g == nil || g.CellsX() != 10 || g.CellsY() != 10 {
		t.Fatalf("expected a 10x10 grid after build")
	}
}

func TestFindPathStraightLine(t *testing.T) {
	pf := New(Deps{})
	if err := pf.Build(flatMap(11, 11, 10), nil); err != nil {
		t.Fatalf("build: %v", err)
	}

	points := pf.FindPath(PathRequest{
		Start:   cellCenterOf(0, 0),
		Goal:    cellCenterOf(9, 9),
		Profile: groundProfile(),
	})
	if len(points) != 2 {
		t.Fatalf("open diagonal should smooth to endpoints, got %v", points)
	}
	if points[0] != cellCenterOf(0, 0) || points[1] != cellCenterOf(9, 9) {
		t.Fatalf("unexpected waypoints: %v", points)
	}

	stats := pf.LastSearchStats()
	if !stats.Found || stats.Capped || stats.ZoneRejected {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.PathCost != 126 {
		t.Fatalf("path cost: got %d want 126", stats.PathCost)
	}
	if stats.PathCells != 2 {
		t.Fatalf("path cells: got %d want 2", stats.PathCells)
	}
	if math.Abs(stats.PathLength-90*math.Sqrt2) > 1e-9 {
		t.Fatalf("path length: got %v", stats.PathLength)
	}
	if stats.Expanded == 0 {
		t.Fatalf("search should have expanded nodes")
	}
}

func TestFindPathPrependsOffCenterStart(t *testing.T) {
	pf := New(Deps{})
	if err := pf.Build(flatMap(11, 11, 10), nil); err != nil {
		t.Fatalf("build: %v", err)
	}

	start := Vec2{X: 7, Y: 8}
	points := pf.FindPath(PathRequest{Start: start, Goal: cellCenterOf(9, 0), Profile: groundProfile()})
	if len(points) != 3 {
		t.Fatalf("expected prepended start, got %v", points)
	}
	if points[0] != start {
		t.Fatalf("first waypoint should be the exact start, got %v", points[0])
	}
	if points[1] != cellCenterOf(0, 0) || points[2] != cellCenterOf(9, 0) {
		t.Fatalf("unexpected waypoints: %v", points)
	}
	if pf.LastSearchStats().PathCells != 2 {
		t.Fatalf("cell count should not include the prepended start")
	}
}

func TestFindPathRelaxesBlockedEndpoints(t *testing.T) {
	pf := New(Deps{})
	src := stubSource{obstacles: []ObstacleSpec{cellObstacle("rock", 5, 5)}}
	if err := pf.Build(flatMap(11, 11, 10), src); err != nil {
		t.Fatalf("build: %v", err)
	}

	points := pf.FindPath(PathRequest{
		Start:   cellCenterOf(5, 5),
		Goal:    cellCenterOf(9, 9),
		Profile: groundProfile(),
	})
	if len(points) < 2 {
		t.Fatalf("relaxed start should still yield a path, got %v", points)
	}
	stats := pf.LastSearchStats()
	if !stats.StartRelaxed || stats.GoalRelaxed {
		t.Fatalf("expected start relaxation only: %+v", stats)
	}
	if points[0] != cellCenterOf(5, 5) {
		t.Fatalf("requested start should be prepended, got %v", points[0])
	}
	if points[1] != cellCenterOf(4, 4) {
		t.Fatalf("relaxed start should be the nearest open cell, got %v", points[1])
	}

	points = pf.FindPath(PathRequest{
		Start:   cellCenterOf(0, 0),
		Goal:    cellCenterOf(5, 5),
		Profile: groundProfile(),
	})
	if len(points) == 0 {
		t.Fatalf("relaxed goal should still yield a path")
	}
	stats = pf.LastSearchStats()
	if stats.StartRelaxed || !stats.GoalRelaxed {
		t.Fatalf("expected goal relaxation only: %+v", stats)
	}
	if last := points[len(points)-1]; last != cellCenterOf(4, 4) {
		t.Fatalf("path should end at the relaxed goal, got %v", last)
	}

	// A mover with no open cell anywhere cannot relax.
	if err := pf.Build(flatMap(3, 3, 10), nil); err != nil {
		t.Fatalf("build: %v", err)
	}
	ship := Profile{Surfaces: SurfaceWater}
	if got := pf.FindPath(PathRequest{Start: Vec2{X: 5, Y: 5}, Goal: Vec2{X: 15, Y: 15}, Profile: ship}); got != nil {
		t.Fatalf("landlocked ship should get no path, got %v", got)
	}
}

func TestFindPathStopsAtAttackDistance(t *testing.T) {
	pf := New(Deps{})
	if err := pf.Build(flatMap(11, 11, 10), nil); err != nil {
		t.Fatalf("build: %v", err)
	}

	points := pf.FindPath(PathRequest{
		Start:          cellCenterOf(0, 5),
		Goal:           cellCenterOf(9, 5),
		Profile:        groundProfile(),
		AttackDistance: 30,
	})
	if len(points) == 0 {
		t.Fatalf("expected a standoff path")
	}
	if last := points[len(points)-1]; last != cellCenterOf(6, 5) {
		t.Fatalf("standoff should end three cells short, got %v", last)
	}
	if stats := pf.LastSearchStats(); stats.PathCost != 60 {
		t.Fatalf("standoff cost: got %d want 60", stats.PathCost)
	}
}

func TestFindPathAvoidsPinchedFinalCell(t *testing.T) {
	pf := New(Deps{})
	if err := pf.Build(flatMap(11, 11, 10), nil); err != nil {
		t.Fatalf("build: %v", err)
	}
	if pf.AddObstacle(cellObstacle("rock", 5, 5)) != 1 {
		t.Fatalf("expected single-cell obstacle")
	}

	points := pf.FindPath(PathRequest{
		Start:   cellCenterOf(4, 5),
		Goal:    cellCenterOf(6, 5),
		Profile: groundProfile(),
	})
	if len(points) != 2 {
		t.Fatalf("unexpected waypoints: %v", points)
	}
	// The goal cell hugs the rock, so the path settles one cell back.
	if points[1] != cellCenterOf(6, 4) {
		t.Fatalf("path should stop before the pinched goal, got %v", points[1])
	}
	if stats := pf.LastSearchStats(); !stats.Found || stats.PathCost != 162 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestFindPathRejectsCrossZoneQueries(t *testing.T) {
	pf := New(Deps{})
	if err := pf.Build(riverMap(), nil); err != nil {
		t.Fatalf("build: %v", err)
	}

	points := pf.FindPath(PathRequest{
		Start:   cellCenterOf(5, 5),
		Goal:    cellCenterOf(5, 25),
		Profile: groundProfile(),
	})
	if points != nil {
		t.Fatalf("unbridged river should reject ground movers, got %v", points)
	}
	stats := pf.LastSearchStats()
	if !stats.ZoneRejected {
		t.Fatalf("expected zone rejection: %+v", stats)
	}
	if stats.Expanded != 0 {
		t.Fatalf("zone rejection should skip the search, expanded %d", stats.Expanded)
	}
}

func TestFindPathExhaustsWithinZoneBlock(t *testing.T) {
	// A water column inside a single zone block: connectivity cannot veto,
	// so the search itself has to prove the far side unreachable.
	m := flatMap(11, 11, 10)
	m.Water = []mapdata.WaterArea{
		mapdata.NewWaterArea([]orb.Point{{41, -5}, {59, -5}, {59, 115}, {41, 115}}),
	}

	pf := New(Deps{})
	if err := pf.Build(m, nil); err != nil {
		t.Fatalf("build: %v", err)
	}

	points := pf.FindPath(PathRequest{
		Start:   cellCenterOf(0, 0),
		Goal:    cellCenterOf(9, 0),
		Profile: groundProfile(),
	})
	if points != nil {
		t.Fatalf("expected no path across the channel, got %v", points)
	}
	stats := pf.LastSearchStats()
	if stats.ZoneRejected || stats.Capped || stats.Found {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.Expanded < 40 {
		t.Fatalf("search should sweep the whole west bank, expanded %d", stats.Expanded)
	}
}

func TestFindPathCrossesBridge(t *testing.T) {
	src := stubSource{bridges: []BridgeEndpoint{
		{EntityID: "pier-n", Position: cellCenterOf(15, 8)},
		{EntityID: "pier-s", Position: cellCenterOf(15, 21)},
	}}
	pf := New(Deps{})
	if err := pf.Build(riverMap(), src); err != nil {
		t.Fatalf("build: %v", err)
	}

	points := pf.FindPath(PathRequest{
		Start:   cellCenterOf(5, 5),
		Goal:    cellCenterOf(5, 25),
		Profile: groundProfile(),
	})
	if len(points) < 3 {
		t.Fatalf("expected a multi-leg route over the bridge, got %v", points)
	}
	stats := pf.LastSearchStats()
	if !stats.Found || stats.ZoneRejected {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if points[0] != cellCenterOf(5, 5) || points[len(points)-1] != cellCenterOf(5, 25) {
		t.Fatalf("route endpoints mismatch: %v", points)
	}

	// The only dry column through the river is the deck, so the crossing
	// leg must run down it.
	g := pf.Grid()
	onDeckColumn := 0
	for _, p := range points {
		if c, ok := g.CellAt(p); ok && c.X == 15 {
			onDeckColumn++
		}
	}
	if onDeckColumn < 2 {
		t.Fatalf("route should funnel through the deck column: %v", points)
	}

	// Without bridge use the mover sweeps its bank and gives up; zones do
	// not veto because the deck keeps the banks formally connected.
	walker := Profile{Surfaces: SurfaceGround}
	if got := pf.FindPath(PathRequest{Start: cellCenterOf(5, 5), Goal: cellCenterOf(5, 25), Profile: walker}); got != nil {
		t.Fatalf("bridge-averse mover should not cross, got %v", got)
	}
	stats = pf.LastSearchStats()
	if stats.ZoneRejected {
		t.Fatalf("deck should keep zones connected: %+v", stats)
	}
	if stats.Expanded < 200 {
		t.Fatalf("bridge-averse search should sweep the north bank, expanded %d", stats.Expanded)
	}
}

func TestBridgeLifecycle(t *testing.T) {
	src := stubSource{bridges: []BridgeEndpoint{
		{EntityID: "pier-n", Position: cellCenterOf(15, 8)},
		{EntityID: "pier-s", Position: cellCenterOf(15, 21)},
	}}
	pf := New(Deps{})
	if err := pf.Build(riverMap(), src); err != nil {
		t.Fatalf("build: %v", err)
	}

	crossing := PathRequest{Start: cellCenterOf(5, 5), Goal: cellCenterOf(5, 25), Profile: groundProfile()}

	states := pf.SegmentStates()
	if len(states) != 1 || states[0].ID != 1 || !states[0].Passable {
		t.Fatalf("unexpected initial states: %+v", states)
	}

	if !pf.HandleObjectDestroyed("pier-n") {
		t.Fatalf("pier should control the segment")
	}
	if states = pf.SegmentStates(); states[0].Passable {
		t.Fatalf("destroyed pier should close the segment")
	}
	if got := pf.FindPath(crossing); got != nil {
		t.Fatalf("closed bridge should cut the route, got %v", got)
	}
	// The rubble deck no longer counts as ground, so the banks split into
	// separate zones and the query dies before searching.
	if stats := pf.LastSearchStats(); !stats.ZoneRejected || stats.Expanded != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	if pf.HandleObjectDestroyed("bystander") {
		t.Fatalf("unknown entity should not toggle anything")
	}
	if !pf.HandleObjectRepaired("pier-s") {
		t.Fatalf("either pier may repair the segment")
	}
	if got := pf.FindPath(crossing); len(got) == 0 {
		t.Fatalf("repaired bridge should restore the route")
	}

	if !pf.SetBridgePassableAt(155, 125, false) {
		t.Fatalf("world position on the deck should resolve the segment")
	}
	if got := pf.FindPath(crossing); got != nil {
		t.Fatalf("toggled-off deck should cut the route, got %v", got)
	}
	if pf.SetBridgePassableAt(55, 55, true) {
		t.Fatalf("plain land should resolve no segment")
	}
	if pf.SetBridgePassableAt(-50, -50, true) {
		t.Fatalf("off-map position should resolve no segment")
	}

	if !pf.SetSegmentPassable(1, true) {
		t.Fatalf("segment 1 should toggle")
	}
	if pf.SetSegmentPassable(9, true) {
		t.Fatalf("unknown segment should not toggle")
	}
}

func TestObstacleEditsRoundTrip(t *testing.T) {
	pf := New(Deps{})
	if err := pf.Build(flatMap(11, 11, 10), nil); err != nil {
		t.Fatalf("build: %v", err)
	}

	target := CellCoord{X: 5, Y: 5}
	if pf.AddObstacle(cellObstacle("rock", 5, 5)) != 1 {
		t.Fatalf("expected one claimed cell")
	}
	if pf.Grid().OpenFor(groundProfile(), target) {
		t.Fatalf("claimed cell should be blocked")
	}
	if pf.AddObstacle(cellObstacle("rock", 7, 7)) != 0 {
		t.Fatalf("duplicate entity id should be rejected")
	}
	if pf.RemoveObstacle("rock") != 1 {
		t.Fatalf("expected one released cell")
	}
	if !pf.Grid().OpenFor(groundProfile(), target) {
		t.Fatalf("released cell should be open")
	}
	if pf.RemoveObstacle("rock") != 0 {
		t.Fatalf("second removal should release nothing")
	}

	bare := New(Deps{})
	if bare.AddObstacle(cellObstacle("rock", 5, 5)) != 0 || bare.RemoveObstacle("rock") != 0 {
		t.Fatalf("edits before build should be no-ops")
	}
}

func TestRebuildReplacesGrid(t *testing.T) {
	pf := New(Deps{})
	if err := pf.Build(flatMap(11, 11, 10), nil); err != nil {
		t.Fatalf("build: %v", err)
	}
	pf.AddObstacle(cellObstacle("rock", 5, 5))

	if err := pf.Build(flatMap(11, 11, 10), nil); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if !pf.Grid().OpenFor(groundProfile(), CellCoord{X: 5, Y: 5}) {
		t.Fatalf("rebuild should drop prior claims")
	}
	if pf.AddObstacle(cellObstacle("rock", 5, 5)) != 1 {
		t.Fatalf("entity id should be reusable after rebuild")
	}
}

func TestPathfinderPublishesEvents(t *testing.T) {
	var events []logging.Event
	pf := New(Deps{Publisher: logging.PublisherFunc(func(_ context.Context, e logging.Event) {
		events = append(events, e)
	})})

	src := stubSource{bridges: []BridgeEndpoint{
		{EntityID: "pier-n", Position: cellCenterOf(15, 8)},
		{EntityID: "pier-s", Position: cellCenterOf(15, 21)},
	}}
	if err := pf.Build(riverMap(), src); err != nil {
		t.Fatalf("build: %v", err)
	}
	pf.AddObstacle(cellObstacle("jeep", 2, 2))
	pf.HandleObjectDestroyed("pier-n")

	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}

	if events[0].Type != loggingnavigation.EventGridBuilt {
		t.Fatalf("first event: got %s", events[0].Type)
	}
	built, ok := events[0].Payload.(loggingnavigation.GridBuiltPayload)
	if !ok {
		t.Fatalf("unexpected grid_built payload: %T", events[0].Payload)
	}
	if built.CellsX != 30 || built.CellsY != 30 {
		t.Fatalf("grid size mismatch: %+v", built)
	}
	if built.Water != 360 {
		t.Fatalf("water cells: got %d want 360", built.Water)
	}
	if built.Bridges != 1 {
		t.Fatalf("bridges: got %d want 1", built.Bridges)
	}

	if events[1].Type != loggingnavigation.EventObstacle {
		t.Fatalf("second event: got %s", events[1].Type)
	}
	if events[1].Subject.ID != "jeep" || events[1].Subject.Kind != logging.EntityKindUnit {
		t.Fatalf("unexpected obstacle subject: %+v", events[1].Subject)
	}
	edit := events[1].Payload.(loggingnavigation.ObstaclePayload)
	if edit.Action != "add" || edit.Cells != 1 {
		t.Fatalf("unexpected obstacle payload: %+v", edit)
	}

	if events[2].Type != loggingnavigation.EventBridgeSegment {
		t.Fatalf("third event: got %s", events[2].Type)
	}
	toggled := events[2].Payload.(loggingnavigation.BridgeSegmentPayload)
	if toggled.Segment != 1 || toggled.Passable || toggled.Cause != "destroyed" {
		t.Fatalf("unexpected bridge payload: %+v", toggled)
	}

	// Zone rejections are routine and publish nothing.
	pf.FindPath(PathRequest{Start: cellCenterOf(5, 5), Goal: cellCenterOf(5, 25), Profile: groundProfile()})
	if len(events) != 3 {
		t.Fatalf("zone rejection should stay silent, got %d events", len(events))
	}
}

func TestPathfinderNilSafety(t *testing.T) {
	var pf *Pathfinder
	if err := pf.Build(flatMap(3, 3, 10), nil); err == nil {
		t.Fatalf("nil pathfinder build should fail")
	}
	if pf.Grid() != nil || pf.FindPath(PathRequest{}) != nil || pf.SegmentStates() != nil {
		t.Fatalf("nil pathfinder queries should be empty")
	}
	if pf.AddObstacle(cellObstacle("x", 0, 0)) != 0 || pf.RemoveObstacle("x") != 0 {
		t.Fatalf("nil pathfinder edits should be no-ops")
	}
	if pf.SetSegmentPassable(1, true) || pf.HandleObjectDestroyed("x") {
		t.Fatalf("nil pathfinder toggles should report false")
	}
	if got := pf.LastSearchStats(); got != (SearchStats{}) {
		t.Fatalf("nil pathfinder stats should be zero: %+v", got)
	}

	built := New(Deps{})
	if built.FindPath(PathRequest{Start: Vec2{X: 5, Y: 5}, Goal: Vec2{X: 15, Y: 15}, Profile: groundProfile()}) != nil {
		t.Fatalf("queries before build should be empty")
	}
}

func TestAirProfileCrossesWhereGroundCannot(t *testing.T) {
	air := Profile{Surfaces: SurfaceAir, PassObstacles: true}

	// Unbridged river: the ground mover is zone-rejected, the flyer is not.
	pf := New(Deps{})
	if err := pf.Build(riverMap(), nil); err != nil {
		t.Fatalf("build: %v", err)
	}
	req := PathRequest{Start: cellCenterOf(5, 5), Goal: cellCenterOf(5, 25), Profile: groundProfile()}
	if points := pf.FindPath(req); points != nil || !pf.LastSearchStats().ZoneRejected {
		t.Fatalf("ground crossing without a bridge should fail: %+v", pf.LastSearchStats())
	}
	req.Profile = air
	if points := pf.FindPath(req); len(points) != 2 || !pf.LastSearchStats().Found {
		t.Fatalf("flyer should cross the river directly: %v", points)
	}

	// A wall of blocking entities seals the map; only the flyer passes over.
	pf = New(Deps{})
	wall := make([]ObstacleSpec, 0, 10)
	for y := 0; y < 10; y++ {
		wall = append(wall, cellObstacle(fmt.Sprintf("wall-%d", y), 5, y))
	}
	if err := pf.Build(flatMap(11, 11, 10), stubSource{obstacles: wall}); err != nil {
		t.Fatalf("build: %v", err)
	}
	req = PathRequest{Start: cellCenterOf(2, 5), Goal: cellCenterOf(8, 5), Profile: groundProfile()}
	if points := pf.FindPath(req); points != nil {
		t.Fatalf("ground mover should exhaust against the wall: %v", points)
	}
	stats := pf.LastSearchStats()
	if stats.ZoneRejected || stats.Capped || stats.Expanded == 0 {
		t.Fatalf("wall failure should come from exhaustion: %+v", stats)
	}
	req.Profile = air
	if points := pf.FindPath(req); len(points) != 2 || !pf.LastSearchStats().Found {
		t.Fatalf("flyer should pass over the wall: %v", points)
	}
}

func TestBoxFootprintForcesDetour(t *testing.T) {
	pf := New(Deps{})
	src := stubSource{obstacles: []ObstacleSpec{{
		EntityID:  "fortress",
		Position:  Vec2{X: 95, Y: 95},
		Shape:     FootprintBox,
		HalfMajor: 35,
		HalfMinor: 35,
		Structure: true,
	}}}
	if err := pf.Build(flatMap(21, 21, 10), src); err != nil {
		t.Fatalf("build: %v", err)
	}

	grid := pf.Grid()
	for _, c := range []CellCoord{{X: 6, Y: 6}, {X: 13, Y: 13}, {X: 9, Y: 9}} {
		if !grid.BlockedAt(c) {
			t.Fatalf("cell %+v should be inside the footprint", c)
		}
	}
	if grid.BlockedAt(CellCoord{X: 5, Y: 9}) || grid.BlockedAt(CellCoord{X: 14, Y: 9}) {
		t.Fatalf("claims should stop at the box edge")
	}

	points := pf.FindPath(PathRequest{
		Start:   cellCenterOf(2, 9),
		Goal:    cellCenterOf(17, 9),
		Profile: groundProfile(),
	})
	stats := pf.LastSearchStats()
	if !stats.Found || len(points) < 3 {
		t.Fatalf("path should bend around the box: %d points, %+v", len(points), stats)
	}
	for _, wp := range points {
		cell, ok := grid.CellAt(wp)
		if !ok || grid.BlockedAt(cell) {
			t.Fatalf("waypoint %+v lands inside the footprint", wp)
		}
	}
	if stats.PathLength <= 150 {
		t.Fatalf("detour should exceed the 150-unit straight line, got %.1f", stats.PathLength)
	}
}
