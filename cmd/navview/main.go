// Command navview renders a map fixture's navigation grid in the terminal.
// Move the cursor to place start and goal markers and the computed path is
// drawn live; bridges can be toggled under the cursor to watch reachability
// change.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/gdamore/tcell/v2"

	"github.com/discordwell/CnC-Generals-Zero-Hour-sub000/internal/mapdata"
	"github.com/discordwell/CnC-Generals-Zero-Hour-sub000/internal/nav"
	"github.com/discordwell/CnC-Generals-Zero-Hour-sub000/internal/registry"
)

const statusLines = 2

type viewer struct {
	screen tcell.Screen
	pf     *nav.Pathfinder
	reg    *registry.Registry

	fixturePath string
	mapName     string

	cursor   nav.CellCoord
	offsetX  int
	offsetY  int
	start    *nav.CellCoord
	goal     *nav.CellCoord
	path     map[nav.CellCoord]bool
	message  string
	profiles []registry.LocomotorTemplate
	profile  int
}

func newViewer(fixturePath string) (*viewer, error) {
	v := &viewer{fixturePath: fixturePath, path: make(map[nav.CellCoord]bool)}
	if err := v.reload(); err != nil {
		return nil, err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	v.screen = screen
	return v, nil
}

func (v *viewer) reload() error {
	fx, err := mapdata.LoadFixture(v.fixturePath)
	if err != nil {
		return err
	}
	m, err := fx.MapData()
	if err != nil {
		return err
	}
	reg, err := registry.FromFixture(fx)
	if err != nil {
		return err
	}
	pf := nav.New(nav.Deps{})
	if err := pf.Build(m, reg); err != nil {
		return err
	}
	v.pf = pf
	v.reg = reg
	v.mapName = m.Name
	v.profiles = reg.Locomotors()
	if v.profile >= len(v.profiles) {
		v.profile = 0
	}
	v.recomputePath()
	return nil
}

func (v *viewer) currentProfile() (string, nav.Profile) {
	if len(v.profiles) == 0 {
		return "ground", registry.GroundProfile()
	}
	tmpl := v.profiles[v.profile]
	return tmpl.Name, tmpl.Profile()
}

func (v *viewer) recomputePath() {
	clear(v.path)
	if v.start == nil || v.goal == nil {
		return
	}
	grid := v.pf.Grid()
	_, profile := v.currentProfile()
	waypoints := v.pf.FindPath(nav.PathRequest{
		Start:   grid.CellCenter(*v.start),
		Goal:    grid.CellCenter(*v.goal),
		Profile: profile,
	})
	for _, wp := range waypoints {
		if cell, ok := grid.CellAt(wp); ok {
			v.path[cell] = true
		}
	}
	stats := v.pf.LastSearchStats()
	if stats.Found {
		v.message = fmt.Sprintf("cost %d, %d expanded, %d waypoints", stats.PathCost, stats.Expanded, len(waypoints))
	} else if stats.ZoneRejected {
		v.message = "unreachable (zone reject)"
	} else {
		v.message = fmt.Sprintf("unreachable, %d expanded", stats.Expanded)
	}
}

func (v *viewer) cellStyle(c nav.CellCoord) (rune, tcell.Style) {
	grid := v.pf.Grid()
	switch {
	case v.start != nil && c == *v.start:
		return 'S', tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	case v.goal != nil && c == *v.goal:
		return 'G', tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	case v.path[c]:
		return '*', tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	case grid.BridgeAt(c) && grid.BridgePassableAt(c):
		return '=', tcell.StyleDefault.Foreground(tcell.ColorSilver)
	case grid.BridgeAt(c):
		return '%', tcell.StyleDefault.Foreground(tcell.ColorMaroon)
	case grid.BlockedAt(c):
		return '#', tcell.StyleDefault.Foreground(tcell.ColorRed)
	case grid.TerrainAt(c) == nav.TerrainWater:
		return '~', tcell.StyleDefault.Foreground(tcell.ColorBlue)
	case grid.TerrainAt(c) == nav.TerrainCliff:
		return '^', tcell.StyleDefault.Foreground(tcell.ColorYellow)
	case grid.PinchedAt(c):
		return ':', tcell.StyleDefault.Foreground(tcell.ColorPurple)
	default:
		return '.', tcell.StyleDefault.Foreground(tcell.ColorGreen)
	}
}

func (v *viewer) draw() {
	v.screen.Clear()
	grid := v.pf.Grid()
	width, height := v.screen.Size()
	viewH := height - statusLines
	if viewH < 1 {
		viewH = 1
	}

	v.followCursor(width, viewH)

	for y := 0; y < viewH && y+v.offsetY < grid.CellsY(); y++ {
		for x := 0; x < width && x+v.offsetX < grid.CellsX(); x++ {
			cell := nav.CellCoord{X: x + v.offsetX, Y: y + v.offsetY}
			r, style := v.cellStyle(cell)
			if cell == v.cursor {
				style = style.Reverse(true)
			}
			v.screen.SetContent(x, y, r, nil, style)
		}
	}

	name, _ := v.currentProfile()
	status := fmt.Sprintf("%s  cell (%d,%d) %s  locomotor %s", v.mapName, v.cursor.X, v.cursor.Y,
		grid.TerrainAt(v.cursor), name)
	help := "arrows move  s start  g goal  b bridge  p locomotor  r reload  q quit  " + v.message
	drawText(v.screen, 0, height-2, width, status, tcell.StyleDefault.Reverse(true))
	drawText(v.screen, 0, height-1, width, help, tcell.StyleDefault)
	v.screen.Show()
}

func (v *viewer) followCursor(viewW, viewH int) {
	if v.cursor.X < v.offsetX {
		v.offsetX = v.cursor.X
	}
	if v.cursor.X >= v.offsetX+viewW {
		v.offsetX = v.cursor.X - viewW + 1
	}
	if v.cursor.Y < v.offsetY {
		v.offsetY = v.cursor.Y
	}
	if v.cursor.Y >= v.offsetY+viewH {
		v.offsetY = v.cursor.Y - viewH + 1
	}
}

func drawText(screen tcell.Screen, x, y, maxWidth int, text string, style tcell.Style) {
	col := x
	for _, r := range text {
		if col >= x+maxWidth {
			break
		}
		screen.SetContent(col, y, r, nil, style)
		col++
	}
}

func (v *viewer) moveCursor(dx, dy int) {
	grid := v.pf.Grid()
	v.cursor.X = clampInt(v.cursor.X+dx, 0, grid.CellsX()-1)
	v.cursor.Y = clampInt(v.cursor.Y+dy, 0, grid.CellsY()-1)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (v *viewer) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		v.moveCursor(0, -1)
	case tcell.KeyDown:
		v.moveCursor(0, 1)
	case tcell.KeyLeft:
		v.moveCursor(-1, 0)
	case tcell.KeyRight:
		v.moveCursor(1, 0)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case 'h':
			v.moveCursor(-1, 0)
		case 'j':
			v.moveCursor(0, 1)
		case 'k':
			v.moveCursor(0, -1)
		case 'l':
			v.moveCursor(1, 0)
		case 'p':
			if len(v.profiles) > 0 {
				v.profile = (v.profile + 1) % len(v.profiles)
				v.recomputePath()
			}
		case 's':
			cell := v.cursor
			v.start = &cell
			v.recomputePath()
		case 'g':
			cell := v.cursor
			v.goal = &cell
			v.recomputePath()
		case 'b':
			grid := v.pf.Grid()
			if id := grid.SegmentAt(v.cursor); id != nav.SegmentNone {
				v.pf.SetSegmentPassable(id, !grid.BridgePassableAt(v.cursor))
				v.recomputePath()
			}
		case 'r':
			if err := v.reload(); err != nil {
				v.message = "reload failed: " + err.Error()
			} else {
				v.message = "reloaded"
			}
		}
	}
	return true
}

func (v *viewer) run() {
	for {
		v.draw()
		switch ev := v.screen.PollEvent().(type) {
		case *tcell.EventKey:
			if !v.handleKey(ev) {
				return
			}
		case *tcell.EventResize:
			v.screen.Sync()
		}
	}
}

func main() {
	fixture := flag.String("fixture", "fixtures/crossing.yaml", "map fixture to render")
	flag.Parse()

	v, err := newViewer(*fixture)
	if err != nil {
		log.Fatalf("navview: %v", err)
	}
	defer v.screen.Fini()

	v.run()
}
