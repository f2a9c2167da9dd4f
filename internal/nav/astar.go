package nav

import "container/heap"

type gridOffset struct {
	dx       int
	dy       int
	cost     int32
	diagonal bool
}

// Neighbor order matters: with equal f-cost the earlier push wins, so
// orthogonal moves are tried before diagonals and north before south.
var neighborOffsets = [...]gridOffset{
	{dx: 0, dy: -1, cost: costOrthogonal, diagonal: false},
	{dx: 1, dy: 0, cost: costOrthogonal, diagonal: false},
	{dx: 0, dy: 1, cost: costOrthogonal, diagonal: false},
	{dx: -1, dy: 0, cost: costOrthogonal, diagonal: false},
	{dx: 1, dy: -1, cost: costDiagonal, diagonal: true},
	{dx: 1, dy: 1, cost: costDiagonal, diagonal: true},
	{dx: -1, dy: 1, cost: costDiagonal, diagonal: true},
	{dx: -1, dy: -1, cost: costDiagonal, diagonal: true},
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// octile is the weighted octile distance between two cells, using the same
// 10/14 step weights as the search itself.
func octile(ax, ay, bx, by int) int32 {
	dx := abs(bx - ax)
	dy := abs(by - ay)
	if dx < dy {
		dx, dy = dy, dx
	}
	return int32(costOrthogonal*(dx-dy) + costDiagonal*dy)
}

// turnPenalty prices a direction change between the previous accepted step
// and the next candidate step. Straight runs are free, gentle bends cheap,
// reversals expensive.
func turnPenalty(prevDX, prevDY, nextDX, nextDY int) int32 {
	if prevDX == 0 && prevDY == 0 {
		return 0
	}
	if prevDX == nextDX && prevDY == nextDY {
		return 0
	}
	dot := prevDX*nextDX + prevDY*nextDY
	switch {
	case dot > 0:
		return turnPenaltySlight
	case dot == 0:
		return turnPenaltyRight
	default:
		return turnPenaltyReverse
	}
}

type pathNode struct {
	idx int32
	g   int32
	f   int32
	seq int32
}

// pathQueue orders the open set by f-cost, breaking ties by insertion order
// so the first-discovered node wins.
type pathQueue []pathNode

func (pq pathQueue) Len() int { return len(pq) }

func (pq pathQueue) Less(i, j int) bool {
	if pq[i].f != pq[j].f {
		return pq[i].f < pq[j].f
	}
	return pq[i].seq < pq[j].seq
}

func (pq pathQueue) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *pathQueue) Push(x any) {
	*pq = append(*pq, x.(pathNode))
}

func (pq *pathQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// searchScratch is the reusable per-search arena: flat per-cell arrays
// validated by a generation stamp so a new search needs no clearing.
type searchScratch struct {
	gen    uint32
	stamp  []uint32
	closed []uint32
	gcost  []int32
	parent []int32
	open   pathQueue
	seq    int32
}

func newSearchScratch(cells int) *searchScratch {
	return &searchScratch{
		stamp:  make([]uint32, cells),
		closed: make([]uint32, cells),
		gcost:  make([]int32, cells),
		parent: make([]int32, cells),
	}
}

func (s *searchScratch) reset() {
	s.gen++
	if s.gen == 0 {
		for i := range s.stamp {
			s.stamp[i] = 0
			s.closed[i] = 0
		}
		s.gen = 1
	}
	s.open = s.open[:0]
	s.seq = 0
}

func (s *searchScratch) push(node pathNode) {
	node.seq = s.seq
	s.seq++
	heap.Push(&s.open, node)
}

func (s *searchScratch) pop() pathNode {
	return heap.Pop(&s.open).(pathNode)
}

type searchResult struct {
	cells    []CellCoord
	cost     int32
	expanded int
	capped   bool
	overrun  bool
	found    bool
}

// search runs weighted 8-connected A* between two in-bounds cells. When
// attackDistance is positive, any expanded cell whose center lies within that
// world distance of goalWorld also terminates the search successfully.
func (g *Grid) search(p Profile, s *searchScratch, start, goal CellCoord, attackDistance float64, goalWorld Vec2) searchResult {
	s.reset()
	var res searchResult

	startIdx := int32(g.index(start.X, start.Y))
	goalIdx := int32(g.index(goal.X, goal.Y))

	s.stamp[startIdx] = s.gen
	s.gcost[startIdx] = 0
	s.parent[startIdx] = -1
	s.push(pathNode{idx: startIdx, g: 0, f: octile(start.X, start.Y, goal.X, goal.Y)})

	for len(s.open) > 0 {
		current := s.pop()
		idx := current.idx
		if s.closed[idx] == s.gen || current.g > s.gcost[idx] {
			continue
		}
		s.closed[idx] = s.gen
		res.expanded++

		cx := int(idx) % g.cellsX
		cy := int(idx) / g.cellsX

		reached := idx == goalIdx
		if !reached && attackDistance > 0 {
			reached = Dist(g.CellCenter(CellCoord{X: cx, Y: cy}), goalWorld) <= attackDistance
		}
		if reached {
			res.cells = s.rebuild(g, idx)
			if res.cells == nil {
				res.overrun = true
				return res
			}
			res.found = true
			res.cost = s.gcost[idx]
			return res
		}

		if res.expanded >= maxExpandedNodes {
			res.capped = true
			return res
		}

		prevDX, prevDY := 0, 0
		if parent := s.parent[idx]; parent >= 0 {
			prevDX = cx - int(parent)%g.cellsX
			prevDY = cy - int(parent)/g.cellsX
		}

		for _, delta := range neighborOffsets {
			nx := cx + delta.dx
			ny := cy + delta.dy
			if !g.bounds.contains(nx, ny) {
				continue
			}
			if delta.diagonal && !g.diagonalAllowed(p, cx, cy, delta.dx, delta.dy) {
				continue
			}
			nIdx := int32(g.index(nx, ny))
			if !g.stepLegal(p, int(idx), int(nIdx)) {
				continue
			}
			tentative := current.g + delta.cost +
				int32(g.entryPenalty(int(idx), int(nIdx))) +
				turnPenalty(prevDX, prevDY, delta.dx, delta.dy)
			if s.stamp[nIdx] == s.gen && tentative >= s.gcost[nIdx] {
				continue
			}
			s.stamp[nIdx] = s.gen
			s.gcost[nIdx] = tentative
			s.parent[nIdx] = idx
			// A cheaper route into an already expanded cell reopens it.
			s.closed[nIdx] = 0
			s.push(pathNode{
				idx: nIdx,
				g:   tentative,
				f:   tentative + octile(nx, ny, goal.X, goal.Y),
			})
		}
	}
	return res
}

// rebuild walks the parent chain back to the start and reverses it. The step
// cap guards against a corrupted chain; exceeding it abandons the path.
func (s *searchScratch) rebuild(g *Grid, end int32) []CellCoord {
	cells := make([]CellCoord, 0, 32)
	for idx := end; idx >= 0; idx = s.parent[idx] {
		if len(cells) >= maxReconstructSteps {
			return nil
		}
		cells = append(cells, CellCoord{X: int(idx) % g.cellsX, Y: int(idx) / g.cellsX})
	}
	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
	}
	// A pinched final cell hugs a cliff or obstacle edge; stop one short
	// when the approach cell is clear of the squeeze.
	if n := len(cells); n >= 2 {
		last := g.index(cells[n-1].X, cells[n-1].Y)
		prev := g.index(cells[n-2].X, cells[n-2].Y)
		if g.isPinched(last) && !g.isPinched(prev) {
			cells = cells[:n-1]
		}
	}
	return cells
}
