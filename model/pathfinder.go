package model

import "container/heap"

var neighbourDeltas = [4]Coord{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

const unreached = -1

// PathResult describes one A* run. Next is the first step away from start
// and is only valid when Found is set.
type PathResult struct {
	Next     Coord
	Found    bool
	Length   int
	Expanded int
}

type openItem struct {
	at    Coord
	f     int
	index int
}

// openSet is a min-heap on f with ties broken by coordinate order, so the
// expansion order never depends on container layout.
type openSet []*openItem

func (o openSet) Len() int { return len(o) }
func (o openSet) Less(i, j int) bool {
	if o[i].f != o[j].f {
		return o[i].f < o[j].f
	}
	return o[i].at.Less(o[j].at)
}
func (o openSet) Swap(i, j int) {
	o[i], o[j] = o[j], o[i]
	o[i].index = i
	o[j].index = j
}

func (o *openSet) Push(x any) {
	item := x.(*openItem)
	item.index = len(*o)
	*o = append(*o, item)
}

func (o *openSet) Pop() any {
	old := *o
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*o = old[:n-1]
	return item
}

// Search runs A* with a Manhattan heuristic from start to goal over the
// current grid. A cell may be entered if it is Empty, or if it is the goal
// and marked as a Destination. A search from a cell to itself finds nothing.
func Search(g *Grid, start, goal Coord) PathResult {
	cells := g.Size * g.Size
	gScore := make([]int, cells)
	parent := make([]int, cells)
	queued := make([]*openItem, cells)
	for i := range gScore {
		gScore[i] = unreached
		parent[i] = unreached
	}

	si := g.index(start)
	g.index(goal) // bounds check
	gScore[si] = 0
	open := openSet{}
	queued[si] = &openItem{at: start, f: Manhattan(start, goal)}
	heap.Push(&open, queued[si])

	expanded := 0
	for open.Len() > 0 {
		current := heap.Pop(&open).(*openItem)
		ci := g.index(current.at)
		queued[ci] = nil
		if current.at == goal {
			return walkBack(g, parent, si, ci, gScore[ci], expanded)
		}
		expanded++

		for _, d := range neighbourDeltas {
			next := Coord{current.at.X + d.X, current.at.Y + d.Y}
			if !g.Contains(next) || !g.TileAt(next).Passable(next, goal) {
				continue
			}
			ni := g.index(next)
			tentative := gScore[ci] + 1
			if gScore[ni] != unreached && tentative >= gScore[ni] {
				continue
			}
			parent[ni] = ci
			gScore[ni] = tentative
			f := tentative + Manhattan(next, goal)
			if item := queued[ni]; item != nil {
				item.f = f
				heap.Fix(&open, item.index)
			} else {
				queued[ni] = &openItem{at: next, f: f}
				heap.Push(&open, queued[ni])
			}
		}
	}
	return PathResult{Expanded: expanded}
}

// walkBack follows parent links from the goal to the cell adjacent to start.
func walkBack(g *Grid, parent []int, start, goal, length, expanded int) PathResult {
	if goal == start {
		return PathResult{Expanded: expanded}
	}
	step := goal
	for parent[step] != start {
		step = parent[step]
	}
	return PathResult{Next: g.coord(step), Found: true, Length: length, Expanded: expanded}
}

// NextStep returns the first step of a shortest path from start to goal.
func NextStep(g *Grid, start, goal Coord) (Coord, bool) {
	r := Search(g, start, goal)
	return r.Next, r.Found
}
