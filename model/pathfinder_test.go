package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchOpenGrid(t *testing.T) {
	g := NewEmptyGrid(5)
	start, goal := Coord{0, 0}, Coord{4, 4}
	g.Set(goal, DestinationTile(Color{0, 1, 0, 1}))

	r := Search(g, start, goal)
	assert.True(t, r.Found)
	assert.Equal(t, 1, Manhattan(start, r.Next))
	assert.Equal(t, Empty, g.TileAt(r.Next).Kind)
	assert.Equal(t, 8, r.Length)
	assert.LessOrEqual(t, r.Expanded, 25)
}

func TestSearchTieBreakIsStable(t *testing.T) {
	g := NewEmptyGrid(5)
	for i := 0; i < 3; i++ {
		next, ok := NextStep(g, Coord{0, 0}, Coord{4, 4})
		assert.True(t, ok)
		assert.Equal(t, Coord{1, 0}, next)
	}
}

func TestSearchDetour(t *testing.T) {
	g := gridFrom(t,
		".#.",
		".#.",
		"...",
	)
	r := Search(g, Coord{0, 0}, Coord{2, 0})
	assert.True(t, r.Found)
	assert.Equal(t, Coord{0, 1}, r.Next)
	assert.Equal(t, 6, r.Length)
}

func TestSearchAdjacentGoal(t *testing.T) {
	g := NewEmptyGrid(3)
	g.Set(Coord{1, 1}, DestinationTile(Color{1, 1, 1, 1}))
	next, ok := NextStep(g, Coord{1, 0}, Coord{1, 1})
	assert.True(t, ok)
	assert.Equal(t, Coord{1, 1}, next)
}

func TestSearchEnclosedGoal(t *testing.T) {
	g := gridFrom(t,
		".....",
		"..#..",
		".#.#.",
		"..#..",
		".....",
	)
	goal := Coord{2, 2}
	g.Set(goal, DestinationTile(Color{1, 0, 0, 1}))
	r := Search(g, Coord{0, 0}, goal)
	assert.False(t, r.Found)
	assert.LessOrEqual(t, r.Expanded, 25)
}

func TestSearchOccupiedBlocks(t *testing.T) {
	g := gridFrom(t,
		"...",
		"###",
		"###",
	)
	g.Set(Coord{1, 0}, OccupiedTile)
	_, ok := NextStep(g, Coord{0, 0}, Coord{2, 0})
	assert.False(t, ok)
}

func TestSearchForeignDestinationBlocks(t *testing.T) {
	g := gridFrom(t,
		"...",
		"###",
		"###",
	)
	mine, theirs := Color{0, 0, 1, 1}, Color{1, 0, 0, 1}
	g.Set(Coord{2, 0}, DestinationTile(mine))
	g.Set(Coord{1, 0}, DestinationTile(theirs))

	_, ok := NextStep(g, Coord{0, 0}, Coord{2, 0})
	assert.False(t, ok)

	next, ok := NextStep(g, Coord{0, 0}, Coord{1, 0})
	assert.True(t, ok)
	assert.Equal(t, Coord{1, 0}, next)
}

func TestSearchStartIsGoal(t *testing.T) {
	g := NewEmptyGrid(3)
	_, ok := NextStep(g, Coord{1, 1}, Coord{1, 1})
	assert.False(t, ok)
}

func TestSearchIgnoresStartTile(t *testing.T) {
	g := NewEmptyGrid(4)
	g.Set(Coord{0, 0}, OccupiedTile)
	next, ok := NextStep(g, Coord{0, 0}, Coord{0, 3})
	assert.True(t, ok)
	assert.Equal(t, Coord{0, 1}, next)
}

func TestSearchOffGridPanics(t *testing.T) {
	g := NewEmptyGrid(3)
	assert.Panics(t, func() { Search(g, Coord{0, 0}, Coord{3, 0}) })
}
