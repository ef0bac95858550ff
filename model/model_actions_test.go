package model

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zyedidia/generic/mapset"
)

// gridFrom builds a grid from rows of '#' (wall) and '.' (empty).
func gridFrom(t *testing.T, rows ...string) *Grid {
	t.Helper()
	g := NewEmptyGrid(len(rows))
	for y, row := range rows {
		require.Len(t, row, len(rows), "row %d", y)
		for x, ch := range row {
			if ch == '#' {
				g.Set(Coord{x, y}, WallTile)
			}
		}
	}
	return g
}

func walls(g *Grid) mapset.Set[Coord] {
	set := mapset.New[Coord]()
	for i, t := range g.Tiles {
		if t.Kind == Wall {
			set.Put(g.coord(i))
		}
	}
	return set
}

func TestNewEmptyGrid(t *testing.T) {
	g := NewEmptyGrid(7)
	assert.Equal(t, 49, len(g.Tiles))
	assert.Equal(t, 49, g.Count(Empty))
	assert.Equal(t, EmptyTile, g.TileAt(Coord{6, 6}))
}

func TestGridBoundsPanic(t *testing.T) {
	g := NewEmptyGrid(4)
	assert.Panics(t, func() { g.TileAt(Coord{4, 0}) })
	assert.Panics(t, func() { g.TileAt(Coord{0, -1}) })
	assert.Panics(t, func() { g.Set(Coord{-1, 2}, WallTile) })
	assert.NotPanics(t, func() { g.Set(Coord{3, 3}, WallTile) })
}

func TestFindEmptyReturnsEmptyCells(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	g := gridFrom(t,
		"#####",
		"#...#",
		"#.#.#",
		"#...#",
		"#####",
	)
	g.Set(Coord{1, 1}, OccupiedTile)
	g.Set(Coord{3, 3}, DestinationTile(Color{1, 0, 0, 1}))
	for i := 0; i < 500; i++ {
		c, err := g.FindEmpty(rng, 1000)
		require.NoError(t, err)
		assert.Equal(t, Empty, g.TileAt(c).Kind, "sample %d at %v", i, c)
	}
}

func TestFindEmptyFullGrid(t *testing.T) {
	g := gridFrom(t,
		"###",
		"###",
		"###",
	)
	_, err := g.FindEmpty(rand.New(rand.NewSource(1)), 100)
	assert.True(t, errors.Is(err, ErrNoEmptyCell))
}

func TestSeedWalls(t *testing.T) {
	g := NewEmptyGrid(20)
	require.NoError(t, g.SeedWalls(rand.New(rand.NewSource(5)), 37, 10000))
	assert.Equal(t, 37, g.Count(Wall))
}

func TestSeedWallsOverflow(t *testing.T) {
	g := NewEmptyGrid(2)
	err := g.SeedWalls(rand.New(rand.NewSource(5)), 5, 200)
	assert.True(t, errors.Is(err, ErrNoEmptyCell))
	assert.Equal(t, 4, g.Count(Wall))
}

func TestGrowWallsKeepsSeeds(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		rng := rand.New(rand.NewSource(seed))
		g := NewEmptyGrid(30)
		require.NoError(t, g.SeedWalls(rng, 40, 10000))
		seeded := walls(g)

		g.GrowWalls(rng, 0.3)
		grown := walls(g)
		assert.GreaterOrEqual(t, grown.Size(), seeded.Size())
		seeded.Each(func(c Coord) {
			assert.True(t, grown.Has(c), "seed %d: wall %v lost", seed, c)
		})
	}
}

func TestGrowWallsZeroCoefficient(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	g := NewEmptyGrid(15)
	require.NoError(t, g.SeedWalls(rng, 20, 10000))
	before := g.Count(Wall)
	g.GrowWalls(rng, 0)
	assert.Equal(t, before, g.Count(Wall))
}

func TestGrowWallsNeighbourRule(t *testing.T) {
	// Two wall neighbours at k=0.5 convert with certainty.
	g := gridFrom(t,
		".#...",
		"#....",
		".....",
		".....",
		".....",
	)
	g.GrowWalls(rand.New(rand.NewSource(1)), 0.5)
	assert.Equal(t, Wall, g.TileAt(Coord{1, 1}).Kind)
}

func TestGrowWallsNeedsWalls(t *testing.T) {
	g := NewEmptyGrid(12)
	g.GrowWalls(rand.New(rand.NewSource(1)), 0.5)
	assert.Equal(t, 0, g.Count(Wall))
}

func TestGrowWallsSeesEarlierGrowth(t *testing.T) {
	// (1,1) converts first, which gives (2,1) two wall neighbours in the same sweep.
	g := gridFrom(t,
		".##..",
		"#....",
		".....",
		".....",
		".....",
	)
	g.GrowWalls(rand.New(rand.NewSource(1)), 0.5)
	assert.Equal(t, Wall, g.TileAt(Coord{1, 1}).Kind)
	assert.Equal(t, Wall, g.TileAt(Coord{2, 1}).Kind)
}

func TestGrowWallsSkipsBorder(t *testing.T) {
	g := gridFrom(t,
		"#.#..",
		".....",
		"#....",
		".....",
		".....",
	)
	g.GrowWalls(rand.New(rand.NewSource(1)), 0.5)
	assert.Equal(t, Empty, g.TileAt(Coord{1, 0}).Kind)
	assert.Equal(t, Empty, g.TileAt(Coord{0, 1}).Kind)
}

func TestGenerateWalls(t *testing.T) {
	cfg := DefaultConfig()
	g := NewEmptyGrid(cfg.Size)
	require.NoError(t, g.GenerateWalls(rand.New(rand.NewSource(11)), cfg))
	assert.GreaterOrEqual(t, g.Count(Wall), cfg.WallSeeds)
	assert.Greater(t, g.Count(Empty), 0)
	assert.Equal(t, cfg.Size*cfg.Size, g.Count(Wall)+g.Count(Empty))
}
