package model

import (
	"errors"
	"fmt"
	"math/rand"
)

var ErrNoEmptyCell = errors.New("no empty cell available")

// NewEmptyGrid creates a size x size grid with every cell Empty.
func NewEmptyGrid(size int) *Grid {
	if size <= 0 {
		panic(fmt.Sprintf("model: grid size %d", size))
	}
	tiles := make([]Tile, size*size)
	for i := range tiles {
		tiles[i] = EmptyTile
	}
	return &Grid{Size: size, Tiles: tiles}
}

func (g *Grid) Clone() *Grid {
	tiles := make([]Tile, len(g.Tiles))
	copy(tiles, g.Tiles)
	return &Grid{Size: g.Size, Tiles: tiles}
}

func (g *Grid) Contains(c Coord) bool {
	return c.X >= 0 && c.X < g.Size && c.Y >= 0 && c.Y < g.Size
}

func (g *Grid) index(c Coord) int {
	if !g.Contains(c) {
		panic(fmt.Sprintf("model: coordinate %v outside %dx%d grid", c, g.Size, g.Size))
	}
	return c.Y*g.Size + c.X
}

func (g *Grid) coord(i int) Coord {
	return Coord{X: i % g.Size, Y: i / g.Size}
}

func (g *Grid) TileAt(c Coord) Tile {
	return g.Tiles[g.index(c)]
}

// Set overwrites a cell. Keeping agents and tiles consistent is the caller's job.
func (g *Grid) Set(c Coord, t Tile) {
	g.Tiles[g.index(c)] = t
}

func (g *Grid) Count(kind TileKind) int {
	n := 0
	for _, t := range g.Tiles {
		if t.Kind == kind {
			n++
		}
	}
	return n
}

// FindEmpty draws uniform random coordinates until one is Empty, giving up
// with ErrNoEmptyCell after maxSamples draws.
func (g *Grid) FindEmpty(rng *rand.Rand, maxSamples int) (Coord, error) {
	for i := 0; i < maxSamples; i++ {
		c := Coord{X: rng.Intn(g.Size), Y: rng.Intn(g.Size)}
		if g.TileAt(c).Kind == Empty {
			return c, nil
		}
	}
	return Coord{}, fmt.Errorf("%w after %d samples", ErrNoEmptyCell, maxSamples)
}

// SeedWalls places count walls on independently drawn empty cells.
func (g *Grid) SeedWalls(rng *rand.Rand, count, maxSamples int) error {
	for i := 0; i < count; i++ {
		c, err := g.FindEmpty(rng, maxSamples)
		if err != nil {
			return fmt.Errorf("seeding wall %d: %w", i, err)
		}
		g.Set(c, WallTile)
	}
	return nil
}

// GrowWalls sweeps the interior once, row by row, turning an Empty cell into a
// Wall with probability k times its count of orthogonal wall neighbours. Walls
// created earlier in the sweep count for later cells.
func (g *Grid) GrowWalls(rng *rand.Rand, k float64) {
	for y := 1; y < g.Size-1; y++ {
		for x := 1; x < g.Size-1; x++ {
			c := Coord{x, y}
			if g.TileAt(c).Kind != Empty {
				continue
			}
			count := 0
			for _, d := range neighbourDeltas {
				if g.TileAt(Coord{x + d.X, y + d.Y}).Kind == Wall {
					count++
				}
			}
			if count == 0 {
				continue
			}
			if rng.Float64() < float64(count)*k {
				g.Set(c, WallTile)
			}
		}
	}
}

// GenerateWalls runs the seed and growth phases and fails if no Empty cell survives.
func (g *Grid) GenerateWalls(rng *rand.Rand, cfg Config) error {
	if err := g.SeedWalls(rng, cfg.WallSeeds, cfg.Samples()); err != nil {
		return err
	}
	g.GrowWalls(rng, cfg.WallGrowth)
	if g.Count(Empty) == 0 {
		return fmt.Errorf("wall generation: %w", ErrNoEmptyCell)
	}
	return nil
}

func (k TileKind) Name() string {
	switch k {
	case Empty:
		return "EMPTY"
	case Wall:
		return "WALL"
	case Occupied:
		return "OCCUPIED"
	case Destination:
		return "DESTINATION"
	default:
		return fmt.Sprintf("n/a:%d", k)
	}
}
