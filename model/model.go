package model

import "fmt"

type Coord struct {
	X, Y int
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Less orders coordinates row first, then column.
func (c Coord) Less(o Coord) bool {
	if c.Y != o.Y {
		return c.Y < o.Y
	}
	return c.X < o.X
}

func Manhattan(a, b Coord) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Color channels are in [0,1].
type Color struct {
	R, G, B, A float64
}

func HexColor(u uint32, alpha float64) Color {
	b := float64(0xff&u) / 255
	g := float64(0xff&(u>>8)) / 255
	r := float64(0xff&(u>>16)) / 255
	return Color{r, g, b, alpha}
}

type TileKind uint8

const (
	Empty TileKind = iota
	Wall
	Occupied
	Destination
)

// Tile is the state of one grid cell. Color is only meaningful for Destination.
type Tile struct {
	Kind  TileKind
	Color Color
}

var (
	EmptyTile    = Tile{Kind: Empty}
	WallTile     = Tile{Kind: Wall}
	OccupiedTile = Tile{Kind: Occupied}
)

func DestinationTile(c Color) Tile {
	return Tile{Kind: Destination, Color: c}
}

// Passable reports whether a search heading for goal may enter the tile at at.
func (t Tile) Passable(at, goal Coord) bool {
	switch t.Kind {
	case Empty:
		return true
	case Destination:
		return at == goal
	default:
		return false
	}
}

// Grid is a square matrix of tiles stored row by row.
type Grid struct {
	Size  int
	Tiles []Tile
}

type Agent struct {
	Id           int
	Location     Coord
	Destination  Coord
	Color        Color
	StalledTicks int
	Arrivals     int
	Retargets    int
}
