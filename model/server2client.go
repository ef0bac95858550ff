package model

type Sprite struct {
	Id   int
	X, Y float64
	Size float64
	Color
}

// Frame is a settled grid state ready to draw: squares for walls and
// destinations, circles for agents.
type Frame struct {
	Tick       int
	Size       int
	Scale      int
	Background Color
	Squares    []Sprite
	Circles    []Sprite
	Stats      TickStats
}

type Setup struct {
	Session      string
	Size, Scale  int
	Agents       int
	TickInterval int
}

type ServerMessage struct {
	Setup  []Setup
	Frames []Frame
}

const (
	CmdPause = iota + 1
	CmdResume
	CmdStep
	CmdReset
)

type ClientMessage struct {
	Command int
}

func center(c Coord, scale int) (float64, float64) {
	return float64(c.X*scale + scale/2), float64(c.Y*scale + scale/2)
}

// Frame renders the current grid. A wall is opaque when the cell below it is
// also a wall and drawn as a shadow otherwise.
func (s *Simulation) Frame(stats TickStats) Frame {
	g := s.Grid
	scale := s.Config.Scale
	f := Frame{
		Tick:       s.Tick,
		Size:       g.Size,
		Scale:      scale,
		Background: s.Config.EmptyColor,
		Stats:      stats,
	}
	for i, t := range g.Tiles {
		c := g.coord(i)
		var color Color
		switch t.Kind {
		case Wall:
			below := Coord{c.X, c.Y + 1}
			if g.Contains(below) && g.TileAt(below).Kind == Wall {
				color = s.Config.WallColor
			} else {
				color = s.Config.ShadowColor
			}
		case Destination:
			color = t.Color
		default:
			continue
		}
		x, y := center(c, scale)
		f.Squares = append(f.Squares, Sprite{Id: i, X: x, Y: y, Size: float64(scale), Color: color})
	}
	for _, a := range s.Agents {
		x, y := center(a.Location, scale)
		f.Circles = append(f.Circles, Sprite{Id: a.Id, X: x, Y: y, Size: float64(scale), Color: a.Color})
	}
	return f
}
