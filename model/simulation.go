package model

import (
	"fmt"
	"math/rand"
	"time"
)

// Simulation owns the grid and the agents and advances them one tick at a
// time. It is not safe for concurrent use.
type Simulation struct {
	Config Config
	Grid   *Grid
	Agents []*Agent
	Tick   int
	Seed   int64

	rng *rand.Rand
}

type TickStats struct {
	Tick       int
	Moved      int
	Stalled    int
	Retargeted int
	Arrived    int
	Expanded   int
}

// NewSimulation generates walls on a fresh grid and spawns the agents.
func NewSimulation(cfg Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := newSimulation(cfg, NewEmptyGrid(cfg.Size))
	if err := s.Grid.GenerateWalls(s.rng, cfg); err != nil {
		return nil, err
	}
	if err := s.spawn(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewSimulationOnGrid spawns agents on a prepared grid and skips wall generation.
func NewSimulationOnGrid(cfg Config, g *Grid) (*Simulation, error) {
	cfg.Size = g.Size
	cfg.WallSeeds = g.Count(Wall)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := newSimulation(cfg, g)
	if err := s.spawn(); err != nil {
		return nil, err
	}
	return s, nil
}

func newSimulation(cfg Config, g *Grid) *Simulation {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulation{
		Config: cfg,
		Grid:   g,
		Agents: make([]*Agent, 0, cfg.Agents),
		Seed:   seed,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

func (s *Simulation) spawn() error {
	for i := 0; i < s.Config.Agents; i++ {
		a, err := SpawnAgent(s.Grid, s.rng, i, s.Config.Samples())
		if err != nil {
			return err
		}
		s.Agents = append(s.Agents, a)
	}
	return nil
}

// AddAgent places an agent at fixed cells; both must be Empty.
func (s *Simulation) AddAgent(location, destination Coord, color Color) (*Agent, error) {
	if location == destination {
		return nil, fmt.Errorf("agent location and destination both %v", location)
	}
	for _, c := range []Coord{location, destination} {
		if t := s.Grid.TileAt(c); t.Kind != Empty {
			return nil, fmt.Errorf("cell %v is %s", c, t.Kind.Name())
		}
	}
	a := NewAgent(s.Grid, len(s.Agents), location, destination, color)
	s.Agents = append(s.Agents, a)
	return a, nil
}

// Step advances every agent once in spawn order. Later agents see the moves
// of earlier ones.
func (s *Simulation) Step() (TickStats, error) {
	s.Tick++
	stats := TickStats{Tick: s.Tick}
	for _, a := range s.Agents {
		step, err := a.Advance(s.Grid, s.rng, s.Config)
		stats.Expanded += step.Expanded
		switch step.Outcome {
		case Moved:
			stats.Moved++
		case Stalled:
			stats.Stalled++
		case Retargeted:
			stats.Stalled++
			stats.Retargeted++
		case Arrived:
			stats.Arrived++
		}
		if err != nil {
			return stats, fmt.Errorf("tick %d: %w", s.Tick, err)
		}
	}
	return stats, nil
}

// CheckInvariants verifies that every agent holds its Occupied cell and its
// Destination marker, and that no other cell is Occupied.
func (s *Simulation) CheckInvariants() error {
	for _, a := range s.Agents {
		if t := s.Grid.TileAt(a.Location); t.Kind != Occupied {
			return fmt.Errorf("agent %d location %v is %s", a.Id, a.Location, t.Kind.Name())
		}
		if a.Location == a.Destination {
			continue
		}
		if t := s.Grid.TileAt(a.Destination); t.Kind != Destination || t.Color != a.Color {
			return fmt.Errorf("agent %d destination %v is %s", a.Id, a.Destination, t.Kind.Name())
		}
	}
	if n := s.Grid.Count(Occupied); n != len(s.Agents) {
		return fmt.Errorf("%d occupied cells for %d agents", n, len(s.Agents))
	}
	return nil
}
