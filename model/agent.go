package model

import (
	"fmt"
	"math/rand"
)

type Outcome int

const (
	Moved Outcome = iota + 1
	Stalled
	Retargeted
	Arrived
)

func (o Outcome) Name() string {
	switch o {
	case Moved:
		return "MOVED"
	case Stalled:
		return "STALLED"
	case Retargeted:
		return "RETARGETED"
	case Arrived:
		return "ARRIVED"
	default:
		return fmt.Sprintf("n/a:%d", o)
	}
}

// NewAgent claims location and destination on the grid for a new agent.
func NewAgent(g *Grid, id int, location, destination Coord, color Color) *Agent {
	g.Set(location, OccupiedTile)
	g.Set(destination, DestinationTile(color))
	return &Agent{
		Id:          id,
		Location:    location,
		Destination: destination,
		Color:       color,
	}
}

// SpawnAgent places an agent with a random colour on a random empty cell and
// gives it a random empty destination.
func SpawnAgent(g *Grid, rng *rand.Rand, id, maxSamples int) (*Agent, error) {
	location, err := g.FindEmpty(rng, maxSamples)
	if err != nil {
		return nil, fmt.Errorf("agent %d location: %w", id, err)
	}
	g.Set(location, OccupiedTile)
	destination, err := g.FindEmpty(rng, maxSamples)
	if err != nil {
		g.Set(location, EmptyTile)
		return nil, fmt.Errorf("agent %d destination: %w", id, err)
	}
	color := Color{rng.Float64(), rng.Float64(), rng.Float64(), 0.9}
	return NewAgent(g, id, location, destination, color), nil
}

// Retarget releases the current destination and claims a new random one.
// A destination the agent is standing on stays Occupied. On failure the old
// destination is restored.
func (a *Agent) Retarget(g *Grid, rng *rand.Rand, maxSamples int) error {
	old := a.Destination
	if old != a.Location {
		g.Set(old, EmptyTile)
	}
	next, err := g.FindEmpty(rng, maxSamples)
	if err != nil {
		if old != a.Location {
			g.Set(old, DestinationTile(a.Color))
		}
		return fmt.Errorf("agent %d retarget: %w", a.Id, err)
	}
	a.Destination = next
	a.Retargets++
	g.Set(next, DestinationTile(a.Color))
	return nil
}

// Step is what one call to Advance did.
type Step struct {
	Outcome  Outcome
	From, To Coord
	Expanded int
}

// Advance moves the agent at most one cell toward its destination. An agent
// that cannot move stalls; once it has stalled more than RetryLimit times in
// a row it is given a new destination.
func (a *Agent) Advance(g *Grid, rng *rand.Rand, cfg Config) (Step, error) {
	step := Step{From: a.Location, To: a.Location}
	if a.Location == a.Destination {
		a.Arrivals++
		a.StalledTicks = 0
		step.Outcome = Arrived
		return step, a.Retarget(g, rng, cfg.Samples())
	}

	path := Search(g, a.Location, a.Destination)
	step.Expanded = path.Expanded
	if path.Found {
		g.Set(a.Location, EmptyTile)
		a.Location = path.Next
		g.Set(a.Location, OccupiedTile)
		a.StalledTicks = 0
		step.To = a.Location
		step.Outcome = Moved
		return step, nil
	}

	step.Outcome = Stalled
	if a.StalledTicks > cfg.RetryLimit {
		if err := a.Retarget(g, rng, cfg.Samples()); err != nil {
			return step, err
		}
		step.Outcome = Retargeted
	}
	a.StalledTicks++
	if step.Outcome == Retargeted && cfg.ResetStallOnRetarget {
		a.StalledTicks = 0
	}
	return step, nil
}
