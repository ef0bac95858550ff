package model

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawnAgent(t *testing.T) {
	g := NewEmptyGrid(10)
	rng := rand.New(rand.NewSource(2))
	a, err := SpawnAgent(g, rng, 4, 1000)
	require.NoError(t, err)

	assert.Equal(t, 4, a.Id)
	assert.NotEqual(t, a.Location, a.Destination)
	assert.Equal(t, OccupiedTile, g.TileAt(a.Location))
	assert.Equal(t, DestinationTile(a.Color), g.TileAt(a.Destination))
	assert.Equal(t, 0.9, a.Color.A)
	assert.Equal(t, 0, a.StalledTicks)
}

func TestSpawnAgentNoRoom(t *testing.T) {
	g := gridFrom(t,
		"#.",
		"##",
	)
	_, err := SpawnAgent(g, rand.New(rand.NewSource(2)), 0, 100)
	assert.True(t, errors.Is(err, ErrNoEmptyCell))
	assert.Equal(t, Empty, g.TileAt(Coord{1, 0}).Kind)
}

func TestAdvanceMoves(t *testing.T) {
	g := NewEmptyGrid(5)
	a := NewAgent(g, 0, Coord{0, 0}, Coord{0, 4}, Color{1, 0, 0, 1})
	a.StalledTicks = 3

	step, err := a.Advance(g, rand.New(rand.NewSource(1)), DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, Moved, step.Outcome)
	assert.Equal(t, Coord{0, 0}, step.From)
	assert.Equal(t, Coord{0, 1}, step.To)
	assert.Equal(t, Coord{0, 1}, a.Location)
	assert.Equal(t, Empty, g.TileAt(Coord{0, 0}).Kind)
	assert.Equal(t, Occupied, g.TileAt(Coord{0, 1}).Kind)
	assert.Equal(t, 1, g.Count(Occupied))
	assert.Equal(t, 0, a.StalledTicks)
}

// boxed returns a grid where the agent at (0,0) is walled in and its
// destination lies in the open area.
func boxed(t *testing.T) (*Grid, *Agent) {
	g := gridFrom(t,
		".#...",
		"##...",
		".....",
		".....",
		".....",
	)
	return g, NewAgent(g, 0, Coord{0, 0}, Coord{4, 4}, Color{0, 0, 1, 0.9})
}

func TestAdvanceRetargetsAfterRetryLimit(t *testing.T) {
	g, a := boxed(t)
	cfg := DefaultConfig()
	cfg.RetryLimit = 2
	rng := rand.New(rand.NewSource(8))
	empty := g.Count(Empty)

	for i := 0; i <= cfg.RetryLimit; i++ {
		step, err := a.Advance(g, rng, cfg)
		require.NoError(t, err)
		assert.Equal(t, Stalled, step.Outcome, "tick %d", i)
		assert.Equal(t, Coord{4, 4}, a.Destination)
	}
	assert.Equal(t, cfg.RetryLimit+1, a.StalledTicks)

	step, err := a.Advance(g, rng, cfg)
	require.NoError(t, err)
	assert.Equal(t, Retargeted, step.Outcome)
	assert.Equal(t, 1, a.Retargets)
	assert.Equal(t, DestinationTile(a.Color), g.TileAt(a.Destination))
	assert.Equal(t, 1, g.Count(Destination))
	assert.Equal(t, empty, g.Count(Empty))
	assert.Equal(t, Coord{0, 0}, a.Location)
}

func TestAdvanceStallPolicy(t *testing.T) {
	for _, reset := range []bool{false, true} {
		g, a := boxed(t)
		cfg := DefaultConfig()
		cfg.RetryLimit = 1
		cfg.ResetStallOnRetarget = reset
		rng := rand.New(rand.NewSource(4))

		var outcomes []Outcome
		for i := 0; i < 5; i++ {
			step, err := a.Advance(g, rng, cfg)
			require.NoError(t, err)
			outcomes = append(outcomes, step.Outcome)
		}
		if reset {
			assert.Equal(t, []Outcome{Stalled, Stalled, Retargeted, Stalled, Stalled}, outcomes)
			assert.Equal(t, 2, a.StalledTicks)
		} else {
			assert.Equal(t, []Outcome{Stalled, Stalled, Retargeted, Retargeted, Retargeted}, outcomes)
			assert.Equal(t, 5, a.StalledTicks)
		}
	}
}

func TestAdvanceArrival(t *testing.T) {
	g := NewEmptyGrid(4)
	a := NewAgent(g, 0, Coord{0, 0}, Coord{1, 0}, Color{1, 1, 0, 0.9})
	rng := rand.New(rand.NewSource(6))
	cfg := DefaultConfig()

	step, err := a.Advance(g, rng, cfg)
	require.NoError(t, err)
	assert.Equal(t, Moved, step.Outcome)
	assert.Equal(t, a.Destination, a.Location)
	assert.Equal(t, Occupied, g.TileAt(a.Location).Kind)

	step, err = a.Advance(g, rng, cfg)
	require.NoError(t, err)
	assert.Equal(t, Arrived, step.Outcome)
	assert.Equal(t, 1, a.Arrivals)
	assert.Equal(t, Coord{1, 0}, a.Location)
	assert.Equal(t, Occupied, g.TileAt(a.Location).Kind)
	assert.NotEqual(t, a.Location, a.Destination)
	assert.Equal(t, DestinationTile(a.Color), g.TileAt(a.Destination))
	assert.Equal(t, 0, a.StalledTicks)
}

func TestRetargetFailureRestores(t *testing.T) {
	g, a := boxed(t)
	err := a.Retarget(g, rand.New(rand.NewSource(1)), 0)
	assert.True(t, errors.Is(err, ErrNoEmptyCell))
	assert.Equal(t, Coord{4, 4}, a.Destination)
	assert.Equal(t, DestinationTile(a.Color), g.TileAt(Coord{4, 4}))
	assert.Equal(t, 0, a.Retargets)
}
