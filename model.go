package main

import "github.com/zucenko/crowd/model"

// Walker is an agent circle as drawn, trailing the last frame while its tween runs.
type Walker struct {
	Id           int
	X, Y         float64
	FromX, FromY float64
	ToX, ToY     float64
	Size         float64
	Color        model.Color
	tweening     bool
}

// Model is the client's copy of the session it watches.
type Model struct {
	Setup   model.Setup
	Frame   model.Frame
	Walkers map[int]*Walker
}

// Pixels is the side of the drawn grid.
func (m *Model) Pixels() int {
	return m.Setup.Size * m.Setup.Scale
}
