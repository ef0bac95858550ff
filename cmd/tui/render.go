package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/zucenko/crowd/model"
)

const (
	runeBlock = '█'
	runeAgent = '●'
)

// blend composites c over bg, terminal cells having no alpha of their own.
func blend(c, bg model.Color) tcell.Color {
	mix := func(fg, back float64) int32 {
		return int32((fg*c.A + back*(1-c.A)) * 255)
	}
	return tcell.NewRGBColor(mix(c.R, bg.R), mix(c.G, bg.G), mix(c.B, bg.B))
}

func cellOf(s model.Sprite, scale int) (int, int) {
	return int(s.X) / scale, int(s.Y) / scale
}

func status(f model.Frame, state string) string {
	st := f.Stats
	return fmt.Sprintf("%s tick %d moved %d stalled %d retargeted %d arrived %d  [space] pause [s] step [r] reset [q] quit",
		state, f.Tick, st.Moved, st.Stalled, st.Retargeted, st.Arrived)
}

// draw paints one grid cell per terminal cell, clipped to the screen, with a
// status line on the last row.
func draw(screen tcell.Screen, f model.Frame, state string) {
	screen.Clear()
	width, height := screen.Size()
	rows := height - 1
	bg := tcell.StyleDefault.Background(blend(f.Background, model.Color{A: 1}))
	visible := func(x, y int) bool {
		return x >= 0 && y >= 0 && x < width && y < rows
	}

	for y := 0; y < f.Size; y++ {
		for x := 0; x < f.Size; x++ {
			if visible(x, y) {
				screen.SetContent(x, y, ' ', nil, bg)
			}
		}
	}
	if f.Scale > 0 {
		for _, s := range f.Squares {
			if x, y := cellOf(s, f.Scale); visible(x, y) {
				screen.SetContent(x, y, runeBlock, nil, bg.Foreground(blend(s.Color, f.Background)))
			}
		}
		for _, s := range f.Circles {
			if x, y := cellOf(s, f.Scale); visible(x, y) {
				screen.SetContent(x, y, runeAgent, nil, bg.Foreground(blend(s.Color, f.Background)))
			}
		}
	}

	if rows >= 0 {
		for i, r := range []rune(status(f, state)) {
			if i >= width {
				break
			}
			screen.SetContent(i, rows, r, nil, tcell.StyleDefault.Reverse(true))
		}
	}
	screen.Show()
}
