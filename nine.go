package main

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten"
)

// Nine is a nine-slice panel: corners keep their size, edges and middle stretch.
type Nine struct {
	images              *ebiten.Image
	alpha               float64
	R, G, B, Scale      float64
	positions           [4][2]int
	x, y, width, height int
	targetPositions     [4][2]float64
}

// roundedRect is a white square with rounded corners of the given radius.
func roundedRect(side, radius int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, side, side))
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			cx := clamp(x, radius, side-radius-1)
			cy := clamp(y, radius, side-radius-1)
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= radius*radius {
				img.Set(x, y, color.White)
			}
		}
	}
	return img
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func newPanel(r, g, b, alpha float64) (*Nine, error) {
	const side, corner = 24, 8
	img, err := ebiten.NewImageFromImage(roundedRect(side, corner), ebiten.FilterLinear)
	if err != nil {
		return nil, err
	}
	return &Nine{
		images: img,
		alpha:  alpha,
		R:      r, G: g, B: b, Scale: 1,
		positions: [4][2]int{{0, 0}, {corner, corner}, {side - corner, side - corner}, {side, side}},
	}, nil
}

func (n *Nine) SetPosition(x, y int) {
	n.x = x
	n.y = y
	n.SetSize(n.width, n.height)
}

func (n *Nine) SetSize(width, height int) {
	n.width = width
	n.height = height
	origin := [2]float64{float64(n.x), float64(n.y)}
	extent := [2]float64{float64(width), float64(height)}
	for a := 0; a < 2; a++ {
		n.targetPositions[0][a] = origin[a]
		n.targetPositions[1][a] = origin[a] + n.Scale*float64(n.positions[1][a]-n.positions[0][a])
		n.targetPositions[2][a] = origin[a] + extent[a] - n.Scale*float64(n.positions[3][a]-n.positions[2][a])
		n.targetPositions[3][a] = origin[a] + extent[a]
	}
}

func (n *Nine) Draw(screen *ebiten.Image) {
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			src := image.Rect(n.positions[col][0], n.positions[row][1], n.positions[col+1][0], n.positions[row+1][1])
			if src.Empty() {
				continue
			}
			op := &ebiten.DrawImageOptions{}
			op.GeoM.Scale(
				(n.targetPositions[col+1][0]-n.targetPositions[col][0])/float64(src.Dx()),
				(n.targetPositions[row+1][1]-n.targetPositions[row][1])/float64(src.Dy()))
			op.GeoM.Translate(n.targetPositions[col][0], n.targetPositions[row][1])
			op.ColorM.Scale(n.R, n.G, n.B, n.alpha)
			screen.DrawImage(n.images.SubImage(src).(*ebiten.Image), op)
		}
	}
}
