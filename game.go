package main

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"time"

	"github.com/golang/freetype/truetype"
	"github.com/hajimehoshi/ebiten"
	"github.com/hajimehoshi/ebiten/ebitenutil"
	"github.com/hajimehoshi/ebiten/inpututil"
	"github.com/hajimehoshi/ebiten/text"
	log "github.com/sirupsen/logrus"
	"github.com/tanema/gween"
	"github.com/zucenko/crowd/model"
	"github.com/zucenko/crowd/server"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	hudHeight    = 48
	frameSeconds = float32(1.0 / 60)
)

var errQuit = errors.New("quit")

var COLOR_FRAME = model.HexColor(0x464646, 1)
var COLOR_PANEL = model.HexColor(0xe8e2d0, 0.9)

type ViewState int

const (
	WAITING ViewState = iota + 1
	WATCHING
	PAUSED
	DISCONNECTED
)

func (s ViewState) Name() string {
	switch s {
	case WAITING:
		return "WAITING"
	case WATCHING:
		return "WATCHING"
	case PAUSED:
		return "PAUSED"
	case DISCONNECTED:
		return "DISCONNECTED"
	default:
		return fmt.Sprintf("N/A(%d)", s)
	}
}

type Game struct {
	State  ViewState
	Model  *Model
	Feed   server.Feed
	Panel  *Nine
	Tweens map[*gween.Tween]Action

	square, dot *ebiten.Image
}

var Font font.Face

func loadFont() error {
	tt, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return err
	}
	const dpi = 72
	Font = truetype.NewFace(tt, &truetype.Options{
		Size:    16,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
	return nil
}

func newDot(side int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, side, side))
	r := float64(side) / 2
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			dx, dy := float64(x)+.5-r, float64(y)+.5-r
			if dx*dx+dy*dy <= r*r {
				img.Set(x, y, color.White)
			}
		}
	}
	return img
}

func toNRGBA(c model.Color) color.NRGBA {
	return color.NRGBA{uint8(c.R * 255), uint8(c.G * 255), uint8(c.B * 255), uint8(c.A * 255)}
}

func NewGame(feed server.Feed, first model.ServerMessage) (*Game, error) {
	square, err := ebiten.NewImage(1, 1, ebiten.FilterNearest)
	if err != nil {
		return nil, err
	}
	square.Fill(color.White)
	dot, err := ebiten.NewImageFromImage(newDot(32), ebiten.FilterLinear)
	if err != nil {
		return nil, err
	}
	panel, err := newPanel(COLOR_PANEL.R, COLOR_PANEL.G, COLOR_PANEL.B, COLOR_PANEL.A)
	if err != nil {
		return nil, err
	}
	g := &Game{
		State:  WAITING,
		Model:  &Model{Walkers: make(map[int]*Walker)},
		Feed:   feed,
		Panel:  panel,
		Tweens: make(map[*gween.Tween]Action),
		square: square,
		dot:    dot,
	}
	g.apply(first)
	return g, nil
}

func (g *Game) apply(mes model.ServerMessage) {
	for _, s := range mes.Setup {
		g.Model.Setup = s
		g.Model.Walkers = make(map[int]*Walker)
		g.Tweens = make(map[*gween.Tween]Action)
		if g.State == WAITING {
			g.State = WATCHING
		}
		log.WithFields(log.Fields{"session": s.Session, "size": s.Size, "agents": s.Agents}).Info("setup received")
	}
	for _, f := range mes.Frames {
		g.show(f)
	}
}

func (g *Game) show(f model.Frame) {
	seconds := float32(g.Model.Setup.TickInterval) / 1000
	for _, c := range f.Circles {
		w, ok := g.Model.Walkers[c.Id]
		if !ok {
			w = &Walker{Id: c.Id, X: c.X, Y: c.Y}
			g.Model.Walkers[c.Id] = w
		}
		g.moveWalker(w, c, seconds)
	}
	g.Model.Frame = f
}

func (g *Game) drain() {
	for {
		select {
		case mes, ok := <-g.Feed.Messages():
			if !ok {
				if g.State != DISCONNECTED {
					log.Warn("feed closed")
					g.State = DISCONNECTED
				}
				return
			}
			g.apply(mes)
		default:
			return
		}
	}
}

func (g *Game) command(cmd int) {
	if g.State == DISCONNECTED {
		return
	}
	if err := g.Feed.Command(cmd); err != nil {
		log.Warnf("command %d: %v", cmd, err)
	}
}

func (g *Game) handleKeys() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape), inpututil.IsKeyJustPressed(ebiten.KeyQ):
		return errQuit
	case inpututil.IsKeyJustPressed(ebiten.KeySpace), inpututil.IsKeyJustPressed(ebiten.KeyP):
		switch g.State {
		case WATCHING:
			g.command(model.CmdPause)
			g.State = PAUSED
		case PAUSED:
			g.command(model.CmdResume)
			g.State = WATCHING
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		if g.State == PAUSED {
			g.command(model.CmdStep)
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.command(model.CmdReset)
	}
	return nil
}

func (g *Game) drawSprite(screen, img *ebiten.Image, x, y, size float64, c model.Color) {
	w, h := img.Size()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(size/float64(w), size/float64(h))
	op.GeoM.Translate(x-size/2, y-size/2)
	op.ColorM.Scale(c.R, c.G, c.B, c.A)
	screen.DrawImage(img, op)
}

func (g *Game) drawHud(screen *ebiten.Image) {
	top := g.Model.Pixels()
	g.Panel.SetPosition(4, top+4)
	g.Panel.SetSize(g.Model.Pixels()-8, hudHeight-8)
	g.Panel.Draw(screen)

	st := g.Model.Frame.Stats
	line := fmt.Sprintf("tick %d   moved %d   stalled %d   retargeted %d   arrived %d",
		g.Model.Frame.Tick, st.Moved, st.Stalled, st.Retargeted, st.Arrived)
	text.Draw(screen, line, Font, 14, top+hudHeight/2+6, color.Black)
	ebitenutil.DebugPrintAt(screen, g.State.Name(), g.Model.Pixels()-100, top+hudHeight/2-8)
}

func (g *Game) update(screen *ebiten.Image) error {
	g.drain()
	if err := g.handleKeys(); err != nil {
		return err
	}
	g.updateTweens(frameSeconds)

	if ebiten.IsDrawingSkipped() {
		return nil
	}

	if err := screen.Fill(toNRGBA(COLOR_FRAME)); err != nil {
		log.Printf("%v", err)
	}
	side := float64(g.Model.Pixels())
	g.drawSprite(screen, g.square, side/2, side/2, side, g.Model.Frame.Background)
	for _, s := range g.Model.Frame.Squares {
		g.drawSprite(screen, g.square, s.X, s.Y, s.Size, s.Color)
	}
	for _, w := range g.Model.Walkers {
		g.drawSprite(screen, g.dot, w.X, w.Y, w.Size*.8, w.Color)
	}
	g.drawHud(screen)
	return nil
}

func main() {
	opts, err := parseOptions(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}
	if err := loadFont(); err != nil {
		log.Fatal(err)
	}
	feed, err := Load(opts)
	if err != nil {
		log.Fatalf("opening feed: %v", err)
	}
	defer feed.Close()

	var first model.ServerMessage
	select {
	case mes, ok := <-feed.Messages():
		if !ok || len(mes.Setup) == 0 {
			log.Fatal("feed ended before setup")
		}
		first = mes
	case <-time.After(5 * time.Second):
		log.Fatal("no setup from feed")
	}

	g, err := NewGame(feed, first)
	if err != nil {
		log.Fatal(err)
	}
	ebiten.SetRunnableInBackground(true)
	side := g.Model.Pixels()
	if err := ebiten.Run(g.update, side, side+hudHeight, 1, "crowd"); err != nil && err != errQuit {
		log.Fatal(err)
	}
}
