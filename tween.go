package main

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"github.com/zucenko/crowd/model"
)

type Action struct {
	walker   *Walker
	onChange func(float32)
	onFinish []func()
}

func (a *Action) addOnFinish(f func()) {
	a.onFinish = append(a.onFinish, f)
}

// moveWalker glides w from where it is drawn now to its new cell over one tick.
func (g *Game) moveWalker(w *Walker, to model.Sprite, seconds float32) {
	w.FromX, w.FromY = w.X, w.Y
	w.ToX, w.ToY = to.X, to.Y
	w.Color = to.Color
	w.Size = to.Size
	if w.tweening {
		for t, a := range g.Tweens {
			if a.walker == w {
				delete(g.Tweens, t)
			}
		}
		w.tweening = false
	}
	if w.FromX == w.ToX && w.FromY == w.ToY || seconds <= 0 {
		w.X, w.Y = w.ToX, w.ToY
		return
	}
	w.tweening = true
	action := Action{walker: w}
	action.onChange = func(p float32) {
		w.X = w.FromX + (w.ToX-w.FromX)*float64(p)
		w.Y = w.FromY + (w.ToY-w.FromY)*float64(p)
	}
	action.addOnFinish(func() {
		w.X, w.Y = w.ToX, w.ToY
		w.tweening = false
	})
	g.Tweens[gween.New(0, 1, seconds, ease.OutQuad)] = action
}

func (g *Game) updateTweens(dt float32) {
	for t, a := range g.Tweens {
		curr, finished := t.Update(dt)
		if a.onChange != nil {
			a.onChange(curr)
		}
		if finished {
			for _, onFinish := range a.onFinish {
				onFinish()
			}
			delete(g.Tweens, t)
		}
	}
}
