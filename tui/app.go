package main

import (
	"time"

	"airhockey/hockey"
	"airhockey/sfx"

	"github.com/gdamore/tcell/v2"
	"k8s.io/klog/v2"
)

const frameInterval = 16 * time.Millisecond // ~60 FPS

// App runs one match in the terminal
type App struct {
	screen  tcell.Screen
	match   *hockey.Match
	sound   tonePlayer // nil when audio is unavailable
	muted   bool
	pointer hockey.Vec2
	last    time.Time
}

func newApp(screen tcell.Screen, cfg hockey.Config, rng hockey.RandSource, sound tonePlayer) (*App, error) {
	m, err := hockey.NewMatch(cfg, rng)
	if err != nil {
		return nil, err
	}
	a := &App{
		screen: screen,
		match:  m,
		sound:  sound,
	}
	a.resetPointer()
	return a, nil
}

// resetPointer parks the pointer on the player's paddle
func (a *App) resetPointer() {
	a.pointer = a.match.Snapshot().Player.Pos
}

func (a *App) view() view {
	w, h := a.screen.Size()
	return newView(w, h, a.match.Config())
}

// handleEvent returns false when the app should exit
func (a *App) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.handleKey(ev.Key(), ev.Rune())
	case *tcell.EventMouse:
		x, y := ev.Position()
		a.handleMouse(x, y)
	case *tcell.EventResize:
		a.screen.Sync()
	}
	return true
}

func (a *App) handleKey(key tcell.Key, r rune) bool {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		a.match.Quit()
		return false
	case tcell.KeyRune:
	default:
		return true
	}

	switch r {
	case 'q', 'Q':
		a.match.Quit()
		return false
	case 'p', 'P', ' ':
		if err := a.match.TogglePause(); err != nil {
			klog.V(1).Infof("toggle pause: %v", err)
		}
	case 'r', 'R':
		a.match.Restart()
		a.resetPointer()
	case 'm', 'M':
		a.muted = !a.muted
	}
	return true
}

// handleMouse points the player's paddle at the cell under the mouse
func (a *App) handleMouse(x, y int) {
	a.pointer = a.view().toField(x, y)
}

// step advances the match by elapsedMs and plays the tones it produced
func (a *App) step(elapsedMs float64) {
	_, events, err := a.match.Step(hockey.Input{
		ElapsedMs:      elapsedMs,
		Pointer:        a.pointer,
		DetectContacts: true,
	})
	if err != nil {
		klog.Warningf("step: %v", err)
		return
	}
	for _, e := range events {
		klog.V(2).Infof("event %v", e.Kind)
		if a.sound == nil || a.muted {
			continue
		}
		if t, ok := sfx.ForEvent(e); ok {
			a.sound.Play(t)
		}
	}
}

func (a *App) draw() {
	render(a.screen, frame{
		snap:  a.match.Snapshot(),
		geom:  a.match.Geometry(),
		cfg:   a.match.Config(),
		muted: a.muted,
	})
	a.screen.Show()
}

func (a *App) run() {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	a.last = time.Now()
	a.draw()
	for {
		select {
		case ev := <-events:
			if !a.handleEvent(ev) {
				return
			}

		case now := <-ticker.C:
			a.step(float64(now.Sub(a.last)) / float64(time.Millisecond))
			a.last = now
			a.draw()
		}
	}
}
