package main

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"airhockey/hockey"

	"github.com/vmihailenco/msgpack/v5"
	"k8s.io/klog/v2"
)

const (
	TickRate       = 60 // simulation ticks per second
	BroadcastRate  = 30 // state broadcasts per second
	TickDuration   = time.Second / TickRate
	BroadcastEvery = TickRate / BroadcastRate
)

// ErrUnknownCommand is returned for cmd messages the match does not understand
var ErrUnknownCommand = errors.New("unknown command")

// Broadcaster interface for sending messages to clients
type Broadcaster interface {
	SendJSON(msg interface{})
	SendBinary(data []byte)
}

// Game runs one match for its owner, optionally steered by a phone controller
type Game struct {
	mu         sync.Mutex
	match      *hockey.Match
	pointer    hockey.Vec2
	owner      Broadcaster
	controller Broadcaster
	tick       uint64
	stop       chan struct{}
	stopOnce   sync.Once
}

// NewGame creates a Game with a fresh match. A nil rng seeds from the clock.
func NewGame(cfg hockey.Config, rng hockey.RandSource) (*Game, error) {
	m, err := hockey.NewMatch(cfg, rng)
	if err != nil {
		return nil, fmt.Errorf("new match: %w", err)
	}
	g := &Game{
		match:   m,
		pointer: m.Snapshot().Player.Pos,
		stop:    make(chan struct{}),
	}
	return g, nil
}

// Run starts the game loop. Elapsed time is measured between ticker fires, so
// a late tick is stepped with its real length.
func (g *Game) Run() {
	ticker := time.NewTicker(TickDuration)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			elapsed := float64(now.Sub(last)) / float64(time.Millisecond)
			last = now
			g.update(elapsed)
		case <-g.stop:
			return
		}
	}
}

// Stop terminates the game loop. A game stopped before Run never ticks.
func (g *Game) Stop() {
	g.stopOnce.Do(func() { close(g.stop) })
}

// SetOwner attaches the client that receives events and state frames
func (g *Game) SetOwner(b Broadcaster) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.owner = b
}

// SetController attaches a pointer-only controller, replacing any previous one
func (g *Game) SetController(b Broadcaster) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.controller = b
	if g.owner != nil {
		g.owner.SendJSON(Envelope{T: MsgCtrlOn})
	}
}

// RemoveController detaches b if it is the active controller
func (g *Game) RemoveController(b Broadcaster) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.controller != b {
		return
	}
	g.controller = nil
	if g.owner != nil {
		g.owner.SendJSON(Envelope{T: MsgCtrlOff})
	}
}

// HasController reports whether a controller is attached
func (g *Game) HasController() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.controller != nil
}

// HandleInput sets the pointer the player paddle follows
func (g *Game) HandleInput(x, y float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pointer = hockey.Vec2{X: x, Y: y}
}

// HandleCommand applies a Cmd* constant to the match. Events it produces go
// out with the next tick.
func (g *Game) HandleCommand(cmd string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch cmd {
	case CmdPause:
		return g.match.Pause()
	case CmdResume:
		return g.match.Resume()
	case CmdToggle:
		return g.match.TogglePause()
	case CmdRestart:
		g.match.Restart()
		g.pointer = g.match.Snapshot().Player.Pos
		return nil
	case CmdQuit:
		g.match.Quit()
		return nil
	}
	return fmt.Errorf("%w %q", ErrUnknownCommand, cmd)
}

// Config returns the match configuration
func (g *Game) Config() hockey.Config {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.match.Config()
}

// Geometry returns the field layout of the match
func (g *Game) Geometry() hockey.FieldGeometry {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.match.Geometry()
}

// Snapshot returns the current match state
func (g *Game) Snapshot() hockey.Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.match.Snapshot()
}

// update runs one game tick
func (g *Game) update(elapsedMs float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, events, err := g.match.Step(hockey.Input{
		ElapsedMs:      elapsedMs,
		Pointer:        g.pointer,
		DetectContacts: true,
	})
	if err != nil {
		klog.Warningf("step: %v", err)
		return
	}
	g.tick++

	for _, e := range events {
		klog.V(2).Infof("tick %d: %s", g.tick, e.Kind)
		g.send(Envelope{T: MsgEvent, Data: newEventMsg(e)})
	}

	// Broadcast state
	if g.tick%BroadcastEvery == 0 || len(events) > 0 {
		g.broadcastState(s)
	}
}

// broadcastState sends the msgpack state frame to the owner
func (g *Game) broadcastState(s hockey.Snapshot) {
	if g.owner == nil {
		return
	}
	data, err := msgpack.Marshal(newStateFrame(g.tick, s))
	if err != nil {
		klog.Errorf("marshal state: %v", err)
		return
	}
	g.owner.SendBinary(data)
}

func (g *Game) send(msg Envelope) {
	if g.owner != nil {
		g.owner.SendJSON(msg)
	}
}
