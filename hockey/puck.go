package hockey

import "math"

// Puck is the disc in play
type Puck struct {
	Pos    Vec2    `json:"pos" msgpack:"p"`
	Vel    Vec2    `json:"vel" msgpack:"v"`
	Radius float64 `json:"r" msgpack:"r"`
}

// Speed returns the magnitude of the puck velocity
func (p Puck) Speed() float64 {
	return p.Vel.Len()
}

// ApplyFriction scales vel by retention^dtSec and snaps it to zero once the
// speed falls under half of minSpeed
func ApplyFriction(vel Vec2, dtSec, retention, minSpeed float64) Vec2 {
	v := vel.Scale(math.Pow(retention, dtSec))
	if v.Len2() < minSpeed*minSpeed*0.25 {
		return Vec2{}
	}
	return v
}

// ClampSpeed rescales v to max when longer, keeping its direction
func ClampSpeed(v Vec2, max float64) Vec2 {
	l2 := v.Len2()
	if l2 <= max*max {
		return v
	}
	return v.Scale(max / math.Sqrt(l2))
}

// TransferImpulse returns the puck velocity after a hit by a paddle at
// paddlePos moving with paddleVel. The impulse projected on the center line
// adds an on-axis kick; a zero-length center line contributes nothing.
func TransferImpulse(puck Puck, paddlePos, paddleVel Vec2, c Config) Vec2 {
	impulse := paddleVel.Scale(c.ImpulseScale)
	v := puck.Vel.Add(impulse.Scale(c.ImpulseCarry))
	if n, ok := puck.Pos.Sub(paddlePos).Normalize(); ok {
		along := Clamp(impulse.Dot(n), -c.MaxAlong, c.MaxAlong)
		v = v.Add(n.Scale(along))
	}
	return ClampSpeed(v, c.MaxPuckSpeed)
}

// StuckAction reports what StuckTracker.Update did to the puck
type StuckAction int

const (
	StuckNone   StuckAction = 0
	StuckNudged StuckAction = 1
	StuckReset  StuckAction = 2
)

// StuckTracker accumulates how long the puck has been nearly still
type StuckTracker struct {
	BelowMs float64
	nudged  bool
}

// Reset clears the accumulator
func (s *StuckTracker) Reset() {
	s.BelowMs = 0
	s.nudged = false
}

// Update advances the tracker by dtMs. A slow puck gets one random nudge
// after NudgeAfterMs and is re-served from center after ResetAfterMs.
func (s *StuckTracker) Update(p *Puck, dtMs float64, center Vec2, c Config, rng RandSource) StuckAction {
	if p.Vel.Len2() >= c.MinSpeed*c.MinSpeed {
		s.Reset()
		return StuckNone
	}
	s.BelowMs += dtMs

	if s.BelowMs >= c.ResetAfterMs {
		p.Pos = center
		p.Vel = randomDirection(rng, c.ResetSpeed)
		s.Reset()
		return StuckReset
	}
	if s.BelowMs >= c.NudgeAfterMs && !s.nudged {
		p.Vel = p.Vel.Add(randomDirection(rng, c.NudgeImpulse))
		s.nudged = true
		return StuckNudged
	}
	return StuckNone
}
