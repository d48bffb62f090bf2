package hockey

import "math"

// minDtSec keeps paddle velocity finite on zero-length ticks
const minDtSec = 0.001

// Paddle is a mallet. Vel is derived from the last move and only feeds hits.
type Paddle struct {
	Pos    Vec2    `json:"pos" msgpack:"p"`
	Vel    Vec2    `json:"vel" msgpack:"v"`
	Radius float64 `json:"r" msgpack:"r"`
}

// Follow moves factor of the remaining way toward target, clamped to b
func (p *Paddle) Follow(target Vec2, factor float64, b Bounds, dtSec float64) {
	prev := p.Pos
	t := b.Clamp(target)
	p.Pos = prev.Add(t.Sub(prev).Scale(factor))
	p.setVelocity(prev, dtSec)
}

// Pursue moves toward target at no more than speed, then clamps to b
func (p *Paddle) Pursue(target Vec2, speed float64, b Bounds, dtSec float64) {
	prev := p.Pos
	step := speed * dtSec
	d := target.Sub(prev)
	if d.Len() > step {
		n, _ := d.Normalize()
		p.Pos = prev.Add(n.Scale(step))
	} else {
		p.Pos = target
	}
	p.Pos = b.Clamp(p.Pos)
	p.setVelocity(prev, dtSec)
}

// Hold zeroes the velocity of a paddle that is not moving this tick
func (p *Paddle) Hold() {
	p.Vel = Vec2{}
}

func (p *Paddle) setVelocity(prev Vec2, dtSec float64) {
	p.Vel = p.Pos.Sub(prev).Scale(1 / math.Max(dtSec, minDtSec))
}
