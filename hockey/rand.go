package hockey

import (
	"math"
	"math/rand/v2"
)

// RandSource supplies uniform values in [0, 1). *rand.Rand satisfies it.
type RandSource interface {
	Float64() float64
}

// NewRand returns a seeded source for deterministic matches
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// randomDirection returns a vector of length mag pointing anywhere
func randomDirection(rng RandSource, mag float64) Vec2 {
	return Polar(mag, rng.Float64()*2*math.Pi)
}

// serveVelocity aims within spread radians of straight toward side
func serveVelocity(rng RandSource, speed, spread float64, toward Side) Vec2 {
	a := (rng.Float64()*2 - 1) * spread
	dir := 1.0
	if toward == SideOpponent {
		dir = -1
	}
	return Vec2{X: math.Sin(a) * speed, Y: dir * math.Cos(a) * speed}
}

// randomSide picks either end with equal probability
func randomSide(rng RandSource) Side {
	if rng.Float64() < 0.5 {
		return SidePlayer
	}
	return SideOpponent
}
