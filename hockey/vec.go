package hockey

import "math"

// Vec2 is a position or velocity in field units (velocity in units/second)
type Vec2 struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Len2 returns the squared length
func (v Vec2) Len2() float64 {
	return v.X*v.X + v.Y*v.Y
}

func (v Vec2) Len() float64 {
	return math.Sqrt(v.Len2())
}

// Normalize returns the unit vector and false when v has zero length
func (v Vec2) Normalize() (Vec2, bool) {
	l := v.Len()
	if l == 0 || math.IsNaN(l) {
		return Vec2{}, false
	}
	return Vec2{X: v.X / l, Y: v.Y / l}, true
}

// Polar returns a vector of the given magnitude at angle a (radians)
func Polar(mag, a float64) Vec2 {
	return Vec2{X: math.Cos(a) * mag, Y: math.Sin(a) * mag}
}

// Clamp restricts v to [min, max]
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Distance returns the distance between two points
func Distance(a, b Vec2) float64 {
	return b.Sub(a).Len()
}

// Overlaps checks if two circles overlap or touch
func Overlaps(a Vec2, ra float64, b Vec2, rb float64) bool {
	radSum := ra + rb
	return b.Sub(a).Len2() <= radSum*radSum
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
