package hockey

// contactSlop leaves a separated puck just clear of the paddle
const contactSlop = 0.01

// BounceWalls keeps the puck inside the play rectangle, reflecting the
// velocity component that points out of it. Returns true on a bounce.
func BounceWalls(p *Puck, g FieldGeometry, restitution float64) bool {
	minX := g.PlayX + p.Radius
	maxX := g.PlayX + g.PlayWidth - p.Radius
	minY := g.PlayY + p.Radius
	maxY := g.PlayY + g.PlayHeight - p.Radius
	bounced := false

	if p.Pos.X < minX {
		p.Pos.X = minX
		if p.Vel.X < 0 {
			p.Vel.X = -p.Vel.X * restitution
		}
		bounced = true
	} else if p.Pos.X > maxX {
		p.Pos.X = maxX
		if p.Vel.X > 0 {
			p.Vel.X = -p.Vel.X * restitution
		}
		bounced = true
	}

	if p.Pos.Y < minY {
		p.Pos.Y = minY
		if p.Vel.Y < 0 {
			p.Vel.Y = -p.Vel.Y * restitution
		}
		bounced = true
	} else if p.Pos.Y > maxY {
		p.Pos.Y = maxY
		if p.Vel.Y > 0 {
			p.Vel.Y = -p.Vel.Y * restitution
		}
		bounced = true
	}
	return bounced
}

// Touching reports whether the puck and paddle overlap
func Touching(p Puck, pd Paddle) bool {
	return Overlaps(p.Pos, p.Radius, pd.Pos, pd.Radius)
}

// SeparateFromPaddle pushes an overlapping puck out to contact distance and
// reflects its velocity if it was moving into the paddle. Coincident centers
// have no normal, so nothing is moved. Returns true when the bodies overlapped.
func SeparateFromPaddle(p *Puck, pd Paddle) bool {
	if !Touching(*p, pd) {
		return false
	}
	n, ok := p.Pos.Sub(pd.Pos).Normalize()
	if !ok {
		return true
	}
	p.Pos = pd.Pos.Add(n.Scale(p.Radius + pd.Radius + contactSlop))
	if d := p.Vel.Dot(n); d < 0 {
		p.Vel = p.Vel.Sub(n.Scale(2 * d))
	}
	return true
}
