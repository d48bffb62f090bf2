package hockey

const (
	defenseOffset   = 120.0 // defensive line distance above midY
	deepOffset      = 40.0  // puck must be this far above midY before the AI chases it
	chaseTopPadding = 10.0
)

// TargetParams is the input of ComputeOpponentTarget
type TargetParams struct {
	PuckX, PuckY float64
	VelX, VelY   float64
	Geom         FieldGeometry
	PaddleRadius float64
	LeadSeconds  float64
}

// ComputeOpponentTarget returns the point the opponent paddle should move to.
// X leads the puck by LeadSeconds of x velocity; y holds a defensive line unless
// the puck is deep in the opponent half. VelY is not used. Negative lead is
// treated as zero.
func ComputeOpponentTarget(p TargetParams) Vec2 {
	g := p.Geom
	r := p.PaddleRadius
	lead := p.LeadSeconds
	if lead < 0 || !finite(lead) {
		lead = 0
	}

	predictedX := p.PuckX + p.VelX*lead
	x := Clamp(predictedX, g.PlayX+r, g.PlayX+g.PlayWidth-r)

	y := g.MidY - defenseOffset
	if p.PuckY < g.MidY-deepOffset {
		y = Clamp(p.PuckY, g.OpponentZone.Y+r+chaseTopPadding, g.MidY-r-deepOffset)
	}
	return Vec2{X: x, Y: y}
}
