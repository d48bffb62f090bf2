package hockey

// Side identifies one end of the table
type Side int

const (
	SideNone     Side = 0
	SidePlayer   Side = 1
	SideOpponent Side = 2
)

func (s Side) String() string {
	switch s {
	case SidePlayer:
		return "player"
	case SideOpponent:
		return "opponent"
	default:
		return "none"
	}
}

// Other returns the opposite side (SideNone stays SideNone)
func (s Side) Other() Side {
	switch s {
	case SidePlayer:
		return SideOpponent
	case SideOpponent:
		return SidePlayer
	default:
		return SideNone
	}
}

// DetectGoal classifies the puck position as a goal. Both mouths share the top
// goal's x range. Reaching the top line credits the player, reaching the bottom
// line credits the opponent.
func DetectGoal(puckX, puckY, puckRadius float64, g FieldGeometry) Side {
	topLine := g.TopGoal.Y
	bottomLine := g.PlayY + g.PlayHeight
	if puckX < g.TopGoal.X1 || puckX > g.TopGoal.X2 {
		return SideNone
	}
	if puckY <= topLine+puckRadius {
		return SidePlayer
	}
	if puckY >= bottomLine-puckRadius {
		return SideOpponent
	}
	return SideNone
}
