package hockey

import (
	"errors"
	"math"
)

// ErrInvalidDimensions is returned for canvas sizes that leave no play area
var ErrInvalidDimensions = errors.New("hockey: invalid field dimensions")

const (
	marginFrac = 0.05 // of min(canvasWidth, canvasHeight)
	cornerFrac = 0.06 // of min(playWidth, playHeight)
	goalFrac   = 0.35 // of playWidth
)

// Segment is a horizontal line from X1 to X2 at height Y
type Segment struct {
	X1 float64 `json:"x1"`
	X2 float64 `json:"x2"`
	Y  float64 `json:"y"`
}

// Rect is an axis-aligned rectangle anchored at its top-left corner
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Bounds limits a paddle center to a rectangle
type Bounds struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// Clamp restricts p to the bounds
func (b Bounds) Clamp(p Vec2) Vec2 {
	return Vec2{X: Clamp(p.X, b.MinX, b.MaxX), Y: Clamp(p.Y, b.MinY, b.MaxY)}
}

// Contains reports whether p lies inside the bounds (edges included)
func (b Bounds) Contains(p Vec2) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// FieldGeometry is the layout derived from a canvas size. The opponent defends
// the top edge, the player the bottom edge.
type FieldGeometry struct {
	PlayX        float64 `json:"playX"`
	PlayY        float64 `json:"playY"`
	PlayWidth    float64 `json:"playWidth"`
	PlayHeight   float64 `json:"playHeight"`
	CornerRadius float64 `json:"cornerRadius"`
	MidY         float64 `json:"midY"`
	GoalWidth    float64 `json:"goalWidth"`
	TopGoal      Segment `json:"topGoal"`
	BottomGoal   Segment `json:"bottomGoal"`
	PlayerZone   Rect    `json:"playerZone"`
	OpponentZone Rect    `json:"opponentZone"`
}

// ComputeFieldGeometry derives the field layout for a canvas
func ComputeFieldGeometry(canvasWidth, canvasHeight float64) (FieldGeometry, error) {
	if !finite(canvasWidth) || !finite(canvasHeight) || canvasWidth <= 0 || canvasHeight <= 0 {
		return FieldGeometry{}, ErrInvalidDimensions
	}
	margin := math.Round(math.Min(canvasWidth, canvasHeight) * marginFrac)
	playWidth := canvasWidth - margin*2
	playHeight := canvasHeight - margin*2
	if playWidth <= 0 || playHeight <= 0 {
		return FieldGeometry{}, ErrInvalidDimensions
	}

	g := FieldGeometry{
		PlayX:        margin,
		PlayY:        margin,
		PlayWidth:    playWidth,
		PlayHeight:   playHeight,
		CornerRadius: math.Round(math.Min(playWidth, playHeight) * cornerFrac),
		MidY:         margin + playHeight/2,
		GoalWidth:    math.Round(playWidth * goalFrac),
	}

	gx1 := g.PlayX + (playWidth-g.GoalWidth)/2
	gx2 := gx1 + g.GoalWidth
	g.TopGoal = Segment{X1: gx1, X2: gx2, Y: g.PlayY}
	g.BottomGoal = Segment{X1: gx1, X2: gx2, Y: g.PlayY + playHeight}

	g.PlayerZone = Rect{X: g.PlayX, Y: g.MidY, Width: playWidth, Height: playHeight / 2}
	g.OpponentZone = Rect{X: g.PlayX, Y: g.PlayY, Width: playWidth, Height: playHeight / 2}
	return g, nil
}

// Center returns the center of the play rectangle
func (g FieldGeometry) Center() Vec2 {
	return Vec2{X: g.PlayX + g.PlayWidth/2, Y: g.MidY}
}

// BottomLine returns the y coordinate of the player's goal line
func (g FieldGeometry) BottomLine() float64 {
	return g.PlayY + g.PlayHeight
}

// PlayerBounds is where a player paddle of radius r may sit (lower half)
func (g FieldGeometry) PlayerBounds(r float64) Bounds {
	return Bounds{
		MinX: g.PlayX + r,
		MaxX: g.PlayX + g.PlayWidth - r,
		MinY: g.MidY + r,
		MaxY: g.PlayY + g.PlayHeight - r,
	}
}

// OpponentBounds is where the opponent paddle of radius r may sit (upper half)
func (g FieldGeometry) OpponentBounds(r float64) Bounds {
	return Bounds{
		MinX: g.PlayX + r,
		MaxX: g.PlayX + g.PlayWidth - r,
		MinY: g.OpponentZone.Y + r,
		MaxY: g.MidY - r,
	}
}
