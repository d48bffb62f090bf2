package hockey

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidConfig is wrapped by Config.Validate failures
var ErrInvalidConfig = errors.New("hockey: invalid config")

// Config holds every tuning value of a match
type Config struct {
	CanvasWidth  float64
	CanvasHeight float64
	ScoreLimit   int
	MatchLength  float64 // seconds

	PuckRadius   float64
	PaddleRadius float64

	// Opponent
	LeadSeconds   float64 // puck x-velocity extrapolation
	OpponentSpeed float64 // units/s cap on opponent paddle motion

	// Player
	FollowFactor float64 // fraction of remaining distance covered per tick

	// Friction and stuck recovery
	Retention       float64 // velocity fraction kept per second
	MinSpeed        float64 // units/s below which the puck counts as stuck
	NudgeAfterMs    float64
	NudgeImpulse    float64
	ResetAfterMs    float64
	ResetSpeed      float64
	WallRestitution float64

	// Paddle hits
	ImpulseScale float64 // paddle velocity -> impulse
	ImpulseCarry float64 // share of the raw impulse added as-is
	MaxAlong     float64 // cap on the impulse projected on the contact normal
	MaxPuckSpeed float64

	// Serve
	ServeSpeed          float64
	ServeSpreadDeg      float64 // max deviation from straight
	CountdownFrom       int
	CountdownIntervalMs float64
}

// DefaultConfig returns the standard 800x1600 table
func DefaultConfig() Config {
	return Config{
		CanvasWidth:  800,
		CanvasHeight: 1600,
		ScoreLimit:   10,
		MatchLength:  180,

		PuckRadius:   20,
		PaddleRadius: 40,

		LeadSeconds:   0.12,
		OpponentSpeed: 520,

		FollowFactor: 0.25,

		Retention:       0.985,
		MinSpeed:        12,
		NudgeAfterMs:    2000,
		NudgeImpulse:    60,
		ResetAfterMs:    5000,
		ResetSpeed:      140,
		WallRestitution: 1,

		ImpulseScale: 0.45,
		ImpulseCarry: 0.3,
		MaxAlong:     600,
		MaxPuckSpeed: 900,

		ServeSpeed:          180,
		ServeSpreadDeg:      30,
		CountdownFrom:       3,
		CountdownIntervalMs: 1000,
	}
}

// Validate rejects values that would produce NaNs or a match that cannot end
func (c Config) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"CanvasWidth", c.CanvasWidth},
		{"CanvasHeight", c.CanvasHeight},
		{"MatchLength", c.MatchLength},
		{"PuckRadius", c.PuckRadius},
		{"PaddleRadius", c.PaddleRadius},
		{"OpponentSpeed", c.OpponentSpeed},
		{"Retention", c.Retention},
		{"MinSpeed", c.MinSpeed},
		{"NudgeAfterMs", c.NudgeAfterMs},
		{"ResetAfterMs", c.ResetAfterMs},
		{"ResetSpeed", c.ResetSpeed},
		{"MaxPuckSpeed", c.MaxPuckSpeed},
		{"ServeSpeed", c.ServeSpeed},
		{"CountdownIntervalMs", c.CountdownIntervalMs},
	}
	for _, f := range positive {
		if !finite(f.v) || f.v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidConfig, f.name, f.v)
		}
	}

	nonNegative := []struct {
		name string
		v    float64
	}{
		{"LeadSeconds", c.LeadSeconds},
		{"NudgeImpulse", c.NudgeImpulse},
		{"WallRestitution", c.WallRestitution},
		{"ImpulseScale", c.ImpulseScale},
		{"ImpulseCarry", c.ImpulseCarry},
		{"MaxAlong", c.MaxAlong},
		{"ServeSpreadDeg", c.ServeSpreadDeg},
	}
	for _, f := range nonNegative {
		if !finite(f.v) || f.v < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %v", ErrInvalidConfig, f.name, f.v)
		}
	}

	if c.ScoreLimit <= 0 {
		return fmt.Errorf("%w: ScoreLimit must be positive, got %d", ErrInvalidConfig, c.ScoreLimit)
	}
	if c.CountdownFrom < 0 {
		return fmt.Errorf("%w: CountdownFrom must not be negative, got %d", ErrInvalidConfig, c.CountdownFrom)
	}
	if c.FollowFactor <= 0 || c.FollowFactor > 1 {
		return fmt.Errorf("%w: FollowFactor must be in (0, 1], got %v", ErrInvalidConfig, c.FollowFactor)
	}
	if c.Retention > 1 {
		return fmt.Errorf("%w: Retention must not exceed 1, got %v", ErrInvalidConfig, c.Retention)
	}
	if c.NudgeAfterMs >= c.ResetAfterMs {
		return fmt.Errorf("%w: NudgeAfterMs must be below ResetAfterMs", ErrInvalidConfig)
	}
	if c.ServeSpreadDeg >= 90 {
		return fmt.Errorf("%w: ServeSpreadDeg must be below 90, got %v", ErrInvalidConfig, c.ServeSpreadDeg)
	}
	if _, err := ComputeFieldGeometry(c.CanvasWidth, c.CanvasHeight); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Difficulty picks the opponent's lead time and speed
type Difficulty int

const (
	DifficultyEasy   Difficulty = 0
	DifficultyNormal Difficulty = 1
	DifficultyHard   Difficulty = 2
)

func (d Difficulty) String() string {
	switch d {
	case DifficultyEasy:
		return "easy"
	case DifficultyHard:
		return "hard"
	default:
		return "normal"
	}
}

// ParseDifficulty accepts "easy", "normal" or "hard" (case-insensitive)
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return DifficultyEasy, nil
	case "", "normal":
		return DifficultyNormal, nil
	case "hard":
		return DifficultyHard, nil
	}
	return DifficultyNormal, fmt.Errorf("%w: unknown difficulty %q", ErrInvalidConfig, s)
}

// WithDifficulty returns a copy of c tuned for d
func (c Config) WithDifficulty(d Difficulty) Config {
	switch d {
	case DifficultyEasy:
		c.LeadSeconds = 0.06
		c.OpponentSpeed = 380
	case DifficultyHard:
		c.LeadSeconds = 0.18
		c.OpponentSpeed = 680
	default:
		c.LeadSeconds = 0.12
		c.OpponentSpeed = 520
	}
	return c
}

func (c Config) serveSpreadRad() float64 {
	return c.ServeSpreadDeg * math.Pi / 180
}
