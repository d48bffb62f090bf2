package hockey

import (
	"errors"
	"math"
	"time"
)

var (
	ErrNegativeDelta = errors.New("hockey: negative or non-finite elapsed time")
	ErrMatchEnded    = errors.New("hockey: match has ended")
	ErrNotPaused     = errors.New("hockey: match is not paused")
)

// Phase represents the lifecycle of a match
type Phase int

const (
	PhaseCountdown Phase = 0
	PhasePlaying   Phase = 1
	PhasePaused    Phase = 2
	PhaseEnded     Phase = 3
)

func (p Phase) String() string {
	switch p {
	case PhaseCountdown:
		return "countdown"
	case PhasePlaying:
		return "playing"
	case PhasePaused:
		return "paused"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Paddle home positions, measured from the goal lines
const homeOffset = 100.0

// Input is what the host feeds the match every tick
type Input struct {
	ElapsedMs float64
	Pointer   Vec2 // player paddle target in field units

	// Host-reported paddle/puck contacts for this tick
	PlayerHit   bool
	OpponentHit bool

	// DetectContacts makes the match test contacts itself, ignoring the flags
	DetectContacts bool
}

// Snapshot is the state a host renders after a tick
type Snapshot struct {
	Phase         Phase
	Puck          Puck
	Player        Paddle
	Opponent      Paddle
	AITarget      Vec2
	PlayerScore   int
	OpponentScore int
	TimeLeft      float64 // seconds
	Countdown     int     // remaining count while counting down
	Result        Result
	Quit          bool
}

type countdown struct {
	remaining   int
	elapsedMs   float64
	serveToward Side
}

// Match holds all mutable state of one game against the computer
type Match struct {
	cfg  Config
	geom FieldGeometry
	rng  RandSource

	puck     Puck
	player   Paddle
	opponent Paddle
	aiTarget Vec2
	stuck    StuckTracker

	playerScore   int
	opponentScore int
	timeLeft      float64
	shownSeconds  int

	phase  Phase
	resume Phase // phase to return to from PhasePaused
	result Result
	quit   bool

	countdown countdown
	events    []Event
}

// NewMatch validates cfg and starts a match in its opening countdown. A nil
// rng is replaced by a time-seeded source.
func NewMatch(cfg Config, rng RandSource) (*Match, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	geom, err := ComputeFieldGeometry(cfg.CanvasWidth, cfg.CanvasHeight)
	if err != nil {
		return nil, err
	}
	if rng == nil {
		rng = NewRand(uint64(time.Now().UnixNano()))
	}
	m := &Match{cfg: cfg, geom: geom, rng: rng}
	m.reset()
	return m, nil
}

// Config returns the match configuration
func (m *Match) Config() Config { return m.cfg }

// Geometry returns the derived field layout
func (m *Match) Geometry() FieldGeometry { return m.geom }

// Phase returns the active phase
func (m *Match) Phase() Phase { return m.phase }

// Snapshot returns a copy of the current state
func (m *Match) Snapshot() Snapshot {
	s := Snapshot{
		Phase:         m.phase,
		Puck:          m.puck,
		Player:        m.player,
		Opponent:      m.opponent,
		AITarget:      m.aiTarget,
		PlayerScore:   m.playerScore,
		OpponentScore: m.opponentScore,
		TimeLeft:      m.timeLeft,
		Result:        m.result,
		Quit:          m.quit,
	}
	if m.phase == PhaseCountdown || (m.phase == PhasePaused && m.resume == PhaseCountdown) {
		s.Countdown = m.countdown.remaining
	}
	return s
}

// Drain returns and clears the queued events
func (m *Match) Drain() []Event {
	ev := m.events
	m.events = nil
	return ev
}

// Step advances the match by one host tick and returns the new state together
// with every event emitted since the previous drain
func (m *Match) Step(in Input) (Snapshot, []Event, error) {
	if in.ElapsedMs < 0 || !finite(in.ElapsedMs) {
		return m.Snapshot(), nil, ErrNegativeDelta
	}
	dt := in.ElapsedMs / 1000

	switch m.phase {
	case PhaseCountdown:
		m.advanceCountdown(in.ElapsedMs)
	case PhasePlaying:
		m.tickPlaying(in, dt)
	case PhaseEnded:
		if !m.quit {
			m.movePaddles(in.Pointer, dt)
			m.retarget()
		}
	case PhasePaused:
	}
	return m.Snapshot(), m.Drain(), nil
}

func (m *Match) tickPlaying(in Input, dt float64) {
	m.movePaddles(in.Pointer, dt)

	m.puck.Pos = m.puck.Pos.Add(m.puck.Vel.Scale(dt))
	BounceWalls(&m.puck, m.geom, m.cfg.WallRestitution)
	m.puck.Vel = ApplyFriction(m.puck.Vel, dt, m.cfg.Retention, m.cfg.MinSpeed)

	playerHit, opponentHit := in.PlayerHit, in.OpponentHit
	if in.DetectContacts {
		playerHit = Touching(m.puck, m.player)
		opponentHit = Touching(m.puck, m.opponent)
	}
	if playerHit {
		m.hit(m.player, SidePlayer)
	}
	if opponentHit {
		m.hit(m.opponent, SideOpponent)
	}

	m.stuck.Update(&m.puck, in.ElapsedMs, m.geom.Center(), m.cfg, m.rng)

	m.timeLeft = math.Max(0, m.timeLeft-dt)
	m.emitTimer()

	if side := DetectGoal(m.puck.Pos.X, m.puck.Pos.Y, m.puck.Radius, m.geom); side != SideNone {
		m.HandleGoal(side)
	}
	if m.phase != PhaseEnded && m.timeLeft == 0 {
		m.end(m.resultFromScores())
		return
	}
	if m.phase == PhasePlaying {
		m.retarget()
	}
}

func (m *Match) movePaddles(pointer Vec2, dt float64) {
	r := m.cfg.PaddleRadius
	m.player.Follow(pointer, m.cfg.FollowFactor, m.geom.PlayerBounds(r), dt)
	m.opponent.Pursue(m.aiTarget, m.cfg.OpponentSpeed, m.geom.OpponentBounds(r), dt)
}

func (m *Match) retarget() {
	m.aiTarget = ComputeOpponentTarget(TargetParams{
		PuckX:        m.puck.Pos.X,
		PuckY:        m.puck.Pos.Y,
		VelX:         m.puck.Vel.X,
		VelY:         m.puck.Vel.Y,
		Geom:         m.geom,
		PaddleRadius: m.cfg.PaddleRadius,
		LeadSeconds:  m.cfg.LeadSeconds,
	})
}

func (m *Match) hit(pd Paddle, side Side) {
	SeparateFromPaddle(&m.puck, pd)
	m.puck.Vel = TransferImpulse(m.puck, pd.Pos, pd.Vel, m.cfg)
	m.emit(Event{Kind: EventHit, Side: side})
}

// HandleGoal credits side with a goal. The match ends when a score reaches
// the limit; otherwise the puck is re-served toward the conceding side after a
// countdown. Ignored while paused or ended; returns whether it was applied.
func (m *Match) HandleGoal(side Side) bool {
	if side == SideNone || m.phase == PhaseEnded || m.phase == PhasePaused {
		return false
	}
	m.emit(Event{Kind: EventGoal, Side: side})
	if side == SidePlayer {
		m.playerScore++
	} else {
		m.opponentScore++
	}
	m.emit(Event{Kind: EventScoreChanged, PlayerScore: m.playerScore, OpponentScore: m.opponentScore})

	limit := m.cfg.ScoreLimit
	if m.playerScore >= limit || m.opponentScore >= limit {
		m.end(m.resultFromScores())
		return true
	}
	m.beginCountdown(side.Other())
	return true
}

// Pause freezes the simulation. Pausing an already paused match is a no-op.
func (m *Match) Pause() error {
	switch m.phase {
	case PhaseEnded:
		return ErrMatchEnded
	case PhasePaused:
		return nil
	}
	m.resume = m.phase
	m.phase = PhasePaused
	m.emit(Event{Kind: EventPaused})
	return nil
}

// Resume returns to the phase that was active before Pause
func (m *Match) Resume() error {
	switch m.phase {
	case PhaseEnded:
		return ErrMatchEnded
	case PhasePaused:
		m.phase = m.resume
		m.emit(Event{Kind: EventResumed})
		return nil
	}
	return ErrNotPaused
}

// TogglePause pauses a running match or resumes a paused one
func (m *Match) TogglePause() error {
	if m.phase == PhasePaused {
		return m.Resume()
	}
	return m.Pause()
}

// Restart reinitializes scores, timer and positions and begins a fresh
// countdown. Any countdown in flight is discarded.
func (m *Match) Restart() {
	m.reset()
}

// Quit ends the match without a result
func (m *Match) Quit() {
	m.quit = true
	m.result = ResultNone
	m.phase = PhaseEnded
	m.puck.Vel = Vec2{}
	m.player.Hold()
	m.opponent.Hold()
}

func (m *Match) reset() {
	g := m.geom
	r := m.cfg.PaddleRadius
	cx := g.PlayX + g.PlayWidth/2

	m.puck = Puck{Pos: g.Center(), Radius: m.cfg.PuckRadius}
	m.player = Paddle{
		Pos:    g.PlayerBounds(r).Clamp(Vec2{X: cx, Y: g.BottomLine() - homeOffset}),
		Radius: r,
	}
	m.opponent = Paddle{
		Pos:    g.OpponentBounds(r).Clamp(Vec2{X: cx, Y: g.PlayY + homeOffset}),
		Radius: r,
	}
	m.aiTarget = m.opponent.Pos
	m.stuck.Reset()

	m.playerScore = 0
	m.opponentScore = 0
	m.timeLeft = m.cfg.MatchLength
	m.shownSeconds = int(math.Ceil(m.timeLeft))
	m.result = ResultNone
	m.quit = false
	m.resume = PhaseCountdown

	m.emit(Event{Kind: EventScoreChanged})
	m.emit(Event{Kind: EventTimerChanged, Seconds: m.shownSeconds})
	m.beginCountdown(randomSide(m.rng))
}

// beginCountdown freezes play at center and overwrites any previous countdown
func (m *Match) beginCountdown(toward Side) {
	m.puck.Pos = m.geom.Center()
	m.puck.Vel = Vec2{}
	m.player.Hold()
	m.opponent.Hold()
	m.stuck.Reset()

	m.countdown = countdown{remaining: m.cfg.CountdownFrom, serveToward: toward}
	m.phase = PhaseCountdown
	m.emit(Event{Kind: EventCountdownTick, Count: m.countdown.remaining})
	if m.countdown.remaining <= 0 {
		m.serve()
	}
}

func (m *Match) advanceCountdown(dtMs float64) {
	c := &m.countdown
	c.elapsedMs += dtMs
	for m.phase == PhaseCountdown && c.elapsedMs >= m.cfg.CountdownIntervalMs {
		c.elapsedMs -= m.cfg.CountdownIntervalMs
		c.remaining--
		m.emit(Event{Kind: EventCountdownTick, Count: c.remaining})
		if c.remaining <= 0 {
			m.serve()
		}
	}
}

func (m *Match) serve() {
	m.puck.Pos = m.geom.Center()
	m.puck.Vel = serveVelocity(m.rng, m.cfg.ServeSpeed, m.cfg.serveSpreadRad(), m.countdown.serveToward)
	m.countdown = countdown{}
	m.phase = PhasePlaying
	m.retarget()
}

func (m *Match) end(r Result) {
	m.phase = PhaseEnded
	m.result = r
	m.puck.Vel = Vec2{}
	m.emit(Event{Kind: EventMatchEnded, Result: r})
}

func (m *Match) resultFromScores() Result {
	switch {
	case m.playerScore > m.opponentScore:
		return ResultWin
	case m.playerScore < m.opponentScore:
		return ResultLose
	default:
		return ResultDraw
	}
}

func (m *Match) emitTimer() {
	s := int(math.Ceil(m.timeLeft))
	if s != m.shownSeconds {
		m.shownSeconds = s
		m.emit(Event{Kind: EventTimerChanged, Seconds: s})
	}
}

func (m *Match) emit(e Event) {
	m.events = append(m.events, e)
}
