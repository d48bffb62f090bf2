package hockey

// EventKind identifies a notification emitted by the match
type EventKind int

const (
	EventScoreChanged  EventKind = 1
	EventTimerChanged  EventKind = 2
	EventCountdownTick EventKind = 3
	EventMatchEnded    EventKind = 4
	EventHit           EventKind = 5
	EventGoal          EventKind = 6
	EventPaused        EventKind = 7
	EventResumed       EventKind = 8
)

func (k EventKind) String() string {
	switch k {
	case EventScoreChanged:
		return "score-changed"
	case EventTimerChanged:
		return "timer-changed"
	case EventCountdownTick:
		return "countdown-tick"
	case EventMatchEnded:
		return "match-ended"
	case EventHit:
		return "hit-occurred"
	case EventGoal:
		return "goal-occurred"
	case EventPaused:
		return "paused"
	case EventResumed:
		return "resumed"
	default:
		return "unknown"
	}
}

// Result is the outcome of a finished match from the player's point of view
type Result int

const (
	ResultNone Result = 0
	ResultWin  Result = 1
	ResultLose Result = 2
	ResultDraw Result = 3
)

func (r Result) String() string {
	switch r {
	case ResultWin:
		return "win"
	case ResultLose:
		return "lose"
	case ResultDraw:
		return "draw"
	default:
		return "none"
	}
}

// Event is one entry of the output queue. Only the fields relevant to Kind
// are set.
type Event struct {
	Kind          EventKind
	PlayerScore   int    // score-changed
	OpponentScore int    // score-changed
	Seconds       int    // timer-changed, whole seconds remaining (rounded up)
	Count         int    // countdown-tick
	Result        Result // match-ended
	Side          Side   // goal-occurred: scorer; hit-occurred: paddle
}
