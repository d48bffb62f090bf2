package hockey

import (
	"fmt"
	"math"
)

// FormatScore renders the scoreboard line, e.g. "Player 3 : 1 CPU"
func FormatScore(player, opponent int) string {
	return fmt.Sprintf("Player %d : %d CPU", player, opponent)
}

// FormatClock renders remaining seconds as m:ss, rounding up
func FormatClock(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	s := int(math.Ceil(seconds))
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

// ResultBanner is the end-of-match caption for r
func ResultBanner(r Result) string {
	switch r {
	case ResultWin:
		return "You win!"
	case ResultLose:
		return "You lose"
	case ResultDraw:
		return "Draw"
	default:
		return ""
	}
}
