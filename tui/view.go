package main

import (
	"math"
	"strconv"

	"airhockey/hockey"

	"github.com/gdamore/tcell/v2"
)

// hudRows is the number of terminal rows above the field
const hudRows = 1

var (
	styleBorder   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleCenter   = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	styleGoalTop  = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleGoalBot  = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	stylePlayer   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleOpponent = tcell.StyleDefault.Foreground(tcell.ColorRed)
	stylePuck     = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleHUD      = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
)

// canvas is the part of tcell.Screen the renderer draws on
type canvas interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Size() (width, height int)
}

// view maps field units onto terminal cells below the HUD
type view struct {
	cols, rows   int // field area in cells
	fieldW       float64
	fieldH       float64
	cellW, cellH float64 // field units per cell
}

func newView(width, height int, cfg hockey.Config) view {
	rows := height - hudRows
	if rows < 1 {
		rows = 1
	}
	if width < 1 {
		width = 1
	}
	return view{
		cols:   width,
		rows:   rows,
		fieldW: cfg.CanvasWidth,
		fieldH: cfg.CanvasHeight,
		cellW:  cfg.CanvasWidth / float64(width),
		cellH:  cfg.CanvasHeight / float64(rows),
	}
}

// toCell returns the screen cell holding field point p
func (v view) toCell(p hockey.Vec2) (int, int) {
	x := clampInt(int(math.Floor(p.X/v.cellW)), 0, v.cols-1)
	y := clampInt(int(math.Floor(p.Y/v.cellH)), 0, v.rows-1)
	return x, y + hudRows
}

// toField returns the field point at the center of screen cell (x, y)
func (v view) toField(x, y int) hockey.Vec2 {
	return hockey.Vec2{
		X: (float64(x) + 0.5) * v.cellW,
		Y: (float64(y-hudRows) + 0.5) * v.cellH,
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// frame is everything a draw needs
type frame struct {
	snap  hockey.Snapshot
	geom  hockey.FieldGeometry
	cfg   hockey.Config
	muted bool
}

func render(c canvas, f frame) {
	w, h := c.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c.SetContent(x, y, ' ', nil, tcell.StyleDefault)
		}
	}
	v := newView(w, h, f.cfg)

	drawField(c, v, f.geom)
	drawDisc(c, v, f.snap.Player.Pos, f.snap.Player.Radius, '█', stylePlayer)
	drawDisc(c, v, f.snap.Opponent.Pos, f.snap.Opponent.Radius, '█', styleOpponent)
	px, py := v.toCell(f.snap.Puck.Pos)
	c.SetContent(px, py, '●', nil, stylePuck)

	drawText(c, 0, 0, hudLine(f), styleHUD)
}

func drawField(c canvas, v view, g hockey.FieldGeometry) {
	x0, y0 := v.toCell(hockey.Vec2{X: g.PlayX, Y: g.PlayY})
	x1, y1 := v.toCell(hockey.Vec2{X: g.PlayX + g.PlayWidth, Y: g.PlayY + g.PlayHeight})
	gx0, _ := v.toCell(hockey.Vec2{X: g.TopGoal.X1})
	gx1, _ := v.toCell(hockey.Vec2{X: g.TopGoal.X2})
	_, my := v.toCell(hockey.Vec2{Y: g.MidY})

	for x := x0; x <= x1; x++ {
		top, bot := '─', '─'
		topStyle, botStyle := styleBorder, styleBorder
		if x >= gx0 && x <= gx1 {
			top, bot = '━', '━'
			topStyle, botStyle = styleGoalTop, styleGoalBot
		}
		c.SetContent(x, y0, top, nil, topStyle)
		c.SetContent(x, y1, bot, nil, botStyle)
		if x > x0 && x < x1 {
			c.SetContent(x, my, '┄', nil, styleCenter)
		}
	}
	for y := y0; y <= y1; y++ {
		c.SetContent(x0, y, '│', nil, styleBorder)
		c.SetContent(x1, y, '│', nil, styleBorder)
	}
	c.SetContent(x0, y0, '╭', nil, styleBorder)
	c.SetContent(x1, y0, '╮', nil, styleBorder)
	c.SetContent(x0, y1, '╰', nil, styleBorder)
	c.SetContent(x1, y1, '╯', nil, styleBorder)
}

// drawDisc fills every cell whose center lies within r of p, and at least
// the cell holding p
func drawDisc(c canvas, v view, p hockey.Vec2, r float64, ch rune, style tcell.Style) {
	cx0, cy0 := v.toCell(hockey.Vec2{X: p.X - r, Y: p.Y - r})
	cx1, cy1 := v.toCell(hockey.Vec2{X: p.X + r, Y: p.Y + r})
	for y := cy0; y <= cy1; y++ {
		for x := cx0; x <= cx1; x++ {
			if hockey.Distance(v.toField(x, y), p) <= r {
				c.SetContent(x, y, ch, nil, style)
			}
		}
	}
	x, y := v.toCell(p)
	c.SetContent(x, y, ch, nil, style)
}

func drawText(c canvas, x, y int, s string, style tcell.Style) {
	w, _ := c.Size()
	for _, r := range s {
		if x >= w {
			return
		}
		c.SetContent(x, y, r, nil, style)
		x++
	}
}

func hudLine(f frame) string {
	s := f.snap
	line := hockey.FormatScore(s.PlayerScore, s.OpponentScore) + "  " + hockey.FormatClock(s.TimeLeft)
	switch s.Phase {
	case hockey.PhaseCountdown:
		if s.Countdown > 0 {
			line += "  serve in " + strconv.Itoa(s.Countdown)
		}
	case hockey.PhasePaused:
		line += "  PAUSED"
	case hockey.PhaseEnded:
		if b := hockey.ResultBanner(s.Result); b != "" {
			line += "  " + b + " (r: rematch)"
		}
	}
	if f.muted {
		line += "  [muted]"
	}
	return line
}
