package main

import (
	"encoding/json"

	"airhockey/hockey"
)

// Client -> Server message types
const (
	MsgCreate  = "create"  // start a match
	MsgAuth    = "auth"    // resume a guest identity
	MsgInput   = "input"   // pointer position
	MsgControl = "control" // phone controller attach
	MsgCmd     = "cmd"     // pause, resume, toggle, restart, quit
	MsgPrefs   = "prefs"   // store preferences
	MsgLeave   = "leave"
)

// Server -> Client message types
const (
	MsgCreated   = "created" // session created, carries the guest token
	MsgWelcome   = "welcome"
	MsgEvent     = "event"
	MsgError     = "error"
	MsgAuthOK    = "auth_ok"
	MsgPrefsOK   = "prefs_ok"
	MsgControlOK = "control_ok" // controller attach confirmed
	MsgCtrlOn    = "ctrl_on"    // notify owner: controller attached
	MsgCtrlOff   = "ctrl_off"   // notify owner: controller detached
)

// Match commands carried by MsgCmd
const (
	CmdPause   = "pause"
	CmdResume  = "resume"
	CmdToggle  = "toggle"
	CmdRestart = "restart"
	CmdQuit    = "quit"
)

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages; json.RawMessage avoids double-unmarshal
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// CreateMsg is sent when a player starts a match
type CreateMsg struct {
	Name       string `json:"name"`
	Difficulty string `json:"difficulty"`
}

// CreatedMsg answers CreateMsg
type CreatedMsg struct {
	SID   string `json:"sid"`
	Token string `json:"token,omitempty"`
	Name  string `json:"name"`
}

// AuthMsg presents a token issued by an earlier CreatedMsg
type AuthMsg struct {
	Token string `json:"token"`
}

// AuthOKMsg confirms a resumed identity
type AuthOKMsg struct {
	Name       string `json:"name"`
	Difficulty string `json:"difficulty"`
	Mute       bool   `json:"mute"`
}

// InputMsg is the pointer position in field units
type InputMsg struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ControlMsg is sent by a phone controller to attach to a session
type ControlMsg struct {
	SID string `json:"sid"`
}

// CmdMsg carries one of the Cmd* constants
type CmdMsg struct {
	C string `json:"c"`
}

// PrefsMsg stores preferences for the authenticated guest
type PrefsMsg struct {
	Difficulty string `json:"difficulty"`
	Mute       bool   `json:"mute"`
}

// WelcomeMsg describes the table once a match is created
type WelcomeMsg struct {
	Geometry     hockey.FieldGeometry `json:"geometry"`
	CanvasWidth  float64              `json:"w"`
	CanvasHeight float64              `json:"h"`
	PuckRadius   float64              `json:"puckR"`
	PaddleRadius float64              `json:"paddleR"`
	ScoreLimit   int                  `json:"scoreLimit"`
	MatchLength  float64              `json:"matchLength"`
	Difficulty   string               `json:"difficulty"`
	Mute         bool                 `json:"mute"`
}

// EventMsg mirrors one match event
type EventMsg struct {
	Kind     string `json:"kind"`
	Player   int    `json:"player"`
	Opponent int    `json:"opponent"`
	Seconds  int    `json:"seconds"`
	Count    int    `json:"count"`
	Result   string `json:"result,omitempty"`
	Side     string `json:"side,omitempty"`
	Sound    string `json:"sound,omitempty"` // effect path for hits and goals
}

// StateFrame is the binary (msgpack) state broadcast
type StateFrame struct {
	Tick      uint64        `msgpack:"tick"`
	Phase     int           `msgpack:"ph"`
	Puck      hockey.Puck   `msgpack:"pk"`
	Player    hockey.Paddle `msgpack:"pl"`
	Opponent  hockey.Paddle `msgpack:"op"`
	Target    hockey.Vec2   `msgpack:"tg"`
	Score     [2]int        `msgpack:"sc"` // player, opponent
	TimeLeft  float64       `msgpack:"tl"`
	Countdown int           `msgpack:"cd"`
	Result    int           `msgpack:"rs"`
	Quit      bool          `msgpack:"q"`
}

// ErrorMsg sends error to client
type ErrorMsg struct {
	Msg string `json:"msg"`
}

func newEventMsg(e hockey.Event) EventMsg {
	m := EventMsg{
		Kind:     e.Kind.String(),
		Player:   e.PlayerScore,
		Opponent: e.OpponentScore,
		Seconds:  e.Seconds,
		Count:    e.Count,
	}
	if e.Result != hockey.ResultNone {
		m.Result = e.Result.String()
	}
	if e.Side != hockey.SideNone {
		m.Side = e.Side.String()
	}
	switch e.Kind {
	case hockey.EventHit:
		m.Sound = "/sfx/hit.wav"
	case hockey.EventGoal:
		m.Sound = "/sfx/goal.wav"
	}
	return m
}

func newStateFrame(tick uint64, s hockey.Snapshot) StateFrame {
	return StateFrame{
		Tick:      tick,
		Phase:     int(s.Phase),
		Puck:      s.Puck,
		Player:    s.Player,
		Opponent:  s.Opponent,
		Target:    s.AITarget,
		Score:     [2]int{s.PlayerScore, s.OpponentScore},
		TimeLeft:  s.TimeLeft,
		Countdown: s.Countdown,
		Result:    int(s.Result),
		Quit:      s.Quit,
	}
}
