package main

import (
	"encoding/json"
	"time"

	"airhockey/hockey"

	"github.com/gorilla/websocket"
	"k8s.io/klog/v2"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 120
	maxNameLen        = 16
)

// outFrame is one queued websocket write
type outFrame struct {
	binary bool
	data   []byte
}

// rateLimiter counts messages in fixed one-second windows
type rateLimiter struct {
	limit   int
	count   int
	resetAt time.Time
}

// allow records a message at now and reports whether it fits the window
func (r *rateLimiter) allow(now time.Time) bool {
	if now.After(r.resetAt) {
		r.count = 0
		r.resetAt = now.Add(time.Second)
	}
	r.count++
	return r.count <= r.limit
}

// Client is one browser tab or phone controller
type Client struct {
	hub          *Hub
	conn         *websocket.Conn
	send         chan outFrame
	sessionID    string
	remoteAddr   string
	isController bool
	limiter      rateLimiter
	// Guest identity, 0 until create or auth
	authPlayerID int64
	authName     string
}

func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan outFrame, sendBufSize),
		remoteAddr: remoteAddr,
		limiter:    rateLimiter{limit: maxMessagesPerSec},
	}
}

// ReadPump decodes incoming messages until the connection fails, then
// unregisters the client
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	extend := func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	}
	extend("")
	c.conn.SetPongHandler(extend)

	for {
		kind, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				klog.Warningf("ws read from %s: %v", c.remoteAddr, err)
			}
			return
		}
		if !c.limiter.allow(time.Now()) {
			klog.Warningf("rate limit exceeded for %s, disconnecting", c.remoteAddr)
			return
		}

		// Compact pointer: [0x01, x_hi, x_lo, y_hi, y_lo]
		if kind == websocket.BinaryMessage && len(payload) == 5 && payload[0] == 0x01 {
			c.handleBinaryInput(payload)
			continue
		}
		c.handleMessage(payload)
	}
}

// WritePump drains the send queue and keeps the connection alive with pings
func (c *Client) WritePump() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case f, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			kind := websocket.TextMessage
			if f.binary {
				kind = websocket.BinaryMessage
			}
			if err := c.conn.WriteMessage(kind, f.data); err != nil {
				return
			}

		case <-ping.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON queues msg as a text message
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		klog.Errorf("marshal %T: %v", msg, err)
		return
	}
	c.enqueue(outFrame{data: data})
}

// SendBinary queues an encoded state frame
func (c *Client) SendBinary(data []byte) {
	c.enqueue(outFrame{binary: true, data: data})
}

// enqueue drops the frame when the client is too slow. The hub closes send
// on unregister, so a late game tick may hit a closed channel.
func (c *Client) enqueue(f outFrame) {
	defer func() { recover() }()
	select {
	case c.send <- f:
	default:
	}
}

func (c *Client) sendError(msg string) {
	c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: msg}})
}

// handleMessage dispatches a JSON envelope by type
func (c *Client) handleMessage(raw []byte) {
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		klog.V(1).Infof("unmarshal error from %s: %v", c.remoteAddr, err)
		return
	}

	switch env.T {
	case MsgCreate:
		c.handleCreate(env.D)
	case MsgAuth:
		c.handleAuth(env.D)
	case MsgInput:
		c.handleInput(env.D)
	case MsgControl:
		c.handleControl(env.D)
	case MsgCmd:
		c.handleCmd(env.D)
	case MsgPrefs:
		c.handlePrefs(env.D)
	case MsgLeave:
		c.handleLeave()
	}
}

func (c *Client) handleCreate(data json.RawMessage) {
	var msg CreateMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if c.sessionID != "" {
		c.handleLeave()
	}

	prefs := c.preferences()
	requested := msg.Difficulty
	if requested == "" {
		requested = prefs.Difficulty
	}
	d, err := hockey.ParseDifficulty(requested)
	if err != nil {
		c.sendError("unknown difficulty")
		return
	}

	name := c.authName
	if name == "" {
		name = sanitizeName(msg.Name, GenerateGuestName())
	}

	var token string
	if c.authPlayerID == 0 && c.hub.db != nil {
		id, tok, err := c.hub.auth.RegisterGuest(name)
		if err != nil {
			klog.Errorf("register guest: %v", err)
		} else {
			c.authPlayerID = id
			c.authName = name
			token = tok
		}
	}

	sess, err := c.hub.sessions.CreateSession(name, d)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.sessionID = sess.ID
	c.isController = false
	sess.Game.SetOwner(c)
	klog.V(1).Infof("session %s created for %s (%s)", sess.ID, name, d)

	cfg := sess.Game.Config()
	geom := sess.Game.Geometry()
	c.SendJSON(Envelope{T: MsgCreated, Data: CreatedMsg{SID: sess.ID, Token: token, Name: name}})
	c.SendJSON(Envelope{T: MsgWelcome, Data: WelcomeMsg{
		Geometry:     geom,
		CanvasWidth:  cfg.CanvasWidth,
		CanvasHeight: cfg.CanvasHeight,
		PuckRadius:   cfg.PuckRadius,
		PaddleRadius: cfg.PaddleRadius,
		ScoreLimit:   cfg.ScoreLimit,
		MatchLength:  cfg.MatchLength,
		Difficulty:   d.String(),
		Mute:         prefs.Mute,
	}})
	go sess.Game.Run()
}

func (c *Client) handleAuth(data json.RawMessage) {
	var msg AuthMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, name, err := c.hub.auth.ValidateToken(msg.Token)
	if err != nil {
		c.sendError("invalid token")
		return
	}
	c.authPlayerID = id
	c.authName = name
	prefs := c.preferences()
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{
		Name:       name,
		Difficulty: prefs.Difficulty,
		Mute:       prefs.Mute,
	}})
}

// preferences returns the stored preferences, or the defaults for anonymous
// clients and server runs without a database
func (c *Client) preferences() Preferences {
	def := Preferences{Difficulty: hockey.DifficultyNormal.String()}
	if c.hub.db == nil || c.authPlayerID == 0 {
		return def
	}
	p, err := c.hub.db.GetPreferences(c.authPlayerID)
	if err != nil {
		klog.Warningf("read preferences for %d: %v", c.authPlayerID, err)
		return def
	}
	return p
}

// handleBinaryInput decodes a compact 5-byte pointer message
func (c *Client) handleBinaryInput(msg []byte) {
	x := float64(uint16(msg[1])<<8 | uint16(msg[2]))
	y := float64(uint16(msg[3])<<8 | uint16(msg[4]))
	c.applyInput(x, y)
}

func (c *Client) handleInput(data json.RawMessage) {
	var input InputMsg
	if err := json.Unmarshal(data, &input); err != nil {
		return
	}
	c.applyInput(input.X, input.Y)
}

func (c *Client) applyInput(x, y float64) {
	if c.sessionID == "" {
		return
	}
	sess := c.hub.sessions.GetSession(c.sessionID)
	if sess == nil {
		return
	}
	sess.Game.HandleInput(x, y)
}

func (c *Client) handleControl(data json.RawMessage) {
	var msg ControlMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	sess := c.hub.sessions.GetSession(msg.SID)
	if sess == nil {
		c.sendError("session not found")
		return
	}
	if c.sessionID != "" {
		c.handleLeave()
	}

	c.sessionID = msg.SID
	c.isController = true

	sess.Game.SetController(c)
	c.SendJSON(Envelope{T: MsgControlOK, Data: map[string]string{"sid": msg.SID}})
}

func (c *Client) handleCmd(data json.RawMessage) {
	if c.sessionID == "" || c.isController {
		return
	}
	var msg CmdMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	sess := c.hub.sessions.GetSession(c.sessionID)
	if sess == nil {
		return
	}
	if err := sess.Game.HandleCommand(msg.C); err != nil {
		c.sendError(err.Error())
		return
	}
	klog.V(1).Infof("session %s: %s", c.sessionID, msg.C)
}

func (c *Client) handlePrefs(data json.RawMessage) {
	var msg PrefsMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	d, err := hockey.ParseDifficulty(msg.Difficulty)
	if err != nil {
		c.sendError("unknown difficulty")
		return
	}
	if c.hub.db == nil || c.authPlayerID == 0 {
		c.sendError("not authenticated")
		return
	}
	p := Preferences{Difficulty: d.String(), Mute: msg.Mute}
	if err := c.hub.db.SavePreferences(c.authPlayerID, p); err != nil {
		klog.Errorf("save preferences for %d: %v", c.authPlayerID, err)
		c.sendError("could not save preferences")
		return
	}
	c.SendJSON(Envelope{T: MsgPrefsOK, Data: p})
}

func (c *Client) handleLeave() {
	if c.sessionID == "" {
		return
	}
	c.hub.detach(c)
	c.sessionID = ""
	c.isController = false
}
