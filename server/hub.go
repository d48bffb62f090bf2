package main

import (
	"sync"

	"airhockey/sfx"

	"k8s.io/klog/v2"
)

const (
	maxConnsPerIP = 5
	maxTotalConns = 1000
)

// Hub manages all connected clients and routes them to sessions
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	sessions   *SessionManager
	// Connection limiting (mutex-protected, accessed from HTTP handlers)
	connMu     sync.Mutex
	ipConns    map[string]int
	totalConns int
	// Preferences & guest tokens; db may be nil
	db   *DB
	auth *Auth
	// Encoded effect files by name
	sounds map[string][]byte
}

// NewHub creates a new Hub. db may be nil, in which case guests are not
// persisted and preferences are not stored.
func NewHub(db *DB, jwtSecret string) *Hub {
	h := &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		sessions:   NewSessionManager(),
		ipConns:    make(map[string]int),
		db:         db,
		auth:       NewAuth(db, jwtSecret),
		sounds:     make(map[string][]byte),
	}
	for name, tone := range map[string]sfx.Tone{"hit": sfx.Hit, "goal": sfx.Goal} {
		data, err := sfx.WAV(tone)
		if err != nil {
			klog.Errorf("encode %s effect: %v", name, err)
			continue
		}
		h.sounds[name] = data
	}
	return h
}

func (h *Hub) CanAccept(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.totalConns >= maxTotalConns {
		return false
	}
	if h.ipConns[ip] >= maxConnsPerIP {
		return false
	}
	return true
}

func (h *Hub) TrackConnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]++
	h.totalConns++
}

func (h *Hub) TrackDisconnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]--
	if h.ipConns[ip] <= 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
}

// Run processes register/unregister events
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

// removeClient detaches c from its session before closing its send queue,
// so no game tick can write to a closed channel
func (h *Hub) removeClient(c *Client) {
	h.detach(c)
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// detach removes a client from its session. An owner takes the match down
// with it; a controller only lets go of the pointer.
func (h *Hub) detach(c *Client) {
	if c.sessionID == "" {
		return
	}
	if c.isController {
		if sess := h.sessions.GetSession(c.sessionID); sess != nil {
			sess.Game.RemoveController(c)
		}
	} else {
		if sess := h.sessions.GetSession(c.sessionID); sess != nil {
			sess.Game.SetOwner(nil)
		}
		h.sessions.RemoveSession(c.sessionID)
		klog.V(1).Infof("session %s closed", c.sessionID)
	}
}

// Sound returns an encoded effect file by name
func (h *Hub) Sound(name string) ([]byte, bool) {
	data, ok := h.sounds[name]
	return data, ok
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TotalConns returns the tracked connection count
func (h *Hub) TotalConns() int {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return h.totalConns
}
