package main

import (
	"testing"
	"time"

	"airhockey/hockey"
)

// ownerClient registers a client that owns a running match on h
func ownerClient(t *testing.T, h *Hub) (*Client, *Session) {
	t.Helper()
	sess, err := h.sessions.CreateSession("Owner", hockey.DifficultyNormal)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	c := &Client{hub: h, send: make(chan outFrame, sendBufSize), sessionID: sess.ID}
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	sess.Game.SetOwner(c)
	return c, sess
}

// drainSend empties c.send in the background until the hub closes it
func drainSend(c *Client) <-chan struct{} {
	closed := make(chan struct{})
	go func() {
		for range c.send {
		}
		close(closed)
	}()
	return closed
}

func TestRemoveClientWhileGameTicks(t *testing.T) {
	h := NewHub(nil, "")
	c, sess := ownerClient(t, h)
	closed := drainSend(c)

	ran := make(chan struct{})
	go func() {
		sess.Game.Run()
		close(ran)
	}()
	// let the loop broadcast a few frames to the owner
	time.Sleep(5 * TickDuration)

	h.removeClient(c)

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("send queue was not closed")
	}
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("game loop kept running after its owner left")
	}
	if h.sessions.Count() != 0 {
		t.Errorf("expected no sessions, got %d", h.sessions.Count())
	}
	if h.ClientCount() != 0 {
		t.Errorf("expected no clients, got %d", h.ClientCount())
	}

	// a straggling tick has no owner to write to
	sess.Game.update(16)
}

func TestRemoveControllerKeepsSession(t *testing.T) {
	h := NewHub(nil, "")
	owner, sess := ownerClient(t, h)
	drainSend(owner)

	phone := &Client{hub: h, send: make(chan outFrame, 4), sessionID: sess.ID, isController: true}
	h.mu.Lock()
	h.clients[phone] = true
	h.mu.Unlock()
	sess.Game.SetController(phone)

	h.removeClient(phone)
	if sess.Game.HasController() {
		t.Error("controller should be detached")
	}
	if h.sessions.GetSession(sess.ID) == nil {
		t.Error("owner's session should survive the controller leaving")
	}
	h.removeClient(owner)
}

func TestStopAll(t *testing.T) {
	sm := NewSessionManager()
	var done []chan struct{}
	for i := 0; i < 3; i++ {
		sess, err := sm.CreateSession("Guest", hockey.DifficultyEasy)
		if err != nil {
			t.Fatal(err)
		}
		ch := make(chan struct{})
		done = append(done, ch)
		go func() {
			sess.Game.Run()
			close(ch)
		}()
	}

	sm.StopAll()
	if sm.Count() != 0 {
		t.Errorf("expected no sessions, got %d", sm.Count())
	}
	for i, ch := range done {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("game %d still running", i)
		}
	}
}
