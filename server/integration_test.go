package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// ---------- helpers ----------

// msgState tags decoded binary frames in readEnvelope
const msgState = "state"

var uuidRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// startTestServer spins up an httptest.Server with a Hub backed by a
// temporary database and returns the server, hub and WebSocket URL.
func startTestServer(t *testing.T) (*httptest.Server, *Hub, string) {
	t.Helper()

	// Create a temp client dir with a minimal index.html
	tmpDir := t.TempDir()
	jsDir := filepath.Join(tmpDir, "js")
	os.MkdirAll(jsDir, 0o755)
	os.WriteFile(filepath.Join(tmpDir, "index.html"), []byte("<html>test</html>"), 0o644)
	os.WriteFile(filepath.Join(jsDir, "main.js"), []byte("// test"), 0o644)

	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	hub := NewHub(db, "")
	go hub.Run()

	mux := SetupRoutes(hub, tmpDir, "https://play.example")
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		db.Close()
	})

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	return srv, hub, wsURL
}

// dialWS opens a WebSocket connection to the test server.
func dialWS(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial WS: %v", err)
	}
	return conn
}

// readEnvelope reads one message from the WebSocket.
func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	msgType, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read WS: %v", err)
	}
	// Binary messages are msgpack-encoded StateFrames
	if msgType == websocket.BinaryMessage {
		var sf StateFrame
		if err := msgpack.Unmarshal(raw, &sf); err != nil {
			t.Fatalf("msgpack unmarshal: %v", err)
		}
		return Envelope{T: msgState, Data: sf}
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return env
}

// readUntil skips messages until one of type msgType arrives. match, when
// non-nil, must also accept it.
func readUntil(t *testing.T, conn *websocket.Conn, msgType string, match func(Envelope) bool) Envelope {
	t.Helper()
	for i := 0; i < 500; i++ {
		env := readEnvelope(t, conn)
		if env.T == msgType && (match == nil || match(env)) {
			return env
		}
	}
	t.Fatalf("no %s message arrived", msgType)
	return Envelope{}
}

// sendMsg sends a typed message over the WebSocket.
func sendMsg(t *testing.T, conn *websocket.Conn, msgType string, data interface{}) {
	t.Helper()
	env := Envelope{T: msgType, Data: data}
	raw, _ := json.Marshal(env)
	if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		t.Fatalf("write WS: %v", err)
	}
}

// dataMap extracts the Data field as map[string]interface{}.
func dataMap(t *testing.T, env Envelope) map[string]interface{} {
	t.Helper()
	raw, _ := json.Marshal(env.Data)
	var m map[string]interface{}
	json.Unmarshal(raw, &m)
	return m
}

func eventKind(kind string) func(Envelope) bool {
	return func(env Envelope) bool {
		m, _ := env.Data.(map[string]interface{})
		return m["kind"] == kind
	}
}

// createMatch starts a match and returns the created payload and the welcome
func createMatch(t *testing.T, conn *websocket.Conn, name, difficulty string) (map[string]interface{}, map[string]interface{}) {
	t.Helper()
	sendMsg(t, conn, MsgCreate, CreateMsg{Name: name, Difficulty: difficulty})
	created := readUntil(t, conn, MsgCreated, nil)
	welcome := readUntil(t, conn, MsgWelcome, nil)
	return dataMap(t, created), dataMap(t, welcome)
}

// ---------- UUID generation ----------

func TestGenerateUUIDFormat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := GenerateUUID()
		if !uuidRegex.MatchString(id) {
			t.Errorf("GenerateUUID() = %q, does not match UUID v4 format", id)
		}
		if seen[id] {
			t.Fatalf("duplicate UUID generated: %s", id)
		}
		seen[id] = true
	}
}

// ---------- HTTP routes ----------

func TestSPARouting(t *testing.T) {
	srv, _, _ := startTestServer(t)

	for _, path := range []string{"/", "/" + GenerateUUID()} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != 200 {
			t.Errorf("GET %s status = %d, want 200", path, resp.StatusCode)
		}
		if !strings.Contains(string(body), "<html>") {
			t.Errorf("GET %s should serve index.html, got %q", path, body)
		}
		if cc := resp.Header.Get("Cache-Control"); cc != "no-cache" {
			t.Errorf("expected Cache-Control: no-cache, got %q", cc)
		}
	}

	resp, err := http.Get(srv.URL + "/js/main.js")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Errorf("GET /js/main.js status = %d, want 200", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/not-a-uuid")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != 404 {
		t.Errorf("GET /not-a-uuid status = %d, want 404", resp.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	srv, _, _ := startTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != 200 || string(body) != "ok" {
		t.Errorf("expected 200 ok, got %d %q", resp.StatusCode, body)
	}
}

func TestSFXEndpoints(t *testing.T) {
	srv, _, _ := startTestServer(t)

	for _, name := range []string{"hit", "goal"} {
		resp, err := http.Get(srv.URL + "/sfx/" + name + ".wav")
		if err != nil {
			t.Fatal(err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != 200 {
			t.Fatalf("GET %s.wav status = %d", name, resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "audio/wav" {
			t.Errorf("expected audio/wav, got %q", ct)
		}
		if !bytes.HasPrefix(body, []byte("RIFF")) {
			t.Errorf("%s.wav is not a RIFF file", name)
		}
	}

	for _, path := range []string{"/sfx/boom.wav", "/sfx/hit"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != 404 {
			t.Errorf("GET %s status = %d, want 404", path, resp.StatusCode)
		}
	}
}

func TestQRCode(t *testing.T) {
	srv, _, wsURL := startTestServer(t)
	c := dialWS(t, wsURL)
	defer c.Close()
	created, _ := createMatch(t, c, "Scanner", "")
	sid := created["sid"].(string)

	resp, err := http.Get(srv.URL + "/qr/" + sid)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != 200 || resp.Header.Get("Content-Type") != "image/png" {
		t.Fatalf("expected png, got %d %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if !bytes.HasPrefix(body, []byte("\x89PNG")) {
		t.Error("body is not a PNG")
	}

	resp, err = http.Get(srv.URL + "/qr/" + GenerateUUID())
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != 404 {
		t.Errorf("unknown session should 404, got %d", resp.StatusCode)
	}
}

func TestControllerURL(t *testing.T) {
	r := httptest.NewRequest("GET", "http://table.local:8080/qr/abc", nil)
	if got := controllerURL("https://play.example/", r, "abc"); got != "https://play.example/abc?control=1" {
		t.Errorf("got %q", got)
	}
	if got := controllerURL("", r, "abc"); got != "http://table.local:8080/abc?control=1" {
		t.Errorf("got %q", got)
	}
}

// ---------- Match flow over WS ----------

func TestCreateMatch(t *testing.T) {
	_, hub, wsURL := startTestServer(t)
	c := dialWS(t, wsURL)
	defer c.Close()

	created, welcome := createMatch(t, c, "Tester", "hard")
	sid, _ := created["sid"].(string)
	if !uuidRegex.MatchString(sid) {
		t.Errorf("session ID %q is not a valid UUID v4", sid)
	}
	if tok, _ := created["token"].(string); tok == "" {
		t.Error("expected a guest token")
	}
	if created["name"] != "Tester" {
		t.Errorf("expected name Tester, got %v", created["name"])
	}
	if welcome["difficulty"] != "hard" {
		t.Errorf("expected hard, got %v", welcome["difficulty"])
	}
	geom, _ := welcome["geometry"].(map[string]interface{})
	if geom["playWidth"] != 720.0 || geom["midY"] != 800.0 {
		t.Errorf("unexpected geometry %v", geom)
	}
	if hub.sessions.Count() != 1 {
		t.Errorf("expected 1 session, got %d", hub.sessions.Count())
	}
	sess := hub.sessions.GetSession(sid)
	if sess == nil || sess.Game.Config().OpponentSpeed != 680 {
		t.Error("session should run with the hard preset")
	}
}

func TestCreateUnknownDifficulty(t *testing.T) {
	_, _, wsURL := startTestServer(t)
	c := dialWS(t, wsURL)
	defer c.Close()

	sendMsg(t, c, MsgCreate, CreateMsg{Name: "X", Difficulty: "insane"})
	env := readEnvelope(t, c)
	if env.T != MsgError {
		t.Fatalf("expected error, got %s", env.T)
	}
}

func TestDefaultGuestName(t *testing.T) {
	_, _, wsURL := startTestServer(t)
	c := dialWS(t, wsURL)
	defer c.Close()

	created, _ := createMatch(t, c, "   ", "")
	if name, _ := created["name"].(string); !strings.HasPrefix(name, "Guest_") {
		t.Errorf("expected a generated guest name, got %q", name)
	}
}

func TestOpeningEventsAndFrames(t *testing.T) {
	_, _, wsURL := startTestServer(t)
	c := dialWS(t, wsURL)
	defer c.Close()
	createMatch(t, c, "Watcher", "")

	tick := readUntil(t, c, MsgEvent, eventKind("countdown-tick"))
	if n := dataMap(t, tick)["count"]; n != 3.0 {
		t.Errorf("expected opening count 3, got %v", n)
	}

	frame := readUntil(t, c, msgState, nil).Data.(StateFrame)
	if frame.Phase != 0 {
		t.Errorf("expected countdown phase, got %d", frame.Phase)
	}
	if frame.Score != [2]int{0, 0} {
		t.Errorf("expected 0:0, got %v", frame.Score)
	}
	if frame.Puck.Pos.X != 400 || frame.Puck.Pos.Y != 800 {
		t.Errorf("puck should wait at center, got %+v", frame.Puck.Pos)
	}
	if frame.Tick == 0 {
		t.Error("frame should carry the tick")
	}
}

func TestPauseCommand(t *testing.T) {
	_, _, wsURL := startTestServer(t)
	c := dialWS(t, wsURL)
	defer c.Close()
	createMatch(t, c, "Pauser", "")

	sendMsg(t, c, MsgCmd, CmdMsg{C: CmdPause})
	readUntil(t, c, MsgEvent, eventKind("paused"))
	frame := readUntil(t, c, msgState, func(env Envelope) bool {
		return env.Data.(StateFrame).Phase == 2
	}).Data.(StateFrame)
	if frame.Countdown < 1 || frame.Countdown > 3 {
		t.Errorf("paused frame should keep the countdown, got %d", frame.Countdown)
	}

	sendMsg(t, c, MsgCmd, CmdMsg{C: "explode"})
	env := readUntil(t, c, MsgError, nil)
	if msg, _ := dataMap(t, env)["msg"].(string); !strings.Contains(msg, "unknown command") {
		t.Errorf("unexpected error %q", msg)
	}

	sendMsg(t, c, MsgCmd, CmdMsg{C: CmdToggle})
	readUntil(t, c, MsgEvent, eventKind("resumed"))
}

func TestQuitCommand(t *testing.T) {
	_, _, wsURL := startTestServer(t)
	c := dialWS(t, wsURL)
	defer c.Close()
	createMatch(t, c, "Quitter", "")

	sendMsg(t, c, MsgCmd, CmdMsg{C: CmdQuit})
	frame := readUntil(t, c, msgState, func(env Envelope) bool {
		return env.Data.(StateFrame).Quit
	}).Data.(StateFrame)
	if frame.Phase != 3 {
		t.Errorf("expected ended phase, got %d", frame.Phase)
	}

	sendMsg(t, c, MsgCmd, CmdMsg{C: CmdPause})
	env := readUntil(t, c, MsgError, nil)
	if msg, _ := dataMap(t, env)["msg"].(string); !strings.Contains(msg, "ended") {
		t.Errorf("unexpected error %q", msg)
	}
}

func TestInputBeforeCreate(t *testing.T) {
	_, _, wsURL := startTestServer(t)
	c := dialWS(t, wsURL)
	defer c.Close()

	// Input and commands without a match are ignored
	sendMsg(t, c, MsgInput, InputMsg{X: 100, Y: 100})
	c.WriteMessage(websocket.BinaryMessage, []byte{0x01, 0x01, 0x90, 0x05, 0xdc})
	sendMsg(t, c, MsgCmd, CmdMsg{C: CmdPause})
	sendMsg(t, c, MsgLeave, nil)

	// Connection should still work
	createMatch(t, c, "Late", "")
}

// ---------- Phone controller ----------

func TestControllerAttach(t *testing.T) {
	_, hub, wsURL := startTestServer(t)
	owner := dialWS(t, wsURL)
	defer owner.Close()
	created, _ := createMatch(t, owner, "Owner", "")
	sid := created["sid"].(string)

	phone := dialWS(t, wsURL)
	sendMsg(t, phone, MsgControl, ControlMsg{SID: sid})
	ok := readUntil(t, phone, MsgControlOK, nil)
	if dataMap(t, ok)["sid"] != sid {
		t.Errorf("unexpected control_ok %v", ok.Data)
	}
	readUntil(t, owner, MsgCtrlOn, nil)

	// Controller pointer reaches the game
	phone.WriteMessage(websocket.BinaryMessage, []byte{0x01, 0x01, 0x90, 0x05, 0xdc})
	sess := hub.sessions.GetSession(sid)
	deadline := time.Now().Add(2 * time.Second)
	for {
		sess.Game.mu.Lock()
		p := sess.Game.pointer
		sess.Game.mu.Unlock()
		if p.X == 400 && p.Y == 1500 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("pointer never arrived, at %+v", p)
		}
		time.Sleep(10 * time.Millisecond)
	}

	phone.Close()
	readUntil(t, owner, MsgCtrlOff, nil)
	if hub.sessions.GetSession(sid) == nil {
		t.Error("controller leaving must not end the session")
	}
}

func TestControlUnknownSession(t *testing.T) {
	_, _, wsURL := startTestServer(t)
	c := dialWS(t, wsURL)
	defer c.Close()

	sendMsg(t, c, MsgControl, ControlMsg{SID: GenerateUUID()})
	env := readEnvelope(t, c)
	if env.T != MsgError {
		t.Fatalf("expected error, got %s", env.T)
	}
}

// ---------- Guests & preferences ----------

func TestGuestPreferencesPersist(t *testing.T) {
	_, _, wsURL := startTestServer(t)

	c1 := dialWS(t, wsURL)
	created, _ := createMatch(t, c1, "Keeper", "")
	token := created["token"].(string)

	sendMsg(t, c1, MsgPrefs, PrefsMsg{Difficulty: "hard", Mute: true})
	saved := readUntil(t, c1, MsgPrefsOK, nil)
	if dataMap(t, saved)["difficulty"] != "hard" {
		t.Errorf("unexpected prefs_ok %v", saved.Data)
	}
	c1.Close()

	c2 := dialWS(t, wsURL)
	defer c2.Close()
	sendMsg(t, c2, MsgAuth, AuthMsg{Token: token})
	auth := dataMap(t, readUntil(t, c2, MsgAuthOK, nil))
	if auth["name"] != "Keeper" || auth["difficulty"] != "hard" || auth["mute"] != true {
		t.Errorf("unexpected auth_ok %v", auth)
	}

	created2, welcome := createMatch(t, c2, "Ignored", "")
	if welcome["difficulty"] != "hard" || welcome["mute"] != true {
		t.Errorf("stored preferences not applied: %v", welcome)
	}
	if created2["name"] != "Keeper" {
		t.Errorf("resumed guest should keep its name, got %v", created2["name"])
	}
	if tok, _ := created2["token"].(string); tok != "" {
		t.Error("resumed guest should not get a new token")
	}
}

func TestPrefsRequireAuth(t *testing.T) {
	_, _, wsURL := startTestServer(t)
	c := dialWS(t, wsURL)
	defer c.Close()

	sendMsg(t, c, MsgPrefs, PrefsMsg{Difficulty: "easy"})
	env := readEnvelope(t, c)
	if env.T != MsgError {
		t.Fatalf("expected error, got %s", env.T)
	}
}

func TestInvalidToken(t *testing.T) {
	_, _, wsURL := startTestServer(t)
	c := dialWS(t, wsURL)
	defer c.Close()

	sendMsg(t, c, MsgAuth, AuthMsg{Token: "not.a.token"})
	env := readEnvelope(t, c)
	if env.T != MsgError {
		t.Fatalf("expected error, got %s", env.T)
	}
}

// ---------- Cleanup ----------

func TestDisconnectCleansUpSession(t *testing.T) {
	_, hub, wsURL := startTestServer(t)

	c := dialWS(t, wsURL)
	createMatch(t, c, "Temp", "")
	c.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.sessions.Count() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("session should be cleaned up after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
	deadline = time.Now().Add(2 * time.Second)
	for hub.TotalConns() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expected 0 tracked connections, got %d", hub.TotalConns())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestLeaveEndsSession(t *testing.T) {
	_, hub, wsURL := startTestServer(t)
	c := dialWS(t, wsURL)
	defer c.Close()
	createMatch(t, c, "Leaver", "")

	sendMsg(t, c, MsgLeave, nil)
	deadline := time.Now().Add(2 * time.Second)
	for hub.sessions.Count() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("leave should end the session")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
