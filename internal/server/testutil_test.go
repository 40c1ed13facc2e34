package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nhooyr.io/websocket"

	"rps/internal/game"
	"rps/internal/notify"
	"rps/internal/service"
	"rps/internal/stats"
	"rps/internal/storage"
)

// --- Test environment ---

type testEnv struct {
	ts       *httptest.Server
	store    *storage.Store
	registry *notify.Registry
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	registry := notify.NewRegistry()
	svc := service.New(store, stats.New(store), registry)
	srv := New(svc, registry)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, store: store, registry: registry}
}

// --- REST API helpers ---

func postJSON(t *testing.T, ts *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func createGameViaAPI(t *testing.T, ts *httptest.Server, nickname string, maxRounds int) string {
	t.Helper()
	body := fmt.Sprintf(`{"nickname":%q,"max_rounds":%d}`, nickname, maxRounds)
	resp := postJSON(t, ts, "/api/game", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	result := decodeBody[createGameResponse](t, resp)
	if result.GameID == "" {
		t.Fatal("expected non-empty game_id")
	}
	return result.GameID
}

func joinViaAPI(t *testing.T, ts *httptest.Server, gameID, nickname string) {
	t.Helper()
	resp := postJSON(t, ts, "/api/game/"+gameID+"/join", fmt.Sprintf(`{"nickname":%q}`, nickname))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("join: expected 200, got %d", resp.StatusCode)
	}
}

func actionViaAPI(t *testing.T, ts *httptest.Server, gameID, nickname, move string) *http.Response {
	t.Helper()
	body := fmt.Sprintf(`{"nickname":%q,"action":%q}`, nickname, move)
	return postJSON(t, ts, "/api/game/"+gameID+"/action", body)
}

func expectError(t *testing.T, resp *http.Response, status int, message string) {
	t.Helper()
	if resp.StatusCode != status {
		t.Fatalf("expected %d, got %d", status, resp.StatusCode)
	}
	body := decodeBody[errorBody](t, resp)
	if body.Code != status {
		t.Fatalf("expected code %d in body, got %d", status, body.Code)
	}
	if message != "" && body.Error != message {
		t.Fatalf("expected error %q, got %q", message, body.Error)
	}
}

func fetchGame(t *testing.T, ts *httptest.Server, gameID string) *game.Game {
	t.Helper()
	resp, err := http.Get(ts.URL + "/api/game/" + gameID)
	if err != nil {
		t.Fatalf("GET game: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	g := decodeBody[*game.Game](t, resp)
	return g
}

// --- WebSocket helpers ---

func wsURL(ts *httptest.Server) string {
	return strings.Replace(ts.URL, "http://", "ws://", 1) + "/ws"
}

func wsDial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, wsURL(ts), nil)
	if err != nil {
		t.Fatalf("ws dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func wsReadSignal(ctx context.Context, t *testing.T, conn *websocket.Conn) notify.Signal {
	t.Helper()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("ws read: %v", err)
	}
	var sig notify.Signal
	if err := json.Unmarshal(data, &sig); err != nil {
		t.Fatalf("unmarshal signal: %v", err)
	}
	return sig
}

func wsRegister(ctx context.Context, t *testing.T, conn *websocket.Conn, nickname string) {
	t.Helper()
	msg, _ := json.Marshal(registerMessage{Action: "add", Nickname: nickname})
	if err := conn.Write(ctx, websocket.MessageText, msg); err != nil {
		t.Fatalf("ws write: %v", err)
	}
}

// wsConnect dials, consumes the connected signal, and registers nickname.
func wsConnect(ctx context.Context, t *testing.T, env *testEnv, nickname string) *websocket.Conn {
	t.Helper()
	conn := wsDial(t, env.ts)
	if sig := wsReadSignal(ctx, t, conn); sig.ID != notify.SignalConnected {
		t.Fatalf("expected connected signal, got %+v", sig)
	}
	wsRegister(ctx, t, conn, nickname)
	waitForRegistration(t, env.registry, nickname)
	return conn
}

// waitForRegistration polls until nickname appears in the registry, since
// registration happens on the server's read loop goroutine.
func waitForRegistration(t *testing.T, registry *notify.Registry, nickname string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := registry.Get(nickname); ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("%s never registered", nickname)
}
