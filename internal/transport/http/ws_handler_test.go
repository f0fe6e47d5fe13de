package http

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"learnitquick/internal/app"
	"learnitquick/internal/infra/memory"

	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

func newTestService(t *testing.T) *app.GameService {
	t.Helper()
	return app.NewGameService(memory.NewSessionStore(), memory.NewProfileStore(), quartz.NewMock(t), zerolog.Nop(), app.Options{Seed: 7})
}

func TestWebSocketRoundFlow(t *testing.T) {
	service := newTestService(t)
	wsHandler := NewWSHandler(service, zerolog.Nop())

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?playerId=p1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	profile := readUntil(t, conn, "profile")
	if profile["playerAvatar"] != "🚀" {
		t.Fatalf("expected default avatar, got %+v", profile)
	}

	send(t, conn, map[string]any{
		"type":    "start",
		"payload": map[string]any{"mode": "addition", "difficulty": "easy"},
	})
	question := readUntil(t, conn, "question")
	var a, b int
	prompt, _ := question["prompt"].(string)
	if _, err := fmt.Sscanf(prompt, "%d + %d = ?", &a, &b); err != nil {
		t.Fatalf("parse prompt %q: %v", prompt, err)
	}
	if _, ok := question["correctAnswer"]; ok {
		t.Fatalf("question must not leak the correct answer")
	}

	send(t, conn, map[string]any{
		"type":    "answer",
		"payload": map[string]any{"value": a + b},
	})
	result := readUntil(t, conn, "answerResult")
	if result["correct"] != true || result["coins"] != float64(10) {
		t.Fatalf("expected correct answer worth 10 coins, got %+v", result)
	}

	send(t, conn, map[string]any{"type": "finish"})
	summary := readUntil(t, conn, "summary")
	if summary["correctAnswers"] != float64(1) || summary["totalCoins"] != float64(10) {
		t.Fatalf("unexpected summary %+v", summary)
	}

	send(t, conn, map[string]any{"type": "dance"})
	if msg := readUntil(t, conn, "error"); msg["message"] != "unsupported message type" {
		t.Fatalf("unexpected error payload %+v", msg)
	}
}

func TestWebSocketRejectsAnswerWithoutRound(t *testing.T) {
	service := newTestService(t)
	server := httptest.NewServer(http.HandlerFunc(NewWSHandler(service, zerolog.Nop()).ServeWS))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+server.URL[len("http"):]+"/?playerId=p2", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	send(t, conn, map[string]any{"type": "answer", "payload": map[string]any{"value": 3}})
	if msg := readUntil(t, conn, "error"); msg["message"] != "no question awaiting an answer" {
		t.Fatalf("unexpected error payload %+v", msg)
	}
}

func TestWebSocketRequiresPlayer(t *testing.T) {
	service := newTestService(t)
	rec := httptest.NewRecorder()
	NewWSHandler(service, zerolog.Nop()).ServeWS(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func send(t *testing.T, conn *websocket.Conn, msg map[string]any) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write %v: %v", msg["type"], err)
	}
}

// readUntil skips messages until one of type expect arrives and returns its
// payload.
func readUntil(t *testing.T, conn *websocket.Conn, expect string) map[string]any {
	t.Helper()
	for i := 0; i < 64; i++ {
		var msg struct {
			Type    string         `json:"type"`
			Payload map[string]any `json:"payload"`
		}
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read json waiting for %s: %v", expect, err)
		}
		if msg.Type == expect {
			return msg.Payload
		}
	}
	t.Fatalf("no %s message received", expect)
	return nil
}
