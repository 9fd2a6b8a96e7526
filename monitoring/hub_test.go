package monitoring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func TestHubBroadcastsPredictionEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(zap.NewNop())
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	// registration races the publish without a brief wait
	time.Sleep(50 * time.Millisecond)

	hub.PublishPrediction(PredictionEvent{SessionID: "s-1", School: "GP", Grade: 14.5})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		t.Fatalf("invalid envelope: %v", err)
	}
	if msg.Type != PredictionEventType {
		t.Fatalf("expected prediction message, got %q", msg.Type)
	}

	var event PredictionEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		t.Fatalf("invalid event payload: %v", err)
	}
	if event.SessionID != "s-1" || event.Grade != 14.5 {
		t.Fatalf("unexpected event: %+v", event)
	}
}
