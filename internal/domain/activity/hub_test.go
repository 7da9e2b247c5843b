package activity

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/fotolume/fotolume-api/internal/pkg/token"
)

func dialFeed(t *testing.T, srv *httptest.Server, accessToken string) (*websocket.Conn, *http.Response) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/admin?token=" + accessToken
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil && resp == nil {
		t.Fatalf("dial: %v", err)
	}
	return conn, resp
}

func TestFeedRejectsBadToken(t *testing.T) {
	hub := NewHub(nil)
	tokens := token.NewService("test-secret", 15*time.Minute, time.Hour, 24*time.Hour)
	handler := NewHandler(hub, tokens, []string{"*"})

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/admin", handler.Serve)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	conn, resp := dialFeed(t, srv, "not-a-token")
	if conn != nil {
		conn.Close()
		t.Fatal("expected upgrade to be refused")
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestFeedBroadcastsEvents(t *testing.T) {
	hub := NewHub(nil)
	tokens := token.NewService("test-secret", 15*time.Minute, time.Hour, 24*time.Hour)
	handler := NewHandler(hub, tokens, []string{"*"})

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/admin", handler.Serve)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	accessToken, err := tokens.GenerateAdminAccess(uuid.New(), "admin")
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	conn, _ := dialFeed(t, srv, accessToken)
	defer conn.Close()

	// Wait for the connection to land in the hub.
	deadline := time.Now().Add(2 * time.Second)
	for hub.ConnectionCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("connection never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	galleryID := uuid.New()
	hub.NotifyAccess(galleryID, "wedding-smith-2024", "203.0.113.7")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if event.Type != EventGalleryAccess || event.GalleryID != galleryID || event.Slug != "wedding-smith-2024" {
		t.Fatalf("unexpected event: %+v", event)
	}
	if event.OccurredAt.IsZero() {
		t.Fatal("event should be timestamped")
	}
}
