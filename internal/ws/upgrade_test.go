package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bloodalert/config"
	"bloodalert/internal/auth"
	"bloodalert/internal/domain"
	"bloodalert/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func newWSServer(t *testing.T) (*httptest.Server, *Hub, *config.JWTConfig) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.JWTConfig{AccessSecret: "ws-test", AccessExpiry: time.Hour}
	hub := NewHub()
	r := gin.New()
	r.GET("/ws/notifications", UpgradeNotificationsWS(cfg, hub))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, hub, cfg
}

func dial(t *testing.T, srv *httptest.Server, token string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/notifications?token=" + token
	return websocket.DefaultDialer.Dial(url, nil)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestUpgrade_AdminJoinsRoomAndReceives(t *testing.T) {
	srv, hub, cfg := newWSServer(t)
	token, _ := auth.GenerateAccessToken(cfg, "admin-1", "a@x", domain.RoleAdmin)
	conn, _, err := dial(t, srv, token)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(models.Frame{Event: domain.ChannelJoinAdmin}); err != nil {
		t.Fatalf("join: %v", err)
	}
	waitFor(t, func() bool { return hub.RoomSize(domain.RoomAdmin) == 1 })

	hub.BroadcastRoom(domain.RoomAdmin, models.Frame{Event: domain.ChannelUrgentBloodRequest, Data: []byte(`{"type":"blood_request","_id":"r1"}`), Urgency: "high"})
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got models.Frame
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Event != domain.ChannelUrgentBloodRequest || got.Urgency != "high" {
		t.Errorf("unexpected frame %+v", got)
	}

	conn.Close()
	waitFor(t, func() bool { return hub.ClientCount() == 0 })
}

func TestUpgrade_DonorCannotJoinAdmin(t *testing.T) {
	srv, hub, cfg := newWSServer(t)
	token, _ := auth.GenerateAccessToken(cfg, "donor-1", "d@x", domain.RoleDonor)
	conn, _, err := dial(t, srv, token)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.WriteJSON(models.Frame{Event: domain.ChannelJoinAdmin})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got models.Frame
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Event != "error" {
		t.Errorf("expected error frame, got %+v", got)
	}
	if hub.RoomSize(domain.RoomAdmin) != 0 {
		t.Error("donor must not be in admin room")
	}
}

func TestUpgrade_RejectsBadToken(t *testing.T) {
	srv, _, _ := newWSServer(t)
	_, resp, err := dial(t, srv, "garbage")
	if err == nil {
		t.Fatal("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %+v", resp)
	}
}
