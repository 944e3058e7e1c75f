package ws

import (
	"encoding/json"
	"testing"

	"bloodalert/internal/domain"
)

func recv(t *testing.T, c *Client) map[string]any {
	t.Helper()
	select {
	case data := <-c.Send:
		var v map[string]any
		if err := json.Unmarshal(data, &v); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return v
	default:
		t.Fatalf("client %s received nothing", c.UserID)
		return nil
	}
}

func TestHub_RoomBroadcast(t *testing.T) {
	h := NewHub()
	admin := NewClient("a", domain.RoleAdmin)
	donor := NewClient("d", domain.RoleDonor)
	h.Register(admin)
	h.Register(donor)
	h.JoinRoom(admin, domain.RoomAdmin)

	h.BroadcastRoom(domain.RoomAdmin, map[string]string{"event": "x"})
	if got := recv(t, admin); got["event"] != "x" {
		t.Errorf("unexpected message %v", got)
	}
	if len(donor.Send) != 0 {
		t.Error("donor outside room must not receive room broadcast")
	}

	h.BroadcastAll(map[string]string{"event": "all"})
	recv(t, admin)
	recv(t, donor)
}

func TestHub_CloseLeavesRooms(t *testing.T) {
	h := NewHub()
	c := NewClient("a", domain.RoleAdmin)
	h.Register(c)
	h.JoinRoom(c, domain.RoomAdmin)
	if h.RoomSize(domain.RoomAdmin) != 1 || h.ClientCount() != 1 {
		t.Fatal("expected client registered in room")
	}
	c.Close()
	c.Close()
	if h.RoomSize(domain.RoomAdmin) != 0 || h.ClientCount() != 0 {
		t.Error("expected client removed from hub and rooms")
	}
	// sending to a closed client must not panic
	c.trySend([]byte("{}"))
}

func TestHub_JoinRoomRequiresRegistration(t *testing.T) {
	h := NewHub()
	h.JoinRoom(NewClient("ghost", domain.RoleAdmin), domain.RoomAdmin)
	if h.RoomSize(domain.RoomAdmin) != 0 {
		t.Error("unregistered client must not join rooms")
	}
}

func TestHub_BroadcastToUser(t *testing.T) {
	h := NewHub()
	a1, a2 := NewClient("a", domain.RoleDonor), NewClient("a", domain.RoleDonor)
	b := NewClient("b", domain.RoleDonor)
	for _, c := range []*Client{a1, a2, b} {
		h.Register(c)
	}
	h.BroadcastToUser("a", map[string]int{"n": 1})
	recv(t, a1)
	recv(t, a2)
	if len(b.Send) != 0 {
		t.Error("other user must not receive")
	}
}
