package mongostore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"bloodalert/internal/models"
	"bloodalert/internal/repository/storetest"

	"go.mongodb.org/mongo-driver/bson"
)

// newLiveStore connects to MONGO_URI and uses a throwaway database.
func newLiveStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db := fmt.Sprintf("bloodalert_test_%d", time.Now().UnixNano())
	s, err := Connect(ctx, uri, db)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.client.Database(db).Drop(ctx)
		_ = s.Close()
	})
	return s
}

func TestLive_Notifications(t *testing.T) {
	storetest.Notifications(t, newLiveStore(t), "")
}

func TestLive_StoredGlobalKeepsReaders(t *testing.T) {
	s := newLiveStore(t)
	ctx := context.Background()
	n := &models.Notification{IsGlobal: true, Title: "drive"}
	if err := s.CreateNotification(ctx, n); err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, u := range []string{"a", "a", "b"} {
		if err := s.MarkNotificationRead(ctx, u, n.ID); err != nil {
			t.Fatalf("mark read %s: %v", u, err)
		}
	}
	var raw models.Notification
	if err := s.notifications.FindOne(ctx, bson.M{"_id": n.ID}).Decode(&raw); err != nil {
		t.Fatalf("find: %v", err)
	}
	if raw.Read {
		t.Error("expected the shared read flag untouched")
	}
	if len(raw.ReadBy) != 2 {
		t.Errorf("expected readers a and b once each, got %v", raw.ReadBy)
	}
}
