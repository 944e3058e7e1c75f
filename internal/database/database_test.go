package database

import (
	"context"
	"testing"

	"bloodalert/config"
	"bloodalert/internal/repository/memory"
)

func TestOpen_MemoryBackend(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{Backend: "memory"}}
	store, err := Open(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := store.(*memory.Store); !ok {
		t.Errorf("expected memory store, got %T", store)
	}
}

func TestOpen_RejectsMisconfiguredBackends(t *testing.T) {
	for _, backend := range []string{"firestore", "cassandra"} {
		cfg := &config.Config{Database: config.DatabaseConfig{Backend: backend}}
		if _, err := Open(context.Background(), cfg, nil); err == nil {
			t.Errorf("backend %q: expected error", backend)
		}
	}
}

func TestNewFirebaseApp_Unconfigured(t *testing.T) {
	app, err := NewFirebaseApp(context.Background(), &config.FirebaseConfig{})
	if err != nil || app != nil {
		t.Errorf("expected nil app and nil error, got %v, %v", app, err)
	}
}
