package mongostore

import (
	"errors"
	"testing"

	"bloodalert/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestVisibleToFilter(t *testing.T) {
	f := visibleTo("u1")
	or, ok := f["$or"].(bson.A)
	if !ok || len(or) != 2 {
		t.Fatalf("expected two-branch $or, got %#v", f)
	}
	if or[0].(bson.M)["userId"] != "u1" || or[1].(bson.M)["isGlobal"] != true {
		t.Errorf("unexpected branches %#v", or)
	}
	if or[1].(bson.M)["hiddenFor"].(bson.M)["$ne"] != "u1" {
		t.Errorf("expected globals hidden by u1 excluded, got %#v", or[1])
	}
	// each call returns a fresh map so callers can extend it
	f["read"] = false
	if _, leaked := visibleTo("u1")["read"]; leaked {
		t.Error("filter map shared between calls")
	}
}

func TestNewIDAndNotFound(t *testing.T) {
	if newID("keep") != "keep" {
		t.Error("expected existing id preserved")
	}
	if id := newID(""); len(id) != 24 {
		t.Errorf("expected 24-char object id hex, got %q", id)
	}
	if !errors.Is(notFound(mongo.ErrNoDocuments), repository.ErrNotFound) {
		t.Error("expected ErrNoDocuments to map to ErrNotFound")
	}
	other := errors.New("boom")
	if notFound(other) != other {
		t.Error("expected other errors passed through")
	}
}
