package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bloodalert/internal/repository"
	"bloodalert/internal/service"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
	RegisterValidators()
}

func TestFailStatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("load: %w", repository.ErrNotFound), http.StatusNotFound},
		{service.ErrInvalidCreds, http.StatusUnauthorized},
		{service.ErrEmailExists, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		fail(c, "op", tt.err)
		if w.Code != tt.want {
			t.Errorf("fail(%v) = %d, want %d", tt.err, w.Code, tt.want)
		}
	}
}

func TestBindMalformedBody(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
	c.Request.Header.Set("Content-Type", "application/json")
	var req LoginRequest
	if bind(c, &req) {
		t.Fatal("expected bind to fail")
	}
	if w.Code != http.StatusUnprocessableEntity || !strings.Contains(w.Body.String(), "invalid request body") {
		t.Errorf("unexpected response %d %s", w.Code, w.Body.String())
	}
}

func TestBindBloodGroupCaseInsensitive(t *testing.T) {
	for body, ok := range map[string]bool{
		`{"bloodGroup":"ab+"}`: true,
		`{"bloodGroup":"C+"}`:  false,
	} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		var req CreateDonationRequest
		if got := bind(c, &req); got != ok {
			t.Errorf("bind(%s) = %v, want %v (%s)", body, got, ok, w.Body.String())
		}
	}
}

func TestRegisterValidatorsRepeated(t *testing.T) {
	RegisterValidators()
	RegisterValidators()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"bloodGroup":"Q-"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	var req CreateDonationRequest
	if bind(c, &req) {
		t.Fatal("expected bloodgroup validation to still reject Q-")
	}
	if !strings.Contains(w.Body.String(), `"field":"bloodGroup"`) {
		t.Errorf("expected the JSON field name in the error, got %s", w.Body.String())
	}
}

func TestIsImage(t *testing.T) {
	for name, want := range map[string]bool{"a.JPG": true, "b.png": true, "c.webp": true, "d.gif": false, "e": false} {
		if got := isImage(name); got != want {
			t.Errorf("isImage(%q) = %v, want %v", name, got, want)
		}
	}
}
