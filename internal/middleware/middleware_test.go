package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bloodalert/config"
	"bloodalert/internal/auth"
	"bloodalert/internal/domain"

	"github.com/gin-gonic/gin"
)

var jwtCfg = &config.JWTConfig{AccessSecret: "mw-test", AccessExpiry: time.Hour}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": GetSession(c).UserID})
	})...)
	return r
}

func do(r http.Handler, header string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	r.ServeHTTP(w, req)
	return w.Code
}

func TestAuthRequired(t *testing.T) {
	r := newRouter(AuthRequired(jwtCfg))
	token, _ := auth.GenerateAccessToken(jwtCfg, "u1", "a@b.c", domain.RoleDonor)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		if got := do(r, tt.header); got != tt.want {
			t.Errorf("%s: got %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestAdminRequired(t *testing.T) {
	r := newRouter(AuthRequired(jwtCfg), AdminRequired())
	donor, _ := auth.GenerateAccessToken(jwtCfg, "u1", "a@b.c", domain.RoleDonor)
	admin, _ := auth.GenerateAccessToken(jwtCfg, "u2", "x@b.c", domain.RoleAdmin)
	if got := do(r, "Bearer "+donor); got != http.StatusForbidden {
		t.Errorf("donor: got %d, want 403", got)
	}
	if got := do(r, "Bearer "+admin); got != http.StatusOK {
		t.Errorf("admin: got %d, want 200", got)
	}
}

func TestRateLimit(t *testing.T) {
	limiter := NewInMemoryRateLimiter(2, time.Minute)
	defer limiter.Stop()
	r := newRouter(AuthRequired(jwtCfg), RateLimit(limiter))
	a, _ := auth.GenerateAccessToken(jwtCfg, "a", "a@x", domain.RoleDonor)
	b, _ := auth.GenerateAccessToken(jwtCfg, "b", "b@x", domain.RoleDonor)

	for i := 0; i < 2; i++ {
		if got := do(r, "Bearer "+a); got != http.StatusOK {
			t.Fatalf("request %d: got %d", i, got)
		}
	}
	if got := do(r, "Bearer "+a); got != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", got)
	}
	if got := do(r, "Bearer "+b); got != http.StatusOK {
		t.Errorf("other user must have its own budget, got %d", got)
	}
}

func TestLimiterWindowExpires(t *testing.T) {
	limiter := NewInMemoryRateLimiter(1, 20*time.Millisecond)
	defer limiter.Stop()
	if !limiter.Allow("k") || limiter.Allow("k") {
		t.Fatal("expected one request allowed per window")
	}
	time.Sleep(30 * time.Millisecond)
	if !limiter.Allow("k") {
		t.Error("expected window to slide")
	}
}
