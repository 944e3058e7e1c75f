// Package realtime subscribes to the admin push channel and keeps an in-memory
// feed of incoming donation offers and blood request alerts.
package realtime

import (
	"context"
	"strings"
	"sync"

	"bloodalert/config"
	"bloodalert/internal/models"
)

// Handler receives one named frame.
type Handler func(models.Frame)

// EventSource is a push channel subscription.
type EventSource interface {
	Connect(ctx context.Context) error
	On(event string, h Handler)
	Close() error
}

// NewSource picks the socket source when mode is "socket", the null source otherwise.
func NewSource(cfg *config.RealtimeConfig, token string) EventSource {
	if strings.EqualFold(cfg.Mode, "socket") && cfg.URL != "" {
		return NewSocketSource(cfg.URL, token, cfg.ReconnectMin, cfg.ReconnectMax)
	}
	return NullSource{}
}

// NullSource never connects and never emits.
type NullSource struct{}

func (NullSource) Connect(context.Context) error { return nil }
func (NullSource) On(string, Handler)            {}
func (NullSource) Close() error                  { return nil }

type handlers struct {
	mu sync.RWMutex
	m  map[string][]Handler
}

func (h *handlers) add(event string, fn Handler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.m == nil {
		h.m = make(map[string][]Handler)
	}
	h.m[event] = append(h.m[event], fn)
}

func (h *handlers) dispatch(f models.Frame) {
	h.mu.RLock()
	list := append([]Handler(nil), h.m[f.Event]...)
	h.mu.RUnlock()
	for _, fn := range list {
		fn(f)
	}
}
