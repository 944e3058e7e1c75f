package realtime

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"bloodalert/internal/domain"
	"bloodalert/internal/formatter"
	"bloodalert/internal/inbox"
	"bloodalert/internal/models"

	"github.com/google/uuid"
)

// Toast levels
const (
	ToastInfo    = "info"
	ToastSuccess = "success"
	ToastWarning = "warning"
	ToastError   = "error"
)

// Toaster surfaces transient messages to whoever is watching the feed.
type Toaster interface {
	Toast(level, title, message string)
}

// LogToaster writes toasts to the standard logger.
type LogToaster struct{}

func (LogToaster) Toast(level, title, message string) {
	log.Printf("[FEED] %s: %s - %s", level, title, message)
}

// Feed is the live list of push channel events for one admin session.
type Feed struct {
	src   EventSource
	toast Toaster
	now   func() time.Time

	mu        sync.RWMutex
	connected bool
	events    inbox.List[models.RealtimeEvent]
	subscribe sync.Once
}

func NewFeed(src EventSource, toast Toaster) *Feed {
	if src == nil {
		src = NullSource{}
	}
	if toast == nil {
		toast = LogToaster{}
	}
	return &Feed{src: src, toast: toast, now: time.Now}
}

// Start subscribes to the channel events and connects the source. Handlers
// are registered on the first call only.
func (f *Feed) Start(ctx context.Context) error {
	f.subscribe.Do(func() {
		f.src.On(domain.ChannelConnect, func(models.Frame) {
			f.setConnected(true)
			f.toast.Toast(ToastSuccess, "Connected", "Receiving real-time notifications")
		})
		f.src.On(domain.ChannelDisconnect, func(models.Frame) {
			f.setConnected(false)
			f.toast.Toast(ToastWarning, "Disconnected", "Real-time notifications are unavailable")
		})
		f.src.On(domain.ChannelNewDonationRequest, f.ingest)
		f.src.On(domain.ChannelUrgentBloodRequest, f.ingest)
	})
	return f.src.Connect(ctx)
}

func (f *Feed) setConnected(v bool) {
	f.mu.Lock()
	f.connected = v
	f.mu.Unlock()
}

func (f *Feed) Connected() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.connected
}

func (f *Feed) ingest(frame models.Frame) {
	ev := Normalize(frame, f.now())
	f.events.Prepend(inbox.Entry[models.RealtimeEvent]{Key: ev.ID, Value: ev})

	d := formatter.FormatEvent(ev, f.now())
	switch ev.Type {
	case domain.EventDonationRequest:
		f.toast.Toast(ToastInfo, "New Donation Offer", fmt.Sprintf("%s (%s) offered to donate", d.Name, d.BloodType))
	default:
		level := ToastWarning
		if d.Emphasized {
			level = ToastError
		}
		f.toast.Toast(level, "Urgent Blood Request", fmt.Sprintf("%s units of %s needed at %s", d.UnitsNeeded, d.BloodType, d.Hospital))
	}
}

// Normalize turns a wire frame into a feed event. The id comes from the
// payload's _id, or is generated when the payload has none.
func Normalize(frame models.Frame, now time.Time) models.RealtimeEvent {
	payload := models.DecodePayload(frame.Data)
	id := payload.PayloadID()
	if id == "" {
		id = uuid.NewString()
	}
	typ := payload.EventType()
	if typ == "" {
		switch frame.Event {
		case domain.ChannelNewDonationRequest:
			typ = domain.EventDonationRequest
		case domain.ChannelUrgentBloodRequest:
			typ = domain.EventBloodRequest
		}
	}
	ts := frame.Timestamp
	if ts.IsZero() {
		ts = now
	}
	return models.RealtimeEvent{ID: id, Type: typ, Data: payload, Timestamp: ts, Urgency: frame.Urgency}
}

// Events returns a snapshot, newest first.
func (f *Feed) Events() []models.RealtimeEvent {
	entries := f.events.Entries()
	out := make([]models.RealtimeEvent, len(entries))
	for i, e := range entries {
		ev := e.Value
		ev.Read = e.Read
		out[i] = ev
	}
	return out
}

func (f *Feed) MarkAsRead(id string) bool { return f.events.MarkRead(id) }
func (f *Feed) Clear()                    { f.events.Clear() }
func (f *Feed) UnreadCount() int          { return f.events.UnreadCount() }

func (f *Feed) Close() error {
	err := f.src.Close()
	f.setConnected(false)
	return err
}
