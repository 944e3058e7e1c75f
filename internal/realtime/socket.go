package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"bloodalert/internal/domain"
	"bloodalert/internal/models"

	"github.com/gorilla/websocket"
)

var ErrSourceClosed = errors.New("event source closed")

// SocketSource is a WebSocket client for the push channel. It joins the admin
// room after every successful dial and redials with capped exponential backoff.
type SocketSource struct {
	url      string
	token    string
	minDelay time.Duration
	maxDelay time.Duration
	dialer   *websocket.Dialer

	handlers handlers

	mu      sync.Mutex
	conn    *websocket.Conn
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
	closed  bool
}

var _ EventSource = (*SocketSource)(nil)

func NewSocketSource(rawURL, token string, minDelay, maxDelay time.Duration) *SocketSource {
	if minDelay <= 0 {
		minDelay = time.Second
	}
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &SocketSource{
		url:      rawURL,
		token:    token,
		minDelay: minDelay,
		maxDelay: maxDelay,
		dialer:   &websocket.Dialer{HandshakeTimeout: 10 * time.Second, Proxy: http.ProxyFromEnvironment},
	}
}

func (s *SocketSource) On(event string, h Handler) { s.handlers.add(event, h) }

// Connect starts the connection loop and returns immediately. Connection
// state is reported through the connect and disconnect events.
func (s *SocketSource) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSourceClosed
	}
	if s.started {
		return nil
	}
	s.started = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.run(ctx)
	return nil
}

// Close stops the loop and waits for it to exit.
func (s *SocketSource) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	cancel, done, conn := s.cancel, s.done, s.conn
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		conn.Close()
	}
	if done != nil {
		<-done
	}
	return nil
}

func (s *SocketSource) run(ctx context.Context) {
	defer close(s.done)
	delay := s.minDelay
	for {
		conn, err := s.dial(ctx)
		if err == nil {
			delay = s.minDelay
			s.serve(ctx, conn)
		} else if ctx.Err() == nil {
			log.Printf("[FEED] dial %s: %v (retry in %s)", s.url, err, delay)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay *= 2
		if delay > s.maxDelay {
			delay = s.maxDelay
		}
	}
}

func (s *SocketSource) dial(ctx context.Context) (*websocket.Conn, error) {
	u, err := url.Parse(s.url)
	if err != nil {
		return nil, err
	}
	header := http.Header{}
	if s.token != "" {
		q := u.Query()
		q.Set("token", s.token)
		u.RawQuery = q.Encode()
		header.Set("Authorization", "Bearer "+s.token)
	}
	conn, _, err := s.dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		return nil, ErrSourceClosed
	}
	s.conn = conn
	s.mu.Unlock()
	return conn, nil
}

// serve runs one connection until it drops.
func (s *SocketSource) serve(ctx context.Context, conn *websocket.Conn) {
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	s.handlers.dispatch(models.Frame{Event: domain.ChannelConnect, Timestamp: time.Now()})
	if err := conn.WriteJSON(models.Frame{Event: domain.ChannelJoinAdmin, Timestamp: time.Now()}); err != nil {
		log.Printf("[FEED] join-admin: %v", err)
	}
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[FEED] read: %v", err)
			}
			break
		}
		var f models.Frame
		if json.Unmarshal(data, &f) != nil || f.Event == "" {
			continue
		}
		s.handlers.dispatch(f)
	}

	s.mu.Lock()
	s.conn = nil
	s.mu.Unlock()
	conn.Close()
	s.handlers.dispatch(models.Frame{Event: domain.ChannelDisconnect, Timestamp: time.Now()})
}
