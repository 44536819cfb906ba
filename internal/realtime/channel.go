package realtime

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Mushfiqur07/roadeside-sub002/internal/config"
	"github.com/Mushfiqur07/roadeside-sub002/internal/ui"
	"github.com/Mushfiqur07/roadeside-sub002/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	baseBackoff    = time.Second
)

type subscription struct {
	id     string
	types  map[EventType]bool
	events chan Event
}

// Channel is the persistent bidirectional session to the backend's
// event service. It reconnects with jittered exponential backoff and
// fans incoming events out to subscribers.
type Channel struct {
	cfg      *config.RealtimeConfig
	notifier ui.Notifier
	log      *logger.Logger

	mu     sync.RWMutex
	subs   map[string]*subscription
	conn   *websocket.Conn
	send   chan []byte
	cancel context.CancelFunc
	closed bool
}

func NewChannel(cfg *config.RealtimeConfig, notifier ui.Notifier, log *logger.Logger) *Channel {
	return &Channel{
		cfg:      cfg,
		notifier: notifier,
		log:      log.WithField("component", "realtime"),
		subs:     make(map[string]*subscription),
		send:     make(chan []byte, 256),
	}
}

// Connect establishes the session post-auth and keeps it alive until
// the context is cancelled or Close is called.
func (c *Channel) Connect(ctx context.Context, token string) {
	ctx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	c.cancel = cancel
	c.closed = false
	c.mu.Unlock()

	go c.run(ctx, token)
}

func (c *Channel) Close() {
	c.mu.Lock()
	c.closed = true
	cancel := c.cancel
	conn := c.conn
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		conn.Close()
	}
}

// Subscribe registers interest in the given event types (all events
// when none are named) and returns the subscription id and channel.
func (c *Channel) Subscribe(types ...EventType) (string, <-chan Event) {
	sub := &subscription{
		id:     uuid.NewString(),
		events: make(chan Event, 64),
	}
	if len(types) > 0 {
		sub.types = make(map[EventType]bool, len(types))
		for _, t := range types {
			sub.types[t] = true
		}
	}

	c.mu.Lock()
	c.subs[sub.id] = sub
	c.mu.Unlock()

	return sub.id, sub.events
}

func (c *Channel) Unsubscribe(id string) {
	c.mu.Lock()
	sub, ok := c.subs[id]
	if ok {
		delete(c.subs, id)
	}
	c.mu.Unlock()

	if ok {
		close(sub.events)
	}
}

// Send queues an outbound event; dropped when the buffer is full so a
// dead connection cannot block the caller.
func (c *Channel) Send(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		c.log.WithError(err).Warn("Failed to encode outbound event")
		return
	}
	select {
	case c.send <- payload:
	default:
		c.log.Warn("Outbound event dropped, send buffer full")
	}
}

func (c *Channel) run(ctx context.Context, token string) {
	attempt := 0
	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := c.dial(ctx, token)
		if err != nil {
			attempt++
			if attempt == c.cfg.ReconnectAttempts {
				c.notifier.Banner("Realtime connection lost; updates are paused")
			}
			wait := backoffWithJitter(attempt, c.cfg.MaxBackoff)
			c.log.WithError(err).WithFields(map[string]interface{}{
				"attempt": attempt,
				"backoff": wait.String(),
			}).Debug("Realtime dial failed")

			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
			continue
		}

		if attempt > 0 {
			c.notifier.ClearBanner()
			// Missed events are reconciled by subscribers re-fetching.
			c.fanout(Event{Type: EventReconnected})
		}
		attempt = 0

		c.mu.Lock()
		c.conn = conn
		c.mu.Unlock()

		done := make(chan struct{})
		go c.writePump(ctx, conn, done)
		c.readPump(conn)
		close(done)

		conn.Close()
		c.mu.Lock()
		closed := c.closed
		c.conn = nil
		c.mu.Unlock()
		if closed {
			return
		}
		attempt = 1
	}
}

func (c *Channel) dial(ctx context.Context, token string) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: c.cfg.HandshakeTimeout}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, header)
	if err != nil {
		return nil, err
	}
	c.log.Info("Realtime channel connected")
	return conn, nil
}

func (c *Channel) readPump(conn *websocket.Conn) {
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.WithError(err).Warn("Realtime read error")
			}
			return
		}

		var event Event
		if err := json.Unmarshal(message, &event); err != nil {
			c.log.WithError(err).Debug("Dropping malformed realtime event")
			continue
		}
		c.fanout(event)
	}
}

func (c *Channel) writePump(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message := <-c.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-ctx.Done():
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *Channel) fanout(event Event) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, sub := range c.subs {
		if sub.types != nil && !sub.types[event.Type] && event.Type != EventReconnected {
			continue
		}
		select {
		case sub.events <- event:
		default:
			c.log.WithField("subscription", sub.id).Warn("Subscriber lagging, event dropped")
		}
	}
}

// backoffWithJitter doubles the base per attempt and adds up to 50%
// jitter, capped at max (30s by default).
func backoffWithJitter(attempt int, max time.Duration) time.Duration {
	backoff := baseBackoff
	for i := 1; i < attempt && backoff < max; i++ {
		backoff *= 2
	}
	if backoff > max {
		backoff = max
	}
	jitter := time.Duration(rand.Int63n(int64(backoff) / 2))
	backoff += jitter
	if backoff > max {
		backoff = max
	}
	return backoff
}
