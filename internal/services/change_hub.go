package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/jrramp/arecheoedu/internal/metrics"
	"github.com/jrramp/arecheoedu/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
	eventBuffer    = 64
)

// ChangeHub fans ChangeEvents out to connected websocket clients.
type ChangeHub struct {
	register    chan *subscriber
	unregister  chan *subscriber
	events      chan models.ChangeEvent
	done        chan struct{}
	subscribers map[*subscriber]struct{}
	count       atomic.Int64
	metrics     *metrics.Metrics
	log         zerolog.Logger
}

type subscriber struct {
	hub  *ChangeHub
	conn *websocket.Conn
	send chan []byte
}

func NewChangeHub(m *metrics.Metrics, log zerolog.Logger) *ChangeHub {
	return &ChangeHub{
		register:    make(chan *subscriber),
		unregister:  make(chan *subscriber),
		events:      make(chan models.ChangeEvent, eventBuffer),
		done:        make(chan struct{}),
		subscribers: make(map[*subscriber]struct{}),
		metrics:     m,
		log:         log.With().Str("subsystem", "change_hub").Logger(),
	}
}

// Run delivers events until ctx is cancelled, then disconnects everyone.
func (h *ChangeHub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for s := range h.subscribers {
				h.remove(s)
			}
			return

		case s := <-h.register:
			h.subscribers[s] = struct{}{}
			h.count.Add(1)
			h.metrics.SubscriberAdded()
			h.log.Debug().Str("remote", s.conn.RemoteAddr().String()).Msg("subscriber connected")

		case s := <-h.unregister:
			if _, ok := h.subscribers[s]; ok {
				h.remove(s)
			}

		case event := <-h.events:
			msg, err := json.Marshal(event)
			if err != nil {
				h.log.Error().Err(err).Msg("encoding change event")
				continue
			}

			for s := range h.subscribers {
				select {
				case s.send <- msg:
				default:
					h.log.Warn().Str("remote", s.conn.RemoteAddr().String()).Msg("subscriber too slow, disconnecting")
					h.remove(s)
				}
			}
		}
	}
}

// remove must only be called from Run.
func (h *ChangeHub) remove(s *subscriber) {
	delete(h.subscribers, s)
	close(s.send)
	h.count.Add(-1)
	h.metrics.SubscriberRemoved()
}

// Publish queues event for delivery. It never blocks: when the queue is full
// the event is dropped.
func (h *ChangeHub) Publish(event models.ChangeEvent) {
	select {
	case h.events <- event:
	default:
		h.log.Warn().Str("collection", event.Collection).Str("action", event.Action).Msg("change queue full, dropping event")
	}
}

// Subscribers returns the number of connected clients.
func (h *ChangeHub) Subscribers() int {
	return int(h.count.Load())
}

// Attach starts delivering events to conn. The connection is closed when the
// client goes away or the hub stops.
func (h *ChangeHub) Attach(conn *websocket.Conn) {
	s := &subscriber{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	select {
	case h.register <- s:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go s.writePump()
	go s.readPump()
}

// readPump discards client messages and notices when the client leaves.
func (s *subscriber) readPump() {
	defer func() {
		select {
		case s.hub.unregister <- s:
		case <-s.hub.done:
		}
		s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.hub.log.Debug().Err(err).Msg("subscriber read")
			}
			return
		}
	}
}

func (s *subscriber) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
