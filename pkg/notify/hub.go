package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 16
	readLimit  = 4096
)

// Envelope is the frame pushed to worker sockets.
type Envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Hub keeps authenticated worker sockets and pushes notifications to them.
// A worker may hold several sockets at once.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*socket]struct{}
	closed  bool
	logger  *zap.Logger
}

type socket struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (s *socket) stop() { s.once.Do(func() { close(s.done) }) }

// NewHub creates an empty Hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*socket]struct{}),
		logger:  logger,
	}
}

// Connected returns the number of open sockets for a worker.
func (h *Hub) Connected(workerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[workerID])
}

// Notify queues n on every socket of n.WorkerID. Offline workers are not an
// error; sockets whose buffer is full get disconnected.
func (h *Hub) Notify(_ context.Context, n Notification) error {
	payload, err := json.Marshal(Envelope{Type: "notification", Data: n})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.clients[n.WorkerID] {
		select {
		case s.send <- payload:
		default:
			h.logger.Warn("ws send buffer full, dropping socket", zap.String("worker_id", n.WorkerID))
			s.stop()
		}
	}
	return nil
}

// Serve registers an authenticated connection and blocks until it closes.
func (h *Hub) Serve(workerID string, conn *websocket.Conn) error {
	s := &socket{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	if err := h.add(workerID, s); err != nil {
		_ = conn.Close()
		return err
	}
	defer h.remove(workerID, s)

	h.logger.Debug("ws socket registered", zap.String("worker_id", workerID))

	go h.writeLoop(s)
	h.readLoop(s)
	s.stop()
	return nil
}

// Close disconnects every socket.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for _, set := range h.clients {
		for s := range set {
			s.stop()
		}
	}
	return nil
}

func (h *Hub) add(workerID string, s *socket) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return errors.New("notification hub closed")
	}
	set, ok := h.clients[workerID]
	if !ok {
		set = make(map[*socket]struct{})
		h.clients[workerID] = set
	}
	set[s] = struct{}{}
	return nil
}

func (h *Hub) remove(workerID string, s *socket) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.clients[workerID]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.clients, workerID)
		}
	}
}

// readLoop only services control frames; workers do not send data upstream.
func (h *Hub) readLoop(s *socket) {
	s.conn.SetReadLimit(readLimit)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("ws read failed", zap.Error(err))
			}
			return
		}
	}
}

func (h *Hub) writeLoop(s *socket) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case msg := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.stop()
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.stop()
				return
			}
		case <-s.done:
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

// Fanout delivers every notification to all of its notifiers.
type Fanout []Notifier

// Notify tries every notifier and joins their errors.
func (f Fanout) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, nt := range f {
		if err := nt.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Fanout) Close() error {
	var errs []error
	for _, nt := range f {
		if err := nt.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
