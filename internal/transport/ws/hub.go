package ws

import (
	"sync"
)

type Conn interface {
	Send(msg Message) error
	Close() error
	ID() string
	UserID() string
	UserName() string
}

// Hub fans envelopes out to live connections. A connection may sit in many
// rooms at once; a user may hold many connections. Delivery is best-effort,
// a dead socket is the read loop's problem.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[Conn]struct{} // roomID -> set of connections
	byUser map[string]map[Conn]struct{} // userID -> set of connections
	joined map[Conn]map[string]struct{} // conn -> set of roomIDs
}

func NewHub() *Hub {
	return &Hub{
		rooms:  make(map[string]map[Conn]struct{}),
		byUser: make(map[string]map[Conn]struct{}),
		joined: make(map[Conn]map[string]struct{}),
	}
}

func (h *Hub) Add(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	us, ok := h.byUser[c.UserID()]
	if !ok {
		us = make(map[Conn]struct{})
		h.byUser[c.UserID()] = us
	}
	us[c] = struct{}{}
	h.joined[c] = make(map[string]struct{})
}

// Remove drops the connection from every room it joined and from the user
// index.
func (h *Hub) Remove(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for roomID := range h.joined[c] {
		h.leaveLocked(roomID, c)
	}
	delete(h.joined, c)

	if us, ok := h.byUser[c.UserID()]; ok {
		delete(us, c)
		if len(us) == 0 {
			delete(h.byUser, c.UserID())
		}
	}
}

func (h *Hub) Join(roomID string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rs, ok := h.rooms[roomID]
	if !ok {
		rs = make(map[Conn]struct{})
		h.rooms[roomID] = rs
	}
	rs[c] = struct{}{}
	if j, ok := h.joined[c]; ok {
		j[roomID] = struct{}{}
	}
}

func (h *Hub) Leave(roomID string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.leaveLocked(roomID, c)
	if j, ok := h.joined[c]; ok {
		delete(j, roomID)
	}
}

func (h *Hub) leaveLocked(roomID string, c Conn) {
	if rs, ok := h.rooms[roomID]; ok {
		delete(rs, c)
		if len(rs) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

func (h *Hub) Broadcast(roomID string, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if rs, ok := h.rooms[roomID]; ok {
		for c := range rs {
			_ = c.Send(msg) // best-effort
		}
	}
}

// BroadcastExcept skips one connection, for relays like typing where the
// origin tab must not hear its own event back.
func (h *Hub) BroadcastExcept(roomID string, except Conn, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if rs, ok := h.rooms[roomID]; ok {
		for c := range rs {
			if c == except {
				continue
			}
			_ = c.Send(msg)
		}
	}
}

// SendToUser delivers to every live connection of the user, joined to the
// room or not.
func (h *Hub) SendToUser(userID string, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.byUser[userID] {
		_ = c.Send(msg)
	}
}
