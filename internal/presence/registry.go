package presence

import (
	"sync"
)

type connection struct {
	userID string
	rooms  map[string]struct{}
}

// Registry maps live connections to user identities. A user may hold several
// connections at once (tabs, devices); presence queries must account for all
// of them. Nothing here is persisted: the registry starts empty on every
// process start and users appear offline until they reconnect.
type Registry struct {
	mu     sync.RWMutex
	conns  map[string]*connection          // connID -> connection
	byUser map[string]map[string]struct{}  // userID -> set of connIDs
}

func NewRegistry() *Registry {
	return &Registry{
		conns:  make(map[string]*connection),
		byUser: make(map[string]map[string]struct{}),
	}
}

// Register is idempotent per connID.
func (r *Registry) Register(connID, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[connID]; ok {
		return
	}
	r.conns[connID] = &connection{userID: userID, rooms: make(map[string]struct{})}

	set, ok := r.byUser[userID]
	if !ok {
		set = make(map[string]struct{})
		r.byUser[userID] = set
	}
	set[connID] = struct{}{}
}

// Unregister removes a connection. It returns the owning user and the rooms
// this connection had joined where the user now has no other live connection
// still joined (the rooms the user has vacated). Unregistering an unknown
// connection is a no-op.
func (r *Registry) Unregister(connID string) (userID string, vacated []string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, found := r.conns[connID]
	if !found {
		return "", nil, false
	}
	delete(r.conns, connID)

	if set, okU := r.byUser[c.userID]; okU {
		delete(set, connID)
		if len(set) == 0 {
			delete(r.byUser, c.userID)
		}
	}

	for roomID := range c.rooms {
		if !r.userInRoomLocked(c.userID, roomID) {
			vacated = append(vacated, roomID)
		}
	}
	return c.userID, vacated, true
}

func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID]) > 0
}

// MarkJoined records roomID in the connection's joined set.
func (r *Registry) MarkJoined(connID, roomID string) (userID string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, found := r.conns[connID]
	if !found {
		return "", false
	}
	c.rooms[roomID] = struct{}{}
	return c.userID, true
}

// MarkLeft drops roomID from the connection's joined set.
func (r *Registry) MarkLeft(connID, roomID string) (userID string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, found := r.conns[connID]
	if !found {
		return "", false
	}
	delete(c.rooms, roomID)
	return c.userID, true
}

// UserInRoom reports whether any live connection of the user still lists the
// room in its joined set. This is the cross-reference that keeps multi-tab
// users from being marked offline while one tab remains.
func (r *Registry) UserInRoom(userID, roomID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.userInRoomLocked(userID, roomID)
}

func (r *Registry) userInRoomLocked(userID, roomID string) bool {
	for connID := range r.byUser[userID] {
		if c, ok := r.conns[connID]; ok {
			if _, joined := c.rooms[roomID]; joined {
				return true
			}
		}
	}
	return false
}

// RoomsOf returns the rooms a connection has joined.
func (r *Registry) RoomsOf(connID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.conns[connID]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(c.rooms))
	for roomID := range c.rooms {
		out = append(out, roomID)
	}
	return out
}

func (r *Registry) ConnectionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
