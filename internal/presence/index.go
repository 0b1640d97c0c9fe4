package presence

import (
	"sort"
	"sync"
)

// CrossRef answers whether a user still has a live connection joined to a
// room. Satisfied by *Registry.
type CrossRef interface {
	UserInRoom(userID, roomID string) bool
}

// Index tracks who is online in each room right now, derived from
// join/leave/disconnect events. Distinct from persisted room membership.
type Index struct {
	mu    sync.RWMutex
	rooms map[string]map[string]struct{} // roomID -> set of userIDs
}

func NewIndex() *Index {
	return &Index{rooms: make(map[string]map[string]struct{})}
}

// Join adds the user to the room's online set. Returns true when the set
// actually changed (the coordinator only rebroadcasts presence on change).
func (i *Index) Join(roomID, userID string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	set, ok := i.rooms[roomID]
	if !ok {
		set = make(map[string]struct{})
		i.rooms[roomID] = set
	}
	if _, present := set[userID]; present {
		return false
	}
	set[userID] = struct{}{}
	return true
}

// Leave removes the user from the room's online set, but only when the
// registry confirms no other connection of the user still has the room
// joined. Returns true when the set changed.
func (i *Index) Leave(roomID, userID string, ref CrossRef) bool {
	if ref != nil && ref.UserInRoom(userID, roomID) {
		return false
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	set, ok := i.rooms[roomID]
	if !ok {
		return false
	}
	if _, present := set[userID]; !present {
		return false
	}
	delete(set, userID)
	if len(set) == 0 {
		delete(i.rooms, roomID)
	}
	return true
}

// OnlineUsers returns a sorted snapshot of the room's online set. The whole
// set is broadcast on every change so clients cannot drift on missed deltas.
func (i *Index) OnlineUsers(roomID string) []string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	set := i.rooms[roomID]
	out := make([]string, 0, len(set))
	for userID := range set {
		out = append(out, userID)
	}
	sort.Strings(out)
	return out
}

// Reconcile sweeps out users that have no live connection at all. A skipped
// disconnect cleanup would otherwise leave them online forever. Returns the
// rooms whose online set changed.
func (i *Index) Reconcile(isOnline func(userID string) bool) []string {
	i.mu.Lock()
	defer i.mu.Unlock()

	var changed []string
	for roomID, set := range i.rooms {
		var stale []string
		for userID := range set {
			if !isOnline(userID) {
				stale = append(stale, userID)
			}
		}
		if len(stale) == 0 {
			continue
		}
		for _, userID := range stale {
			delete(set, userID)
		}
		if len(set) == 0 {
			delete(i.rooms, roomID)
		}
		changed = append(changed, roomID)
	}
	sort.Strings(changed)
	return changed
}
