// Package presence tracks which chat rooms users are actively viewing.
// It replaces ambient global connection state with an injected service:
// the realtime chat layer populates it on connect and prunes it on
// disconnect, and the notify subscriber consults it to suppress a push
// when an in-app message will already reach the user.
package presence

import "sync"

// Registry is an in-memory user-to-room presence map. A user can hold
// multiple connections (multiple devices) into the same room.
type Registry struct {
	mu sync.RWMutex
	// rooms maps userID -> roomID -> connection count.
	rooms map[string]map[string]int
}

// NewRegistry creates an empty presence registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]map[string]int),
	}
}

// Connect records that a user opened a connection viewing a room.
func (r *Registry) Connect(userID, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userRooms, ok := r.rooms[userID]
	if !ok {
		userRooms = make(map[string]int)
		r.rooms[userID] = userRooms
	}
	userRooms[roomID]++
}

// Disconnect records that a user closed a connection viewing a room.
// Unbalanced disconnects are ignored.
func (r *Registry) Disconnect(userID, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userRooms, ok := r.rooms[userID]
	if !ok {
		return
	}

	userRooms[roomID]--
	if userRooms[roomID] <= 0 {
		delete(userRooms, roomID)
	}
	if len(userRooms) == 0 {
		delete(r.rooms, userID)
	}
}

// IsViewingRoom reports whether the user currently holds at least one
// connection viewing the room.
func (r *Registry) IsViewingRoom(userID, roomID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.rooms[userID][roomID] > 0
}
