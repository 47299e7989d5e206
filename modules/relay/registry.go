package relay

import (
	"sort"
	"sync"
)

// Registry tracks which user identities currently have at least one live
// session. A user appears in the registry if and only if their session set is
// non-empty; the empty-set state is unrepresentable.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]map[string]struct{} // userID -> set of sessionIDs
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]map[string]struct{}),
	}
}

// Register adds a session to the user's session set. It reports whether this
// was the user's first live session, i.e. whether the caller must broadcast
// the user-online transition. Registering an already-known session is a
// no-op.
func (r *Registry) Register(userID, sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, exists := r.sessions[userID]
	if !exists {
		r.sessions[userID] = map[string]struct{}{sessionID: {}}
		return true
	}
	set[sessionID] = struct{}{}
	return false
}

// Unregister removes a session from the user's session set. It reports
// whether this was the user's last live session, i.e. whether the caller must
// broadcast the user-offline transition. Unknown users and sessions are
// no-ops.
func (r *Registry) Unregister(userID, sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, exists := r.sessions[userID]
	if !exists {
		return false
	}
	if _, member := set[sessionID]; !member {
		return false
	}
	delete(set, sessionID)
	if len(set) == 0 {
		delete(r.sessions, userID)
		return true
	}
	return false
}

// OnlineUsers returns the identities of all users with at least one live
// session, sorted for deterministic output.
func (r *Registry) OnlineUsers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]string, 0, len(r.sessions))
	for userID := range r.sessions {
		users = append(users, userID)
	}
	sort.Strings(users)
	return users
}

// UserCount returns the number of online users.
func (r *Registry) UserCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// SessionCount returns the number of live sessions for a user.
func (r *Registry) SessionCount(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions[userID])
}
