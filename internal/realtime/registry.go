package realtime

import (
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// Registry maps authenticated user IDs to their live websocket client. It is
// the single source of truth for "who is online". The map is keyed by user
// identity, not by connection: registering a second connection for the same
// user replaces the first (last connection wins), so a user has at most one
// live entry.
//
// All mutations and the lookups used for delivery decisions go through one
// mutex, so a lookup can never observe a half-applied register/deregister.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
	log     *logrus.Logger
}

func NewRegistry(log *logrus.Logger) *Registry {
	return &Registry{
		clients: make(map[string]*Client),
		log:     log,
	}
}

// Register inserts or replaces the entry for the client's user and broadcasts
// the updated online set to every registered connection. A replaced client is
// closed so its write pump shuts down.
func (r *Registry) Register(c *Client) {
	r.mu.Lock()
	if old, ok := r.clients[c.userID]; ok && old != c {
		old.Close()
	}
	r.clients[c.userID] = c
	targets, online := r.snapshotLocked()
	r.mu.Unlock()

	if r.log != nil {
		r.log.WithFields(logrus.Fields{"user_id": c.userID, "online": len(online)}).Info("connection registered")
	}
	broadcastPresence(targets, online)
}

// Deregister removes the entry for the client, but only if that client is
// still the registered connection for its user. A stale deregister (the old
// connection of a user who already reconnected) and a deregister for an
// unknown client are both no-ops.
func (r *Registry) Deregister(c *Client) {
	r.mu.Lock()
	cur, ok := r.clients[c.userID]
	if !ok || cur != c {
		r.mu.Unlock()
		return
	}
	delete(r.clients, c.userID)
	targets, online := r.snapshotLocked()
	r.mu.Unlock()

	if r.log != nil {
		r.log.WithFields(logrus.Fields{"user_id": c.userID, "online": len(online)}).Info("connection deregistered")
	}
	broadcastPresence(targets, online)
}

// Lookup returns the live client for a user, or nil when the user is offline.
// It never blocks on connection I/O.
func (r *Registry) Lookup(userID string) *Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.clients[userID]
}

// OnlineUserIDs returns the current presence set, sorted for stable output.
func (r *Registry) OnlineUserIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.clients))
	for id := range r.clients {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// snapshotLocked captures the clients to notify and the online set while the
// caller holds the mutex. The broadcast itself happens after unlock so a slow
// connection cannot stall registry mutations.
func (r *Registry) snapshotLocked() ([]*Client, []string) {
	targets := make([]*Client, 0, len(r.clients))
	ids := make([]string, 0, len(r.clients))
	for id, c := range r.clients {
		targets = append(targets, c)
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return targets, ids
}

func broadcastPresence(targets []*Client, online []string) {
	data, err := marshalEvent(presenceEvent(online))
	if err != nil {
		return
	}
	for _, c := range targets {
		c.trySend(data)
	}
}
