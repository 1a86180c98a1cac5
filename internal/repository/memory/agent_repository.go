package memory

import (
	"sync"
	"time"

	"ai-shopassist-be/pkg/agent"

	"github.com/patrickmn/go-cache"
)

// AgentRepository keeps one orchestrator per chat session in memory.
// Idle bindings expire after an hour so abandoned sessions do not pin
// conversation memory forever; an expired session simply gets a fresh
// orchestrator on the next message.
type AgentRepository struct {
	cache *cache.Cache

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewAgentRepository() *AgentRepository {
	// Default expiration of 1 hour, purge sweep every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	r := &AgentRepository{
		cache: c,
		locks: make(map[string]*sync.Mutex),
	}
	c.OnEvicted(func(sessionID string, _ interface{}) {
		r.releaseLock(sessionID)
	})
	return r
}

// releaseLock drops a session's mutex entry, but only when nothing
// holds it. A turn still in flight keeps its mutex registered so a
// follow-up Lock serializes against it instead of minting a second
// mutex for the same session.
func (r *AgentRepository) releaseLock(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[sessionID]
	if !ok {
		return
	}
	if l.TryLock() {
		l.Unlock()
		delete(r.locks, sessionID)
	}
}

// GetOrCreate returns the orchestrator bound to a session, building it
// with the factory on first use and refreshing the TTL on every hit.
func (r *AgentRepository) GetOrCreate(sessionID string, build func() *agent.Orchestrator) *agent.Orchestrator {
	if x, found := r.cache.Get(sessionID); found {
		r.cache.Set(sessionID, x, cache.DefaultExpiration)
		return x.(*agent.Orchestrator)
	}
	o := build()
	r.cache.Set(sessionID, o, cache.DefaultExpiration)
	return o
}

// Lock serializes message processing for one session. Orchestrators
// are stateful, so two concurrent messages on the same session must
// not interleave.
func (r *AgentRepository) Lock(sessionID string) func() {
	r.mu.Lock()
	l, ok := r.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[sessionID] = l
	}
	r.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (r *AgentRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}

// Len reports how many sessions currently hold a live orchestrator.
func (r *AgentRepository) Len() int {
	return r.cache.ItemCount()
}
