package admin

import (
	"sync"

	"sitecms/internal/observability/metrics"
)

// Registry maps session ids to their controllers.
type Registry struct {
	mu          sync.RWMutex
	controllers map[string]*Controller
}

func NewRegistry() *Registry {
	return &Registry{controllers: make(map[string]*Controller)}
}

// Add stores c under sid. The entry is dropped automatically when the
// controller's session ends.
func (r *Registry) Add(sid string, c *Controller) {
	c.setOnEnd(func() { r.Remove(sid) })

	r.mu.Lock()
	r.controllers[sid] = c
	n := len(r.controllers)
	r.mu.Unlock()
	metrics.AdminSessionsActive.Set(float64(n))
}

func (r *Registry) Get(sid string) (*Controller, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.controllers[sid]
	return c, ok
}

func (r *Registry) Remove(sid string) {
	r.mu.Lock()
	delete(r.controllers, sid)
	n := len(r.controllers)
	r.mu.Unlock()
	metrics.AdminSessionsActive.Set(float64(n))
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.controllers)
}
