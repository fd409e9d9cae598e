package interview

import (
	"sync"

	"github.com/mockmate/webapp/internal/narrator"
)

// NarratorFactory supplies the narration channel for one user, or a no-op
// narrator when none is attached.
type NarratorFactory func(userID string) narrator.Narrator

// Registry hands out one controller per signed-in user and tears it down on
// sign-out. All session state lives here; a process restart discards it.
type Registry struct {
	backend Backend
	opts    Options
	forUser NarratorFactory

	mu          sync.Mutex
	controllers map[string]*Controller
}

// NewRegistry builds a registry. forUser may be nil.
func NewRegistry(backend Backend, forUser NarratorFactory, opts Options) *Registry {
	if forUser == nil {
		forUser = func(string) narrator.Narrator { return narrator.Noop{} }
	}
	return &Registry{
		backend:     backend,
		opts:        opts,
		forUser:     forUser,
		controllers: make(map[string]*Controller),
	}
}

// For returns the user's controller, creating one on first use.
func (r *Registry) For(userID string) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.controllers[userID]; ok {
		return c
	}
	c := NewController(r.backend, r.forUser(userID), r.opts)
	r.controllers[userID] = c
	return c
}

// Drop closes and removes the user's controller, if any.
func (r *Registry) Drop(userID string) {
	r.mu.Lock()
	c, ok := r.controllers[userID]
	if ok {
		delete(r.controllers, userID)
	}
	r.mu.Unlock()

	if ok {
		c.Close()
	}
}
