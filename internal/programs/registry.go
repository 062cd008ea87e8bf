package programs

import (
	"fmt"

	"github.com/holaplex/chainmirror/internal/feed"
)

// Registry maps owner identity to a handler.
//
// The table is built once at startup and evaluated in declaration order;
// the first handler whose program matches wins. Declaration order is the
// routing precedence, so it never changes after construction.
type Registry struct {
	handlers []Handler
}

// NewRegistry builds a registry from handlers in precedence order.
// Duplicate program identities are rejected: precedence would silently
// shadow the later handler.
func NewRegistry(handlers ...Handler) (*Registry, error) {
	seen := make(map[feed.Pubkey]string, len(handlers))
	for _, h := range handlers {
		program := h.Program()
		if prev, ok := seen[program]; ok {
			return nil, fmt.Errorf("registry: program %s claimed by both %s and %T", program, prev, h)
		}
		seen[program] = fmt.Sprintf("%T", h)
	}
	return &Registry{handlers: handlers}, nil
}

// Lookup returns the first handler registered for the owner identity.
func (r *Registry) Lookup(owner feed.Pubkey) (Handler, bool) {
	for _, h := range r.handlers {
		if h.Program() == owner {
			return h, true
		}
	}
	return nil, false
}

// Handlers returns the handlers in precedence order.
func (r *Registry) Handlers() []Handler {
	return r.handlers
}
