// api/registry/registry.go
package registry

import (
	"context"
	"fmt"
	"sync"
)

// ToolFunc is a registered side-effecting operation. It receives exactly the
// parameter map from the evaluation context plus the caller identity.
type ToolFunc func(ctx context.Context, callerID string, params map[string]interface{}) (map[string]interface{}, error)

// Tool binds a function to a (feature, action) pair. Idempotent tools declare
// that re-execution for an identical context is safe; everything else is
// rejected on replay.
type Tool struct {
	Name       string
	Idempotent bool
	Fn         ToolFunc
}

// Registry maps (feature, action) keys to tools. Registration happens once at
// system start; lookups are concurrent.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Key is the canonical (feature, action) key.
func Key(feature, action string) string {
	return feature + ":" + action
}

// Register binds a tool. Registering the same key twice is a wiring bug.
func (r *Registry) Register(feature, action string, tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := Key(feature, action)
	if _, exists := r.tools[key]; exists {
		return fmt.Errorf("tool already registered for %s", key)
	}
	if tool.Name == "" {
		tool.Name = key
	}
	r.tools[key] = tool
	return nil
}

// Lookup returns the tool bound to (feature, action), if any.
func (r *Registry) Lookup(feature, action string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[Key(feature, action)]
	return tool, ok
}

// Keys lists the registered (feature, action) keys.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.tools))
	for k := range r.tools {
		keys = append(keys, k)
	}
	return keys
}
