package plugin

import (
	"sync"
	"sync/atomic"
)

// ID identifies a loaded plugin. IDs are never reused within a process.
type ID uint32

// Plugin describes one loaded plugin.
type Plugin struct {
	ID   ID
	Name string
}

// Registry is the live table of loaded plugins. All methods are safe for
// concurrent use.
type Registry struct {
	mu          sync.RWMutex
	plugins     map[ID]*Plugin
	nextID      ID
	micOverride atomic.Bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{plugins: make(map[ID]*Plugin)}
}

// Register adds a plugin under a fresh id and returns it.
func (r *Registry) Register(name string) *Plugin {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p := &Plugin{ID: r.nextID, Name: name}
	r.plugins[p.ID] = p
	return p
}

// Unregister removes a plugin. Memory the plugin still holds stays tracked by
// the curator and is reclaimed at shutdown if never freed.
func (r *Registry) Unregister(id ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.plugins, id)
}

// Exists reports whether id refers to a live plugin.
func (r *Registry) Exists(id ID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.plugins[id]
	return ok
}

// Get returns the plugin registered under id.
func (r *Registry) Get(id ID) (*Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plugins[id]
	return p, ok
}

// SetMicrophoneOverride forces (or releases) microphone activation on behalf
// of a plugin.
func (r *Registry) SetMicrophoneOverride(active bool) {
	r.micOverride.Store(active)
}

// MicrophoneOverride reports whether a plugin currently forces microphone
// activation.
func (r *Registry) MicrophoneOverride() bool {
	return r.micOverride.Load()
}
