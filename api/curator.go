package api

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/woodgreat/mumble/plugin"
)

// Deleter releases one curated allocation.
type Deleter func(ptr any)

// defaultDeleter covers allocations with no cleanup beyond dropping the
// curator's record; the collector reclaims the memory once nothing references
// it.
var defaultDeleter Deleter = func(any) {}

type curatorEntry struct {
	deleter Deleter
	owner   plugin.ID
	origin  string
}

// Curator tracks every allocation handed across the plugin boundary, keyed by
// pointer identity. The plugin is expected to return each pointer through
// FreeMemory; whatever it never returns is reclaimed at shutdown and reported
// as a leak.
//
// The curator is touched only from the owner goroutine. Registration happens
// inside operation bodies and release inside FreeMemory, both of which
// execute there, so it carries no lock of its own.
type Curator struct {
	entries map[any]curatorEntry
	logger  *zap.Logger
}

// NewCurator creates an empty curator.
func NewCurator(logger *zap.Logger) *Curator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Curator{
		entries: make(map[any]curatorEntry),
		logger:  logger,
	}
}

// Register tracks ptr under the given deleter, owning plugin and originating
// operation. It reports false when ptr is already tracked, which indicates a
// double registration upstream and must never happen in correct operation.
func (c *Curator) Register(ptr any, del Deleter, owner plugin.ID, origin string) bool {
	if !usableKey(ptr) {
		c.logger.Error("unusable curated pointer",
			zap.Uint32("plugin", uint32(owner)),
			zap.String("operation", origin))
		return false
	}
	if _, exists := c.entries[ptr]; exists {
		c.logger.Error("pointer registered twice",
			zap.Uint32("plugin", uint32(owner)),
			zap.String("operation", origin))
		return false
	}
	c.entries[ptr] = curatorEntry{deleter: del, owner: owner, origin: origin}
	return true
}

// Release frees a tracked pointer and removes its entry. Ownership is not
// verified: any plugin, or the host itself, may free any tracked pointer, so
// a plugin that is already unloading can still return its memory.
func (c *Curator) Release(ptr any) Status {
	if !usableKey(ptr) {
		return StatusPointerNotFound
	}
	entry, ok := c.entries[ptr]
	if !ok {
		return StatusPointerNotFound
	}
	entry.deleter(ptr)
	delete(c.entries, ptr)
	return StatusOK
}

// usableKey reports whether v can index the entry map. Plugins hand back
// arbitrary values through FreeMemory, and indexing a map with a slice or
// any other non-comparable value panics the owner goroutine.
func usableKey(v any) bool {
	return v != nil && reflect.TypeOf(v).Comparable()
}

// Len returns the number of outstanding entries.
func (c *Curator) Len() int { return len(c.entries) }

// Shutdown frees every remaining entry via its stored deleter and emits one
// diagnostic per leak. It returns the number of leaked entries.
func (c *Curator) Shutdown() int {
	leaked := len(c.entries)
	for ptr, entry := range c.entries {
		entry.deleter(ptr)
		c.logger.Warn("plugin leaked memory",
			zap.Uint32("plugin", uint32(entry.owner)),
			zap.String("operation", entry.origin))
	}
	c.entries = make(map[any]curatorEntry)
	return leaked
}
