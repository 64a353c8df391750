package notify

import (
	"sync"
	"time"

	"github.com/duoduojuzi/fastsync-receiver/internal/model"
)

// Handle identifies a live notification on the surface.
type Handle uint32

// Entry is a retained live notification: the surface handle plus the origin
// payload an action will be dispatched against.
type Entry struct {
	Tag      string
	Handle   Handle
	Payload  model.Payload
	PostedAt time.Time
}

// Registry keeps live notification entries keyed by tag. Entries are never
// proactively removed; the tag set is small and fixed, so the store stays
// bounded by the number of content classes. It is shared between the
// gateway's background publishes and the surface's signal listener, guarded
// by a mutex held only for a single insert or lookup.
type Registry struct {
	mu       sync.Mutex
	byTag    map[string]*Entry
	byHandle map[Handle]*Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byTag:    make(map[string]*Entry),
		byHandle: make(map[Handle]*Entry),
	}
}

// Insert stores the live notification for tag, replacing any prior entry for
// the same tag.
func (r *Registry) Insert(tag string, h Handle, p model.Payload) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byTag[tag]; ok {
		delete(r.byHandle, old.Handle)
	}

	entry := &Entry{
		Tag:      tag,
		Handle:   h,
		Payload:  p,
		PostedAt: time.Now(),
	}
	r.byTag[tag] = entry
	r.byHandle[h] = entry
}

// HandleFor returns the live handle for tag, or zero when none exists. The
// zero handle tells the surface to create a new notification rather than
// replace one.
func (r *Registry) HandleFor(tag string) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.byTag[tag]; ok {
		return entry.Handle
	}
	return 0
}

// Resolve looks up the entry behind an activated notification handle.
func (r *Registry) Resolve(h Handle) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.byHandle[h]
	if !ok {
		return Entry{}, false
	}
	return *entry, true
}

// Has reports whether a live entry exists for tag.
func (r *Registry) Has(tag string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.byTag[tag]
	return ok
}
