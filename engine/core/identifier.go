package core

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// GPU objects have no ownership type of their own, so every bundle the
// renderer creates is registered here, keyed by the swapchain generation
// it belongs to. Recreation releases a whole retiring generation by key
// instead of a hand-ordered teardown list, and final shutdown asserts
// nothing is left.

type ResourceID uint32

type resourceEntry struct {
	name       string
	generation uint64
}

type ResourceRegistry struct {
	mu      sync.Mutex
	entries map[ResourceID]resourceEntry
	next    ResourceID
}

func NewResourceRegistry() *ResourceRegistry {
	return &ResourceRegistry{
		entries: make(map[ResourceID]resourceEntry),
	}
}

// Acquire registers a resource bundle under the given swapchain
// generation and returns its handle. The kind string plus a random
// suffix becomes the debug name leak reports use.
func (r *ResourceRegistry) Acquire(kind string, generation uint64) ResourceID {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.next++
	id := r.next
	r.entries[id] = resourceEntry{
		name:       fmt.Sprintf("%s-%s", kind, uuid.NewString()[:8]),
		generation: generation,
	}
	return id
}

func (r *ResourceRegistry) Release(id ResourceID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		return fmt.Errorf("release of unknown resource id %d", id)
	}
	delete(r.entries, id)
	return nil
}

// ReleaseGeneration drops every resource registered under the given
// generation and returns how many were released.
func (r *ResourceRegistry) ReleaseGeneration(generation uint64) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	released := 0
	for id, e := range r.entries {
		if e.generation == generation {
			delete(r.entries, id)
			released++
		}
	}
	return released
}

func (r *ResourceRegistry) LiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// ReportLeaks logs every still-registered resource and returns the
// count. Called after teardown, when zero is the only clean answer.
func (r *ResourceRegistry) ReportLeaks() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		LogWarn("leaked resource %s (generation %d)", e.name, e.generation)
	}
	return len(r.entries)
}
