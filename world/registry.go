package world

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// ---------------------------------------------------------------------------
// Registry: identifier-addressed object ownership
// ---------------------------------------------------------------------------

// ID is a stable opaque identifier for a registered object. Identifiers
// are never reused while the object is registered. Zero is NoID.
type ID uint32

// NoID is the absent identifier.
const NoID ID = 0

// Object is anything the registry can own. Every structural link in the
// runtime (parent, input, task target, event binding) is an ID resolved
// through the registry, never a direct reference.
type Object interface {
	RegistryID() ID
	adoptID(id ID)
}

// Registry is the sole owner of runtime objects, addressed by ID. It is
// scoped to one World instance. Access is assumed single-threaded; a
// concurrent host must serialize access itself (see server.WorldWorker).
// The internal lock only guards against torn map state, not against
// logical races between operations.
type Registry struct {
	mu     sync.RWMutex
	byID   map[ID]Object
	nextID atomic.Uint32
}

// NewRegistry creates an empty registry. The first assigned ID is 1;
// 0 is reserved for NoID.
func NewRegistry() *Registry {
	r := &Registry{byID: make(map[ID]Object)}
	r.nextID.Store(0)
	return r
}

// Register assigns a fresh identifier to obj and takes ownership.
func (r *Registry) Register(obj Object) ID {
	id := ID(r.nextID.Add(1))
	obj.adoptID(id)

	r.mu.Lock()
	r.byID[id] = obj
	r.mu.Unlock()

	return id
}

// Resolve returns the object registered under id, or a NotFoundError.
func (r *Registry) Resolve(id ID) (Object, error) {
	r.mu.RLock()
	obj, ok := r.byID[id]
	r.mu.RUnlock()

	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return obj, nil
}

// Unregister removes ownership of id. Subsequent Resolve calls fail.
// Unregistering an absent ID is a no-op.
func (r *Registry) Unregister(id ID) {
	r.mu.Lock()
	delete(r.byID, id)
	r.mu.Unlock()
}

// Contains reports whether id is currently registered.
func (r *Registry) Contains(id ID) bool {
	r.mu.RLock()
	_, ok := r.byID[id]
	r.mu.RUnlock()
	return ok
}

// RestoreAt registers obj under a specific identifier, used when
// reconstructing a world from a snapshot. Fails if the identifier is
// already live. The fresh-ID counter is advanced past id so later
// registrations never collide with restored ones.
func (r *Registry) RestoreAt(id ID, obj Object) error {
	if id == NoID {
		return fmt.Errorf("world: cannot restore at the nil identifier")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; ok {
		return fmt.Errorf("world: identifier %d already registered", id)
	}
	obj.adoptID(id)
	r.byID[id] = obj

	for {
		cur := r.nextID.Load()
		if cur >= uint32(id) || r.nextID.CompareAndSwap(cur, uint32(id)) {
			return nil
		}
	}
}

// LastID returns the highest identifier handed out so far. Snapshots
// record it so a restored registry continues numbering where the
// captured one stopped.
func (r *Registry) LastID() ID {
	return ID(r.nextID.Load())
}

// AdvanceTo raises the identifier counter to at least id. Restoring a
// registry must advance past the captured counter even when the highest
// identifiers belonged to objects discarded before the capture.
func (r *Registry) AdvanceTo(id ID) {
	for {
		cur := r.nextID.Load()
		if cur >= uint32(id) || r.nextID.CompareAndSwap(cur, uint32(id)) {
			return
		}
	}
}

// Len returns the number of live registrations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
