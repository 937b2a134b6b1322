package world

import (
	"fmt"
)

// ---------------------------------------------------------------------------
// Buffer: named top-level program container
// ---------------------------------------------------------------------------

// Buffer is a named top-level scope owning an ordered list of block trees
// and a variable namespace independent of tree position.
type Buffer struct {
	ID     ID
	Name   string
	Vars   map[Symbol]Value
	Blocks []ID // ordered top-level block identifiers
}

func (b *Buffer) RegistryID() ID { return b.ID }
func (b *Buffer) adoptID(id ID)  { b.ID = id }

// SetVar sets a buffer-scoped variable.
func (b *Buffer) SetVar(name Symbol, v Value) {
	if b.Vars == nil {
		b.Vars = make(map[Symbol]Value)
	}
	b.Vars[name] = v
}

// GetVar returns a buffer-scoped variable and whether it was set.
func (b *Buffer) GetVar(name Symbol) (Value, bool) {
	v, ok := b.Vars[name]
	return v, ok
}

// CreateBuffer creates and registers a buffer. A name colliding with a
// live buffer is disambiguated with an increasing numeric suffix
// ("main", "main.1", "main.2", ...). The first buffer created becomes
// the active buffer.
func (w *World) CreateBuffer(name string) *Buffer {
	buf := &Buffer{Name: w.UniquifyBufferName(name)}
	w.Registry.Register(buf)
	w.buffersByName[buf.Name] = buf.ID
	w.bufferOrder = append(w.bufferOrder, buf.ID)
	if w.activeBuffer == NoID {
		w.activeBuffer = buf.ID
	}
	return buf
}

// UniquifyBufferName appends an increasing integer suffix to name until
// it collides with no live buffer.
func (w *World) UniquifyBufferName(name string) string {
	if _, taken := w.buffersByName[name]; !taken {
		return name
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s.%d", name, i)
		if _, taken := w.buffersByName[candidate]; !taken {
			return candidate
		}
	}
}

// RestoreBuffer registers a reconstructed buffer under a specific
// identifier and rebuilds the name index and ordering. Used by the
// persistence collaborator; the buffer's name must not collide with a
// live one.
func (w *World) RestoreBuffer(id ID, buf *Buffer) error {
	if _, taken := w.buffersByName[buf.Name]; taken {
		return fmt.Errorf("world: buffer name %q already live", buf.Name)
	}
	if err := w.Registry.RestoreAt(id, buf); err != nil {
		return err
	}
	w.buffersByName[buf.Name] = id
	w.bufferOrder = append(w.bufferOrder, id)
	if w.activeBuffer == NoID {
		w.activeBuffer = id
	}
	return nil
}

// Buffer resolves an identifier to a *Buffer.
func (w *World) Buffer(id ID) (*Buffer, error) {
	obj, err := w.Registry.Resolve(id)
	if err != nil {
		return nil, err
	}
	buf, ok := obj.(*Buffer)
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return buf, nil
}

// BufferByName returns the live buffer with the given name, or nil.
func (w *World) BufferByName(name string) *Buffer {
	id, ok := w.buffersByName[name]
	if !ok {
		return nil
	}
	buf, err := w.Buffer(id)
	if err != nil {
		return nil
	}
	return buf
}

// Buffers returns the live buffers in creation order.
func (w *World) Buffers() []*Buffer {
	out := make([]*Buffer, 0, len(w.bufferOrder))
	for _, id := range w.bufferOrder {
		if buf, err := w.Buffer(id); err == nil {
			out = append(out, buf)
		}
	}
	return out
}

// AppendTopLevel adds a block to the buffer's ordered top-level list.
// The block must be parentless; top-level blocks have no parent link.
func (w *World) AppendTopLevel(buffer, block ID) error {
	buf, err := w.Buffer(buffer)
	if err != nil {
		return err
	}
	b, err := w.Block(block)
	if err != nil {
		return err
	}
	if b.Parent != NoID {
		return &StructuralError{
			Op: "appendTopLevel", Child: block, Parent: buffer,
			Msg: "block already has a parent",
		}
	}
	if containsID(buf.Blocks, block) {
		return &StructuralError{
			Op: "appendTopLevel", Child: block, Parent: buffer,
			Msg: "block already top-level in buffer",
		}
	}
	buf.Blocks = append(buf.Blocks, block)
	return nil
}

// RemoveBuffer removes a buffer from the world. Contained blocks are
// discarded only when discardBlocks is set; otherwise they stay
// registered and merely lose their container.
func (w *World) RemoveBuffer(id ID, discardBlocks bool) error {
	buf, err := w.Buffer(id)
	if err != nil {
		return err
	}
	if discardBlocks {
		for _, top := range buf.Blocks {
			if w.Registry.Contains(top) {
				if err := w.Discard(top); err != nil {
					return err
				}
			}
		}
	}

	delete(w.buffersByName, buf.Name)
	for i, bid := range w.bufferOrder {
		if bid == id {
			w.bufferOrder = append(w.bufferOrder[:i], w.bufferOrder[i+1:]...)
			break
		}
	}
	if w.activeBuffer == id {
		w.activeBuffer = NoID
		if len(w.bufferOrder) > 0 {
			w.activeBuffer = w.bufferOrder[0]
		}
	}
	w.Registry.Unregister(id)
	return nil
}

// ActiveBuffer returns the ambient active buffer, or nil. The active
// buffer is per-World state set by the host, never a package global.
func (w *World) ActiveBuffer() *Buffer {
	if w.activeBuffer == NoID {
		return nil
	}
	buf, err := w.Buffer(w.activeBuffer)
	if err != nil {
		return nil
	}
	return buf
}

// SetActiveBuffer makes the given buffer the ambient context for
// buffer-scoped variable access.
func (w *World) SetActiveBuffer(id ID) error {
	if _, err := w.Buffer(id); err != nil {
		return err
	}
	w.activeBuffer = id
	return nil
}
