package world

// ---------------------------------------------------------------------------
// Block: a tree node of the visual program
// ---------------------------------------------------------------------------

// Block is one node of a visual program tree. All structural links
// (Parent, Inputs, Tasks, event bindings) are identifiers resolved
// through the world's registry.
//
// The geometry fields (X, Y, Width, Height) and Category are carried for
// rendering and layout collaborators; the core never computes with them.
type Block struct {
	ID ID

	Op      Symbol // operation tag; selects the block's Kind
	Inputs  []ID   // ordered children
	Results []Value
	Parent  ID // weak link: a lookup key, not an owning reference

	Tags     map[Symbol]struct{}
	Category Symbol

	Pinned    bool
	Temporary bool
	Visible   bool

	Events map[EventKey]ID // lazily created on first bind
	Tasks  []ID

	Vars map[Symbol]Value // block-local variables, lazily created

	X, Y          float64
	Width, Height float64

	// LayoutValid is cleared whenever the block's appearance may have
	// changed; the layout collaborator sets it after a pass.
	LayoutValid bool
}

func (b *Block) RegistryID() ID { return b.ID }
func (b *Block) adoptID(id ID)  { b.ID = id }

// NewBlock creates a Block with the given operation tag, initializes it,
// and registers it immediately.
func (w *World) NewBlock(op Symbol) *Block {
	b := &Block{
		Op:      op,
		Visible: true,
	}
	w.Registry.Register(b)
	return b
}

// Block resolves an identifier to a *Block. Fails with a NotFoundError if
// the identifier is unregistered or names a non-block object.
func (w *World) Block(id ID) (*Block, error) {
	obj, err := w.Registry.Resolve(id)
	if err != nil {
		return nil, err
	}
	b, ok := obj.(*Block)
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return b, nil
}

// InvalidateLayout clears the block's cached layout.
func (b *Block) InvalidateLayout() {
	b.LayoutValid = false
}

// HasTag reports whether the block carries the given tag.
func (b *Block) HasTag(tag Symbol) bool {
	_, ok := b.Tags[tag]
	return ok
}

// AddTag adds a tag to the block's tag set.
func (b *Block) AddTag(tag Symbol) {
	if b.Tags == nil {
		b.Tags = make(map[Symbol]struct{})
	}
	b.Tags[tag] = struct{}{}
}

// RemoveTag removes a tag from the block's tag set.
func (b *Block) RemoveTag(tag Symbol) {
	delete(b.Tags, tag)
}

// SetVar sets a block-local variable, distinct from any buffer namespace.
func (b *Block) SetVar(name Symbol, v Value) {
	if b.Vars == nil {
		b.Vars = make(map[Symbol]Value)
	}
	b.Vars[name] = v
}

// GetVar returns a block-local variable and whether it was set.
func (b *Block) GetVar(name Symbol) (Value, bool) {
	v, ok := b.Vars[name]
	return v, ok
}

// Discard destroys the block tree rooted at id: inputs are discarded
// recursively, the root is detached from its parent, owned tasks are
// unregistered, and every visited identifier is removed from the
// registry. After Discard no formerly reachable identifier resolves.
func (w *World) Discard(id ID) error {
	b, err := w.Block(id)
	if err != nil {
		return err
	}

	// Detach the root from its parent before tearing down, so the
	// parent's inputs never hold a dangling identifier.
	if b.Parent != NoID {
		if parent, err := w.Block(b.Parent); err == nil && containsID(parent.Inputs, id) {
			w.UnplugFromParent(id)
		} else {
			b.Parent = NoID
		}
	}

	w.discardTree(b)
	return nil
}

func (w *World) discardTree(b *Block) {
	for _, in := range b.Inputs {
		if child, err := w.Block(in); err == nil {
			child.Parent = NoID
			w.discardTree(child)
		}
	}
	b.Inputs = nil

	for _, tid := range b.Tasks {
		w.discardTask(tid)
	}
	b.Tasks = nil

	w.Registry.Unregister(b.ID)
}

func (w *World) discardTask(id ID) {
	t, err := w.Task(id)
	if err != nil {
		return
	}
	for _, sub := range t.Subtasks {
		w.discardTask(sub)
	}
	w.Registry.Unregister(id)
}

func containsID(ids []ID, id ID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
