package world

import "fmt"

// ---------------------------------------------------------------------------
// Block tree operations
// ---------------------------------------------------------------------------
//
// Every operation takes and returns identifiers resolved through the
// registry. IsValidConnection is the sole cycle-prevention check and runs
// on every reparenting operation.

// IsValidConnection reports whether source may become a child of sink.
// It walks sink's ancestor chain comparing each ancestor, by identity, to
// source: the connection is rejected if source is found among sink's
// ancestors or sink equals source.
func (w *World) IsValidConnection(sink, source ID) bool {
	if sink == source {
		return false
	}
	cur := sink
	for cur != NoID {
		if cur == source {
			return false
		}
		b, err := w.Block(cur)
		if err != nil {
			break
		}
		cur = b.Parent
	}
	return true
}

// SetParent links child under parent. Fails with a StructuralError unless
// IsValidConnection(parent, child) holds. The inputs sequence is not
// touched; callers that want an input slot use AppendInput or Adopt.
func (w *World) SetParent(child, parent ID) error {
	c, err := w.Block(child)
	if err != nil {
		return err
	}
	if _, err := w.Block(parent); err != nil {
		return err
	}
	if !w.IsValidConnection(parent, child) {
		return &StructuralError{
			Op: "setParent", Child: child, Parent: parent,
			Msg: "connection would create a cycle",
		}
	}
	c.Parent = parent
	return nil
}

// AppendInput appends child to owner's ordered inputs and sets its parent.
// Fails if child is already present among owner's inputs.
func (w *World) AppendInput(owner, child ID) error {
	o, err := w.Block(owner)
	if err != nil {
		return err
	}
	if containsID(o.Inputs, child) {
		return &StructuralError{
			Op: "appendInput", Child: child, Parent: owner,
			Msg: "child already present among inputs",
		}
	}
	if err := w.SetParent(child, owner); err != nil {
		return err
	}
	o.Inputs = append(o.Inputs, child)
	return nil
}

// Adopt makes child an input of parent. If child already has a parent it
// is unplugged first, so a block has at most one parent at any time.
func (w *World) Adopt(parent, child ID) error {
	c, err := w.Block(child)
	if err != nil {
		return err
	}
	if !w.IsValidConnection(parent, child) {
		return &StructuralError{
			Op: "adopt", Child: child, Parent: parent,
			Msg: "connection would create a cycle",
		}
	}
	if c.Parent != NoID {
		w.UnplugFromParent(child)
	}
	return w.AppendInput(parent, child)
}

// DeleteInput removes child from owner's inputs by identity. Fails with a
// StructuralError if child is not present. The child's parent link is
// cleared when it pointed at owner.
func (w *World) DeleteInput(owner, child ID) error {
	o, err := w.Block(owner)
	if err != nil {
		return err
	}
	idx := -1
	for i, in := range o.Inputs {
		if in == child {
			idx = i
			break
		}
	}
	if idx < 0 {
		return &StructuralError{
			Op: "deleteInput", Child: child, Parent: owner,
			Msg: "child not present among inputs",
		}
	}
	o.Inputs = append(o.Inputs[:idx], o.Inputs[idx+1:]...)

	if c, err := w.Block(child); err == nil && c.Parent == owner {
		c.Parent = NoID
	}
	return nil
}

// Unplug is DeleteInput under its traditional name.
func (w *World) Unplug(owner, child ID) error {
	return w.DeleteInput(owner, child)
}

// UnplugFromParent detaches child from its parent and clears the parent
// link. The child must have a parent that actually contains it; a
// violation signals model corruption and panics rather than returning.
func (w *World) UnplugFromParent(child ID) {
	c, err := w.Block(child)
	if err != nil {
		panic(fmt.Sprintf("world: unplugFromParent: %v", err))
	}
	if c.Parent == NoID {
		panic(fmt.Sprintf("world: unplugFromParent: block %d has no parent", child))
	}
	p, err := w.Block(c.Parent)
	if err != nil || !containsID(p.Inputs, child) {
		panic(fmt.Sprintf("world: unplugFromParent: parent %d does not contain block %d", c.Parent, child))
	}

	for i, in := range p.Inputs {
		if in == child {
			p.Inputs = append(p.Inputs[:i], p.Inputs[i+1:]...)
			break
		}
	}
	c.Parent = NoID
}

// BringToFront moves child to the end of owner's inputs, changing draw and
// update order only. Structure is otherwise unchanged.
func (w *World) BringToFront(owner, child ID) error {
	if err := w.DeleteInput(owner, child); err != nil {
		return err
	}
	return w.AppendInput(owner, child)
}

// Contains reports whether child appears among owner's inputs.
func (w *World) Contains(owner, child ID) bool {
	o, err := w.Block(owner)
	if err != nil {
		return false
	}
	return containsID(o.Inputs, child)
}

// GetParent returns the parent identifier of child, or NoID.
func (w *World) GetParent(child ID) (ID, error) {
	c, err := w.Block(child)
	if err != nil {
		return NoID, err
	}
	return c.Parent, nil
}

// CountTree returns the number of blocks in the tree rooted at id: one
// for the root plus the count of every input, recursively. An absent or
// unresolvable identifier counts as zero. Diagnostics only.
func (w *World) CountTree(id ID) int {
	if id == NoID {
		return 0
	}
	b, err := w.Block(id)
	if err != nil {
		return 0
	}
	total := 1
	for _, in := range b.Inputs {
		total += w.CountTree(in)
	}
	return total
}
