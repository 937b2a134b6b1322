package world

// ---------------------------------------------------------------------------
// Scheduler: one cooperative pass per external tick
// ---------------------------------------------------------------------------

// RunTasks invokes Running on every task in the owner's list, in list
// order, retaining only the tasks that reported running. Finished tasks
// are dropped, never re-added.
//
// An evaluation failure propagates to the caller; the failing task and
// the not-yet-run remainder of the list are retained so the host can
// decide whether to retry the tick or abandon the subtree.
func (w *World) RunTasks(owner ID) error {
	b, err := w.Block(owner)
	if err != nil {
		return err
	}
	if len(b.Tasks) == 0 {
		return nil
	}

	keep := b.Tasks[:0]
	for i, tid := range b.Tasks {
		t, err := w.Task(tid)
		if err != nil {
			keep = append(keep, b.Tasks[i:]...)
			b.Tasks = keep
			return err
		}
		running, err := t.Running(w)
		if err != nil {
			keep = append(keep, b.Tasks[i:]...)
			b.Tasks = keep
			return err
		}
		if running {
			keep = append(keep, tid)
		}
	}
	b.Tasks = keep
	return nil
}

// OnUpdate runs the node's own tasks, then recurses into its inputs in
// order: depth-first, left-to-right, once per external tick. Within one
// tick a node's tasks always run before its children's, and reparenting
// performed by a task is visible to everything scheduled after it.
func (w *World) OnUpdate(node ID) error {
	if err := w.RunTasks(node); err != nil {
		return err
	}
	b, err := w.Block(node)
	if err != nil {
		return err
	}
	// Iterate a copy: a task may have reparented siblings mid-tick.
	inputs := make([]ID, len(b.Inputs))
	copy(inputs, b.Inputs)
	for _, in := range inputs {
		if !w.Registry.Contains(in) {
			continue
		}
		if err := w.OnUpdate(in); err != nil {
			return err
		}
	}
	return nil
}

// Tick drives one scheduler pass over every live buffer's top-level
// blocks, in buffer order then block order. The host calls this exactly
// once per frame; all work runs to completion before it returns.
func (w *World) Tick() error {
	for _, bid := range w.bufferOrder {
		buf, err := w.Buffer(bid)
		if err != nil {
			return err
		}
		tops := make([]ID, len(buf.Blocks))
		copy(tops, buf.Blocks)
		for _, top := range tops {
			if !w.Registry.Contains(top) {
				continue
			}
			if err := w.OnUpdate(top); err != nil {
				return err
			}
		}
	}
	return nil
}
