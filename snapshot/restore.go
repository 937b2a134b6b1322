package snapshot

import (
	"fmt"

	"github.com/chazu/mosaic/world"
)

// Restore reconstructs an image into a world. The target world should be
// fresh: restored identifiers must not collide with live ones. Tasks are
// restored first so block task lists and event bindings resolve, then
// blocks, then buffers; every reconstructed block passes through the
// AfterDeserialize hook.
func Restore(w *world.World, img *Image) error {
	w.InstanceID = img.InstanceID
	w.Registry.AdvanceTo(world.ID(img.NextID))

	for i := range img.Tasks {
		rec := &img.Tasks[i]
		t := &world.Task{
			Method:   internName(w, rec.Method),
			Target:   world.ID(rec.Target),
			Clock:    world.ClockMode(rec.Clock),
			Count:    rec.Count,
			Subtasks: restoreIDs(rec.Subtasks),
			Finished: rec.Finished,
		}
		for _, arg := range rec.Args {
			t.Args = append(t.Args, restoreValue(w, arg))
		}
		if err := w.Registry.RestoreAt(world.ID(rec.ID), t); err != nil {
			return fmt.Errorf("snapshot: restore task %d: %w", rec.ID, err)
		}
	}

	for i := range img.Blocks {
		rec := &img.Blocks[i]
		b := &world.Block{
			Op:        internName(w, rec.Op),
			Inputs:    restoreIDs(rec.Inputs),
			Parent:    world.ID(rec.Parent),
			Pinned:    rec.Pinned,
			Temporary: rec.Temporary,
			Visible:   rec.Visible,
			Tasks:     restoreIDs(rec.Tasks),
			X:         rec.X,
			Y:         rec.Y,
			Width:     rec.Width,
			Height:    rec.Height,
		}
		if rec.Category != "" {
			b.Category = w.Symbols.Intern(rec.Category)
		}
		for _, tag := range rec.Tags {
			b.AddTag(w.Symbols.Intern(tag))
		}
		for _, ev := range rec.Events {
			if b.Events == nil {
				b.Events = make(map[world.EventKey]world.ID)
			}
			key := world.EventKey{Key: ev.Key, Mods: world.ModMask(ev.Mods)}
			b.Events[key] = world.ID(ev.Task)
		}
		for _, vr := range rec.Vars {
			b.SetVar(w.Symbols.Intern(vr.Name), restoreValue(w, vr.Value))
		}
		if err := w.Registry.RestoreAt(world.ID(rec.ID), b); err != nil {
			return fmt.Errorf("snapshot: restore block %d: %w", rec.ID, err)
		}
	}

	for i := range img.Buffers {
		rec := &img.Buffers[i]
		buf := &world.Buffer{
			Name:   rec.Name,
			Blocks: restoreIDs(rec.Blocks),
		}
		for _, vr := range rec.Vars {
			buf.SetVar(w.Symbols.Intern(vr.Name), restoreValue(w, vr.Value))
		}
		if err := w.RestoreBuffer(world.ID(rec.ID), buf); err != nil {
			return fmt.Errorf("snapshot: restore buffer %d: %w", rec.ID, err)
		}
	}

	if img.ActiveBuffer != 0 {
		if err := w.SetActiveBuffer(world.ID(img.ActiveBuffer)); err != nil {
			return fmt.Errorf("snapshot: restore active buffer: %w", err)
		}
	}

	for i := range img.Blocks {
		if err := w.AfterDeserialize(world.ID(img.Blocks[i].ID)); err != nil {
			return fmt.Errorf("snapshot: after-deserialize hook for block %d: %w", img.Blocks[i].ID, err)
		}
	}
	return nil
}

func internName(w *world.World, name string) world.Symbol {
	if name == "" {
		return world.NoSymbol
	}
	return w.Symbols.Intern(name)
}

func restoreIDs(ids []uint32) []world.ID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]world.ID, len(ids))
	for i, id := range ids {
		out[i] = world.ID(id)
	}
	return out
}

func restoreValue(w *world.World, rec ValueRec) world.Value {
	switch world.ValueType(rec.Type) {
	case world.TypeBool:
		return world.Bool(rec.Int != 0)
	case world.TypeInt:
		return world.Int64(rec.Int)
	case world.TypeFloat:
		return world.Float64(rec.Float)
	case world.TypeString:
		return world.Str(rec.Str)
	case world.TypeSymbol:
		return world.Sym(w.Symbols.Intern(rec.Sym))
	case world.TypeBlock:
		return world.BlockRef(world.ID(rec.Block))
	case world.TypeList:
		items := make([]world.Value, 0, len(rec.List))
		for _, item := range rec.List {
			items = append(items, restoreValue(w, item))
		}
		return world.ListVal(items...)
	default:
		return world.Nil()
	}
}
