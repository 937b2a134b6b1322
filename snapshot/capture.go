package snapshot

import (
	"fmt"
	"sort"

	"github.com/chazu/mosaic/world"
)

// Capture produces an image of every live buffer in the world, the block
// trees they own, and the tasks those blocks carry. Each block's
// BeforeSerialize hook runs immediately before it is recorded.
func Capture(w *world.World) (*Image, error) {
	img := &Image{
		Version:    ImageVersion,
		InstanceID: w.InstanceID,
		NextID:     uint32(w.Registry.LastID()),
	}
	if active := w.ActiveBuffer(); active != nil {
		img.ActiveBuffer = uint32(active.ID)
	}

	seen := make(map[world.ID]bool)
	for _, buf := range w.Buffers() {
		img.Buffers = append(img.Buffers, BufferRec{
			ID:     uint32(buf.ID),
			Name:   buf.Name,
			Vars:   captureVars(w, buf.Vars),
			Blocks: captureIDs(buf.Blocks),
		})
		for _, top := range buf.Blocks {
			if err := captureTree(w, top, seen, img); err != nil {
				return nil, err
			}
		}
	}
	return img, nil
}

func captureTree(w *world.World, id world.ID, seen map[world.ID]bool, img *Image) error {
	if id == world.NoID || seen[id] {
		return nil
	}
	b, err := w.Block(id)
	if err != nil {
		return fmt.Errorf("snapshot: capture block %d: %w", id, err)
	}
	seen[id] = true

	if err := w.BeforeSerialize(id); err != nil {
		return fmt.Errorf("snapshot: before-serialize hook for block %d: %w", id, err)
	}

	rec := BlockRec{
		ID:        uint32(b.ID),
		Op:        w.Symbols.Name(b.Op),
		Inputs:    captureIDs(b.Inputs),
		Parent:    uint32(b.Parent),
		Category:  w.Symbols.Name(b.Category),
		Pinned:    b.Pinned,
		Temporary: b.Temporary,
		Visible:   b.Visible,
		Tasks:     captureIDs(b.Tasks),
		Vars:      captureVars(w, b.Vars),
		X:         b.X,
		Y:         b.Y,
		Width:     b.Width,
		Height:    b.Height,
	}

	for tag := range b.Tags {
		rec.Tags = append(rec.Tags, w.Symbols.Name(tag))
	}
	sort.Strings(rec.Tags)

	for key, task := range b.Events {
		rec.Events = append(rec.Events, EventRec{
			Key:  key.Key,
			Mods: uint8(key.Mods),
			Task: uint32(task),
		})
	}
	sort.Slice(rec.Events, func(i, j int) bool {
		if rec.Events[i].Key != rec.Events[j].Key {
			return rec.Events[i].Key < rec.Events[j].Key
		}
		return rec.Events[i].Mods < rec.Events[j].Mods
	})

	img.Blocks = append(img.Blocks, rec)

	for _, tid := range b.Tasks {
		if err := captureTask(w, tid, seen, img); err != nil {
			return err
		}
	}
	for _, eb := range b.Events {
		if err := captureTask(w, eb, seen, img); err != nil {
			return err
		}
	}
	for _, in := range b.Inputs {
		if err := captureTree(w, in, seen, img); err != nil {
			return err
		}
	}
	return nil
}

func captureTask(w *world.World, id world.ID, seen map[world.ID]bool, img *Image) error {
	if id == world.NoID || seen[id] {
		return nil
	}
	t, err := w.Task(id)
	if err != nil {
		return fmt.Errorf("snapshot: capture task %d: %w", id, err)
	}
	seen[id] = true

	rec := TaskRec{
		ID:       uint32(t.ID),
		Method:   w.Symbols.Name(t.Method),
		Target:   uint32(t.Target),
		Clock:    uint8(t.Clock),
		Count:    t.Count,
		Subtasks: captureIDs(t.Subtasks),
		Finished: t.Finished,
	}
	for _, arg := range t.Args {
		rec.Args = append(rec.Args, captureValue(w, arg))
	}
	img.Tasks = append(img.Tasks, rec)

	for _, sub := range t.Subtasks {
		if err := captureTask(w, sub, seen, img); err != nil {
			return err
		}
	}
	return nil
}

func captureIDs(ids []world.ID) []uint32 {
	if len(ids) == 0 {
		return nil
	}
	out := make([]uint32, len(ids))
	for i, id := range ids {
		out[i] = uint32(id)
	}
	return out
}

func captureVars(w *world.World, vars map[world.Symbol]world.Value) []VarRec {
	if len(vars) == 0 {
		return nil
	}
	out := make([]VarRec, 0, len(vars))
	for name, v := range vars {
		out = append(out, VarRec{Name: w.Symbols.Name(name), Value: captureValue(w, v)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func captureValue(w *world.World, v world.Value) ValueRec {
	rec := ValueRec{Type: uint8(v.Type)}
	switch v.Type {
	case world.TypeBool, world.TypeInt:
		rec.Int = v.Int
	case world.TypeFloat:
		rec.Float = v.Float
	case world.TypeString:
		rec.Str = v.Str
	case world.TypeSymbol:
		rec.Sym = w.Symbols.Name(v.Sym)
	case world.TypeBlock:
		rec.Block = uint32(v.Block)
	case world.TypeList:
		for _, item := range v.List {
			rec.List = append(rec.List, captureValue(w, item))
		}
	case world.TypeNode:
		// Quoted code is rebuilt by recompilation; write nil.
		rec.Type = uint8(world.TypeNil)
	}
	return rec
}
