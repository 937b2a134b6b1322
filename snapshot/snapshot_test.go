package snapshot

import (
	"testing"

	"github.com/chazu/mosaic/world"
)

// buildWorld assembles a world with a buffer holding a small tree, a
// countdown task mid-flight, an event binding, and variables at both
// the block and buffer level.
func buildWorld(t *testing.T) (*world.World, world.ID, world.ID) {
	t.Helper()
	w := world.NewWorld()

	buf := w.CreateBuffer("main")
	buf.SetVar(w.Symbols.Intern("speed"), world.Int64(12))

	root := w.NewBlock(w.Symbols.Intern("sequence"))
	root.AddTag(w.Symbols.Intern("anchor"))
	root.SetVar(w.Symbols.Intern("label"), world.Str("hello"))
	root.X, root.Y = 40, 25

	child := w.NewLiteralBlock(world.Float64(2.5))
	if err := w.Adopt(root.ID, child.ID); err != nil {
		t.Fatalf("adopt: %v", err)
	}
	if err := w.AppendTopLevel(buf.ID, root.ID); err != nil {
		t.Fatalf("append top-level: %v", err)
	}

	show := w.Symbols.Intern("show")
	tick := w.NewCountdownTask(3, show, root.ID, world.Sym(w.Symbols.Intern("fast")))
	if err := w.AttachTask(root.ID, tick.ID); err != nil {
		t.Fatalf("attach task: %v", err)
	}

	keyTask := w.NewTask(show, child.ID)
	if err := w.BindEvent(root.ID, "Return", world.ModCtrl, keyTask.ID); err != nil {
		t.Fatalf("bind event: %v", err)
	}

	return w, root.ID, tick.ID
}

func TestCaptureRestoreRoundTrip(t *testing.T) {
	src, rootID, tickID := buildWorld(t)

	// Advance the countdown once so the image carries mid-flight state.
	tick, err := src.Task(tickID)
	if err != nil {
		t.Fatalf("task: %v", err)
	}
	if running, err := tick.Running(src); err != nil || !running {
		t.Fatalf("first tick: running=%v err=%v", running, err)
	}

	img, err := Capture(src)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	data, err := Marshal(img)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	decoded, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	dst := world.NewWorld()
	if err := Restore(dst, decoded); err != nil {
		t.Fatalf("restore: %v", err)
	}

	if dst.InstanceID != src.InstanceID {
		t.Errorf("instance id = %q, want %q", dst.InstanceID, src.InstanceID)
	}

	buf := dst.ActiveBuffer()
	if buf == nil || buf.Name != "main" {
		t.Fatalf("active buffer = %v, want main", buf)
	}
	if got, ok := buf.GetVar(dst.Symbols.Intern("speed")); !ok || got.Int != 12 {
		t.Errorf("buffer var speed = %v ok=%v, want 12", got, ok)
	}
	if len(buf.Blocks) != 1 || buf.Blocks[0] != rootID {
		t.Fatalf("buffer blocks = %v, want [%d]", buf.Blocks, rootID)
	}

	root, err := dst.Block(rootID)
	if err != nil {
		t.Fatalf("restored root: %v", err)
	}
	if got := dst.Symbols.Name(root.Op); got != "sequence" {
		t.Errorf("root op = %q, want sequence", got)
	}
	if !root.HasTag(dst.Symbols.Intern("anchor")) {
		t.Error("root lost its anchor tag")
	}
	if got, ok := root.GetVar(dst.Symbols.Intern("label")); !ok || got.Str != "hello" {
		t.Errorf("root var label = %v ok=%v, want hello", got, ok)
	}
	if root.X != 40 || root.Y != 25 {
		t.Errorf("root position = (%v, %v), want (40, 25)", root.X, root.Y)
	}
	if len(root.Inputs) != 1 {
		t.Fatalf("root inputs = %v, want one child", root.Inputs)
	}

	child, err := dst.Block(root.Inputs[0])
	if err != nil {
		t.Fatalf("restored child: %v", err)
	}
	if child.Parent != root.ID {
		t.Errorf("child parent = %d, want %d", child.Parent, root.ID)
	}

	task, err := dst.Task(tickID)
	if err != nil {
		t.Fatalf("restored task: %v", err)
	}
	if task.Count != 2 {
		t.Errorf("countdown remaining = %d, want 2", task.Count)
	}
	if task.Finished {
		t.Error("restored task already finished")
	}
	if got := dst.Symbols.Name(task.Method); got != "show" {
		t.Errorf("task method = %q, want show", got)
	}
	if len(task.Args) != 1 || dst.Symbols.Name(task.Args[0].Sym) != "fast" {
		t.Errorf("task args = %v, want [:fast]", task.Args)
	}

	// The event binding must resolve through the restored world.
	_, _, matched, err := dst.OnEvent(rootID, world.KeyEvent{Sym: "Return", Mods: world.ModCtrl})
	if err != nil {
		t.Fatalf("dispatch on restored world: %v", err)
	}
	if !matched {
		t.Error("restored event binding did not match")
	}
}

func TestRestoreRejectsOccupiedIdentifier(t *testing.T) {
	src, _, _ := buildWorld(t)
	img, err := Capture(src)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}

	dst := world.NewWorld()
	dst.NewBlock(dst.Symbols.Intern("squatter"))
	if err := Restore(dst, img); err == nil {
		t.Fatal("restore into an occupied registry succeeded, want error")
	}
}

func TestUnmarshalRejectsUnknownVersion(t *testing.T) {
	img := &Image{Version: ImageVersion + 1}
	data, err := Marshal(img)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := Unmarshal(data); err == nil {
		t.Fatal("unmarshal accepted a future version, want error")
	}
}

func TestFreshIdentifiersAfterRestore(t *testing.T) {
	src, _, _ := buildWorld(t)
	img, err := Capture(src)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}

	dst := world.NewWorld()
	if err := Restore(dst, img); err != nil {
		t.Fatalf("restore: %v", err)
	}

	b := dst.NewBlock(dst.Symbols.Intern("fresh"))
	if b.ID <= world.ID(img.NextID) {
		t.Errorf("new block id %d collides with restored range (next %d)", b.ID, img.NextID)
	}
}

func TestQuotedValuesDropFromImage(t *testing.T) {
	w := world.NewWorld()
	buf := w.CreateBuffer("scratch")
	b := w.NewBlock(w.Symbols.Intern("sequence"))
	if err := w.AppendTopLevel(buf.ID, b.ID); err != nil {
		t.Fatalf("append top-level: %v", err)
	}
	b.Results = append(b.Results, world.NodeVal(nil))

	// Results are transient and never serialized, but a node stored in a
	// variable must degrade to nil rather than poison the image.
	b.SetVar(w.Symbols.Intern("code"), world.NodeVal(nil))

	img, err := Capture(w)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	data, err := Marshal(img)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	decoded, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	dst := world.NewWorld()
	if err := Restore(dst, decoded); err != nil {
		t.Fatalf("restore: %v", err)
	}
	got, err := dst.Block(b.ID)
	if err != nil {
		t.Fatalf("restored block: %v", err)
	}
	v, ok := got.GetVar(dst.Symbols.Intern("code"))
	if !ok || v.Type != world.TypeNil {
		t.Errorf("quoted var restored as %v, want nil", v)
	}
}
