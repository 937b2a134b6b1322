package world

import (
	"testing"
)

// ---------------------------------------------------------------------------
// Scheduler tests
// ---------------------------------------------------------------------------

// traceMethod appends its tag to a shared trace on every invocation.
func registerTraceMethod(w *World, name string, trace *[]string) Symbol {
	return w.RegisterMethod(name, func(w *World, target ID, args []Value) (Value, error) {
		*trace = append(*trace, name)
		return Nil(), nil
	})
}

func TestOnUpdateDepthFirstLeftToRight(t *testing.T) {
	w := NewWorld()
	op := w.Symbols.Intern("sequence")

	var trace []string
	root := w.NewBlock(op)
	left := w.NewBlock(op)
	right := w.NewBlock(op)
	grandchild := w.NewBlock(op)
	mustAdopt(t, w, root.ID, left.ID)
	mustAdopt(t, w, root.ID, right.ID)
	mustAdopt(t, w, left.ID, grandchild.ID)

	attach := func(owner ID, name string) {
		sym := registerTraceMethod(w, name, &trace)
		task := w.NewTask(sym, owner)
		if err := w.AttachTask(owner, task.ID); err != nil {
			t.Fatalf("AttachTask(%s): %v", name, err)
		}
	}
	attach(root.ID, "root")
	attach(left.ID, "left")
	attach(grandchild.ID, "grandchild")
	attach(right.ID, "right")

	if err := w.OnUpdate(root.ID); err != nil {
		t.Fatalf("OnUpdate: %v", err)
	}

	want := []string{"root", "left", "grandchild", "right"}
	if len(trace) != len(want) {
		t.Fatalf("trace = %v, want %v", trace, want)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Fatalf("trace = %v, want %v (own tasks before children, left to right)", trace, want)
		}
	}
}

func TestRunTasksListOrder(t *testing.T) {
	w := NewWorld()
	owner := w.NewBlock(w.Symbols.Intern("sequence"))

	var trace []string
	for _, name := range []string{"first", "second", "third"} {
		sym := registerTraceMethod(w, name, &trace)
		task := w.NewTask(sym, owner.ID)
		if err := w.AttachTask(owner.ID, task.ID); err != nil {
			t.Fatalf("AttachTask: %v", err)
		}
	}

	if err := w.RunTasks(owner.ID); err != nil {
		t.Fatalf("RunTasks: %v", err)
	}
	want := []string{"first", "second", "third"}
	for i := range want {
		if trace[i] != want[i] {
			t.Fatalf("trace = %v, want %v (list order)", trace, want)
		}
	}
}

func TestRunTasksDropsFinished(t *testing.T) {
	w := NewWorld()
	_, sym := registerCountingMethod(w, "noop")
	owner := w.NewBlock(w.Symbols.Intern("sequence"))

	done := w.NewTask(sym, owner.ID)
	done.Finish()
	live := w.NewTask(sym, owner.ID)
	for _, id := range []ID{done.ID, live.ID} {
		if err := w.AttachTask(owner.ID, id); err != nil {
			t.Fatalf("AttachTask: %v", err)
		}
	}

	if err := w.RunTasks(owner.ID); err != nil {
		t.Fatalf("RunTasks: %v", err)
	}
	if len(owner.Tasks) != 1 || owner.Tasks[0] != live.ID {
		t.Errorf("tasks = %v, want [%d]", owner.Tasks, live.ID)
	}
}

func TestTickDrivesAllBuffers(t *testing.T) {
	w := NewWorld()
	op := w.Symbols.Intern("sequence")

	var trace []string
	first := w.CreateBuffer("first")
	second := w.CreateBuffer("second")

	a := w.NewBlock(op)
	b := w.NewBlock(op)
	if err := w.AppendTopLevel(first.ID, a.ID); err != nil {
		t.Fatalf("AppendTopLevel: %v", err)
	}
	if err := w.AppendTopLevel(second.ID, b.ID); err != nil {
		t.Fatalf("AppendTopLevel: %v", err)
	}

	symA := registerTraceMethod(w, "alpha", &trace)
	symB := registerTraceMethod(w, "beta", &trace)
	taskA := w.NewTask(symA, a.ID)
	taskB := w.NewTask(symB, b.ID)
	if err := w.AttachTask(a.ID, taskA.ID); err != nil {
		t.Fatal(err)
	}
	if err := w.AttachTask(b.ID, taskB.ID); err != nil {
		t.Fatal(err)
	}

	if err := w.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	want := []string{"alpha", "beta"}
	if len(trace) != 2 || trace[0] != want[0] || trace[1] != want[1] {
		t.Errorf("trace = %v, want %v (buffer order)", trace, want)
	}
}

func TestReparentingVisibleWithinSameTick(t *testing.T) {
	w := NewWorld()
	op := w.Symbols.Intern("sequence")

	root := w.NewBlock(op)
	mover := w.NewBlock(op)
	dest := w.NewBlock(op)
	mustAdopt(t, w, root.ID, mover.ID)
	mustAdopt(t, w, root.ID, dest.ID)

	// A task on root reparents mover under dest; the move must be in
	// effect immediately for everything scheduled after it.
	sym := w.RegisterMethod("reparent", func(w *World, target ID, args []Value) (Value, error) {
		return Nil(), w.Adopt(dest.ID, mover.ID)
	})
	task := w.NewCountdownTask(0, sym, root.ID)
	if err := w.AttachTask(root.ID, task.ID); err != nil {
		t.Fatal(err)
	}

	if err := w.OnUpdate(root.ID); err != nil {
		t.Fatalf("OnUpdate: %v", err)
	}
	if mover.Parent != dest.ID {
		t.Errorf("mover.Parent = %d, want %d", mover.Parent, dest.ID)
	}
	if w.Contains(root.ID, mover.ID) {
		t.Error("mover still an input of root after same-tick reparent")
	}
}
