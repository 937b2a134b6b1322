package world

import (
	"testing"
)

// ---------------------------------------------------------------------------
// Task clock tests
// ---------------------------------------------------------------------------

// countingMethod registers a selector whose invocations are counted and
// whose result is controlled by the returned cell.
type methodCell struct {
	calls  int
	result Value
}

func registerCountingMethod(w *World, name string) (*methodCell, Symbol) {
	cell := &methodCell{result: Nil()}
	sym := w.RegisterMethod(name, func(w *World, target ID, args []Value) (Value, error) {
		cell.calls++
		return cell.result, nil
	})
	return cell, sym
}

func TestImmediateTaskRunsEveryTick(t *testing.T) {
	w := NewWorld()
	cell, sym := registerCountingMethod(w, "probe")
	target := w.NewBlock(w.Symbols.Intern("sequence"))

	task := w.NewTask(sym, target.ID)
	for tick := 1; tick <= 3; tick++ {
		running, err := task.Running(w)
		if err != nil {
			t.Fatalf("tick %d: %v", tick, err)
		}
		if !running {
			t.Fatalf("tick %d: immediate task reported not-running", tick)
		}
	}
	if cell.calls != 3 {
		t.Errorf("method calls = %d, want 3", cell.calls)
	}
}

func TestCountdownTask(t *testing.T) {
	w := NewWorld()
	cell, sym := registerCountingMethod(w, "fire")
	owner := w.NewBlock(w.Symbols.Intern("sequence"))
	target := w.NewBlock(w.Symbols.Intern("sequence"))

	task := w.NewCountdownTask(3, sym, target.ID)
	if err := w.AttachTask(owner.ID, task.ID); err != nil {
		t.Fatalf("AttachTask: %v", err)
	}

	// Ticks 1-3: running, no side effect.
	for tick := 1; tick <= 3; tick++ {
		if err := w.RunTasks(owner.ID); err != nil {
			t.Fatalf("tick %d: %v", tick, err)
		}
		if cell.calls != 0 {
			t.Fatalf("tick %d: method fired early (%d calls)", tick, cell.calls)
		}
		if len(owner.Tasks) != 1 {
			t.Fatalf("tick %d: task dropped early", tick)
		}
	}

	// Tick 4: fires exactly once and stops.
	if err := w.RunTasks(owner.ID); err != nil {
		t.Fatalf("tick 4: %v", err)
	}
	if cell.calls != 1 {
		t.Errorf("tick 4: method calls = %d, want 1", cell.calls)
	}
	if len(owner.Tasks) != 0 {
		t.Errorf("tick 4: task list = %v, want empty", owner.Tasks)
	}

	// Tick 5: absent from the owner's list, no further effect.
	if err := w.RunTasks(owner.ID); err != nil {
		t.Fatalf("tick 5: %v", err)
	}
	if cell.calls != 1 {
		t.Errorf("tick 5: method calls = %d, want 1", cell.calls)
	}
	if !task.Finished {
		t.Error("fired countdown task should be finished")
	}
}

func TestPredicateTaskForwardsToSubtasks(t *testing.T) {
	w := NewWorld()
	pred, predSym := registerCountingMethod(w, "while")
	sub, subSym := registerCountingMethod(w, "step")
	target := w.NewBlock(w.Symbols.Intern("sequence"))

	subtask := w.NewTask(subSym, target.ID)
	task := w.NewPredicateTask(predSym, target.ID, subtask.ID)

	// Truthy: task keeps running and forwards Running to the subtask.
	pred.result = Bool(true)
	for tick := 1; tick <= 2; tick++ {
		running, err := task.Running(w)
		if err != nil {
			t.Fatalf("tick %d: %v", tick, err)
		}
		if !running {
			t.Fatalf("tick %d: predicate task stopped while truthy", tick)
		}
	}
	if pred.calls != 2 {
		t.Errorf("predicate calls = %d, want 2", pred.calls)
	}
	if sub.calls != 2 {
		t.Errorf("subtask calls = %d, want 2 (one per forwarded tick)", sub.calls)
	}

	// Falsy: task stops and every subtask receives Finish exactly once.
	pred.result = Bool(false)
	running, err := task.Running(w)
	if err != nil {
		t.Fatalf("falsy tick: %v", err)
	}
	if running {
		t.Error("predicate task kept running on falsy result")
	}
	if !subtask.Finished {
		t.Error("subtask not finished after falsy predicate")
	}
	if sub.calls != 2 {
		t.Errorf("subtask calls = %d, want 2 (finish must not evaluate)", sub.calls)
	}

	// Terminal: finished is monotonic, no re-evaluation.
	running, err = task.Running(w)
	if err != nil {
		t.Fatalf("terminal tick: %v", err)
	}
	if running {
		t.Error("finished task reported running")
	}
	if pred.calls != 3 {
		t.Errorf("predicate calls = %d, want 3 (terminal tick must not evaluate)", pred.calls)
	}
}

func TestFinishedFlagIsMonotonic(t *testing.T) {
	w := NewWorld()
	cell, sym := registerCountingMethod(w, "noop")
	target := w.NewBlock(w.Symbols.Intern("sequence"))

	task := w.NewTask(sym, target.ID)
	task.Finish()
	if !task.Finished {
		t.Fatal("Finish did not set the flag")
	}

	running, err := task.Running(w)
	if err != nil {
		t.Fatalf("Running: %v", err)
	}
	if running {
		t.Error("finished task reported running")
	}
	if cell.calls != 0 {
		t.Errorf("finished task evaluated (%d calls)", cell.calls)
	}
}

func TestInvalidClockPanics(t *testing.T) {
	w := NewWorld()
	_, sym := registerCountingMethod(w, "noop")
	target := w.NewBlock(w.Symbols.Intern("sequence"))

	task := w.NewTask(sym, target.ID)
	task.Clock = clockModeLimit + 5

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("invalid clock mode should panic")
		}
		if _, ok := r.(*TaskInvariantError); !ok {
			t.Errorf("panic value = %T, want *TaskInvariantError", r)
		}
	}()
	task.Running(w)
}

func TestTaskEvaluateResolvesTarget(t *testing.T) {
	w := NewWorld()
	target := w.NewBlock(w.Symbols.Intern("sequence"))
	target.Visible = false

	task := w.NewTask(w.Symbols.Intern("show"), target.ID)
	if _, err := task.Evaluate(w); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !target.Visible {
		t.Error("show method did not reach its target")
	}

	// A discarded target propagates NotFound to the caller.
	w.Registry.Unregister(target.ID)
	if _, err := task.Evaluate(w); err == nil {
		t.Error("Evaluate against an unregistered target should fail")
	}
}
