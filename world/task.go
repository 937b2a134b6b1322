package world

// ---------------------------------------------------------------------------
// Task: schedulable unit of deferred or repeated action
// ---------------------------------------------------------------------------

// ClockMode selects a task's per-tick behavior.
type ClockMode uint8

const (
	// ClockImmediate tasks evaluate on every tick and always report running.
	ClockImmediate ClockMode = iota
	// ClockCountdown tasks skip Count ticks, then evaluate exactly once.
	ClockCountdown
	// ClockPredicate tasks evaluate every tick and test the result:
	// truthy keeps the task (and its subtasks) running, falsy finishes
	// the subtasks and stops.
	ClockPredicate

	clockModeLimit
)

// Task is a schedulable action owned by a block. Target and Subtasks are
// identifiers resolved through the registry.
type Task struct {
	ID ID

	Method Symbol
	Target ID
	Args   []Value

	Clock ClockMode
	Count int // remaining ticks, countdown mode only

	Subtasks []ID

	// Finished is monotonic: once true it never reverts.
	Finished bool
}

func (t *Task) RegistryID() ID { return t.ID }
func (t *Task) adoptID(id ID)  { t.ID = id }

// NewTask creates and registers an immediate-mode task.
func (w *World) NewTask(method Symbol, target ID, args ...Value) *Task {
	t := &Task{Method: method, Target: target, Args: args}
	w.Registry.Register(t)
	return t
}

// NewCountdownTask creates and registers a task that skips n ticks and
// then performs its action exactly once.
func (w *World) NewCountdownTask(n int, method Symbol, target ID, args ...Value) *Task {
	t := w.NewTask(method, target, args...)
	t.Clock = ClockCountdown
	t.Count = n
	return t
}

// NewPredicateTask creates and registers a predicate-mode task driving
// the given subtasks.
func (w *World) NewPredicateTask(method Symbol, target ID, subtasks ...ID) *Task {
	t := w.NewTask(method, target)
	t.Clock = ClockPredicate
	t.Subtasks = subtasks
	return t
}

// Task resolves an identifier to a *Task.
func (w *World) Task(id ID) (*Task, error) {
	obj, err := w.Registry.Resolve(id)
	if err != nil {
		return nil, err
	}
	t, ok := obj.(*Task)
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return t, nil
}

// AttachTask appends a task to a block's task list.
func (w *World) AttachTask(owner, task ID) error {
	b, err := w.Block(owner)
	if err != nil {
		return err
	}
	if _, err := w.Task(task); err != nil {
		return err
	}
	b.Tasks = append(b.Tasks, task)
	return nil
}

// Evaluate applies the task's method to its target with its arguments,
// resolving the target through the registry at dispatch time.
func (t *Task) Evaluate(w *World) (Value, error) {
	return w.Dispatch(t.Method, t.Target, t.Args)
}

// Finish marks the task finished. Idempotent; the flag never reverts.
func (t *Task) Finish() {
	t.Finished = true
}

// Running advances the task by one tick and reports whether it should be
// retained by the scheduler.
//
// A finished task is terminal and reports not-running without evaluating.
// A countdown at zero evaluates once and stops; a positive countdown
// decrements without evaluating and keeps running. A predicate task
// evaluates and, on a truthy result, forwards Running to every subtask;
// on a falsy result it forwards Finish to every subtask and stops. An
// immediate task evaluates and always keeps running. Any other clock
// value is a fatal invariant violation.
func (t *Task) Running(w *World) (bool, error) {
	if t.Finished {
		return false, nil
	}

	switch t.Clock {
	case ClockCountdown:
		if t.Count > 0 {
			t.Count--
			return true, nil
		}
		_, err := t.Evaluate(w)
		t.Finished = true
		return false, err

	case ClockPredicate:
		result, err := t.Evaluate(w)
		if err != nil {
			return false, err
		}
		if result.IsTruthy() {
			for _, sub := range t.Subtasks {
				st, err := w.Task(sub)
				if err != nil {
					return true, err
				}
				if _, err := st.Running(w); err != nil {
					return true, err
				}
			}
			return true, nil
		}
		for _, sub := range t.Subtasks {
			st, err := w.Task(sub)
			if err != nil {
				return false, err
			}
			st.Finish()
		}
		t.Finished = true
		return false, nil

	case ClockImmediate:
		_, err := t.Evaluate(w)
		return true, err

	default:
		panic(&TaskInvariantError{Task: t.ID, Clock: t.Clock})
	}
}
