package world

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Error taxonomy
// ---------------------------------------------------------------------------

// ErrNotFound is the sentinel matched by errors.Is for any failed
// registry lookup.
var ErrNotFound = errors.New("world: object not found")

// NotFoundError reports a registry resolve against an identifier with no
// live registration.
type NotFoundError struct {
	ID ID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("world: object %d not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ErrStructural is the sentinel matched by errors.Is for any structural
// violation.
var ErrStructural = errors.New("world: structural error")

// StructuralError reports an invalid tree operation: a reparenting that
// would create a cycle, or removal of an input that is not present.
// Structural errors signal model corruption and are never retried.
type StructuralError struct {
	Op     string // the operation that failed
	Child  ID
	Parent ID
	Msg    string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("world: %s: %s (child=%d parent=%d)", e.Op, e.Msg, e.Child, e.Parent)
}

func (e *StructuralError) Is(target error) bool {
	return target == ErrStructural
}

// TaskInvariantError is panicked when a task's clock holds a value outside
// the defined modes. This is a programmer error, not a recoverable
// condition.
type TaskInvariantError struct {
	Task  ID
	Clock ClockMode
}

func (e *TaskInvariantError) Error() string {
	return fmt.Sprintf("world: task %d has invalid clock mode %d", e.Task, e.Clock)
}
