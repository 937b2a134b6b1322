package world

// ---------------------------------------------------------------------------
// Event dispatch
// ---------------------------------------------------------------------------

// ModMask is a bit set of modifier keys.
type ModMask uint8

const (
	ModShift ModMask = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// EventKey is a normalized (key, modifiers) pair used as a binding key.
// Key is either a symbolic name ("Enter", "Backspace") or a literal
// character spelled as itself.
type EventKey struct {
	Key  string
	Mods ModMask
}

// KeyEvent is a key event delivered by the host. Sym is the symbolic,
// locale-independent key name. Literal is the literal character the key
// produced, or zero when none accompanies the event.
type KeyEvent struct {
	Sym     string
	Literal rune
	Mods    ModMask
}

// TextInserter receives literal characters that no event binding
// claimed. What insertion means is up to the host.
type TextInserter interface {
	InsertText(w *World, node ID, ch rune) error
}

// BindEvent stores a task identifier under the normalized (key, modifiers)
// pair in the node's event table, created lazily on first bind.
func (w *World) BindEvent(node ID, key string, mods ModMask, task ID) error {
	b, err := w.Block(node)
	if err != nil {
		return err
	}
	if b.Events == nil {
		b.Events = make(map[EventKey]ID)
	}
	b.Events[EventKey{Key: key, Mods: mods}] = task
	return nil
}

// OnEvent looks up a binding for the event and, if one matches, evaluates
// its task and invalidates the node's cached layout.
//
// Lookup order: the symbolic key first, then the literal character if one
// accompanies the event. Symbolic names (Enter, Backspace) therefore take
// precedence, while literal-character bindings still fire when no
// symbolic binding exists. Absence of a match is expected, not an error:
// the returned task is NoID and matched is false.
func (w *World) OnEvent(node ID, ev KeyEvent) (task ID, result Value, matched bool, err error) {
	b, err := w.Block(node)
	if err != nil {
		return NoID, Nil(), false, err
	}
	if b.Events == nil {
		return NoID, Nil(), false, nil
	}

	task, matched = b.Events[EventKey{Key: ev.Sym, Mods: ev.Mods}]
	if !matched && ev.Literal != 0 {
		task, matched = b.Events[EventKey{Key: string(ev.Literal), Mods: ev.Mods}]
	}
	if !matched {
		return NoID, Nil(), false, nil
	}

	t, err := w.Task(task)
	if err != nil {
		return task, Nil(), true, err
	}
	result, err = t.Evaluate(w)
	b.InvalidateLayout()
	return task, result, true, err
}

// OnTextEvent delegates to OnEvent. When no binding matches and the event
// carries a literal character, the character is forwarded to the world's
// text inserter, if one is installed.
func (w *World) OnTextEvent(node ID, ev KeyEvent) (task ID, result Value, matched bool, err error) {
	task, result, matched, err = w.OnEvent(node, ev)
	if err != nil || matched {
		return task, result, matched, err
	}
	if ev.Literal != 0 && w.TextInserter != nil {
		err = w.TextInserter.InsertText(w, node, ev.Literal)
	}
	return NoID, Nil(), false, err
}
