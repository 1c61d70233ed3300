package undo

// Option configures a Log.
type Option func(*Log)

// WithRedoInvalidation makes Record discard the redo history, so that a new
// edit after an undo cannot be followed by a redo of the undone edit.
func WithRedoInvalidation() Option {
	return func(l *Log) { l.invalidateRedo = true }
}

// Log holds the undo and redo stacks of one edited object. By default
// recording a new command leaves the redo stack untouched.
type Log struct {
	undo           []Command
	redo           []Command
	replaying      bool
	invalidateRedo bool
}

// NewLog returns an empty log.
func NewLog(opts ...Option) *Log {
	l := &Log{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record pushes cmd onto the undo stack. Calls made while a command is being
// undone or redone are ignored.
func (l *Log) Record(cmd Command) {
	if l.replaying || cmd == nil {
		return
	}
	l.undo = append(l.undo, cmd)
	if l.invalidateRedo {
		l.redo = nil
	}
}

// Undo reverts the most recent command and reports whether there was one.
func (l *Log) Undo() bool {
	if len(l.undo) == 0 {
		return false
	}
	cmd := l.undo[len(l.undo)-1]
	l.undo = l.undo[:len(l.undo)-1]
	l.replay(cmd.Revert)
	l.redo = append(l.redo, cmd)
	return true
}

// Redo re-applies the most recently undone command and reports whether there was one.
func (l *Log) Redo() bool {
	if len(l.redo) == 0 {
		return false
	}
	cmd := l.redo[len(l.redo)-1]
	l.redo = l.redo[:len(l.redo)-1]
	l.replay(cmd.Apply)
	l.undo = append(l.undo, cmd)
	return true
}

// CanUndo reports whether Undo would do anything.
func (l *Log) CanUndo() bool { return len(l.undo) > 0 }

// CanRedo reports whether Redo would do anything.
func (l *Log) CanRedo() bool { return len(l.redo) > 0 }

// Len returns the number of undoable commands.
func (l *Log) Len() int { return len(l.undo) }

// Clear drops both stacks.
func (l *Log) Clear() {
	l.undo = nil
	l.redo = nil
}

func (l *Log) replay(fn func()) {
	l.replaying = true
	defer func() { l.replaying = false }()
	fn()
}

// Set assigns value to *target and records the change.
func Set[V any](l *Log, property string, target *V, value V) {
	cmd := NewModify(property, func(v V) { *target = v }, *target, value)
	cmd.Apply()
	l.Record(cmd)
}

// Append adds item to the end of *list and records the change.
func Append[E comparable](l *Log, property string, list *[]E, item E) {
	cmd := NewAdd(property, list, item)
	cmd.Apply()
	l.Record(cmd)
}

// RemoveAt deletes the element at index from *list and records the change.
func RemoveAt[E comparable](l *Log, property string, list *[]E, index int) error {
	cmd, err := NewRemove(property, list, index)
	if err != nil {
		return err
	}
	cmd.Apply()
	l.Record(cmd)
	return nil
}
