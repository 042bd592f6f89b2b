package loom

// Command is the external input API: every user action that mutates
// engine state arrives as one of these, dispatched through Engine.Dispatch.
// Kept as a closed sum (one concrete struct per action) rather than a
// generic "verb + args" envelope, so each action's parameters are checked
// at compile time.
type Command interface {
	commandKind() string
}

// InsertTextCommand inserts Text at the given cursor's caret.
type InsertTextCommand struct {
	Split       SplitID
	CursorIndex int
	Text        []byte
}

func (InsertTextCommand) commandKind() string { return "insert_text" }

// DeleteRangeCommand removes [Start, End) from the split's buffer.
type DeleteRangeCommand struct {
	Split      SplitID
	Start, End int64
}

func (DeleteRangeCommand) commandKind() string { return "delete_range" }

// MoveCaretCommand relocates a cursor's caret and collapses its selection.
type MoveCaretCommand struct {
	Split       SplitID
	CursorIndex int
	To          int64
}

func (MoveCaretCommand) commandKind() string { return "move_caret" }

// ExtendSelectionCommand moves a cursor's caret while keeping its anchor.
type ExtendSelectionCommand struct {
	Split       SplitID
	CursorIndex int
	To          int64
}

func (ExtendSelectionCommand) commandKind() string { return "extend_selection" }

// UndoCommand undoes the most recent edit group on the split's buffer.
type UndoCommand struct{ Split SplitID }

func (UndoCommand) commandKind() string { return "undo" }

// RedoCommand redoes the most recently undone edit group.
type RedoCommand struct{ Split SplitID }

func (RedoCommand) commandKind() string { return "redo" }

// Event is the external output API: asynchronous notifications the engine
// emits on its Events() channel. Like Command, kept as a closed sum.
type Event interface {
	eventKind() string
}

// BufferOpenedEvent fires when OpenBuffer registers a new buffer.
type BufferOpenedEvent struct {
	BufferID BufferID
	Name     string
}

func (BufferOpenedEvent) eventKind() string { return "buffer_opened" }

// BufferClosedEvent fires when CloseBuffer removes a buffer.
type BufferClosedEvent struct{ BufferID BufferID }

func (BufferClosedEvent) eventKind() string { return "buffer_closed" }

// BufferClassifiedEvent fires once a buffer's background kind
// classification job completes.
type BufferClassifiedEvent struct {
	BufferID BufferID
	Kind     BufferKind
}

func (BufferClassifiedEvent) eventKind() string { return "buffer_classified" }

// ByteRange is a half-open [Start, End) span of a buffer, the unit every
// change notification reports its extent in.
type ByteRange struct {
	Start, End int64
}

// BufferChangedEvent fires after every successfully applied edit (insert,
// delete, undo, redo): the content in Range changed, and the buffer's
// revision is now Revision. A plugin or LSP-style integration translates
// Range into whatever positional scheme it needs. Revisions only ever
// increase, so an observer that has seen Revision N can ignore any event
// carrying a Revision it has already applied.
type BufferChangedEvent struct {
	BufferID BufferID
	Range    ByteRange
	Revision int64
}

func (BufferChangedEvent) eventKind() string { return "buffer_changed" }

// ViewChangedEvent fires when a split's viewport or cursor set changes,
// whether from a direct command against that split or from the cursor
// fan-out Dispatch performs on sibling splits after an edit.
type ViewChangedEvent struct {
	SplitID  SplitID
	Revision int64
}

func (ViewChangedEvent) eventKind() string { return "view_changed" }

// MarkerChangedEvent fires when a caret is moved by a cursor-move command
// dispatched through the Engine. Markers relocated directly on a Buffer do
// not produce it.
type MarkerChangedEvent struct {
	BufferID BufferID
	MarkerID MarkerID
}

func (MarkerChangedEvent) eventKind() string { return "marker_changed" }

// ErrorEvent reports a user-visible failure that Dispatch could not apply,
// for front ends that surface engine errors asynchronously (e.g. a status
// line) instead of only through Dispatch's return value.
type ErrorEvent struct {
	Scope   ErrorScope
	Message string
}

func (ErrorEvent) eventKind() string { return "error" }
