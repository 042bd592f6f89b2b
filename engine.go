package loom

import (
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// Engine is the top-level façade: it owns every open Buffer and every split
// view onto them, dispatches commands against that shared state, and runs
// one background WorkerPool shared across all of them. Embedders (a TUI
// front end, a headless server, a test harness) talk to the engine only
// through this type.
type Engine struct {
	mu      sync.RWMutex
	opts    EngineOptions
	buffers map[BufferID]*Buffer
	splits  map[SplitID]*SplitViewState
	nextID  uint64

	workers *WorkerPool
	events  chan Event
}

// New creates an Engine configured by opts, starting its background worker
// pool immediately.
func New(opts ...Option) *Engine {
	o := defaultEngineOptions()
	for _, opt := range opts {
		opt(&o)
	}
	e := &Engine{
		opts:    o,
		buffers: make(map[BufferID]*Buffer),
		splits:  make(map[SplitID]*SplitViewState),
		workers: NewWorkerPool(o.tickInterval, o.logger),
		events:  make(chan Event, 256),
	}
	e.workers.Start()
	return e
}

// Close stops the background worker pool. It does not close any buffers.
func (e *Engine) Close() {
	e.workers.Stop()
	close(e.events)
}

// Events returns the channel external systems should drain for
// notifications (buffer opened, closed, classified or changed, view and
// marker changes, errors). The channel is closed by Close.
func (e *Engine) Events() <-chan Event { return e.events }

func (e *Engine) emit(ev Event) {
	select {
	case e.events <- ev:
	default:
		e.opts.logger.Warnf("event channel full, dropping %T", ev)
	}
}

// OpenBuffer creates a new Buffer with the given name and initial content,
// registers it with the engine, and schedules a background classification
// job. Buffer creation itself is never blocked on that job.
func (e *Engine) OpenBuffer(name string, initial []byte) *Buffer {
	buf := NewBufferWithOptions(name, initial, e.opts.historyBudget, int64(e.opts.chunkSize), e.opts.scanThreshold)

	e.mu.Lock()
	e.buffers[buf.ID()] = buf
	e.mu.Unlock()

	id := buf.ID()
	e.workers.Enqueue(func(tok CancelToken) {
		const sampleBytes = 64 * 1024
		if err := classifyBuffer(buf, sampleBytes); err != nil {
			e.opts.logger.Warnf("classify buffer %s: %v", id, err)
			e.emit(ErrorEvent{Scope: ScopeBuffer, Message: err.Error()})
			return
		}
		e.emit(BufferClassifiedEvent{BufferID: id, Kind: buf.Kind()})
	}, time.Time{})

	e.emit(BufferOpenedEvent{BufferID: id, Name: name})
	return buf
}

// CloseBuffer drops a buffer and every split view onto it.
func (e *Engine) CloseBuffer(id BufferID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.buffers[id]; !ok {
		return newErr(KindNoSuchBuffer, ScopeBuffer, "buffer "+id.String()+" not found", nil)
	}
	delete(e.buffers, id)
	for sid, s := range e.splits {
		if s.Buffer().ID() == id {
			delete(e.splits, sid)
		}
	}
	e.emit(BufferClosedEvent{BufferID: id})
	return nil
}

// Buffer looks up an open buffer by id.
func (e *Engine) Buffer(id BufferID) (*Buffer, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	buf, ok := e.buffers[id]
	if !ok {
		return nil, newErr(KindNoSuchBuffer, ScopeBuffer, "buffer "+id.String()+" not found", nil)
	}
	return buf, nil
}

// Buffers returns every open buffer's id, in no particular order.
func (e *Engine) Buffers() []BufferID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]BufferID, 0, len(e.buffers))
	for id := range e.buffers {
		out = append(out, id)
	}
	return out
}

// OpenSplit creates a new split view onto buf with the given visible size.
func (e *Engine) OpenSplit(buf *Buffer, height, width int) *SplitViewState {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	id := SplitID(e.nextID)
	s := NewSplitViewState(id, buf, height, width)
	e.splits[id] = s
	return s
}

// CloseSplit removes a split view. The underlying buffer, and any other
// split views onto it, are unaffected.
func (e *Engine) CloseSplit(id SplitID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.splits[id]; !ok {
		return newErr(KindNoSuchSplit, ScopeView, fmt.Sprintf("split %d not found", id), nil)
	}
	delete(e.splits, id)
	return nil
}

// Split looks up a split view by id.
func (e *Engine) Split(id SplitID) (*SplitViewState, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.splits[id]
	if !ok {
		return nil, newErr(KindNoSuchSplit, ScopeView, "split not found", nil)
	}
	return s, nil
}

// Dispatch applies a Command against its target split/buffer and reacts to
// the edit by re-running cursor merge and viewport clamping on every split
// currently viewing the affected buffer — the "atomic cursor fan-out"
// guarantee: a single edit never leaves one split's cursors stale relative
// to another split on the same buffer.
func (e *Engine) Dispatch(cmd Command) error {
	switch c := cmd.(type) {
	case InsertTextCommand:
		return e.dispatchEdit(c.Split, func(s *SplitViewState) (ByteRange, error) {
			at, err := s.Cursors().CaretOf(c.CursorIndex)
			if err != nil {
				return ByteRange{}, err
			}
			if err := s.Buffer().Insert(at, c.Text); err != nil {
				return ByteRange{}, err
			}
			return ByteRange{Start: at, End: at + int64(len(c.Text))}, nil
		})
	case DeleteRangeCommand:
		return e.dispatchEdit(c.Split, func(s *SplitViewState) (ByteRange, error) {
			if err := s.Buffer().Delete(c.Start, c.End); err != nil {
				return ByteRange{}, err
			}
			return ByteRange{Start: c.Start, End: c.Start}, nil
		})
	case MoveCaretCommand:
		return e.dispatchCursorMove(c.Split, c.CursorIndex, func(s *SplitViewState) error {
			return s.Cursors().MoveCaret(c.CursorIndex, c.To)
		})
	case ExtendSelectionCommand:
		return e.dispatchCursorMove(c.Split, c.CursorIndex, func(s *SplitViewState) error {
			return s.Cursors().ExtendSelection(c.CursorIndex, c.To)
		})
	case UndoCommand:
		return e.dispatchEdit(c.Split, func(s *SplitViewState) (ByteRange, error) {
			if err := s.Buffer().Undo(); err != nil {
				return ByteRange{}, err
			}
			// The exact undone range isn't tracked here, so conservatively
			// report the whole buffer as changed.
			return ByteRange{Start: 0, End: s.Buffer().Len()}, nil
		})
	case RedoCommand:
		return e.dispatchEdit(c.Split, func(s *SplitViewState) (ByteRange, error) {
			if err := s.Buffer().Redo(); err != nil {
				return ByteRange{}, err
			}
			return ByteRange{Start: 0, End: s.Buffer().Len()}, nil
		})
	default:
		err := newErr(KindInvalidOffset, ScopeBuffer, "unrecognized command", nil)
		e.emit(ErrorEvent{Scope: ScopeBuffer, Message: err.Error()})
		return err
	}
}

// dispatchCursorMove applies a cursor-only mutation (no buffer edit), then
// re-clamps the split's viewport and emits the marker/view change events
// that follow from moving a caret.
func (e *Engine) dispatchCursorMove(splitID SplitID, cursorIndex int, fn func(*SplitViewState) error) error {
	s, err := e.Split(splitID)
	if err != nil {
		e.emit(ErrorEvent{Scope: ScopeView, Message: err.Error()})
		return err
	}
	if err := fn(s); err != nil {
		e.emit(ErrorEvent{Scope: ScopeView, Message: err.Error()})
		return err
	}
	if err := s.EnsureVisible(); err != nil {
		e.emit(ErrorEvent{Scope: ScopeView, Message: err.Error()})
		return err
	}
	e.emit(MarkerChangedEvent{BufferID: s.Buffer().ID(), MarkerID: s.Cursors().CaretMarkerID(cursorIndex)})
	e.emit(ViewChangedEvent{SplitID: s.ID(), Revision: int64(s.Buffer().Revision())})
	return nil
}

// EngineStats is a snapshot of engine-wide resource usage, the kind of
// thing an operator-facing status line or log message reports.
type EngineStats struct {
	BufferCount int
	SplitCount  int
	TotalBytes  int64
	PendingJobs int
}

// String renders stats the way the background maintenance logger formats
// byte counts: human-readable units rather than a raw integer.
func (s EngineStats) String() string {
	return fmt.Sprintf("%d buffers (%s), %d splits, %d jobs pending",
		s.BufferCount, humanize.Bytes(uint64(s.TotalBytes)), s.SplitCount, s.PendingJobs)
}

// Stats reports a snapshot of every open buffer's size plus pending
// background work, and logs it at Debug level on every call so an operator
// can see memory growth without instrumenting anything externally.
func (e *Engine) Stats() EngineStats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	st := EngineStats{
		BufferCount: len(e.buffers),
		SplitCount:  len(e.splits),
		PendingJobs: e.workers.Pending(),
	}
	for _, b := range e.buffers {
		st.TotalBytes += b.Len()
	}
	e.opts.logger.Debugf("engine stats: %s", st)
	return st
}

func (e *Engine) dispatchEdit(splitID SplitID, fn func(*SplitViewState) (ByteRange, error)) error {
	s, err := e.Split(splitID)
	if err != nil {
		e.emit(ErrorEvent{Scope: ScopeView, Message: err.Error()})
		return err
	}
	rng, err := fn(s)
	if err != nil {
		e.emit(ErrorEvent{Scope: ScopeBuffer, Message: err.Error()})
		return err
	}
	buf := s.Buffer()
	e.emit(BufferChangedEvent{BufferID: buf.ID(), Range: rng, Revision: int64(buf.Revision())})

	e.mu.RLock()
	affected := buf.ID()
	var siblings []*SplitViewState
	for _, other := range e.splits {
		if other.Buffer().ID() == affected {
			siblings = append(siblings, other)
		}
	}
	e.mu.RUnlock()
	for _, sib := range siblings {
		sib.OnEdit()
		e.emit(ViewChangedEvent{SplitID: sib.ID(), Revision: int64(buf.Revision())})
	}
	return nil
}
