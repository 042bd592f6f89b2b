package loom

import "time"

// EngineOptions configures an Engine. Use the With* functions below rather
// than constructing this directly; the zero value of each field means
// "use the default," so a partially-specified Options is always valid.
// The one exception is the Logger: WithLogger(nil) installs a no-op logger.
type EngineOptions struct {
	chunkSize          int
	scanThreshold      int64
	tickInterval       time.Duration
	historyBudget      int64
	logger             Logger
}

// Option configures an Engine at construction time.
type Option func(*EngineOptions)

func defaultEngineOptions() EngineOptions {
	return EngineOptions{
		chunkSize:     DefaultChunkSize,
		scanThreshold: ScanThreshold,
		tickInterval:  250 * time.Millisecond,
		historyBudget: 0,
		logger:        NewDefaultLogger(),
	}
}

// WithChunkSize overrides the ChunkTree leaf capacity used by buffers
// created through this Engine.
func WithChunkSize(n int) Option {
	return func(o *EngineOptions) { o.chunkSize = n }
}

// WithScanThreshold overrides how many lines a LineIndex will scan exactly
// before falling back to an estimate.
func WithScanThreshold(n int64) Option {
	return func(o *EngineOptions) { o.scanThreshold = n }
}

// WithBackgroundTick sets how often the Engine's WorkerPool drains queued
// background jobs. A non-positive d keeps the default.
func WithBackgroundTick(d time.Duration) Option {
	return func(o *EngineOptions) {
		if d > 0 {
			o.tickInterval = d
		}
	}
}

// WithHistoryBudget caps, in bytes, how much undo/redo history each buffer
// retains before evicting its oldest groups. 0 means unbounded.
func WithHistoryBudget(n int64) Option {
	return func(o *EngineOptions) { o.historyBudget = n }
}

// WithLogger installs a Logger. Passing nil installs a no-op logger.
func WithLogger(l Logger) Option {
	return func(o *EngineOptions) {
		if l == nil {
			l = noopLogger{}
		}
		o.logger = l
	}
}
