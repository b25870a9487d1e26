package reactive

import (
	"time"

	"github.com/drblury/stateflow/internal/reactive/logging"
)

// WriteContext provides information about a single property write to hooks.
type WriteContext struct {
	// State is the name of the state owning the property.
	State string
	// Property is the leaf key being written.
	Property string
	// ChangeID is the ULID stamped on this write.
	ChangeID string
	// Old is the stored value before the write.
	Old any
	// Proposed is the value the caller supplied.
	Proposed any
	// Committed is the value the pipeline settled on (only set from the
	// moment of commit onwards, so OnWriteStart sees the zero value).
	Committed any
	// Rejected reports whether any watcher vetoed the write. A later watcher
	// may still have replaced the reverted value.
	Rejected bool
	// StartedAt is when the write entered the pipeline.
	StartedAt time.Time
	// Duration is how long the write took (only set in OnWriteDone and
	// OnWriteError).
	Duration time.Duration
}

// WriteHooks defines callbacks for the write lifecycle. All hooks are
// optional; nil hooks are simply not called. Hooks run synchronously on the
// writing goroutine. Bind-time initial renders do not fire hooks, those are
// not writes.
type WriteHooks struct {
	// OnWriteStart is called before the watcher pipeline runs.
	OnWriteStart func(ctx WriteContext)

	// OnWriteDone is called after commit and render fan-out, whether or not
	// individual renders failed.
	OnWriteDone func(ctx WriteContext)

	// OnWriteError is called when a watcher aborts the write. Storage is
	// untouched at that point.
	OnWriteError func(ctx WriteContext, err error)

	// OnRender is called after each successful render during fan-out.
	OnRender func(ctx WriteContext, targetKind string)

	// OnRenderError is called when a target fails to render the committed
	// value. The commit stands regardless.
	OnRenderError func(ctx WriteContext, targetKind string, err error)
}

func (h WriteHooks) empty() bool {
	return h.OnWriteStart == nil && h.OnWriteDone == nil && h.OnWriteError == nil &&
		h.OnRender == nil && h.OnRenderError == nil
}

// Merge combines two WriteHooks, creating a new WriteHooks that calls both.
// The hooks from 'other' are called after the hooks from 'h'.
func (h WriteHooks) Merge(other WriteHooks) WriteHooks {
	return WriteHooks{
		OnWriteStart:  chainWriteHooks(h.OnWriteStart, other.OnWriteStart),
		OnWriteDone:   chainWriteHooks(h.OnWriteDone, other.OnWriteDone),
		OnWriteError:  chainWriteErrorHooks(h.OnWriteError, other.OnWriteError),
		OnRender:      chainRenderHooks(h.OnRender, other.OnRender),
		OnRenderError: chainRenderErrorHooks(h.OnRenderError, other.OnRenderError),
	}
}

func chainWriteHooks(a, b func(WriteContext)) func(WriteContext) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx WriteContext) {
		a(ctx)
		b(ctx)
	}
}

func chainWriteErrorHooks(a, b func(WriteContext, error)) func(WriteContext, error) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx WriteContext, err error) {
		a(ctx, err)
		b(ctx, err)
	}
}

func chainRenderHooks(a, b func(WriteContext, string)) func(WriteContext, string) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx WriteContext, kind string) {
		a(ctx, kind)
		b(ctx, kind)
	}
}

func chainRenderErrorHooks(a, b func(WriteContext, string, error)) func(WriteContext, string, error) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx WriteContext, kind string, err error) {
		a(ctx, kind, err)
		b(ctx, kind, err)
	}
}

// LoggingHooks returns pre-built hooks that log the write lifecycle.
func LoggingHooks(logger logging.ServiceLogger) WriteHooks {
	return WriteHooks{
		OnWriteStart: func(ctx WriteContext) {
			logger.Debug("write started", logging.LogFields{
				"state":     ctx.State,
				"property":  ctx.Property,
				"change_id": ctx.ChangeID,
			})
		},
		OnWriteDone: func(ctx WriteContext) {
			logger.Info("write committed", logging.LogFields{
				"state":       ctx.State,
				"property":    ctx.Property,
				"change_id":   ctx.ChangeID,
				"rejected":    ctx.Rejected,
				"duration_us": ctx.Duration.Microseconds(),
			})
		},
		OnWriteError: func(ctx WriteContext, err error) {
			logger.Error("write aborted", err, logging.LogFields{
				"state":     ctx.State,
				"property":  ctx.Property,
				"change_id": ctx.ChangeID,
			})
		},
		OnRenderError: func(ctx WriteContext, kind string, err error) {
			logger.Error("render failed", err, logging.LogFields{
				"state":     ctx.State,
				"property":  ctx.Property,
				"change_id": ctx.ChangeID,
				"target":    kind,
			})
		},
	}
}

// MetricsHooks returns pre-built hooks that record write metrics.
func MetricsHooks(m *Metrics) WriteHooks {
	if m == nil {
		return WriteHooks{}
	}
	return WriteHooks{
		OnWriteDone: func(ctx WriteContext) {
			m.RecordWrite(ctx.State, ctx.Property, ctx.ChangeID, ctx.Rejected, ctx.Duration)
		},
		OnWriteError: func(ctx WriteContext, err error) {
			m.RecordWatcherError(ctx.State, ctx.Property)
		},
		OnRender: func(ctx WriteContext, kind string) {
			m.RecordRender(ctx.State, ctx.Property, kind)
		},
		OnRenderError: func(ctx WriteContext, kind string, err error) {
			m.RecordRenderError(ctx.State, ctx.Property, kind)
		},
	}
}

// AlertingHooks returns pre-built hooks that trigger alerts on write and
// render failures.
func AlertingHooks(alertFunc func(ctx WriteContext, err error)) WriteHooks {
	return WriteHooks{
		OnWriteError: alertFunc,
		OnRenderError: func(ctx WriteContext, kind string, err error) {
			alertFunc(ctx, err)
		},
	}
}
