package reactive

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingHooks returns pre-built hooks that wrap each write in an
// OpenTelemetry span. The span opens before the watcher pipeline and closes
// after fan-out or on a watcher error; start and completion are correlated
// through the write's change ID, which also lands on the span as an
// attribute.
func TracingHooks(tracerName string) WriteHooks {
	if tracerName == "" {
		tracerName = "stateflow-write-tracer"
	}

	var (
		mu    sync.Mutex
		spans = make(map[string]trace.Span)
	)

	finish := func(ctx WriteContext, err error) {
		mu.Lock()
		span, ok := spans[ctx.ChangeID]
		delete(spans, ctx.ChangeID)
		mu.Unlock()
		if !ok {
			return
		}

		span.SetAttributes(
			attribute.Bool("write.rejected", ctx.Rejected),
			attribute.Int64("write.duration_us", ctx.Duration.Microseconds()),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}

	return WriteHooks{
		OnWriteStart: func(ctx WriteContext) {
			tracer := otel.Tracer(tracerName)
			_, span := tracer.Start(
				context.Background(),
				"PropagateWrite",
			)
			span.SetAttributes(
				attribute.String("state.name", ctx.State),
				attribute.String("state.property", ctx.Property),
				attribute.String("write.change_id", ctx.ChangeID),
			)

			mu.Lock()
			spans[ctx.ChangeID] = span
			mu.Unlock()
		},
		OnWriteDone: func(ctx WriteContext) {
			finish(ctx, nil)
		},
		OnWriteError: finish,
	}
}
