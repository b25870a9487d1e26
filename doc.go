// Package stateflow makes plain map state observable and keeps it in sync
// with external render surfaces. MakeReactive wraps an initial map in a State
// whose property writes run registered watchers in order, commit the surviving
// value, and fan it out synchronously to every bound target. A Binder owns the
// wiring between states and targets: Bind renders the current value once,
// registers the target for future writes, and attaches reverse-edit plumbing
// for targets that can originate edits of their own.
//
// Watchers are plain functions over (old, next) pairs. They validate, rewrite,
// or veto a proposed value; returning the Reject sentinel restores the
// previous value and re-renders it. Watcher errors abort the write before
// anything is committed, so bound targets never observe a half-applied state.
// A minimal setup therefore involves MakeReactive over the initial data,
// NewBinder with a Config, a Bind call per surface, and ordinary Set calls;
// see README.md for a copy/paste quick start snippet.
//
// # Targets
//
// Stateflow ships 11 binding targets out of the box:
//   - writer: Line-oriented output to a file or stdout
//   - channel: In-memory Go channels with two-way editing for testing
//   - log: Structured log lines per committed value
//   - gauge: Prometheus gauge tracking the last numeric value
//   - stream: Watermill pub/sub bridge with a paired edits topic
//   - kafka: Stream flavor over Kafka consumer groups
//   - rabbitmq: Stream flavor over AMQP durable pub/sub
//   - nats-stream: Stream flavor over NATS Core via Watermill
//   - webhook: Stream flavor that POSTs renders and serves edits over HTTP
//   - aws: Stream flavor over AWS SNS/SQS with LocalStack support
//   - nats: Raw NATS subject bridge without the envelope layer
//
// # Write hooks
//
// WriteHooks provide OnWriteStart, OnWriteDone, OnWriteError, OnRender, and
// OnRenderError callbacks around the write pipeline. LoggingHooks,
// MetricsHooks, AlertingHooks, and TracingHooks cover the common cases;
// Merge composes several hook sets into one.
//
// When you need more control, BinderDependencies exposes well-scoped knobs:
// bring your own target Resolver, Metrics instance, or WriteHooks, or register
// custom target kinds with RegisterTarget and build them from Config through
// BuildTarget.
package stateflow
