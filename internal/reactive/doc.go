/*
Package reactive provides the core observable state infrastructure for stateflow.

# Architecture Overview

The reactive package implements an observable wrapper around plain map data.
Property writes run through an ordered watcher pipeline before they commit,
and committed values fan out synchronously to every bound target. Targets
that support editing feed changed values back through the same pipeline.

# Package Structure

The reactive package is organized into the following components:

## State (state.go)

The State struct wraps a caller-supplied map and owns the write pipeline:
  - Get and Set with dot-separated property paths
  - Watcher execution in registration order, before commit
  - Synchronous render fan-out to bound targets, after commit
  - Recursive wrapping of nested maps into child states

## Binder (binder.go)

The Binder struct is the central orchestrator that wires together:
  - Target classification (identifiers, direct values)
  - Binding records with duplicate detection
  - Initial render before registration
  - Reverse edit attachment back into the write pipeline
  - HTTP servers for metrics and the inspector

## Pipeline (watcher.go, registry.go, path.go)

The pipeline files hold the write path building blocks:
  - watcher.go: the Watcher contract and the Reject sentinel
  - registry.go: per-property observer lists
  - path.go: dot path resolution to the owning container

## Hooks & Tracing (hooks.go, trace.go)

Write hooks observe the pipeline without changing it:
  - LoggingHooks: structured logging of every write
  - MetricsHooks: Prometheus counters and histograms
  - AlertingHooks: callbacks on write and render failures
  - TracingHooks: OpenTelemetry spans per write

## Metrics (metrics.go)

Prometheus collectors plus an internal per-property stats book with
snapshot and reset support.

## Inspector (inspect.go)

HTTP API for introspecting live bindings and watched states.

# Sub-packages

  - codec/: JSON marshaling utilities
  - config/: Binder configuration with validation
  - errors/: Sentinel errors and the binding error kinds
  - ids/: ULID generation for change and binding IDs
  - logging/: Logger interface and adapters

# Usage Example

	state := stateflow.MakeReactive(map[string]any{"temperature": 21.5})

	binder := stateflow.NewBinder(&stateflow.Config{}, logger, stateflow.BinderDependencies{})

	binder.Watch(state, "temperature", func(old, next any) (any, error) {
		if next.(float64) < -40 {
			return stateflow.Reject, nil
		}
		return next, nil
	})

	binder.Bind(gaugeTarget, state, "temperature")

	state.Set("temperature", 22.0)
*/
package reactive
