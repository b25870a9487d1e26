package reactive

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/drblury/stateflow/internal/reactive/codec"
	errspkg "github.com/drblury/stateflow/internal/reactive/errors"
	"github.com/drblury/stateflow/internal/reactive/ids"
	"github.com/drblury/stateflow/internal/reactive/logging"
	"github.com/drblury/stateflow/target"
)

// State wraps a plain map[string]any so property writes run through the
// watcher pipeline and fan out to bound targets. The caller's map stays the
// backing storage: mutating it directly bypasses all reactivity and is a
// caller error that is not detected at runtime.
//
// Writes are synchronous and re-entrant. The write path carries no locks;
// states assume a cooperative single execution context, which is what lets a
// reverse edit write back into the same state from inside a render fan-out
// without deadlocking.
type State struct {
	name     string
	data     map[string]any
	registry *propertyRegistry
	autoWrap bool
	hooks    WriteHooks
	metrics  *Metrics
	log      logging.ServiceLogger
}

// StateOption customizes a state produced by MakeReactive. Options apply to
// the root and are inherited by every nested state it wraps.
type StateOption func(*stateConfig)

type stateConfig struct {
	name     string
	autoWrap bool
	hooks    WriteHooks
	metrics  *Metrics
	logger   logging.ServiceLogger
}

// WithName sets the state name used in logs, metrics labels and inspector
// output. Nested states derive "<parent>.<key>" names from it.
func WithName(name string) StateOption {
	return func(cfg *stateConfig) { cfg.name = name }
}

// WithAutoWrap makes plain maps assigned through Set after construction get
// wrapped at commit time, exactly like construction-time wrapping. Without
// it such maps stay raw: writes beneath them do not propagate and binding
// through them fails with the non_reactive_state kind.
func WithAutoWrap() StateOption {
	return func(cfg *stateConfig) { cfg.autoWrap = true }
}

// WithWriteHooks attaches lifecycle hooks to every write on the state and its
// nested states. Repeated options merge in order.
func WithWriteHooks(h WriteHooks) StateOption {
	return func(cfg *stateConfig) { cfg.hooks = cfg.hooks.Merge(h) }
}

// WithMetrics records write, rejection and render counters to m.
func WithMetrics(m *Metrics) StateOption {
	return func(cfg *stateConfig) { cfg.metrics = m }
}

// WithLogger sets the logger handed to pre-built hooks and reverse-edit
// reporting.
func WithLogger(log logging.ServiceLogger) StateOption {
	return func(cfg *stateConfig) {
		if log != nil {
			cfg.logger = log
		}
	}
}

// MakeReactive wraps initial as reactive state. Every value that is itself a
// plain map[string]any is wrapped depth-first and replaced in place inside
// initial, so nested writes are intercepted too. Values that are already
// states keep their own identity and configuration. A nil map allocates an
// empty one.
func MakeReactive(initial map[string]any, opts ...StateOption) *State {
	cfg := stateConfig{name: "state", logger: logging.NewNopServiceLogger()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.metrics != nil {
		cfg.hooks = cfg.hooks.Merge(MetricsHooks(cfg.metrics))
	}
	return wrapState(initial, cfg)
}

func wrapState(m map[string]any, cfg stateConfig) *State {
	if m == nil {
		m = make(map[string]any)
	}
	s := &State{
		name:     cfg.name,
		data:     m,
		registry: newPropertyRegistry(),
		autoWrap: cfg.autoWrap,
		hooks:    cfg.hooks,
		metrics:  cfg.metrics,
		log:      cfg.logger,
	}
	for key, value := range m {
		if child, ok := value.(map[string]any); ok {
			childCfg := cfg
			childCfg.name = cfg.name + "." + key
			m[key] = wrapState(child, childCfg)
		}
	}
	return s
}

// Name returns the state's configured name.
func (s *State) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

// Raw returns the backing map. It is the caller's original object; writing to
// it directly skips watchers and bindings entirely.
func (s *State) Raw() map[string]any {
	if s == nil {
		return nil
	}
	return s.data
}

// Get resolves a dot-separated path and returns the leaf value. An absent
// leaf reads as nil; a missing intermediate segment fails with the
// invalid_object_path kind.
func (s *State) Get(path string) (any, error) {
	if s == nil || s.registry == nil {
		return nil, errspkg.NewBadRegistry()
	}
	if path == "" {
		return nil, errspkg.ErrPathRequired
	}
	container, leaf, err := resolvePath(s, path)
	if err != nil {
		return nil, err
	}
	switch c := container.(type) {
	case *State:
		return c.data[leaf], nil
	case map[string]any:
		return c[leaf], nil
	default:
		return nil, errspkg.NewInvalidObjectPath(path)
	}
}

// Set writes a value at a dot-separated path. When the owning container is a
// reactive state the write runs the full pipeline: watchers in order, commit,
// then render fan-out to bound targets. When the owning container is a raw
// map (assigned after construction without auto-wrap) the write is a plain
// assignment, mirroring a write through the unwrapped object.
//
// A watcher error aborts before commit and is returned as-is. Render errors
// happen after commit: the new value stays stored, every remaining binding
// still renders, and the failures come back joined.
func (s *State) Set(path string, value any) error {
	if s == nil || s.registry == nil {
		return errspkg.NewBadRegistry()
	}
	if path == "" {
		return errspkg.ErrPathRequired
	}
	container, leaf, err := resolvePath(s, path)
	if err != nil {
		return err
	}
	switch owner := container.(type) {
	case *State:
		if owner.registry == nil {
			return errspkg.NewBadRegistry()
		}
		return owner.setLeaf(leaf, value)
	case map[string]any:
		owner[leaf] = value
		return nil
	default:
		return errspkg.NewInvalidObjectPath(path)
	}
}

func (s *State) setLeaf(key string, proposed any) error {
	entry := s.registry.entry(key)
	old := s.data[key]

	observed := !s.hooks.empty()
	var wctx WriteContext
	if observed {
		wctx = WriteContext{
			State:     s.name,
			Property:  key,
			ChangeID:  ids.NewChangeID(),
			Old:       old,
			Proposed:  proposed,
			StartedAt: time.Now(),
		}
		if s.hooks.OnWriteStart != nil {
			s.hooks.OnWriteStart(wctx)
		}
	}

	committed, rejected, err := runWatchers(old, proposed, entry.watchers)
	if err != nil {
		if observed {
			wctx.Rejected = rejected
			wctx.Duration = time.Since(wctx.StartedAt)
			if s.hooks.OnWriteError != nil {
				s.hooks.OnWriteError(wctx, err)
			}
		}
		return err
	}

	if s.autoWrap {
		committed = s.wrapIfNeeded(key, committed)
	}
	s.data[key] = committed

	if observed {
		wctx.Committed = committed
		wctx.Rejected = rejected
	}

	var renderErrs []error
	for _, t := range entry.snapshotBindings() {
		kind := targetKind(t)
		if rerr := t.Render(committed); rerr != nil {
			renderErrs = append(renderErrs, fmt.Errorf("render %s: %w", kind, rerr))
			if observed && s.hooks.OnRenderError != nil {
				s.hooks.OnRenderError(wctx, kind, rerr)
			}
			continue
		}
		if observed && s.hooks.OnRender != nil {
			s.hooks.OnRender(wctx, kind)
		}
	}

	if observed {
		wctx.Duration = time.Since(wctx.StartedAt)
		if s.hooks.OnWriteDone != nil {
			s.hooks.OnWriteDone(wctx)
		}
	}
	return errors.Join(renderErrs...)
}

// wrapIfNeeded turns a committed plain map into a nested state. Only called
// with auto-wrap enabled; already-wrapped values and scalars pass through.
func (s *State) wrapIfNeeded(key string, value any) any {
	child, ok := value.(map[string]any)
	if !ok {
		return value
	}
	return wrapState(child, stateConfig{
		name:     s.name + "." + key,
		autoWrap: true,
		hooks:    s.hooks,
		metrics:  s.metrics,
		logger:   s.log,
	})
}

// Keys returns the state's own property names in sorted order.
func (s *State) Keys() []string {
	if s == nil || s.data == nil {
		return nil
	}
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WatcherCount returns the number of watchers registered for key.
func (s *State) WatcherCount(key string) int {
	if s == nil || s.registry == nil {
		return 0
	}
	if e, ok := s.registry.peek(key); ok {
		return len(e.watchers)
	}
	return 0
}

// BindingCount returns the number of targets bound to key.
func (s *State) BindingCount(key string) int {
	if s == nil || s.registry == nil {
		return 0
	}
	if e, ok := s.registry.peek(key); ok {
		return len(e.bindings)
	}
	return 0
}

// Snapshot returns a copy of the state tree with nested states flattened back
// to plain maps. Leaf values are referenced, not deep-copied.
func (s *State) Snapshot() map[string]any {
	out := make(map[string]any)
	if s == nil || s.data == nil {
		return out
	}
	for k, v := range s.data {
		if child, ok := v.(*State); ok {
			out[k] = child.Snapshot()
			continue
		}
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the state as the plain object it wraps, so states
// embedded in rendered values serialize without wrapper noise.
func (s *State) MarshalJSON() ([]byte, error) {
	return codec.Marshal(s.Snapshot())
}

// targetKind names a target for errors, hooks and metrics labels. Targets
// reporting capabilities use their capability name, everything else falls
// back to the concrete type.
func targetKind(t target.Target) string {
	if cp, ok := t.(target.CapabilitiesProvider); ok {
		if name := cp.Capabilities().Name; name != "" {
			return name
		}
	}
	return fmt.Sprintf("%T", t)
}
