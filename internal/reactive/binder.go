package reactive

import (
	sterrors "errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	configpkg "github.com/drblury/stateflow/internal/reactive/config"
	errspkg "github.com/drblury/stateflow/internal/reactive/errors"
	"github.com/drblury/stateflow/internal/reactive/ids"
	"github.com/drblury/stateflow/internal/reactive/logging"
	"github.com/drblury/stateflow/target"
)

var (
	errNoResolver        = sterrors.New("no target resolver configured")
	errResolverNilHandle = sterrors.New("resolver returned no target")
)

// bindingRecord is the book-keeping entry for one bound target. The binder
// holds exactly one record per target, which is what makes duplicate binds
// detectable and unbinds cheap.
type bindingRecord struct {
	id      string
	target  target.Target
	owner   *State
	leaf    string
	path    string
	detach  func()
	boundAt time.Time
}

// BinderDependencies carries the collaborators a Binder needs beyond its
// config. Every field is optional; zero dependencies yield a binder that
// can bind direct Target values but cannot resolve string identifiers.
type BinderDependencies struct {
	// Resolver turns string identifiers into targets. Binds by identifier
	// fail with invalid_element_identifier when it is nil.
	Resolver target.Resolver

	// Metrics receives binding and write counters. When nil and metrics
	// are enabled in the config, the binder creates its own instance
	// against the default Prometheus registerer.
	Metrics *Metrics
}

// Binder connects reactive states to external targets. It owns the binding
// records, performs duplicate detection, runs the initial render and wires
// reverse edits back into the write pipeline.
//
// The binder mutex guards only the record and state books. It is never held
// while calling into a target or into the write pipeline, so targets and
// watchers are free to bind, unbind and write re-entrantly.
type Binder struct {
	mu            sync.Mutex
	conf          *configpkg.Config
	log           logging.ServiceLogger
	resolver      target.Resolver
	metrics       *Metrics
	records       map[target.Target]*bindingRecord
	states        map[*State]struct{}
	watcherCounts map[*State]map[string]int

	httpServers   map[int]*http.ServeMux
	httpServersMu sync.Mutex
}

// NewBinder creates a Binder from a config and its optional dependencies.
// A nil config means all optional features stay off, a nil logger means
// the binder stays quiet.
func NewBinder(conf *configpkg.Config, log logging.ServiceLogger, deps BinderDependencies) *Binder {
	if conf == nil {
		conf = &configpkg.Config{}
	}
	if log == nil {
		log = logging.NewNopServiceLogger()
	}

	log.Info("Creating binder", logging.LogFields{
		"config": conf,
	})

	b := &Binder{
		conf:          conf,
		log:           log,
		resolver:      deps.Resolver,
		metrics:       deps.Metrics,
		records:       make(map[target.Target]*bindingRecord),
		states:        make(map[*State]struct{}),
		watcherCounts: make(map[*State]map[string]int),
	}

	if conf.MetricsEnabled {
		if b.metrics == nil {
			b.metrics = NewMetrics(nil)
		}
		if err := b.metrics.Register(); err != nil {
			log.Error("Failed to register metrics collectors", err, nil)
		}
	}

	return b
}

// Metrics returns the metrics instance the binder records into, or nil when
// metrics are disabled and none was supplied.
func (b *Binder) Metrics() *Metrics {
	return b.metrics
}

// classifyTarget normalizes the caller-supplied target argument into a
// concrete Target. Strings go through the resolver, Target values pass
// through, anything else is unsupported.
func (b *Binder) classifyTarget(raw any) (target.Target, error) {
	switch t := raw.(type) {
	case nil:
		return nil, errspkg.ErrTargetRequired
	case string:
		if b.resolver == nil {
			return nil, errspkg.NewInvalidElementIdentifier(t, errNoResolver)
		}
		resolved, err := b.resolver.Resolve(t)
		if err != nil {
			if errspkg.IsKind(err, errspkg.KindInvalidElementIdentifier) {
				return nil, err
			}
			return nil, errspkg.NewInvalidElementIdentifier(t, err)
		}
		if resolved == nil {
			return nil, errspkg.NewInvalidElementIdentifier(t, errResolverNilHandle)
		}
		return resolved, nil
	case target.Target:
		return t, nil
	default:
		return nil, errspkg.NewUnsupportedTarget(fmt.Sprintf("%T", raw))
	}
}

// Bind connects a target to one property of a reactive state. The target
// argument is either a string identifier for the binder's resolver or a
// target.Target value.
//
// The steps run in a fixed order: classify the target, reserve the binding
// record, resolve the path to its owning state, render the current value,
// register for future writes, attach reverse editing. Any failure rolls the
// reservation back, so a failed bind leaves no trace.
func (b *Binder) Bind(rawTarget any, state *State, path string) error {
	if b == nil {
		return errspkg.ErrBinderRequired
	}
	t, err := b.classifyTarget(rawTarget)
	if err != nil {
		return err
	}
	if path == "" {
		return errspkg.ErrPathRequired
	}

	kind := targetKind(t)

	rec := &bindingRecord{
		id:      ids.NewBindingID(),
		target:  t,
		path:    path,
		boundAt: time.Now(),
	}

	// Reserve the record slot first so concurrent binds of the same target
	// cannot both proceed past the duplicate check.
	b.mu.Lock()
	if _, exists := b.records[t]; exists {
		b.mu.Unlock()
		return errspkg.NewDuplicateBinding(kind)
	}
	b.records[t] = rec
	b.mu.Unlock()

	fail := func(err error) error {
		b.mu.Lock()
		delete(b.records, t)
		b.mu.Unlock()
		return err
	}

	owner, leaf, err := resolveOwner(state, path)
	if err != nil {
		return fail(err)
	}

	// Initial render happens before registration. A target that cannot
	// display the current value must not be left receiving future writes.
	if rerr := t.Render(owner.data[leaf]); rerr != nil {
		return fail(fmt.Errorf("stateflow: initial render for %q failed: %w", path, rerr))
	}

	entry := owner.registry.entry(leaf)
	entry.addBinding(t)

	if editor, ok := t.(target.ReverseEditor); ok {
		detach, aerr := editor.AttachReverseEdit(func(v any) {
			if serr := owner.Set(leaf, v); serr != nil {
				b.log.Error("Reverse edit did not commit", serr, logging.LogFields{
					"state":    owner.name,
					"property": leaf,
					"target":   kind,
				})
			}
		})
		if aerr != nil {
			entry.removeBinding(t)
			return fail(fmt.Errorf("stateflow: attach reverse edit for %q failed: %w", path, aerr))
		}
		rec.detach = detach
	}

	b.mu.Lock()
	rec.owner = owner
	rec.leaf = leaf
	if b.states == nil {
		b.states = make(map[*State]struct{})
	}
	b.states[owner] = struct{}{}
	b.mu.Unlock()

	if b.metrics != nil {
		b.metrics.RecordBinding(owner.name)
	}

	b.log.Debug("Target bound", logging.LogFields{
		"state":        owner.name,
		"property":     leaf,
		"path":         path,
		"target":       kind,
		"binding_id":   rec.id,
		"reverse_edit": rec.detach != nil,
	})

	return nil
}

// Unbind detaches a previously bound target. The target argument takes the
// same forms as in Bind. Unbinding a target that resolves but was never
// bound is a no-op; a target that cannot be classified fails the same way
// Bind would.
func (b *Binder) Unbind(rawTarget any) error {
	if b == nil {
		return errspkg.ErrBinderRequired
	}
	t, err := b.classifyTarget(rawTarget)
	if err != nil {
		return err
	}

	b.mu.Lock()
	rec, ok := b.records[t]
	if ok {
		delete(b.records, t)
	}
	b.mu.Unlock()
	if !ok {
		return nil
	}

	if rec.detach != nil {
		rec.detach()
	}
	if rec.owner != nil {
		if entry, found := rec.owner.registry.peek(rec.leaf); found {
			entry.removeBinding(t)
		}
		if b.metrics != nil {
			b.metrics.RecordUnbinding(rec.owner.name)
		}
		b.log.Debug("Target unbound", logging.LogFields{
			"state":      rec.owner.name,
			"property":   rec.leaf,
			"path":       rec.path,
			"target":     targetKind(t),
			"binding_id": rec.id,
		})
	}

	return nil
}

// Watch registers a watcher on one property. Watchers run on every write to
// that property, in registration order, before the value commits.
func (b *Binder) Watch(state *State, path string, w Watcher) error {
	if b == nil {
		return errspkg.ErrBinderRequired
	}
	if w == nil {
		return errspkg.ErrWatcherRequired
	}
	if path == "" {
		return errspkg.ErrPathRequired
	}

	owner, leaf, err := resolveOwner(state, path)
	if err != nil {
		return err
	}

	owner.registry.entry(leaf).addWatcher(w)

	b.mu.Lock()
	if b.states == nil {
		b.states = make(map[*State]struct{})
	}
	b.states[owner] = struct{}{}
	if b.watcherCounts == nil {
		b.watcherCounts = make(map[*State]map[string]int)
	}
	if b.watcherCounts[owner] == nil {
		b.watcherCounts[owner] = make(map[string]int)
	}
	b.watcherCounts[owner][leaf]++
	b.mu.Unlock()

	b.log.Debug("Watcher registered", logging.LogFields{
		"state":    owner.name,
		"property": leaf,
		"watchers": owner.WatcherCount(leaf),
	})

	return nil
}

// HasBinding reports whether the target currently holds a binding record.
func (b *Binder) HasBinding(t target.Target) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.records[t]
	return ok
}

// BindingCount returns the number of live binding records.
func (b *Binder) BindingCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.records)
}

// UnbindAll detaches every live binding. Errors cannot occur here because
// every record already classified; the method exists for teardown paths.
func (b *Binder) UnbindAll() {
	b.mu.Lock()
	records := make([]*bindingRecord, 0, len(b.records))
	for _, rec := range b.records {
		records = append(records, rec)
	}
	b.records = make(map[target.Target]*bindingRecord)
	b.mu.Unlock()

	for _, rec := range records {
		if rec.detach != nil {
			rec.detach()
		}
		if rec.owner != nil {
			if entry, found := rec.owner.registry.peek(rec.leaf); found {
				entry.removeBinding(rec.target)
			}
			if b.metrics != nil {
				b.metrics.RecordUnbinding(rec.owner.name)
			}
		}
	}
}
