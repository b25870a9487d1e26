package reactive

import (
	"io"
	"log/slog"
	"sync"

	errspkg "github.com/drblury/stateflow/internal/reactive/errors"
	"github.com/drblury/stateflow/internal/reactive/logging"
	"github.com/drblury/stateflow/target"
)

func newTestSlogLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newTestLogger() logging.ServiceLogger {
	return logging.NewSlogServiceLogger(newTestSlogLogger())
}

// testTarget records every rendered value.
type testTarget struct {
	mu        sync.Mutex
	name      string
	rendered  []any
	renderErr error
	closed    bool
}

func (tt *testTarget) Render(value any) error {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	if tt.renderErr != nil {
		return tt.renderErr
	}
	tt.rendered = append(tt.rendered, value)
	return nil
}

func (tt *testTarget) Close() error {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	tt.closed = true
	return nil
}

func (tt *testTarget) Capabilities() target.Capabilities {
	return target.Capabilities{Name: tt.name}
}

func (tt *testTarget) Rendered() []any {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	clone := make([]any, len(tt.rendered))
	copy(clone, tt.rendered)
	return clone
}

func (tt *testTarget) RenderCount() int {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	return len(tt.rendered)
}

func (tt *testTarget) LastRendered() any {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	if len(tt.rendered) == 0 {
		return nil
	}
	return tt.rendered[len(tt.rendered)-1]
}

// editableTarget additionally accepts reverse edits.
type editableTarget struct {
	testTarget
	editMu    sync.Mutex
	onEdit    func(value any)
	attachErr error
	detached  bool
}

func (et *editableTarget) AttachReverseEdit(onEdit func(value any)) (func(), error) {
	if et.attachErr != nil {
		return nil, et.attachErr
	}
	et.editMu.Lock()
	et.onEdit = onEdit
	et.editMu.Unlock()
	return func() {
		et.editMu.Lock()
		et.onEdit = nil
		et.detached = true
		et.editMu.Unlock()
	}, nil
}

// Edit simulates a user editing the target's value.
func (et *editableTarget) Edit(value any) {
	et.editMu.Lock()
	onEdit := et.onEdit
	et.editMu.Unlock()
	if onEdit != nil {
		onEdit(value)
	}
}

func (et *editableTarget) Detached() bool {
	et.editMu.Lock()
	defer et.editMu.Unlock()
	return et.detached
}

// staticResolver resolves identifiers from a fixed map.
type staticResolver struct {
	targets map[string]target.Target
	err     error
}

func (r *staticResolver) Resolve(identifier string) (target.Target, error) {
	if r.err != nil {
		return nil, r.err
	}
	t, ok := r.targets[identifier]
	if !ok {
		return nil, errspkg.NewInvalidElementIdentifier(identifier, nil)
	}
	return t, nil
}

type recordedLog struct {
	level  string
	msg    string
	err    error
	fields logging.LogFields
}

// recordingLogger captures log calls for assertions.
type recordingLogger struct {
	mu   sync.Mutex
	logs []recordedLog
}

func (l *recordingLogger) With(fields logging.LogFields) logging.ServiceLogger { return l }

func (l *recordingLogger) Debug(msg string, fields logging.LogFields) {
	l.record("debug", msg, nil, fields)
}

func (l *recordingLogger) Info(msg string, fields logging.LogFields) {
	l.record("info", msg, nil, fields)
}

func (l *recordingLogger) Error(msg string, err error, fields logging.LogFields) {
	l.record("error", msg, err, fields)
}

func (l *recordingLogger) Trace(msg string, fields logging.LogFields) {
	l.record("trace", msg, nil, fields)
}

func (l *recordingLogger) record(level, msg string, err error, fields logging.LogFields) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logs = append(l.logs, recordedLog{level: level, msg: msg, err: err, fields: fields})
}

func (l *recordingLogger) messages(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, entry := range l.logs {
		if entry.level == level {
			out = append(out, entry.msg)
		}
	}
	return out
}
