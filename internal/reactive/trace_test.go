package reactive

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTracingHooksWrapWrites(t *testing.T) {
	t.Parallel()

	s := MakeReactive(map[string]any{"word": "old"}, WithWriteHooks(TracingHooks("")))
	require.NoError(t, s.Set("word", "new"))

	got, err := s.Get("word")
	require.NoError(t, err)
	require.Equal(t, "new", got)
}

func TestTracingHooksCloseSpanOnWatcherError(t *testing.T) {
	t.Parallel()

	s := MakeReactive(map[string]any{"word": "old"}, WithWriteHooks(TracingHooks("test-tracer")))
	binder := NewBinder(nil, newTestLogger(), BinderDependencies{})

	boom := errors.New("veto")
	require.NoError(t, binder.Watch(s, "word", func(old, next any) (any, error) {
		return nil, boom
	}))

	require.ErrorIs(t, s.Set("word", "new"), boom)

	// The next write must start cleanly even though the previous span
	// ended through the error path.
	require.ErrorIs(t, s.Set("word", "again"), boom)
}

func TestTracingHooksIgnoreUnknownChangeIDs(t *testing.T) {
	t.Parallel()

	hooks := TracingHooks("")
	// Completion without a matching start happens when hooks are merged in
	// after a write began; it must be a silent no-op.
	hooks.OnWriteDone(WriteContext{ChangeID: "01UNSEEN", Duration: time.Millisecond})
	hooks.OnWriteError(WriteContext{ChangeID: "01UNSEEN"}, errors.New("late"))
}
