package reactive

// Watcher observes and optionally reshapes a single property write. old is
// the stored value before the write; next is the value proposed by the
// previous pipeline stage (the caller's value for the first watcher).
//
// The return value decides the outcome:
//   - return next unchanged to pass the write through,
//   - return Reject to revert the write to old,
//   - return anything else, including nil, to replace the value,
//   - return a non-nil error to abort the write before commit.
//
// Watchers run synchronously on the writing goroutine and may trigger further
// writes; those nest re-entrantly through the same pipeline.
type Watcher func(old, next any) (any, error)

type rejectSentinel struct{}

func (rejectSentinel) String() string { return "stateflow.Reject" }

// Reject is the sentinel a watcher returns to veto a write. The write is
// reverted to the previous value and the remaining watchers still run, so a
// later watcher observes the reverted value rather than the vetoed one.
// Reject is of an unexported type: it cannot be forged by callers and cannot
// itself be stored as a property value.
var Reject any = rejectSentinel{}

// runWatchers threads a proposed value through the watcher chain. Each
// watcher sees the output of its predecessor while old stays pinned to the
// pre-write stored value. rejected reports whether any stage vetoed the
// write, even if a later stage replaced the value again. A watcher error
// aborts immediately; the caller must not commit in that case.
func runWatchers(old, proposed any, watchers []Watcher) (committed any, rejected bool, err error) {
	committed = proposed
	for _, w := range watchers {
		out, err := w(old, committed)
		if err != nil {
			return nil, rejected, err
		}
		if _, isReject := out.(rejectSentinel); isReject {
			committed = old
			rejected = true
			continue
		}
		committed = out
	}
	return committed, rejected, nil
}
