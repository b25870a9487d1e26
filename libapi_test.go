package stateflow

import (
	"strings"
	"testing"
)

func TestReactiveExportsEndToEnd(t *testing.T) {
	state := MakeReactive(map[string]any{"word": "hello"})
	binder := NewBinder(&Config{}, nil, BinderDependencies{})

	err := binder.Watch(state, "word", func(old, next any) (any, error) {
		if s, ok := next.(string); ok {
			return strings.ToUpper(s), nil
		}
		return next, nil
	})
	if err != nil {
		t.Fatalf("watch alias failed: %v", err)
	}

	tgt := &captureTarget{}
	if err := binder.Bind(tgt, state, "word"); err != nil {
		t.Fatalf("bind alias failed: %v", err)
	}
	if len(tgt.values) != 1 || tgt.values[0] != "hello" {
		t.Fatalf("expected initial render of current value, got %#v", tgt.values)
	}

	if err := state.Set("word", "world"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if got := tgt.values[len(tgt.values)-1]; got != "WORLD" {
		t.Fatalf("expected transformed render, got %#v", got)
	}
}

func TestRejectSentinelExport(t *testing.T) {
	state := MakeReactive(map[string]any{"word": "hello"})
	binder := NewBinder(nil, nil, BinderDependencies{})

	err := binder.Watch(state, "word", func(old, next any) (any, error) {
		return Reject, nil
	})
	if err != nil {
		t.Fatalf("watch failed: %v", err)
	}

	if err := state.Set("word", "forbidden"); err != nil {
		t.Fatalf("rejected write should not error: %v", err)
	}
	got, err := state.Get("word")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != "hello" {
		t.Fatalf("expected rejection to restore previous value, got %#v", got)
	}
}

func TestErrorKindExports(t *testing.T) {
	state := MakeReactive(map[string]any{})
	binder := NewBinder(nil, nil, BinderDependencies{})

	err := binder.Bind(42, state, "word")
	if !IsKind(err, KindUnsupportedTarget) {
		t.Fatalf("expected unsupported_target kind, got %v", err)
	}
	if KindOf(err) != KindUnsupportedTarget {
		t.Fatalf("expected KindOf to report unsupported_target, got %q", KindOf(err))
	}

	if string(KindDuplicateBinding) != "duplicate_binding" {
		t.Fatalf("expected duplicate_binding, got %q", KindDuplicateBinding)
	}
	if string(KindInvalidObjectPath) != "invalid_object_path" {
		t.Fatalf("expected invalid_object_path, got %q", KindInvalidObjectPath)
	}
}

func TestLoggerExports(t *testing.T) {
	logger := NewEntryServiceLogger(&stubEntry{})
	logger.Info("boot", LogFields{"component": "test"})

	nop := NewNopServiceLogger()
	nop.Error("ignored", nil, nil)
}

func TestEncodingExportAliases(t *testing.T) {
	payload := map[string]string{"hello": "world"}
	if _, err := Marshal(payload); err != nil {
		t.Fatalf("marshal alias failed: %v", err)
	}
	if _, err := MarshalIndent(payload, "", "  "); err != nil {
		t.Fatalf("marshal indent alias failed: %v", err)
	}
	if err := Unmarshal([]byte(`{"hello":"world"}`), &payload); err != nil {
		t.Fatalf("unmarshal alias failed: %v", err)
	}
	if s, err := EncodeToString("plain"); err != nil || s != "plain" {
		t.Fatalf("expected string passthrough, got %q err %v", s, err)
	}
}

func TestIDExports(t *testing.T) {
	id := CreateULID()
	if len(id) != 26 {
		t.Fatalf("expected 26 character ULID, got %q", id)
	}
	if NewChangeID() == "" {
		t.Fatal("expected change ID")
	}
}

func TestTargetExports(t *testing.T) {
	ix := NewTargetIndex()
	ix.Add("word-input", &captureTarget{})

	resolved, err := ix.Resolve("word-input")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved == nil {
		t.Fatal("expected resolved target")
	}

	_, err = ix.Resolve("missing")
	if !IsKind(err, KindInvalidElementIdentifier) {
		t.Fatalf("expected invalid_element_identifier, got %v", err)
	}

	if DefaultTargetRegistry == nil {
		t.Fatal("expected default target registry")
	}
}

type captureTarget struct {
	values []any
}

func (c *captureTarget) Render(value any) error {
	c.values = append(c.values, value)
	return nil
}

func (c *captureTarget) Close() error { return nil }

type stubEntry struct {
	fields LogFields
	err    error
}

func (s *stubEntry) Error(args ...any) {}
func (s *stubEntry) Info(args ...any)  {}
func (s *stubEntry) Debug(args ...any) {}
func (s *stubEntry) Trace(args ...any) {}

func (s *stubEntry) WithError(err error) *stubEntry {
	clone := *s
	clone.err = err
	return &clone
}

func (s *stubEntry) WithField(key string, value any) *stubEntry {
	clone := *s
	if clone.fields == nil {
		clone.fields = make(LogFields)
	}
	clone.fields[key] = value
	return &clone
}
