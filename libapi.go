package stateflow

import (
	reactivepkg "github.com/drblury/stateflow/internal/reactive"
	codecpkg "github.com/drblury/stateflow/internal/reactive/codec"
	configpkg "github.com/drblury/stateflow/internal/reactive/config"
	errspkg "github.com/drblury/stateflow/internal/reactive/errors"
	idspkg "github.com/drblury/stateflow/internal/reactive/ids"
	loggingpkg "github.com/drblury/stateflow/internal/reactive/logging"
	targetpkg "github.com/drblury/stateflow/target"
)

type (
	Config = configpkg.Config

	State       = reactivepkg.State
	StateOption = reactivepkg.StateOption
	Watcher     = reactivepkg.Watcher

	Binder             = reactivepkg.Binder
	BinderDependencies = reactivepkg.BinderDependencies

	// Write lifecycle hooks
	WriteContext = reactivepkg.WriteContext
	WriteHooks   = reactivepkg.WriteHooks

	// Metrics
	Metrics         = reactivepkg.Metrics
	MetricsSnapshot = reactivepkg.MetricsSnapshot
	PropertyStats   = reactivepkg.PropertyStats

	// Inspector payloads
	BindingInfo  = reactivepkg.BindingInfo
	PropertyInfo = reactivepkg.PropertyInfo
	StateInfo    = reactivepkg.StateInfo

	LogFields     = loggingpkg.LogFields
	ServiceLogger = loggingpkg.ServiceLogger
	EntryLogger   = loggingpkg.EntryLogger

	// Binding error classification
	Error     = errspkg.Error
	ErrorKind = errspkg.Kind

	// Target surface (modular target packages)
	Target               = targetpkg.Target
	ReverseEditor        = targetpkg.ReverseEditor
	CapabilitiesProvider = targetpkg.CapabilitiesProvider
	Resolver             = targetpkg.Resolver
	TargetIndex          = targetpkg.Index
	TargetBuilder        = targetpkg.Builder
	TargetConfig         = targetpkg.Config
	TargetRegistry       = targetpkg.Registry
	TargetCapabilities   = targetpkg.Capabilities
)

var (
	MakeReactive = reactivepkg.MakeReactive
	NewBinder    = reactivepkg.NewBinder

	ValidateConfig = configpkg.ValidateConfig

	// State options
	WithName       = reactivepkg.WithName
	WithAutoWrap   = reactivepkg.WithAutoWrap
	WithWriteHooks = reactivepkg.WithWriteHooks
	WithMetrics    = reactivepkg.WithMetrics
	WithLogger     = reactivepkg.WithLogger

	// Reject is the sentinel a watcher returns to veto a write.
	Reject = reactivepkg.Reject

	// Write lifecycle hooks
	LoggingHooks  = reactivepkg.LoggingHooks
	MetricsHooks  = reactivepkg.MetricsHooks
	AlertingHooks = reactivepkg.AlertingHooks
	TracingHooks  = reactivepkg.TracingHooks

	NewMetrics = reactivepkg.NewMetrics

	Marshal        = codecpkg.Marshal
	MarshalIndent  = codecpkg.MarshalIndent
	Unmarshal      = codecpkg.Unmarshal
	Encode         = codecpkg.Encode
	Decode         = codecpkg.Decode
	EncodeToString = codecpkg.EncodeToString

	ErrTargetRequired  = errspkg.ErrTargetRequired
	ErrWatcherRequired = errspkg.ErrWatcherRequired
	ErrPathRequired    = errspkg.ErrPathRequired
	ErrBinderRequired  = errspkg.ErrBinderRequired

	// IsKind matches an error against a binding failure kind; KindOf extracts
	// the kind for switch-style handling.
	IsKind = errspkg.IsKind
	KindOf = errspkg.KindOf

	NewSlogServiceLogger      = loggingpkg.NewSlogServiceLogger
	NewWatermillServiceLogger = loggingpkg.NewWatermillServiceLogger
	NewNopServiceLogger       = loggingpkg.NewNopServiceLogger
	NewWatermillAdapter       = loggingpkg.NewWatermillAdapter

	CreateULID = idspkg.CreateULID

	// NewChangeID generates a unique change ID using ULID.
	NewChangeID = idspkg.NewChangeID

	// Modular target registry
	// Use RegisterTarget and BuildTarget to work with the modular target packages.
	// Import individual targets via: _ "github.com/drblury/stateflow/target/writer"
	// or all of them via: _ "github.com/drblury/stateflow/target/targets"
	DefaultTargetRegistry = targetpkg.DefaultRegistry
	RegisterTarget        = targetpkg.Register
	BuildTarget           = targetpkg.Build
	GetCapabilities       = targetpkg.GetCapabilities

	NewTargetIndex = targetpkg.NewIndex
)

// EntryLoggerAdapter captures the capabilities required by
// NewEntryServiceLogger. It embeds the internal constraint so it carries the
// identical method set; a generic type alias would need a newer Go toolchain.
type EntryLoggerAdapter[T any] interface {
	loggingpkg.EntryLoggerAdapter[T]
}

// Binding failure kinds - match on these with IsKind or KindOf.
const (
	KindUnsupportedTarget        = errspkg.KindUnsupportedTarget
	KindNonReactiveState         = errspkg.KindNonReactiveState
	KindInvalidObjectPath        = errspkg.KindInvalidObjectPath
	KindDuplicateBinding         = errspkg.KindDuplicateBinding
	KindInvalidElementIdentifier = errspkg.KindInvalidElementIdentifier
	KindBadRegistry              = errspkg.KindBadRegistry
)

func NewEntryServiceLogger[T EntryLoggerAdapter[T]](entry T) ServiceLogger {
	return loggingpkg.NewEntryServiceLogger(entry)
}
