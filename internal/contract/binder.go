package contract

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mattwparas/Rucket/internal/ir"
)

// Reporter receives every violation at the frame that detected it.
// Implemented by store.Journal (production) and testutil.Recorder (tests).
type Reporter interface {
	Report(ctx context.Context, v *ViolationError) error
}

// Binder attaches procedure contracts to callables.
//
// Thread-safety: a Binder is immutable after NewBinder and safe for
// concurrent use. Reporter implementations must be safe for concurrent use
// if wrapped callables are invoked from several goroutines.
type Binder struct {
	enabled    bool
	reporter   Reporter
	logger     *slog.Logger
	defaultLoc ir.Location
}

// Option configures a Binder.
type Option func(*Binder)

// WithEnabled turns contract enforcement on or off. A disabled binder
// returns callables unchanged from Bind.
//
// Default: enabled.
func WithEnabled(enabled bool) Option {
	return func(b *Binder) {
		b.enabled = enabled
	}
}

// WithReporter sets the sink that receives detected violations.
func WithReporter(r Reporter) Option {
	return func(b *Binder) {
		b.reporter = r
	}
}

// WithLogger sets the logger used for violation diagnostics.
//
// Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Binder) {
		b.logger = logger
	}
}

// WithDefaultLocation sets the location attached to calls that carry no
// location in their context and whose wrapper was bound without one.
//
// Default: ir.NoLocation.
func WithDefaultLocation(loc ir.Location) Option {
	return func(b *Binder) {
		b.defaultLoc = loc
	}
}

// NewBinder creates a Binder.
func NewBinder(opts ...Option) *Binder {
	b := &Binder{
		enabled:    true,
		defaultLoc: ir.NoLocation,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// Enabled reports whether the binder enforces contracts.
func (b *Binder) Enabled() bool {
	return b.enabled
}

// BindOption configures a single Bind call.
type BindOption func(*bindConfig)

type bindConfig struct {
	loc ir.Location
}

// WithCallSite records where the contract was attached. Calls whose context
// carries no location report this one.
func WithCallSite(loc ir.Location) BindOption {
	return func(c *bindConfig) {
		c.loc = loc
	}
}

var defaultBinder = NewBinder()

// Bind attaches c to fn under name using the default binder.
func Bind(c *Procedure, fn ir.Callable, name string, opts ...BindOption) (ir.Callable, error) {
	return defaultBinder.Bind(c, fn, name, opts...)
}

// Bind attaches c to fn and returns the wrapped callable.
//
// Nested procedure contracts in argument and result positions are copied
// and stamped with ARGUMENT/RESULT binding sites naming the bound function.
// When fn is already wrapped, its contract is prepended to the new
// contract's parents and the existing wrapper keeps enforcing it. An empty
// name falls back to fn's own name.
//
// No arity or value validation happens here; it is deferred to call time.
func (b *Binder) Bind(c *Procedure, fn ir.Callable, name string, opts ...BindOption) (ir.Callable, error) {
	if c == nil {
		return nil, NewMalformedError("bind: expected a procedure contract, found nothing")
	}
	if fn == nil {
		return nil, errors.New("bind: callable is nil")
	}
	if !b.enabled {
		return fn, nil
	}

	cfg := bindConfig{loc: b.defaultLoc}
	for _, opt := range opts {
		opt(&cfg)
	}
	if name == "" {
		name = fn.Name()
	}
	return b.wrap(c, fn, name, cfg.loc), nil
}

// wrap builds the Wrapped record shared by Bind and call-time re-wrapping.
func (b *Binder) wrap(c *Procedure, fn ir.Callable, name string, loc ir.Location) *Wrapped {
	stamped := c.stampNested(name)
	if prev, ok := Attached(fn); ok {
		stamped = stamped.withParent(prev)
	}
	return &Wrapped{
		contract: stamped,
		fn:       fn,
		name:     name,
		loc:      loc,
		binder:   b,
	}
}

// report logs a detected violation and forwards it to the reporter.
// Reporter failures are logged and never replace the violation.
func (b *Binder) report(ctx context.Context, ve *ViolationError) {
	b.logger.Debug("contract violation",
		"code", string(ve.Code),
		"function", ve.Function,
		"blame", ve.Blame.String(),
		"location", ve.Loc.String(),
	)
	if b.reporter == nil {
		return
	}
	if err := b.reporter.Report(ctx, ve); err != nil {
		b.logger.Warn("failed to report contract violation",
			"code", string(ve.Code),
			"function", ve.Function,
			"error", err,
		)
	}
}
