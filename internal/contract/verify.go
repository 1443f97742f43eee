package contract

import (
	"context"
	"fmt"

	"github.com/mattwparas/Rucket/internal/ir"
)

// frame is the stack-local verification state of one call.
// Nothing in it is shared between invocations.
type frame struct {
	w   *Wrapped
	loc ir.Location
}

// Call implements ir.Callable by running the verification state machine:
// arity check, argument checks (re-wrapping higher-order arguments), invoke,
// result check, return.
//
// Errors raised by the underlying callable, including violations from
// nested contracted calls, propagate unchanged; this frame only attaches its
// location when the error carries none.
func (w *Wrapped) Call(ctx context.Context, args []ir.Value) (ir.Value, error) {
	f := &frame{w: w, loc: w.location(ctx)}

	if ve := f.checkArity(args); ve != nil {
		return nil, f.fail(ctx, ve)
	}

	checked, err := f.checkArguments(ctx, args)
	if err != nil {
		return nil, err
	}

	out, err := w.fn.Call(ctx, checked)
	if err != nil {
		return nil, ir.AttachLocation(err, f.loc)
	}

	return f.checkResult(ctx, out)
}

// location resolves the call-site context: the caller's context first, then
// the location recorded at bind time, then the binder's default.
func (w *Wrapped) location(ctx context.Context) ir.Location {
	if loc := ir.LocationFrom(ctx); loc.IsValid() {
		return loc
	}
	if w.loc.IsValid() {
		return w.loc
	}
	return w.binder.defaultLoc
}

func (f *frame) checkArity(args []ir.Value) *ViolationError {
	want := f.w.contract.Arity()
	if len(args) != want {
		return newArityError(f.w.name, Render(f.w.contract), want, len(args),
			fmt.Sprintf("contract expects %d arguments, found %d", want, len(args)), f.loc)
	}
	// Late binding: the guarded callable's own arity is only compared once it is called.
	if have := f.w.fn.Arity(); have != ir.Variadic && have != want {
		return newArityError(f.w.name, Render(f.w.contract), want, have,
			fmt.Sprintf("contract declares %d arguments but the function accepts %d", want, have), f.loc)
	}
	return nil
}

func (f *frame) checkArguments(ctx context.Context, args []ir.Value) ([]ir.Value, error) {
	out := make([]ir.Value, len(args))
	for i, c := range f.w.contract.args {
		if !isContract(c) {
			return nil, f.fail(ctx, f.malformed(fmt.Sprintf("argument %d", i), c))
		}
		switch c := c.(type) {
		case *Atomic:
			v, err := c.Check(ctx, args[i])
			if err != nil {
				return nil, ir.AttachLocation(err, f.loc)
			}
			if v != nil {
				return nil, f.fail(ctx, f.argumentViolation(i, v))
			}
			out[i] = args[i]
		case *Procedure:
			wrapped, v := f.rewrap(c, args[i], SiteArgument, i)
			if v != nil {
				return nil, f.fail(ctx, f.argumentViolation(i, v))
			}
			out[i] = wrapped
		}
	}
	return out, nil
}

func (f *frame) checkResult(ctx context.Context, out ir.Value) (ir.Value, error) {
	if !isContract(f.w.contract.result) {
		return nil, f.fail(ctx, f.malformed("result", f.w.contract.result))
	}
	switch c := f.w.contract.result.(type) {
	case *Atomic:
		v, err := c.Check(ctx, out)
		if err != nil {
			return nil, ir.AttachLocation(err, f.loc)
		}
		if v != nil {
			return nil, f.fail(ctx, f.resultViolation(v))
		}
		return out, nil
	case *Procedure:
		wrapped, v := f.rewrap(c, out, SiteResult, -1)
		if v != nil {
			return nil, f.fail(ctx, f.resultViolation(v))
		}
		return wrapped, nil
	}
	return out, nil
}

// rewrap instruments a callable flowing through a higher-order position.
// The value that continues is always the new wrapper, never the original.
// An already-wrapped callable keeps its wrapper and gains a parent entry.
func (f *frame) rewrap(c *Procedure, v ir.Value, kind SiteKind, pos int) (ir.Value, *Violation) {
	fn, ok := ir.AsCallable(v)
	if !ok {
		return nil, &Violation{
			Message: fmt.Sprintf("expected a procedure satisfying %s, found %s", Render(c), ir.Format(v)),
		}
	}

	site := Site{Kind: kind, Name: f.w.name, Position: pos, Location: f.loc}
	name := fn.Name()
	if name == "" {
		name = site.String()
	}
	return ir.NewProc(f.w.binder.wrap(c.withSite(site), fn, name, f.loc)), nil
}

func (f *frame) argumentViolation(pos int, v *Violation) *ViolationError {
	blame := Blame{Party: BlameCaller}
	// A wrapper attached at an argument position is called by the function
	// that received it.
	if site := f.w.contract.site; site != nil && site.Kind == SiteArgument {
		blame.Name = site.Name
	}
	return &ViolationError{
		Code:     ErrCodeArgumentViolation,
		Function: f.w.name,
		Contract: Render(f.w.contract),
		Detail:   v.Message,
		Blame:    blame,
		Position: pos,
		Loc:      f.loc,
	}
}

func (f *frame) resultViolation(v *Violation) *ViolationError {
	blame := Blame{Party: BlameSelf, Name: f.w.name}
	if site := f.w.contract.Site(); site != nil && site.Kind != SiteTopLevel {
		blame = Blame{Party: BlameSite, Name: site.Name, Site: site}
	}
	return &ViolationError{
		Code:     ErrCodeResultViolation,
		Function: f.w.name,
		Contract: Render(f.w.contract),
		Detail:   v.Message,
		Blame:    blame,
		Position: -1,
		Loc:      f.loc,
	}
}

func (f *frame) malformed(position string, c Contract) *ViolationError {
	held := fmt.Sprintf("%T", c)
	if c != nil {
		held = "a nil " + held
	}
	ve := NewMalformedError(fmt.Sprintf("%s of %s holds %s, not a contract", position, displayName(f.w.name), held))
	ve.Function = f.w.name
	ve.Loc = f.loc
	return ve
}

func (f *frame) fail(ctx context.Context, ve *ViolationError) error {
	f.w.binder.report(ctx, ve)
	return ve
}
