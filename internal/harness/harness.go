package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/mattwparas/Rucket/internal/contract"
	"github.com/mattwparas/Rucket/internal/ir"
	"github.com/mattwparas/Rucket/internal/manifest"
	"github.com/mattwparas/Rucket/internal/prelude"
	"github.com/mattwparas/Rucket/internal/store"
	"github.com/mattwparas/Rucket/internal/testutil"
)

// Harness is the scenario execution engine.
// It runs scenarios against a fresh journal with a fixed run id and a
// deterministic trace clock.
type Harness struct {
	journal *store.Journal
	env     *manifest.Env
	clock   *store.Clock
	logger  *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory journal and start a run
// 2. Load, compile and bind the scenario's manifests
// 3. Execute steps, recording the trace and checking expectations
// 4. Evaluate assertions against the journal
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	specs, err := loadSpecs(scenario.Specs)
	if err != nil {
		return nil, err
	}
	manifestHash, err := ir.ManifestHash(specs)
	if err != nil {
		return nil, fmt.Errorf("failed to hash manifest: %w", err)
	}

	var ids []string
	if scenario.RunID != "" {
		ids = append(ids, scenario.RunID)
	}
	journal, err := st.StartRun(ctx, testutil.NewFixedGenerator(ids...), store.RunInfo{
		Name:         scenario.Name,
		ManifestHash: manifestHash,
		ContractsOn:  scenario.ContractsEnabled(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	binder := contract.NewBinder(
		contract.WithEnabled(scenario.ContractsEnabled()),
		contract.WithReporter(journal),
		contract.WithLogger(logger),
	)
	reg := prelude.NewRegistry()
	reg.Install(binder)

	env, err := manifest.Bind(specs, reg, binder)
	if err != nil {
		return nil, fmt.Errorf("failed to bind manifest: %w", err)
	}

	h := &Harness{
		journal: journal,
		env:     env,
		clock:   store.NewClock(),
		logger:  logger,
	}

	result := NewResult(journal.RunID())
	if err := h.executeSteps(ctx, scenario.Steps, result); err != nil {
		return nil, fmt.Errorf("failed to execute steps: %w", err)
	}

	violations, err := st.ReadViolations(ctx, journal.RunID(), "")
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	result.Violations = violations

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}
	return result, nil
}

// loadSpecs loads every manifest path and concatenates the contracts.
func loadSpecs(paths []string) ([]ir.ContractSpec, error) {
	var specs []ir.ContractSpec
	for _, path := range paths {
		m, errs := manifest.Load(path, manifest.LoadModeFailFast)
		if len(errs) > 0 {
			return nil, fmt.Errorf("failed to load %s: %w", path, errors.Join(errs...))
		}
		specs = append(specs, m.Specs...)
	}
	return specs, nil
}

// executeSteps runs every step in order.
//
// Each step appends a call event and one outcome event to the trace.
// Expectation mismatches are recorded on the result; only setup problems
// (bad arguments, unknown callables) abort the run.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) error {
	for i, step := range steps {
		fn, ok := h.env.Lookup(step.Call)
		if !ok {
			return fmt.Errorf("step %d: unknown procedure %q", i, step.Call)
		}

		args := make([]ir.Value, len(step.Args))
		for j, raw := range step.Args {
			v, err := ir.FromGo(raw, h.env.Resolver())
			if err != nil {
				return fmt.Errorf("step %d: args[%d]: %w", i, j, err)
			}
			args[j] = v
		}

		callCtx := ctx
		if step.At != "" {
			loc, err := prelude.ParseLocation(step.At)
			if err != nil {
				return fmt.Errorf("step %d: %w", i, err)
			}
			callCtx = ir.WithLocation(ctx, loc)
		}

		result.addEvent(TraceEvent{
			Type:     EventCall,
			Seq:      h.clock.Next(),
			Function: step.Call,
			Args:     formatArgs(args),
		})

		value, err := fn.Call(callCtx, args)
		outcome := h.outcomeEvent(value, err)
		result.addEvent(outcome)

		if step.Expect != nil {
			for _, msg := range checkExpect(step.Expect, value, err, h.env.Resolver()) {
				result.AddError(fmt.Sprintf("steps[%d] (%s): %s", i, step.Call, msg))
			}
		}

		h.logger.Info("step completed",
			"step", i,
			"call", step.Call,
			"outcome", outcome.Type,
		)
	}
	return nil
}

func (h *Harness) outcomeEvent(value ir.Value, err error) TraceEvent {
	if err == nil {
		return TraceEvent{Type: EventReturn, Seq: h.clock.Next(), Value: ir.Format(value)}
	}
	if ve, ok := contract.AsViolation(err); ok {
		e := TraceEvent{
			Type:     EventViolation,
			Seq:      h.clock.Next(),
			Function: ve.Function,
			Code:     string(ve.Code),
			Blame:    ve.Blame.String(),
			Detail:   ve.Detail,
		}
		if ve.Position >= 0 && ve.Code == contract.ErrCodeArgumentViolation {
			pos := ve.Position
			e.Position = &pos
		}
		return e
	}
	return TraceEvent{Type: EventError, Seq: h.clock.Next(), Detail: err.Error()}
}

func formatArgs(args []ir.Value) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = ir.Format(a)
	}
	return out
}

// checkExpect compares one step outcome with its expect clause and
// returns a message per mismatch.
func checkExpect(e *Expect, value ir.Value, err error, resolve ir.Resolver) []string {
	var msgs []string

	switch {
	case e.Value != nil:
		if err != nil {
			return []string{fmt.Sprintf("expected value, got error: %v", err)}
		}
		want, convErr := ir.FromGo(e.Value, resolve)
		if convErr != nil {
			return []string{fmt.Sprintf("convert expected value: %v", convErr)}
		}
		if !ir.Equal(want, value) {
			msgs = append(msgs, fmt.Sprintf("expected value %s, got %s", ir.Format(want), ir.Format(value)))
		}

	case e.Violation != "":
		ve, ok := contract.AsViolation(err)
		if !ok {
			if err != nil {
				return []string{fmt.Sprintf("expected %s, got error: %v", e.Violation, err)}
			}
			return []string{fmt.Sprintf("expected %s, got value %s", e.Violation, ir.Format(value))}
		}
		if string(ve.Code) != e.Violation {
			msgs = append(msgs, fmt.Sprintf("expected %s, got %s", e.Violation, ve.Code))
		}
		if e.Blame != "" && e.Blame != string(ve.Blame.Party) && e.Blame != ve.Blame.String() {
			msgs = append(msgs, fmt.Sprintf("expected blame %q, got %q (%s)", e.Blame, ve.Blame.String(), ve.Blame.Party))
		}
		if e.Position != nil && *e.Position != ve.Position {
			msgs = append(msgs, fmt.Sprintf("expected position %d, got %d", *e.Position, ve.Position))
		}

	case e.Error != "":
		if err == nil {
			return []string{fmt.Sprintf("expected error containing %q, got value %s", e.Error, ir.Format(value))}
		}
		if _, ok := contract.AsViolation(err); ok {
			return []string{fmt.Sprintf("expected host error containing %q, got violation: %v", e.Error, err)}
		}
		if !strings.Contains(err.Error(), e.Error) {
			msgs = append(msgs, fmt.Sprintf("expected error containing %q, got %q", e.Error, err.Error()))
		}
	}
	return msgs
}
