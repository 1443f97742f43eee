package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattwparas/Rucket/internal/contract"
	"github.com/mattwparas/Rucket/internal/ir"
	"github.com/mattwparas/Rucket/internal/manifest"
	"github.com/mattwparas/Rucket/internal/prelude"
	"github.com/mattwparas/Rucket/internal/store"
)

// CallOptions holds flags for the call command.
type CallOptions struct {
	*RootOptions
	At    string // call-site location, source:line:column
	RunID string // optional - append to this journal run instead of starting one
}

// CallResult is the output of a successful call.
type CallResult struct {
	Function string `json:"function"`
	Value    string `json:"value"`
	Type     string `json:"type"`
	RunID    string `json:"run_id,omitempty"`
}

// NewCallCommand creates the call command.
func NewCallCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CallOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "call <manifest> <name> [arg...]",
		Short: "Call a bound procedure with JSON arguments",
		Long: `Bind a manifest and call one procedure through its contract.

Each argument is a JSON value. Objects use the tagged forms
{"sym": "apple"}, {"proc": "add1"}, {"map": [[k, v]]} and {"null": true}.
Floats are rejected.

With --journal, violations are recorded under a new run, or appended to
an existing run with --run.

Examples:
  rucket call ./contracts test 3 7
  rucket call ./contracts apply-even '{"proc": "add1"}'
  rucket call ./contracts test 3 '"a"' --at main.rkt:4:1 --journal rucket.db
  rucket call ./contracts test 5 5 --journal rucket.db --run 01920a4e-...`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd.Context(), opts, args[0], args[1], args[2:], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.At, "at", "", "call-site location (source:line:column)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "journal run to append to (requires --journal)")

	return cmd
}

func runCall(ctx context.Context, opts *CallOptions, path, name string, rawArgs []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.RunID != "" && opts.Journal == "" {
		_ = formatter.Error(manifest.ErrCodeGeneric, "--run requires --journal", nil)
		return NewExitError(ExitCommandError, "--run requires --journal")
	}

	if opts.At != "" {
		loc, err := prelude.ParseLocation(opts.At)
		if err != nil {
			_ = formatter.Error(manifest.ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitCommandError, "invalid --at", err)
		}
		ctx = ir.WithLocation(ctx, loc)
	}

	m, err := compileManifest(formatter, path)
	if err != nil {
		return err
	}

	var binderOpts []contract.Option
	var runID string
	if opts.Journal != "" {
		st, err := store.Open(opts.Journal)
		if err != nil {
			_ = formatter.Error(manifest.ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer st.Close()

		journal, err := openRun(ctx, st, m, opts, name)
		if errors.Is(err, store.ErrRunNotFound) {
			_ = formatter.Error(manifest.ErrCodeNotFound, err.Error(), nil)
			return WrapExitError(ExitCommandError, "no run to append to", err)
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to start run", err)
		}
		runID = journal.RunID()
		binderOpts = append(binderOpts, contract.WithReporter(journal))
		formatter.VerboseLog("Recording violations in run %s", runID)
	}

	env, err := bindManifest(opts.RootOptions, formatter, m, binderOpts...)
	if err != nil {
		return err
	}

	args := make([]ir.Value, len(rawArgs))
	for i, raw := range rawArgs {
		v, err := ir.UnmarshalValue([]byte(raw), env.Resolver())
		if err != nil {
			_ = formatter.Error(manifest.ErrCodeGeneric, fmt.Sprintf("argument %d: %v", i, err), nil)
			return WrapExitError(ExitCommandError, fmt.Sprintf("invalid argument %d", i), err)
		}
		args[i] = v
	}

	if _, ok := env.Lookup(name); !ok {
		_ = formatter.Error(manifest.ErrCodeNotFound, fmt.Sprintf("unknown procedure %q", name), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown procedure %q", name))
	}

	value, err := env.Call(ctx, name, args)
	if err != nil {
		var ve *contract.ViolationError
		if errors.As(err, &ve) {
			if outErr := formatter.Violation(ve, runID); outErr != nil {
				return outErr
			}
			return WrapExitError(ExitFailure, "contract violation", ve)
		}
		_ = formatter.Error(manifest.ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitFailure, "call failed", err)
	}

	result := CallResult{
		Function: name,
		Value:    ir.Format(value),
		Type:     ir.TypeName(value),
		RunID:    runID,
	}
	if formatter.Format == "json" {
		return formatter.SuccessInRun(result, runID)
	}
	fmt.Fprintln(formatter.Writer, result.Value)
	return nil
}

// openRun resumes opts.RunID when set, otherwise starts a new run named
// after the called procedure.
func openRun(ctx context.Context, st *store.Store, m *manifest.Manifest, opts *CallOptions, name string) (*store.Journal, error) {
	if opts.RunID != "" {
		return st.ResumeRun(ctx, opts.RunID)
	}
	hash, err := m.Hash()
	if err != nil {
		return nil, fmt.Errorf("hashing manifest: %w", err)
	}
	return st.StartRun(ctx, nil, store.RunInfo{
		Name:         "call " + name,
		ManifestHash: hash,
		ContractsOn:  opts.ContractsEnabled(),
	})
}
