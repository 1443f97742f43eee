package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mattwparas/Rucket/internal/manifest"
	"github.com/mattwparas/Rucket/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	RunID string // optional - defaults to the latest run
	Code  string // optional - filter to one violation code
	List  bool   // list runs instead of violations
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Run        store.Run         `json:"run"`
	Violations []store.Violation `json:"violations"`
	Stats      TraceStats        `json:"stats"`
}

// TraceStats counts the violations of a run by code.
type TraceStats struct {
	Total  int            `json:"total"`
	ByCode map[string]int `json:"by_code"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <journal>",
		Short: "Show the violations recorded in a journal",
		Long: `Show the violations recorded for one run of a journal, in the order
they were detected. Without --run the latest run is shown.

Examples:
  rucket trace ./rucket.db
  rucket trace ./rucket.db --list
  rucket trace ./rucket.db --run 01920a4e-... --code RESULT_VIOLATION
  rucket trace ./rucket.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id to trace (default: latest)")
	cmd.Flags().StringVar(&opts.Code, "code", "", "filter to one violation code")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list runs")

	return cmd
}

func runTrace(opts *TraceOptions, path string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	// store.Open would create a missing journal.
	if _, err := os.Stat(path); err != nil {
		_ = formatter.Error(manifest.ErrCodeNotFound, fmt.Sprintf("journal not found: %s", path), nil)
		return WrapExitError(ExitCommandError, "journal not found", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer st.Close()

	if opts.List {
		return runTraceList(ctx, st, formatter)
	}

	var run store.Run
	if opts.RunID != "" {
		run, err = st.ReadRun(ctx, opts.RunID)
	} else {
		run, err = st.LatestRun(ctx)
	}
	if errors.Is(err, store.ErrRunNotFound) {
		_ = formatter.Error(manifest.ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "no run to trace", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	violations, err := st.ReadViolations(ctx, run.ID, opts.Code)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read violations", err)
	}

	result := TraceResult{
		Run:        run,
		Violations: violations,
		Stats:      TraceStats{Total: len(violations), ByCode: map[string]int{}},
	}
	for _, v := range violations {
		result.Stats.ByCode[v.Code]++
	}

	if formatter.Format == "json" {
		return outputTraceJSON(cmd, result)
	}
	return outputTraceText(cmd, result, opts.Verbose)
}

func runTraceList(ctx context.Context, st *store.Store, formatter *OutputFormatter) error {
	runs, err := st.ReadRuns(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read runs", err)
	}
	if formatter.Format == "json" {
		return formatter.Success(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded.")
		return nil
	}
	for _, r := range runs {
		state := "on"
		if !r.ContractsOn {
			state = "off"
		}
		fmt.Fprintf(formatter.Writer, "%s  %s  (contracts %s)\n", r.ID, r.Name, state)
	}
	return nil
}

// outputTraceJSON outputs the trace result as JSON.
func outputTraceJSON(cmd *cobra.Command, result TraceResult) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(CLIResponse{
		Status: "ok",
		Data:   result,
		RunID:  result.Run.ID,
	})
}

// outputTraceText outputs the trace result as human-readable text.
func outputTraceText(cmd *cobra.Command, result TraceResult, verbose bool) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Run: %s (%s)\n", result.Run.ID, result.Run.Name)
	if verbose {
		fmt.Fprintf(w, "Manifest: %s\n", result.Run.ManifestHash)
		fmt.Fprintf(w, "Engine: %s, IR: %s\n", result.Run.EngineVersion, result.Run.IRVersion)
	}
	fmt.Fprintln(w)

	if len(result.Violations) == 0 {
		fmt.Fprintln(w, "No violations recorded.")
		return nil
	}

	fmt.Fprintln(w, "Violations:")
	for _, v := range result.Violations {
		fmt.Fprintf(w, "  [%d] %s %s\n", v.Seq, v.Code, v.Function)
		if v.Contract != "" {
			fmt.Fprintf(w, "      contract: %s\n", v.Contract)
		}
		fmt.Fprintf(w, "      %s\n", v.Detail)
		if v.Blame != "" {
			fmt.Fprintf(w, "      blaming: %s\n", v.Blame)
		}
		if v.Location != "" {
			fmt.Fprintf(w, "      at: %s\n", v.Location)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Stats: %d violation(s)\n", result.Stats.Total)
	return nil
}
