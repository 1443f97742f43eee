package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mattwparas/Rucket/internal/contract"
	"github.com/mattwparas/Rucket/internal/ir"
	"github.com/mattwparas/Rucket/internal/manifest"
	"github.com/mattwparas/Rucket/internal/prelude"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult holds the compiled contracts.
type CompilationResult struct {
	ManifestHash string            `json:"manifest_hash"`
	Contracts    []ir.ContractSpec `json:"contracts"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <manifest>",
		Short: "Compile a CUE manifest to contract IR",
		Long: `Compile the contracts of a CUE manifest to canonical IR.

The manifest is a directory of CUE files or a single .cue file. Every
entry under the top-level contract struct is compiled; all compile errors
are reported together.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	m, errs, err := loadManifest(formatter, path, manifest.LoadModeCollectAll)
	if err != nil {
		return err
	}
	for _, spec := range m.Specs {
		formatter.VerboseLog("Compiled contract: %s", spec.Name)
	}
	if len(errs) > 0 {
		return outputCompileErrors(formatter, errs)
	}

	hash, err := m.Hash()
	if err != nil {
		return outputCompileError(formatter, manifest.ErrCodeGeneric, fmt.Sprintf("hashing manifest: %v", err))
	}
	result := &CompilationResult{ManifestHash: hash, Contracts: m.Specs}

	if opts.Output != "" {
		if err := writeIRToFile(result, opts.Output); err != nil {
			return outputCompileError(formatter, manifest.ErrCodeGeneric, fmt.Sprintf("writing output file: %v", err))
		}
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Compiled %d contract(s)\n\n", len(result.Contracts))

	reg := prelude.NewRegistry()
	fmt.Fprintln(formatter.Writer, "Contracts:")
	for _, spec := range result.Contracts {
		rendered := "(unresolved)"
		if c, err := reg.Resolve(spec.Expr); err == nil {
			rendered = contract.Render(c)
		}
		if spec.Impl != "" {
			fmt.Fprintf(formatter.Writer, "  %s : %s (impl %s)\n", spec.Name, rendered, spec.Impl)
		} else {
			fmt.Fprintf(formatter.Writer, "  %s : %s\n", spec.Name, rendered)
		}
	}
	fmt.Fprintln(formatter.Writer)
	fmt.Fprintf(formatter.Writer, "Manifest hash: %s\n", result.ManifestHash)

	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "Wrote canonical IR to %s\n", outputFile)
	}

	return nil
}

// outputCompileError outputs a single compilation error.
func outputCompileError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	// Compilation errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputCompileErrors outputs multiple compilation errors.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	if formatter.Format == "json" {
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			code, message := parseLoadError(err)
			cliErrors[i] = CLIError{Code: code, Message: message}
		}

		response := CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors, // Include all errors in data
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		code, message := parseLoadError(err)
		fmt.Fprintf(formatter.Writer, "  %s: %s\n", code, message)
	}

	return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}

// writeIRToFile writes the compilation result to a file.
func writeIRToFile(result *CompilationResult, filename string) error {
	// Indented for readability; canonical JSON is used only for hashing.
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling IR: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
