package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattwparas/Rucket/internal/contract"
	"github.com/mattwparas/Rucket/internal/manifest"
	"github.com/mattwparas/Rucket/internal/prelude"
)

// RenderedContract pairs a contract name with its rendered form.
type RenderedContract struct {
	Name     string `json:"name"`
	Contract string `json:"contract"`
	Doc      string `json:"doc,omitempty"`
}

// DescribeResult is the output of the describe command.
type DescribeResult struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Doc         string `json:"doc,omitempty"`
	Bound       bool   `json:"bound"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <manifest> [contract...]",
		Short: "Render manifest contracts in arrow notation",
		Long: `Render every contract of a manifest, or the named ones, as
(-> arg ... result).`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(rootOpts, args[0], args[1:], cmd)
		},
	}
	return cmd
}

func runRender(opts *RootOptions, path string, names []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	m, err := compileManifest(formatter, path)
	if err != nil {
		return err
	}

	specs := m.Specs
	if len(names) > 0 {
		specs = specs[:0:0]
		for _, name := range names {
			spec, ok := m.Spec(name)
			if !ok {
				return outputCompileError(formatter, manifest.ErrCodeNotFound, fmt.Sprintf("unknown contract %q", name))
			}
			specs = append(specs, spec)
		}
	}

	reg := prelude.NewRegistry()
	rendered := make([]RenderedContract, 0, len(specs))
	for _, spec := range specs {
		c, err := reg.Resolve(spec.Expr)
		if err != nil {
			return outputCompileError(formatter, manifest.ErrCodeGeneric, fmt.Sprintf("contract %s: %v", spec.Name, err))
		}
		rendered = append(rendered, RenderedContract{Name: spec.Name, Contract: contract.Render(c), Doc: spec.Doc})
	}

	if formatter.Format == "json" {
		return formatter.Success(rendered)
	}
	for _, r := range rendered {
		fmt.Fprintf(formatter.Writer, "%s : %s\n", r.Name, r.Contract)
	}
	return nil
}

// NewDescribeCommand creates the describe command.
func NewDescribeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe <manifest> <name>",
		Short: "Show the contract attached to a bound procedure",
		Long: `Bind a manifest and describe one procedure: its name, the contract
it carries and, for layered contracts, the contracts it was bound over.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(rootOpts, args[0], args[1], cmd)
		},
	}
	return cmd
}

func runDescribe(opts *RootOptions, path, name string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	m, err := compileManifest(formatter, path)
	if err != nil {
		return err
	}
	env, err := bindManifest(opts, formatter, m)
	if err != nil {
		return err
	}

	description, ok := env.Describe(name)
	if !ok {
		_ = formatter.Error(manifest.ErrCodeNotFound, fmt.Sprintf("unknown contract %q", name), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown contract %q", name))
	}

	result := DescribeResult{Name: name, Description: description}
	if spec, ok := env.Spec(name); ok {
		result.Doc = spec.Doc
	}
	if fn, ok := env.Lookup(name); ok {
		_, result.Bound = contract.Attached(fn)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintln(formatter.Writer, result.Description)
	if result.Doc != "" {
		fmt.Fprintf(formatter.Writer, "  %s\n", result.Doc)
	}
	return nil
}
