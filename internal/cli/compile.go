package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gdslab/blockspec/internal/compiler"
	"github.com/gdslab/blockspec/internal/ir"
	"github.com/gdslab/blockspec/internal/spec"
	"github.com/gdslab/blockspec/internal/store"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output  string // output file path
	Archive string // SQLite archive path
}

// CompileStats summarizes a compiled document for text output.
type CompileStats struct {
	Blocks     int `json:"blocks"`
	Wirings    int `json:"wirings"`
	Parameters int `json:"parameters"`
}

// CompileResult is the success payload of the compile command.
type CompileResult struct {
	Document *ir.Document `json:"document"`
	SystemID string       `json:"system_id"`
	Stats    CompileStats `json:"stats"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <system.cue>",
		Short: "Compile a CUE system file to canonical IR",
		Long: `Compile a CUE system file to a canonical IR document.

The compiler loads the system file, validates every registered element,
flattens the composition tree, and emits an IR document whose identity
is a domain-separated hash over its canonical JSON form.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().StringVar(&opts.Archive, "archive", "", "SQLite archive to record the document in")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	result, loadErrors := LoadSystem(path)
	if result == nil && len(loadErrors) > 0 {
		return outputLoadError(formatter, loadErrors[0])
	}
	if len(loadErrors) > 0 {
		return outputLoadErrors(formatter, loadErrors)
	}

	formatter.VerboseLog("Loaded system %q: %d block(s), %d wiring group(s)",
		result.Name, len(result.Registry.Blocks()), len(result.Registry.Wirings()))

	if violations := result.Registry.ValidateSpec(); len(violations) > 0 {
		return outputValidationErrors(formatter, violations)
	}

	if result.Root == nil {
		return outputLoadError(formatter,
			loadErrf(ErrCodeBadCompose, "system %q declares no composition to compile", result.Name))
	}

	sys, err := compiler.CompileSystem(result.Name, result.Root)
	if err != nil {
		_ = formatter.Error(ErrCodeBadCompose, err.Error(), nil)
		return WrapExitError(ExitCommandError, "compilation failed", err)
	}
	sys = compiler.WithParameters(sys, result.Registry.Params())

	doc := ir.NewDocument([]ir.SystemIR{*sys}, path)
	systemID, err := ir.SystemID(sys)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, fmt.Sprintf("hashing system: %v", err), nil)
		return WrapExitError(ExitCommandError, "compilation failed", err)
	}

	if opts.Output != "" {
		data, err := doc.Encode()
		if err != nil {
			return outputLoadError(formatter, loadErrf(ErrCodeWriteFailed, "encoding document: %v", err))
		}
		if err := os.WriteFile(opts.Output, data, 0o644); err != nil {
			return outputLoadError(formatter, loadErrf(ErrCodeWriteFailed, "writing output file: %v", err))
		}
	}

	if opts.Archive != "" {
		if err := archiveDocument(cmd.Context(), opts.Archive, doc); err != nil {
			return outputLoadError(formatter, loadErrf(ErrCodeWriteFailed, "archiving document: %v", err))
		}
		formatter.VerboseLog("Archived document %s to %s", doc.SourceID, opts.Archive)
	}

	compiled := &CompileResult{
		Document: doc,
		SystemID: systemID,
		Stats: CompileStats{
			Blocks:     len(sys.Blocks),
			Wirings:    len(sys.Wirings),
			Parameters: len(sys.Parameters),
		},
	}

	return outputCompileSuccess(formatter, compiled, opts.Output)
}

func archiveDocument(ctx context.Context, path string, doc *ir.Document) error {
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()
	return st.SaveDocument(ctx, doc)
}

func outputCompileSuccess(formatter *OutputFormatter, result *CompileResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	sys := result.Document.Systems[0]
	fmt.Fprintf(formatter.Writer, "✓ Compiled system %q: %d block(s), %d wiring(s), %d parameter(s)\n",
		sys.Name, result.Stats.Blocks, result.Stats.Wirings, result.Stats.Parameters)
	fmt.Fprintf(formatter.Writer, "  system id: %s\n", result.SystemID)

	for _, b := range sys.Blocks {
		fmt.Fprintf(formatter.Writer, "  %s [%s]\n", b.Name, b.Role)
	}

	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "Wrote IR document to %s\n", outputFile)
	}

	return nil
}

// outputLoadError reports a single command-level error.
func outputLoadError(formatter *OutputFormatter, err error) error {
	code, message := parseLoadError(err)
	_ = formatter.Error(code, message, nil)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), nil)
}

// outputLoadErrors reports every error collected while loading.
func outputLoadErrors(formatter *OutputFormatter, errs []error) error {
	if formatter.Format == "json" {
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			code, message := parseLoadError(err)
			cliErrors[i] = CLIError{Code: code, Message: message}
		}
		_ = formatter.Error(cliErrors[0].Code, cliErrors[0].Message, cliErrors)
		return NewExitError(ExitCommandError, fmt.Sprintf("loading failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Loading failed")
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		code, message := parseLoadError(err)
		fmt.Fprintf(formatter.Writer, "  %s: %s\n", code, message)
	}
	return NewExitError(ExitCommandError, fmt.Sprintf("loading failed with %d error(s)", len(errs)))
}

// outputValidationErrors reports registry validation violations. These
// are spec-level failures rather than command errors, so they exit 1.
func outputValidationErrors(formatter *OutputFormatter, violations []spec.ValidationError) error {
	if formatter.Format == "json" {
		cliErrors := make([]CLIError, len(violations))
		for i, v := range violations {
			cliErrors[i] = CLIError{Code: v.Code, Message: v.Error()}
		}
		_ = formatter.Error(cliErrors[0].Code, cliErrors[0].Message, cliErrors)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d violation(s)", len(violations)))
	}

	fmt.Fprintf(formatter.Writer, "✗ Validation failed: %d violation(s)\n\n", len(violations))
	for _, v := range violations {
		fmt.Fprintf(formatter.Writer, "  %s\n", v.Error())
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d violation(s)", len(violations)))
}

// parseLoadError extracts an error code and message from an error.
func parseLoadError(err error) (string, string) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	var dupErr *spec.DuplicateError
	if errors.As(err, &dupErr) {
		return spec.ErrDuplicate, dupErr.Error()
	}
	return ErrCodeGeneric, err.Error()
}
