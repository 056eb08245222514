package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gdslab/blockspec/internal/compiler"
	"github.com/gdslab/blockspec/internal/ir"
	"github.com/gdslab/blockspec/internal/verify"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Check string // restrict output to one check id
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify <system.cue|document.json>",
		Short: "Run structural verification checks",
		Long: `Run structural verification checks against a system.

Given a CUE system file, verify runs the semantic registry checks plus,
when the file declares a composition, the generic graph checks over the
compiled IR. Given a compiled IR document, verify runs the generic
checks over every system it contains.

Exit code 1 means at least one check produced an error finding.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Check, "check", "", "report findings for a single check id only")

	return cmd
}

func runVerify(opts *VerifyOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	var reports []verify.Report
	if filepath.Ext(path) == ".json" {
		var err error
		reports, err = verifyDocument(path)
		if err != nil {
			return outputLoadError(formatter, err)
		}
	} else {
		result, loadErrors := LoadSystem(path)
		if result == nil && len(loadErrors) > 0 {
			return outputLoadError(formatter, loadErrors[0])
		}
		if len(loadErrors) > 0 {
			return outputLoadErrors(formatter, loadErrors)
		}

		report := verify.VerifyRegistry(result.Name, result.Registry)
		if result.Root != nil {
			sys, err := compiler.CompileSystem(result.Name, result.Root)
			if err != nil {
				_ = formatter.Error(ErrCodeBadCompose, err.Error(), nil)
				return WrapExitError(ExitCommandError, "verification failed", err)
			}
			generic := verify.VerifySystem(sys)
			report = verify.BuildReport(result.Name, append(report.Findings, generic.Findings...))
		}
		reports = []verify.Report{report}
	}

	if opts.Check != "" {
		for i, r := range reports {
			reports[i] = verify.BuildReport(r.Name, r.ByCheck(opts.Check))
		}
	}

	return outputReports(formatter, reports)
}

// verifyDocument runs the generic checks over every system in a
// compiled IR document.
func verifyDocument(path string) ([]verify.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, loadErrf(ErrCodeNotFound, "document not found: %s", path)
		}
		return nil, loadErrf(ErrCodeNotFound, "reading document: %v", err)
	}
	doc, err := ir.DecodeDocument(data)
	if err != nil {
		return nil, loadErrf(ErrCodeBadDocument, "%v", err)
	}

	reports := make([]verify.Report, 0, len(doc.Systems))
	for i := range doc.Systems {
		reports = append(reports, verify.VerifySystem(&doc.Systems[i]))
	}
	return reports, nil
}

func outputReports(formatter *OutputFormatter, reports []verify.Report) error {
	clean := true
	errorCount := 0
	for _, r := range reports {
		if !r.Clean() {
			clean = false
			errorCount += r.Summary.Errors
		}
	}

	if formatter.Format == "json" {
		if err := formatter.Success(reports); err != nil {
			return err
		}
	} else {
		for _, r := range reports {
			printReport(formatter, r)
		}
	}

	if !clean {
		return NewExitError(ExitFailure, fmt.Sprintf("verification failed with %d error finding(s)", errorCount))
	}
	return nil
}

func printReport(formatter *OutputFormatter, r verify.Report) {
	mark := "✓"
	if !r.Clean() {
		mark = "✗"
	}
	fmt.Fprintf(formatter.Writer, "%s %s\n", mark, r.String())

	for _, f := range r.Findings {
		if f.Passed && !formatter.Verbose {
			continue
		}
		fmt.Fprintf(formatter.Writer, "  [%s] %s: %s\n", f.Severity, f.CheckID, f.Message)
		if len(f.SourceElements) > 0 {
			fmt.Fprintf(formatter.Writer, "      elements: %v\n", f.SourceElements)
		}
	}
}
