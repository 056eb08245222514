package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gdslab/blockspec/internal/canonical"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Output string // output file path
	GDS    bool   // export the canonical decomposition instead
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <system.cue>",
		Short: "Export a system registry as plain data",
		Long: `Export every registered element of a system file as a nested
mapping, in registration order, with predicates omitted. Text format
emits YAML; --format json wraps the mapping in the standard JSON
response.

With --gds the canonical generalized-dynamical-system decomposition is
exported instead: state space, input space, decision space, the role
partition, and the update map.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().BoolVar(&opts.GDS, "gds", false, "export the canonical decomposition")

	return cmd
}

func runExport(opts *ExportOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	result, loadErrors := LoadSystem(path)
	if result == nil && len(loadErrors) > 0 {
		return outputLoadError(formatter, loadErrors[0])
	}
	if len(loadErrors) > 0 {
		return outputLoadErrors(formatter, loadErrors)
	}

	var payload any
	if opts.GDS {
		payload = canonical.Project(result.Registry)
	} else {
		payload = result.Registry.ToMap()
	}

	if opts.Output != "" {
		data, err := yaml.Marshal(payload)
		if err != nil {
			return outputLoadError(formatter, loadErrf(ErrCodeWriteFailed, "encoding export: %v", err))
		}
		if err := os.WriteFile(opts.Output, data, 0o644); err != nil {
			return outputLoadError(formatter, loadErrf(ErrCodeWriteFailed, "writing output file: %v", err))
		}
		formatter.VerboseLog("Wrote export to %s", opts.Output)
	}

	if formatter.Format == "json" {
		return formatter.Success(payload)
	}

	data, err := yaml.Marshal(payload)
	if err != nil {
		return outputLoadError(formatter, loadErrf(ErrCodeWriteFailed, "encoding export: %v", err))
	}
	fmt.Fprint(formatter.Writer, string(data))
	return nil
}
