package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gdslab/blockspec/internal/query"
	"github.com/gdslab/blockspec/internal/spec"
)

// Query kinds accepted by the query command.
var queryKinds = []string{"params", "blocks", "updates", "deps", "kinds", "affecting"}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <system.cue> <kind> [args]",
		Short: "Query a system's dependency surface",
		Long: `Query the relationships recorded in a system file.

Kinds:
  params                 parameters mapped to the blocks referencing them
  blocks                 blocks mapped to the parameters they reference
  updates                state variables mapped to the mechanisms writing them
  deps                   block adjacency derived from wiring groups
  kinds                  blocks partitioned by role
  affecting <Entity.var> blocks that can influence one state variable`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runQuery(rootOpts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	path, kind := args[0], args[1]

	result, loadErrors := LoadSystem(path)
	if result == nil && len(loadErrors) > 0 {
		return outputLoadError(formatter, loadErrors[0])
	}
	if len(loadErrors) > 0 {
		return outputLoadErrors(formatter, loadErrors)
	}

	answer, err := evalQuery(result.Registry, kind, args[2:])
	if err != nil {
		return outputLoadError(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(answer)
	}
	printQueryAnswer(formatter, answer)
	return nil
}

func evalQuery(r *spec.Registry, kind string, rest []string) (any, error) {
	switch kind {
	case "params":
		return query.ParamToBlocks(r), nil
	case "blocks":
		return query.BlockToParams(r), nil
	case "updates":
		return query.EntityUpdateMap(r), nil
	case "deps":
		return query.DependencyGraph(r), nil
	case "kinds":
		byRole := map[string][]string{}
		for role, names := range query.BlocksByKind(r) {
			byRole[role.String()] = names
		}
		return byRole, nil
	case "affecting":
		if len(rest) != 1 {
			return nil, loadErrf(ErrCodeGeneric, "affecting takes exactly one Entity.variable argument")
		}
		entity, variable, ok := strings.Cut(rest[0], ".")
		if !ok || entity == "" || variable == "" {
			return nil, loadErrf(ErrCodeGeneric, "malformed state reference %q: want Entity.variable", rest[0])
		}
		return query.BlocksAffecting(r, entity, variable), nil
	default:
		return nil, loadErrf(ErrCodeGeneric, "unknown query kind %q: want one of %v", kind, queryKinds)
	}
}

func printQueryAnswer(formatter *OutputFormatter, answer any) {
	switch v := answer.(type) {
	case map[string][]string:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if len(v[k]) == 0 {
				fmt.Fprintf(formatter.Writer, "%s: (none)\n", k)
				continue
			}
			fmt.Fprintf(formatter.Writer, "%s: %s\n", k, strings.Join(v[k], ", "))
		}
	case []string:
		if len(v) == 0 {
			fmt.Fprintln(formatter.Writer, "(none)")
			return
		}
		for _, name := range v {
			fmt.Fprintln(formatter.Writer, name)
		}
	default:
		fmt.Fprintln(formatter.Writer, answer)
	}
}
