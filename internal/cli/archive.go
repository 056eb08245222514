package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gdslab/blockspec/internal/store"
)

// ArchiveOptions holds flags for the archive command.
type ArchiveOptions struct {
	*RootOptions
	Show    string // document source id to print
	History string // system name to trace
}

// NewArchiveCommand creates the archive command.
func NewArchiveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ArchiveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "archive <archive.db>",
		Short: "Inspect an IR document archive",
		Long: `Inspect a SQLite archive written by compile --archive.

By default lists every archived document. --show prints one document's
payload; --history traces every compile of a named system, exposing
where its content hash changed.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArchive(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Show, "show", "", "print the document with this source id")
	cmd.Flags().StringVar(&opts.History, "history", "", "trace compiles of the named system")

	return cmd
}

func runArchive(opts *ArchiveOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	st, err := store.Open(path)
	if err != nil {
		return outputLoadError(formatter, loadErrf(ErrCodeNotFound, "opening archive: %v", err))
	}
	defer st.Close()

	ctx := cmd.Context()

	switch {
	case opts.Show != "":
		doc, err := st.LoadDocument(ctx, opts.Show)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return outputLoadError(formatter, loadErrf(ErrCodeNotFound, "no document %s in %s", opts.Show, path))
			}
			return outputLoadError(formatter, loadErrf(ErrCodeGeneric, "%v", err))
		}
		if formatter.Format == "json" {
			return formatter.Success(doc)
		}
		data, err := doc.Encode()
		if err != nil {
			return outputLoadError(formatter, loadErrf(ErrCodeGeneric, "%v", err))
		}
		fmt.Fprint(formatter.Writer, string(data))
		return nil

	case opts.History != "":
		records, err := st.SystemHistory(ctx, opts.History)
		if err != nil {
			return outputLoadError(formatter, loadErrf(ErrCodeGeneric, "%v", err))
		}
		if formatter.Format == "json" {
			return formatter.Success(records)
		}
		if len(records) == 0 {
			fmt.Fprintf(formatter.Writer, "no compiles of %q archived\n", opts.History)
			return nil
		}
		prev := ""
		for _, rec := range records {
			marker := " "
			if prev != "" && rec.SystemID != prev {
				marker = "*" // content changed since the previous compile
			}
			fmt.Fprintf(formatter.Writer, "%s %s  %s  %s\n", marker, rec.CreatedAt, rec.SourceID, rec.SystemID)
			prev = rec.SystemID
		}
		return nil

	default:
		infos, err := st.ListDocuments(ctx)
		if err != nil {
			return outputLoadError(formatter, loadErrf(ErrCodeGeneric, "%v", err))
		}
		if formatter.Format == "json" {
			return formatter.Success(infos)
		}
		if len(infos) == 0 {
			fmt.Fprintln(formatter.Writer, "archive is empty")
			return nil
		}
		for _, info := range infos {
			fmt.Fprintf(formatter.Writer, "%s  %s  [%s]\n", info.CreatedAt, info.SourceID, strings.Join(info.Systems, ", "))
		}
		return nil
	}
}
