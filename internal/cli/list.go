package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/sssp/internal/family"
)

// notInstalledMessage is printed by list when no family exists.
const notInstalledMessage = "SSSP has not yet been installed: use `sssp install` to install it."

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
}

// FamilySummary describes one installed family in JSON output.
type FamilySummary struct {
	Label       string                              `json:"label"`
	Kind        string                              `json:"kind"`
	UUID        string                              `json:"uuid"`
	Description string                              `json:"description"`
	Count       int                                 `json:"count"`
	Elements    []string                            `json:"elements"`
	Parameters  map[string]family.ElementParameters `json:"parameters,omitempty"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed families",
		Long: `List installed pseudopotential families.

SSSP families are listed first, followed by families installed from
local files. Each row shows the label, the number of pseudopotentials
and the first line of the description.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts)
		},
	}

	return cmd
}

func runList(cmd *cobra.Command, opts *ListOptions) error {
	f := opts.formatter(cmd)

	st, err := opts.openStore()
	if err != nil {
		_ = f.Error("DATABASE_ERROR", err.Error(), nil)
		return err
	}
	defer st.Close()

	summaries, err := summarize(cmd.Context(), st)
	if err != nil {
		return reportError(f, ExitFailure, err, false)
	}

	if f.Format == "json" {
		return f.Success(summaries)
	}
	return writeFamilyTable(f.Writer, summaries)
}

func summarize(ctx context.Context, b family.Backend) ([]FamilySummary, error) {
	summaries := []FamilySummary{}
	for _, kind := range []family.Kind{family.KindSSSP, family.KindUPF} {
		families, err := family.List(ctx, b, kind)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", kind.Name(), err)
		}
		for _, fam := range families {
			elements, err := fam.Elements(ctx)
			if err != nil {
				return nil, err
			}
			s := FamilySummary{
				Label:       fam.Label(),
				Kind:        kind.Name(),
				UUID:        fam.UUID(),
				Description: fam.Description(),
				Count:       len(elements),
				Elements:    elements,
			}

			params, err := family.LoadFamilyParameters(ctx, b, fam)
			switch {
			case errors.Is(err, family.ErrNotFound):
			case err != nil:
				return nil, err
			default:
				s.Parameters = params.Metadata()
			}
			summaries = append(summaries, s)
		}
	}
	return summaries, nil
}

func writeFamilyTable(w io.Writer, summaries []FamilySummary) error {
	if len(summaries) == 0 {
		_, err := fmt.Fprintln(w, notInstalledMessage)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LABEL\tTYPE\tPSEUDOS\tDESCRIPTION")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", s.Label, s.Kind, s.Count, firstLine(s.Description))
	}
	return tw.Flush()
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	if line == "" {
		return "-"
	}
	return line
}
