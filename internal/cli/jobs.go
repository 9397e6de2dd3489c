package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/melih/dockgen/internal/core/domain"
	"github.com/melih/dockgen/internal/log"
)

const (
	outputTable = "table"
	outputYAML  = "yaml"
	outputJSON  = "json"
)

func newJobsCommand(opts *globalOptions) *cobra.Command {
	var (
		limit  int
		output string
	)

	cmd := &cobra.Command{
		Use:     "jobs [id]",
		Aliases: []string{"job"},
		Short:   "List recorded jobs or show one",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if opts.cfg.Ledger.Path == "" {
				log.G(cmd.Context()).Warn("no ledger path configured, jobs are only kept by a running server")
			}

			ledger, err := newLedger(opts.cfg.Ledger)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := ledger.Close(); err == nil {
					err = cerr
				}
			}()

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				job, err := ledger.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if output == outputTable {
					output = outputYAML
				}
				return encode(out, output, job)
			}

			jobs, err := ledger.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if output == outputTable {
				return printJobs(out, jobs)
			}
			return encode(out, output, jobs)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of jobs to list, 0 for all")
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format (table, yaml, json)")
	return cmd
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func printJobs(w io.Writer, jobs []domain.Job) error {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tSTACK\tIMAGE\tREPOSITORY\tCREATED")
	for _, j := range jobs {
		stack := "-"
		if j.Detected != nil {
			stack = fmt.Sprintf("%s/%s", j.Detected.PrimaryType, j.Detected.PackageManager)
		}
		image := j.ImageTag
		if image == "" {
			image = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			j.ID, j.Status, stack, image, j.RepoURL, humanize.Time(j.CreatedAt))
	}
	return tw.Flush()
}
