package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/smartbill/internal/export"
	"github.com/sadopc/smartbill/internal/store"
)

func newExportCmd(open opener) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all time entries to a CSV or JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "csv" && format != "json" {
				return fmt.Errorf("unknown format %q: use csv or json", format)
			}
			if out == "" {
				out = fmt.Sprintf("smartbill-export-%s.%s", time.Now().Format("2006-01-02"), format)
			}

			e, err := open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			snap, err := e.store.LoadSnapshot(cmd.Context(), store.EntryFilter{})
			if err != nil {
				return err
			}

			if format == "json" {
				err = export.ToJSON(snap.Entries, snap.Clients, out, e.loc)
			} else {
				err = export.ToCSV(snap.Entries, snap.Clients, out, e.loc)
			}
			if err != nil {
				e.log.Error(cmd.Context(), "export", "path", out, "err", err)
				return err
			}

			e.log.Info(cmd.Context(), "exported entries", "path", out, "count", len(snap.Entries))
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", len(snap.Entries), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "Output format: csv, json")
	cmd.Flags().StringVar(&out, "out", "", "Output file (default smartbill-export-<date>.<format>)")
	return cmd
}
