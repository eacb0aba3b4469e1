package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/smartbill/internal/model"
)

func newAdminCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "admin",
		Short: "Show database totals and partner application counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			counts, err := e.store.AdminStats(cmd.Context())
			if err != nil {
				e.log.Error(cmd.Context(), "admin stats", "err", err)
				return err
			}

			t := newTable("Metric", "Value")
			t.Row("Clients", fmt.Sprint(counts.Clients))
			t.Row("Entries", fmt.Sprint(counts.Entries))
			t.Row("Tracked", formatSeconds(counts.TrackedSeconds))
			for _, s := range []string{model.ApplicationPending, model.ApplicationApproved, model.ApplicationRejected} {
				t.Row("Applications "+s, fmt.Sprint(counts.Applications[s]))
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
}
