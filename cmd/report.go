package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/smartbill/internal/billing"
	"github.com/sadopc/smartbill/internal/store"
)

func newStatsCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show total, billable and unbilled hours with the client breakdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			snap, err := e.store.LoadSnapshot(cmd.Context(), store.EntryFilter{})
			if err != nil {
				e.log.Error(cmd.Context(), "load snapshot", "err", err)
				return err
			}
			rate := e.store.GetFloatSetting(store.SettingDefaultRate, 0)
			stats := billing.ComputeStats(snap.Entries, snap.Clients, rate)
			cur := currency(e.store)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total:    %s\n", hours(stats.TotalHours))
			fmt.Fprintf(out, "Billable: %s  %s\n", hours(stats.BillableHours), money(cur, stats.BilledAmount()))
			fmt.Fprintf(out, "Unbilled: %s  %s\n", hours(stats.UnbilledHours), money(cur, stats.UnbilledAmount))

			if len(stats.ClientDistribution) == 0 {
				fmt.Fprintln(out, "No client time recorded.")
				return nil
			}
			t := newTable("Client", "Hours", "Amount")
			for _, s := range stats.ClientDistribution {
				t.Row(s.ClientName, hours(s.Hours), money(cur, s.Amount))
			}
			fmt.Fprintln(out, t.Render())
			return nil
		},
	}
}

func newChartCmd(open opener) *cobra.Command {
	var days, offset int

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Print hours per day as a bar chart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			n := days
			if n <= 0 {
				n = e.store.GetIntSetting(store.SettingChartDays, 7)
			}
			from, to := billing.LastDays(time.Now(), n, offset, e.loc)
			end := time.Date(to.Year(), to.Month(), to.Day()+1, 0, 0, 0, 0, e.loc)

			entries, err := e.store.ListEntries(store.EntryFilter{From: &from, To: &end})
			if err != nil {
				return err
			}
			daily, err := billing.AggregateDaily(entries, from, to, e.loc)
			if err != nil {
				e.log.Error(cmd.Context(), "aggregate daily", "err", err)
				return err
			}
			printChart(cmd, daily)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "Number of days (default: chart_days setting)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Go back this many blocks of days")
	return cmd
}

const chartWidth = 40

func printChart(cmd *cobra.Command, daily []billing.DayHours) {
	out := cmd.OutOrStdout()
	var peak float64
	for _, d := range daily {
		peak = max(peak, d.Hours)
	}
	for _, d := range daily {
		bar := 0
		if peak > 0 {
			bar = int(d.Hours / peak * chartWidth)
		}
		fmt.Fprintf(out, "%s  %-*s %s\n", d.Label(), chartWidth, strings.Repeat("█", bar), hours(d.Hours))
	}
}

func newBillCmd(open opener) *cobra.Command {
	var clientID string

	cmd := &cobra.Command{
		Use:   "bill",
		Short: "Show the billable amount for one client or all clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			snap, err := e.store.LoadSnapshot(cmd.Context(), store.EntryFilter{})
			if err != nil {
				return err
			}

			label := "All clients"
			if clientID != "" {
				c, err := e.store.GetClient(clientID)
				if err != nil {
					return err
				}
				label = c.Name
			}
			total := billing.CalculateBill(snap.Entries, snap.Clients, clientID)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", label, money(currency(e.store), total))
			return nil
		},
	}
	cmd.Flags().StringVar(&clientID, "client", "", "Client id (default: all clients)")
	return cmd
}
