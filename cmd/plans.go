package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/smartbill/internal/billing"
)

func newPlansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plans [name]",
		Short: "Show pricing plans",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				p, ok := billing.PlanByName(args[0])
				if !ok {
					return fmt.Errorf("unknown plan %q", args[0])
				}
				fmt.Fprintf(out, "%s – %s/month, %s\n", p.Name, money("$", p.MonthlyPrice), clientLimit(p))
				for _, f := range p.Features {
					fmt.Fprintf(out, "  • %s\n", f)
				}
				return nil
			}

			t := newTable("Plan", "Price", "Clients", "Features")
			for _, p := range billing.Plans {
				t.Row(p.Name, money("$", p.MonthlyPrice)+"/mo", clientLimit(p), strings.Join(p.Features, ", "))
			}
			fmt.Fprintln(out, t.Render())
			return nil
		},
	}
}

func clientLimit(p billing.Plan) string {
	if p.MaxClients == 0 {
		return "unlimited clients"
	}
	return fmt.Sprintf("up to %d clients", p.MaxClients)
}
