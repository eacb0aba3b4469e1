package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/smartbill/internal/store"
)

func newClientCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage clients",
	}
	cmd.AddCommand(newClientAddCmd(open), newClientListCmd(open), newClientDeleteCmd(open))
	return cmd
}

func newClientAddCmd(open opener) *cobra.Command {
	var in store.ClientInput

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			in.Name = args[0]
			c, err := e.store.CreateClient(in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added client %s (%s)\n", c.Name, c.ID)
			return nil
		},
	}
	cmd.Flags().Float64Var(&in.HourlyRate, "rate", 0, "Hourly rate")
	cmd.Flags().StringVar(&in.Color, "color", "", "Display color, e.g. #2EC4B6")
	cmd.Flags().StringVar(&in.Email, "email", "", "Contact email")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "Contact phone")
	cmd.Flags().StringVar(&in.Company, "company", "", "Company name")
	return cmd
}

func newClientListCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			clients, err := e.store.ListClients()
			if err != nil {
				return err
			}
			if len(clients) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No clients.")
				return nil
			}

			cur := currency(e.store)
			t := newTable("ID", "Name", "Rate", "Company", "Email")
			for _, c := range clients {
				t.Row(c.ID, c.Name, money(cur, c.HourlyRate)+"/h", c.Company, c.Email)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
}

func newClientDeleteCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a client; its entries become unassigned",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.store.DeleteClient(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted client %s\n", args[0])
			return nil
		},
	}
}
