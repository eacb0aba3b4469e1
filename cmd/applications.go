package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/smartbill/internal/model"
)

func newApplicationsCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "applications",
		Aliases: []string{"apps"},
		Short:   "Review partner program applications",
	}
	cmd.AddCommand(
		newApplicationsListCmd(open),
		newApplicationsSubmitCmd(open),
		newApplicationStatusCmd(open, "approve", model.ApplicationApproved),
		newApplicationStatusCmd(open, "reject", model.ApplicationRejected),
	)
	return cmd
}

func newApplicationsListCmd(open opener) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List applications, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if status != "" && !model.ValidApplicationStatus(status) {
				return fmt.Errorf("unknown status %q", status)
			}

			e, err := open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			apps, err := e.store.ListApplications(status)
			if err != nil {
				return err
			}
			if len(apps) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No applications.")
				return nil
			}

			t := newTable("ID", "Name", "Email", "Company", "Status", "Submitted")
			for _, a := range apps {
				t.Row(a.ID, a.Name, a.Email, a.Company, a.Status, a.CreatedAt.In(e.loc).Format("2006-01-02"))
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Only applications with this status (pending, approved, rejected)")
	return cmd
}

func newApplicationsSubmitCmd(open opener) *cobra.Command {
	var email, company, message string

	cmd := &cobra.Command{
		Use:   "submit <name>",
		Short: "File a partner application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			a, err := e.store.CreateApplication(args[0], email, company, message)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Submitted application %s\n", a.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Contact email (required)")
	cmd.Flags().StringVar(&company, "company", "", "Company name")
	cmd.Flags().StringVar(&message, "message", "", "Message to the reviewers")
	return cmd
}

func newApplicationStatusCmd(open opener, verb, status string) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <id>",
		Short: fmt.Sprintf("Mark an application %s", status),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.store.SetApplicationStatus(args[0], status); err != nil {
				return err
			}
			e.log.Info(cmd.Context(), "application reviewed", "id", args[0], "status", status)
			fmt.Fprintf(cmd.OutOrStdout(), "Application %s %s\n", args[0], status)
			return nil
		},
	}
}
