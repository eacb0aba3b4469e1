package cmd

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/smartbill/internal/billing"
	"github.com/sadopc/smartbill/internal/model"
	"github.com/sadopc/smartbill/internal/store"
)

func newEntryCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entry",
		Short: "Record and inspect time entries",
	}
	cmd.AddCommand(
		newEntryAddCmd(open),
		newEntryListCmd(open),
		newEntryAssignCmd(open),
		newEntryNoteCmd(open),
		newEntryDeleteCmd(open),
	)
	return cmd
}

func newEntryAddCmd(open opener) *cobra.Command {
	var (
		app      string
		at       string
		duration time.Duration
		clientID string
		notes    string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Record a time entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if duration < 0 {
				return store.ErrInvalidDuration
			}

			e, err := open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			ts := at
			if ts == "" {
				ts = time.Now().In(e.loc).Add(-duration).Format(time.RFC3339)
			}
			entry, err := e.store.AddEntry(model.TimeEntry{
				Timestamp:   ts,
				AppName:     app,
				WindowTitle: args[0],
				Duration:    int64(duration.Seconds()),
				ClientID:    clientID,
				Notes:       notes,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added entry %s (%s)\n", entry.ID, formatSeconds(entry.Duration))
			return nil
		},
	}
	cmd.Flags().StringVar(&app, "app", "manual", "Application name")
	cmd.Flags().StringVar(&at, "at", "", "Start time, RFC 3339 (default: now minus duration)")
	cmd.Flags().DurationVar(&duration, "duration", 0, "Duration, e.g. 1h30m")
	cmd.Flags().StringVar(&clientID, "client", "", "Client id")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes")
	return cmd
}

func newEntryListCmd(open opener) *cobra.Command {
	var (
		merged     bool
		clientID   string
		unassigned bool
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List time entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			f := store.EntryFilter{Unassigned: unassigned, Limit: limit}
			if clientID != "" {
				f.ClientID = &clientID
			}
			snap, err := e.store.LoadSnapshot(cmd.Context(), f)
			if err != nil {
				return err
			}

			entries := snap.Entries
			if merged {
				entries, err = billing.MergeConsecutive(entries, e.loc)
				if err != nil {
					return err
				}
				slices.Reverse(entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No entries found.")
				return nil
			}

			idx := model.ClientIndex(snap.Clients)
			t := newTable("ID", "Time", "Description", "Client", "Duration")
			for _, en := range entries {
				name := "Unassigned"
				if c, ok := idx[en.ClientID]; ok {
					name = c.Name
				}
				t.Row(en.ID, billing.TimeRangeText(en, e.loc), billing.DisplayText(en), name, formatSeconds(en.Duration))
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
	cmd.Flags().BoolVar(&merged, "merged", false, "Merge consecutive entries with the same title and client")
	cmd.Flags().StringVar(&clientID, "client", "", "Only entries for this client id")
	cmd.Flags().BoolVar(&unassigned, "unassigned", false, "Only entries without a client")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of entries")
	return cmd
}

func newEntryAssignCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "assign <entry-id> [client-id]",
		Short: "Assign an entry to a client; omit the client to unassign",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			clientID := ""
			if len(args) == 2 {
				clientID = args[1]
				if _, err := e.store.GetClient(clientID); err != nil {
					return err
				}
			}
			if err := e.store.AssignClient(args[0], clientID); err != nil {
				return err
			}
			if clientID == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Unassigned entry %s\n", args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Assigned entry %s to %s\n", args[0], clientID)
			}
			return nil
		},
	}
}

func newEntryNoteCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "note <entry-id> <text>",
		Short: "Replace an entry's notes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			return e.store.UpdateEntryNotes(args[0], args[1])
		},
	}
}

func newEntryDeleteCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <entry-id>",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.store.DeleteEntry(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted entry %s\n", args[0])
			return nil
		},
	}
}
