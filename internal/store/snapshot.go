package store

import (
	"context"
	"database/sql"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/sadopc/smartbill/internal/model"
)

// Snapshot is a consistent-enough read of entries and clients for deriving
// dashboard views.
type Snapshot struct {
	Entries []model.TimeEntry
	Clients []model.Client
}

// LoadSnapshot reads entries and clients concurrently. If either read
// fails the other is cancelled and the whole load fails.
func (s *Store) LoadSnapshot(ctx context.Context, f EntryFilter) (*Snapshot, error) {
	g, ctx := errgroup.WithContext(ctx)

	var snap Snapshot
	g.Go(func() error {
		entries, err := s.listEntries(ctx, f)
		snap.Entries = entries
		return err
	})
	g.Go(func() error {
		clients, err := s.listClients(ctx)
		snap.Clients = clients
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return &snap, nil
}

// AdminCounts summarises the whole database for the admin view.
type AdminCounts struct {
	Clients        int
	Entries        int
	TrackedSeconds int64
	Applications   map[string]int
}

// AdminStats runs the admin count queries concurrently under one context.
func (s *Store) AdminStats(ctx context.Context) (*AdminCounts, error) {
	g, ctx := errgroup.WithContext(ctx)

	var counts AdminCounts
	g.Go(func() error {
		return s.count(ctx, `SELECT COUNT(*) FROM clients`, &counts.Clients)
	})
	g.Go(func() error {
		return s.count(ctx, `SELECT COUNT(*) FROM time_entries`, &counts.Entries)
	})
	g.Go(func() error {
		var total sql.NullInt64
		if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(duration), 0) FROM time_entries`).Scan(&total); err != nil {
			return fmt.Errorf("sum durations: %w", err)
		}
		counts.TrackedSeconds = total.Int64
		return nil
	})
	g.Go(func() error {
		apps, err := s.countApplications(ctx)
		counts.Applications = apps
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("admin stats: %w", err)
	}
	return &counts, nil
}

func (s *Store) count(ctx context.Context, query string, dst *int) error {
	if err := s.db.QueryRowContext(ctx, query).Scan(dst); err != nil {
		return fmt.Errorf("count: %w", err)
	}
	return nil
}
