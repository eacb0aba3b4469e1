package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/smartbill/internal/billing"
	"github.com/sadopc/smartbill/internal/model"
)

// startedLayout is fixed-width so started_at sorts lexically.
const startedLayout = "2006-01-02T15:04:05Z"

// EntryFilter is used to filter time entries in queries.
type EntryFilter struct {
	ClientID   *string
	Unassigned bool
	From       *time.Time
	To         *time.Time // exclusive
	Limit      int
}

const entryColumns = `id, timestamp, app_name, window_title, duration, client_id, notes, screenshot_url, billable`

func scanEntry(r rowScanner) (model.TimeEntry, error) {
	var e model.TimeEntry
	var clientID sql.NullString
	var billable sql.NullInt64
	if err := r.Scan(&e.ID, &e.Timestamp, &e.AppName, &e.WindowTitle, &e.Duration, &clientID, &e.Notes, &e.ScreenshotURL, &billable); err != nil {
		return e, err
	}
	e.ClientID = clientID.String
	if billable.Valid {
		b := billable.Int64 == 1
		e.Billable = &b
	}
	return e, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// AddEntry stores a captured entry. A missing id is generated. The
// timestamp must parse; zone-less timestamps are read in the store's
// location.
func (s *Store) AddEntry(e model.TimeEntry) (*model.TimeEntry, error) {
	ts, err := billing.ParseTimestamp(e.Timestamp, s.loc)
	if err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}
	if e.Duration < 0 {
		return nil, fmt.Errorf("insert entry: %w", ErrInvalidDuration)
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	var billable any
	if e.Billable != nil {
		billable = 0
		if *e.Billable {
			billable = 1
		}
	}

	_, err = s.db.Exec(
		`INSERT INTO time_entries (id, timestamp, started_at, app_name, window_title, duration, client_id, notes, screenshot_url, billable, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Timestamp, ts.UTC().Format(startedLayout), e.AppName, e.WindowTitle, e.Duration,
		nullable(e.ClientID), e.Notes, e.ScreenshotURL, billable, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}
	return s.GetEntry(e.ID)
}

func (s *Store) GetEntry(id string) (*model.TimeEntry, error) {
	e, err := scanEntry(s.db.QueryRow(`SELECT `+entryColumns+` FROM time_entries WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get entry %q: %w", id, notFound(err))
	}
	return &e, nil
}

// AssignClient sets the entry's client. An empty clientID unassigns it.
func (s *Store) AssignClient(entryID, clientID string) error {
	res, err := s.db.Exec(`UPDATE time_entries SET client_id = ? WHERE id = ?`, nullable(clientID), entryID)
	if err != nil {
		return fmt.Errorf("assign client: %w", err)
	}
	return affected(res, "assign client", entryID)
}

func (s *Store) UpdateEntryNotes(id, notes string) error {
	res, err := s.db.Exec(`UPDATE time_entries SET notes = ? WHERE id = ?`, notes, id)
	if err != nil {
		return fmt.Errorf("update entry notes: %w", err)
	}
	return affected(res, "update entry notes", id)
}

func (s *Store) DeleteEntry(id string) error {
	res, err := s.db.Exec(`DELETE FROM time_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return affected(res, "delete entry", id)
}

// ListEntries returns matching entries, newest first.
func (s *Store) ListEntries(f EntryFilter) ([]model.TimeEntry, error) {
	return s.listEntries(context.Background(), f)
}

func (s *Store) listEntries(ctx context.Context, f EntryFilter) ([]model.TimeEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM time_entries WHERE 1=1`
	var args []any

	if f.ClientID != nil {
		query += ` AND client_id = ?`
		args = append(args, *f.ClientID)
	}
	if f.Unassigned {
		query += ` AND client_id IS NULL`
	}
	if f.From != nil {
		query += ` AND started_at >= ?`
		args = append(args, f.From.UTC().Format(startedLayout))
	}
	if f.To != nil {
		query += ` AND started_at < ?`
		args = append(args, f.To.UTC().Format(startedLayout))
	}
	query += ` ORDER BY started_at DESC, id`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []model.TimeEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// TrackedSeconds sums durations of entries started in [from, to).
func (s *Store) TrackedSeconds(from, to time.Time) (int64, error) {
	var total sql.NullInt64
	err := s.db.QueryRow(`
		SELECT COALESCE(SUM(duration), 0)
		FROM time_entries
		WHERE started_at >= ? AND started_at < ?`,
		from.UTC().Format(startedLayout), to.UTC().Format(startedLayout),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("tracked seconds: %w", err)
	}
	return total.Int64, nil
}
