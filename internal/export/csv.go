package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/smartbill/internal/billing"
	"github.com/sadopc/smartbill/internal/model"
)

var csvHeader = []string{"ID", "Timestamp", "App", "Description", "Client", "Duration (s)", "Duration", "Amount", "Notes"}

// ToCSV writes entries to path. Timestamps are rendered in loc; nil means
// local time.
func ToCSV(entries []model.TimeEntry, clients []model.Client, path string, loc *time.Location) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range buildRows(entries, clients, loc) {
		row := []string{
			r.ID,
			r.Timestamp,
			r.App,
			r.Description,
			r.Client,
			strconv.FormatInt(r.DurationSec, 10),
			r.Duration,
			strconv.FormatFloat(r.Amount, 'f', 2, 64),
			r.Notes,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

type row struct {
	ID          string  `json:"id"`
	Timestamp   string  `json:"timestamp"`
	App         string  `json:"app"`
	Description string  `json:"description"`
	Client      string  `json:"client"`
	ClientID    string  `json:"client_id,omitempty"`
	DurationSec int64   `json:"duration_seconds"`
	Duration    string  `json:"duration"`
	Amount      float64 `json:"amount"`
	Notes       string  `json:"notes,omitempty"`
}

// buildRows resolves client names and per-entry amounts. Entries whose
// client is missing are exported as unassigned with no amount.
func buildRows(entries []model.TimeEntry, clients []model.Client, loc *time.Location) []row {
	if loc == nil {
		loc = time.Local
	}
	idx := model.ClientIndex(clients)
	rows := make([]row, 0, len(entries))
	for _, e := range entries {
		r := row{
			ID:          e.ID,
			Timestamp:   localTimestamp(e.Timestamp, loc),
			App:         e.AppName,
			Description: billing.DisplayText(e),
			Client:      "Unassigned",
			DurationSec: e.Duration,
			Duration:    formatDuration(e.Duration),
			Notes:       e.Notes,
		}
		if c, ok := idx[e.ClientID]; ok && e.HasClient() {
			r.Client = c.Name
			r.ClientID = c.ID
			r.Amount = billing.CalculateBill([]model.TimeEntry{e}, clients, c.ID)
		}
		rows = append(rows, r)
	}
	return rows
}

func localTimestamp(ts string, loc *time.Location) string {
	t, err := billing.ParseTimestamp(ts, loc)
	if err != nil {
		return ts
	}
	return t.In(loc).Format(time.RFC3339)
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
