package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/smartbill/internal/billing"
	"github.com/sadopc/smartbill/internal/model"
)

type jsonExport struct {
	ExportedAt     string  `json:"exported_at"`
	Count          int     `json:"count"`
	TotalHours     float64 `json:"total_hours"`
	BillableHours  float64 `json:"billable_hours"`
	BillableAmount float64 `json:"billable_amount"`
	Entries        []row   `json:"entries"`
}

// ToJSON writes entries and their totals to path, with timestamps in loc.
func ToJSON(entries []model.TimeEntry, clients []model.Client, path string, loc *time.Location) error {
	stats := billing.ComputeStats(entries, clients, 0)
	export := jsonExport{
		ExportedAt:     time.Now().UTC().Format(time.RFC3339),
		Count:          len(entries),
		TotalHours:     stats.TotalHours,
		BillableHours:  stats.BillableHours,
		BillableAmount: billing.CalculateBill(entries, clients, ""),
		Entries:        buildRows(entries, clients, loc),
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
