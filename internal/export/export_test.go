package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/smartbill/internal/model"
)

func sampleData() ([]model.TimeEntry, []model.Client) {
	entries := []model.TimeEntry{
		{
			ID:          "e1",
			Timestamp:   "2024-03-04T09:00:00Z",
			AppName:     "Code",
			WindowTitle: "main.go",
			Duration:    3600,
			ClientID:    "acme",
			Notes:       "worked on feature",
		},
		{
			ID:          "e2",
			Timestamp:   "2024-03-04T10:00:00Z",
			AppName:     "Chrome",
			WindowTitle: "Inbox – Gmail",
			Duration:    1800,
			Merge:       &model.MergeInfo{Count: 3, IDs: []string{"e2", "e3", "e4"}},
		},
		{
			ID:          "e5",
			Timestamp:   "2024-03-04T11:00:00Z",
			AppName:     "Slack",
			WindowTitle: "general",
			Duration:    900,
			ClientID:    "gone",
		},
	}
	clients := []model.Client{
		{ID: "acme", Name: "Acme Corp", HourlyRate: 120},
		{ID: "globex", Name: "Globex", HourlyRate: 80},
	}
	return entries, clients
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	return records
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	entries, clients := sampleData()
	path := filepath.Join(t.TempDir(), "test.csv")

	if err := ToCSV(entries, clients, path, nil); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	records := readCSV(t, path)
	if len(records) != 4 {
		t.Fatalf("expected 4 rows (1 header + 3 data), got %d", len(records))
	}

	for i, h := range csvHeader {
		if records[0][i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, records[0][i], h)
		}
	}

	row := records[1]
	if row[0] != "e1" || row[2] != "Code" || row[3] != "main.go" {
		t.Fatalf("unexpected first row: %v", row)
	}
	if row[4] != "Acme Corp" {
		t.Fatalf("Client = %q, want Acme Corp", row[4])
	}
	if row[5] != "3600" || row[6] != "01:00:00" {
		t.Fatalf("durations = %q / %q", row[5], row[6])
	}
	if row[7] != "120.00" {
		t.Fatalf("Amount = %q, want 120.00", row[7])
	}
	if row[8] != "worked on feature" {
		t.Fatalf("Notes = %q", row[8])
	}

	if records[2][3] != "Inbox – Gmail (3 entries merged)" {
		t.Fatalf("merged description = %q", records[2][3])
	}
	if records[2][4] != "Unassigned" || records[2][7] != "0.00" {
		t.Fatalf("unassigned row = %v", records[2])
	}
}

func TestToCSVTimestampsInLocation(t *testing.T) {
	entries, clients := sampleData()
	entries = append(entries, model.TimeEntry{ID: "e6", Timestamp: "2024-03-04T02:00:00", WindowTitle: "late", Duration: 60})
	loc := time.FixedZone("UTC-5", -5*3600)
	path := filepath.Join(t.TempDir(), "zoned.csv")
	if err := ToCSV(entries, clients, path, loc); err != nil {
		t.Fatal(err)
	}

	records := readCSV(t, path)
	if got := records[1][1]; got != "2024-03-04T04:00:00-05:00" {
		t.Fatalf("offset timestamp = %q", got)
	}
	if got := records[4][1]; got != "2024-03-04T02:00:00-05:00" {
		t.Fatalf("zone-less timestamp = %q", got)
	}
}

func TestToCSVDanglingClient(t *testing.T) {
	entries, clients := sampleData()
	path := filepath.Join(t.TempDir(), "dangling.csv")
	if err := ToCSV(entries[2:], clients, path, nil); err != nil {
		t.Fatal(err)
	}
	records := readCSV(t, path)
	if records[1][4] != "Unassigned" || records[1][7] != "0.00" {
		t.Fatalf("dangling client should export as unassigned: %v", records[1])
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := ToCSV(nil, nil, path, nil); err != nil {
		t.Fatal(err)
	}
	if records := readCSV(t, path); len(records) != 1 {
		t.Fatalf("expected 1 row (header only), got %d", len(records))
	}
}

func TestToCSVBadPath(t *testing.T) {
	if err := ToCSV(nil, nil, "/nonexistent/dir/file.csv", nil); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToCSVSpecialCharacters(t *testing.T) {
	entries := []model.TimeEntry{{
		ID:          "e1",
		Timestamp:   time.Now().Format(time.RFC3339),
		WindowTitle: `Report "Q1", draft`,
		Duration:    60,
		ClientID:    "c",
		Notes:       `notes with "quotes" and, commas`,
	}}
	clients := []model.Client{{ID: "c", Name: `Client "Special"`}}
	path := filepath.Join(t.TempDir(), "special.csv")

	if err := ToCSV(entries, clients, path, nil); err != nil {
		t.Fatal(err)
	}
	records := readCSV(t, path)
	if records[1][3] != `Report "Q1", draft` {
		t.Fatalf("title mangled: %q", records[1][3])
	}
	if records[1][4] != `Client "Special"` {
		t.Fatalf("client name mangled: %q", records[1][4])
	}
	if records[1][8] != `notes with "quotes" and, commas` {
		t.Fatalf("notes mangled: %q", records[1][8])
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	entries, clients := sampleData()
	path := filepath.Join(t.TempDir(), "test.json")

	if err := ToJSON(entries, clients, path, nil); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var result jsonExport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if result.Count != 3 || len(result.Entries) != 3 {
		t.Fatalf("count = %d, entries = %d, want 3", result.Count, len(result.Entries))
	}
	if result.TotalHours != 1.75 {
		t.Fatalf("total_hours = %v, want 1.75", result.TotalHours)
	}
	if result.BillableHours != 1.25 {
		t.Fatalf("billable_hours = %v, want 1.25", result.BillableHours)
	}
	if result.BillableAmount != 120 {
		t.Fatalf("billable_amount = %v, want 120", result.BillableAmount)
	}

	e := result.Entries[0]
	if e.ID != "e1" || e.Client != "Acme Corp" || e.ClientID != "acme" || e.Amount != 120 {
		t.Fatalf("unexpected first entry: %+v", e)
	}
	if e.Duration != "01:00:00" {
		t.Fatalf("Duration = %q, want 01:00:00", e.Duration)
	}
}

func TestToJSONEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := ToJSON(nil, nil, path, nil); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	var result jsonExport
	json.Unmarshal(data, &result)

	if result.Count != 0 || len(result.Entries) != 0 {
		t.Fatalf("expected empty export, got %+v", result)
	}
	if !strings.Contains(string(data), `"entries": []`) {
		t.Fatal("entries should be an empty array")
	}
}

func TestToJSONBadPath(t *testing.T) {
	if err := ToJSON(nil, nil, "/nonexistent/dir/file.json", nil); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToJSONValidTimestamps(t *testing.T) {
	entries, clients := sampleData()
	path := filepath.Join(t.TempDir(), "ts.json")
	ToJSON(entries, clients, path, nil)

	data, _ := os.ReadFile(path)
	var result jsonExport
	json.Unmarshal(data, &result)

	if _, err := time.Parse(time.RFC3339, result.ExportedAt); err != nil {
		t.Fatalf("exported_at is not valid RFC3339: %q", result.ExportedAt)
	}
	for _, e := range result.Entries {
		if _, err := time.Parse(time.RFC3339, e.Timestamp); err != nil {
			t.Fatalf("timestamp is not valid RFC3339: %q", e.Timestamp)
		}
	}
}

// ============================================================
// Helpers
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{0, "00:00:00"},
		{1, "00:00:01"},
		{3661, "01:01:01"},
		{90061, "25:01:01"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.secs); got != tt.want {
			t.Errorf("formatDuration(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestLocalTimestampMalformed(t *testing.T) {
	if got := localTimestamp("garbage", time.UTC); got != "garbage" {
		t.Fatalf("expected raw passthrough, got %q", got)
	}
}
