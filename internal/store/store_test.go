package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sadopc/smartbill/internal/billing"
	"github.com/sadopc/smartbill/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// addEntry is a test helper that stores an entry at the given instant.
func addEntry(t *testing.T, s *Store, at time.Time, title string, secs int64, clientID string) *model.TimeEntry {
	t.Helper()
	e, err := s.AddEntry(model.TimeEntry{
		Timestamp:   at.Format(time.RFC3339),
		AppName:     "Browser",
		WindowTitle: title,
		Duration:    secs,
		ClientID:    clientID,
	})
	if err != nil {
		t.Fatalf("add entry: %v", err)
	}
	return e
}

func strPtr(s string) *string { return &s }

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	path := t.TempDir() + "/sub/smartbill.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen without re-migrating.
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s2.Close()
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

func TestDefaultSettingsSeeded(t *testing.T) {
	s := newTestStore(t)
	if v, _ := s.GetSetting(SettingCurrency); v != "$" {
		t.Fatalf("currency = %q, want $", v)
	}
	if n := s.GetIntSetting(SettingChartDays, 0); n != 7 {
		t.Fatalf("chart_days = %d, want 7", n)
	}
	if !s.GetBoolSetting(SettingMergeEntries, false) {
		t.Fatal("merge_entries should default to true")
	}
}

// ============================================================
// Clients
// ============================================================

func TestCreateAndGetClient(t *testing.T) {
	s := newTestStore(t)
	c, err := s.CreateClient(ClientInput{Name: "Acme", HourlyRate: 95.5, Color: "#FF0000", Email: "ap@acme.test"})
	if err != nil {
		t.Fatal(err)
	}
	if c.ID == "" {
		t.Fatal("expected generated ID")
	}
	if c.Name != "Acme" || c.HourlyRate != 95.5 || c.Color != "#FF0000" || c.Email != "ap@acme.test" {
		t.Fatalf("unexpected client: %+v", c)
	}
	if c.CreatedAt.IsZero() {
		t.Fatal("CreatedAt should be set")
	}
}

func TestCreateClientDefaultColor(t *testing.T) {
	s := newTestStore(t)
	c, err := s.CreateClient(ClientInput{Name: "Plain"})
	if err != nil {
		t.Fatal(err)
	}
	if c.Color != "#6C63FF" {
		t.Fatalf("color = %q, want default", c.Color)
	}
}

func TestCreateClientValidation(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.CreateClient(ClientInput{Name: "Neg", HourlyRate: -1}); !errors.Is(err, ErrInvalidRate) {
		t.Fatalf("expected ErrInvalidRate, got %v", err)
	}
	if _, err := s.CreateClient(ClientInput{}); err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestCreateClientDuplicateName(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.CreateClient(ClientInput{Name: "Dup"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateClient(ClientInput{Name: "Dup"}); err == nil {
		t.Fatal("expected error for duplicate client name")
	}
}

func TestGetClientNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetClient("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListClientsSorted(t *testing.T) {
	s := newTestStore(t)
	s.CreateClient(ClientInput{Name: "Zeta"})
	s.CreateClient(ClientInput{Name: "Alpha"})

	clients, err := s.ListClients()
	if err != nil {
		t.Fatal(err)
	}
	if len(clients) != 2 || clients[0].Name != "Alpha" || clients[1].Name != "Zeta" {
		t.Fatalf("expected sorted by name, got %+v", clients)
	}
}

func TestListClientsEmpty(t *testing.T) {
	s := newTestStore(t)
	clients, err := s.ListClients()
	if err != nil {
		t.Fatal(err)
	}
	if clients != nil {
		t.Fatalf("expected nil slice, got %d items", len(clients))
	}
}

func TestUpdateClient(t *testing.T) {
	s := newTestStore(t)
	c, _ := s.CreateClient(ClientInput{Name: "Old", HourlyRate: 10})
	if err := s.UpdateClient(c.ID, ClientInput{Name: "New", HourlyRate: 20, Company: "New Ltd"}); err != nil {
		t.Fatal(err)
	}
	updated, _ := s.GetClient(c.ID)
	if updated.Name != "New" || updated.HourlyRate != 20 || updated.Company != "New Ltd" {
		t.Fatalf("update failed: %+v", updated)
	}

	if err := s.UpdateClient(c.ID, ClientInput{Name: "New", HourlyRate: -5}); !errors.Is(err, ErrInvalidRate) {
		t.Fatalf("expected ErrInvalidRate, got %v", err)
	}
	if err := s.UpdateClient("missing", ClientInput{Name: "X"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteClientLeavesDanglingEntries(t *testing.T) {
	s := newTestStore(t)
	c, _ := s.CreateClient(ClientInput{Name: "Gone", HourlyRate: 50})
	e := addEntry(t, s, time.Now(), "Work", 600, c.ID)

	if err := s.DeleteClient(c.ID); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetEntry(e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ClientID != c.ID {
		t.Fatalf("entry should keep dangling client id, got %q", got.ClientID)
	}
	if err := s.DeleteClient(c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

// ============================================================
// Time Entries
// ============================================================

func TestAddAndGetEntry(t *testing.T) {
	s := newTestStore(t)
	billable := true
	e, err := s.AddEntry(model.TimeEntry{
		ID:            "ext-1",
		Timestamp:     "2024-03-04T09:00:00+01:00",
		AppName:       "Chrome",
		WindowTitle:   "Inbox – Gmail",
		Duration:      300,
		Notes:         "triage",
		ScreenshotURL: "shots/1.png",
		Billable:      &billable,
	})
	if err != nil {
		t.Fatal(err)
	}
	if e.ID != "ext-1" || e.Timestamp != "2024-03-04T09:00:00+01:00" || e.Duration != 300 {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.ClientID != "" {
		t.Fatal("client should be unassigned")
	}
	if e.Billable == nil || !*e.Billable {
		t.Fatal("billable flag not round-tripped")
	}
	if e.Notes != "triage" || e.ScreenshotURL != "shots/1.png" {
		t.Fatalf("optional fields lost: %+v", e)
	}
}

func TestAddEntryGeneratesID(t *testing.T) {
	s := newTestStore(t)
	e := addEntry(t, s, time.Now(), "Editor", 60, "")
	if e.ID == "" {
		t.Fatal("expected generated ID")
	}
	if e.Billable != nil {
		t.Fatal("billable should stay unset")
	}
}

func TestAddEntryRejectsBadInput(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.AddEntry(model.TimeEntry{Timestamp: "soon", Duration: 1}); err == nil {
		t.Fatal("expected error for malformed timestamp")
	}
	_, err := s.AddEntry(model.TimeEntry{Timestamp: time.Now().Format(time.RFC3339), Duration: -1})
	if !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
}

func TestListEntriesFilters(t *testing.T) {
	s := newTestStore(t)
	c, _ := s.CreateClient(ClientInput{Name: "Acme", HourlyRate: 100})
	base := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)

	addEntry(t, s, base.Add(-48*time.Hour), "Old", 60, c.ID)
	addEntry(t, s, base, "Today A", 60, c.ID)
	addEntry(t, s, base.Add(time.Hour), "Today B", 60, "")

	all, err := s.ListEntries(EntryFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(all))
	}
	if all[0].WindowTitle != "Today B" {
		t.Fatalf("expected newest first, got %s", all[0].WindowTitle)
	}

	byClient, _ := s.ListEntries(EntryFilter{ClientID: strPtr(c.ID)})
	if len(byClient) != 2 {
		t.Fatalf("expected 2 client entries, got %d", len(byClient))
	}

	unassigned, _ := s.ListEntries(EntryFilter{Unassigned: true})
	if len(unassigned) != 1 || unassigned[0].WindowTitle != "Today B" {
		t.Fatalf("unexpected unassigned entries: %+v", unassigned)
	}

	from := base.Add(-time.Hour)
	to := base.Add(30 * time.Minute)
	ranged, _ := s.ListEntries(EntryFilter{From: &from, To: &to})
	if len(ranged) != 1 || ranged[0].WindowTitle != "Today A" {
		t.Fatalf("unexpected ranged entries: %+v", ranged)
	}

	limited, _ := s.ListEntries(EntryFilter{Limit: 2})
	if len(limited) != 2 {
		t.Fatalf("expected 2 with limit, got %d", len(limited))
	}
}

func TestListEntriesRangeUsesInstant(t *testing.T) {
	s := newTestStore(t)
	// 23:30 at UTC-5 is 04:30 UTC the next day.
	e, err := s.AddEntry(model.TimeEntry{Timestamp: "2024-03-04T23:30:00-05:00", Duration: 60})
	if err != nil {
		t.Fatal(err)
	}
	from := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	got, _ := s.ListEntries(EntryFilter{From: &from, To: &to})
	if len(got) != 1 || got[0].ID != e.ID {
		t.Fatalf("expected entry in UTC day, got %+v", got)
	}
}

func TestAssignClient(t *testing.T) {
	s := newTestStore(t)
	c, _ := s.CreateClient(ClientInput{Name: "Acme"})
	e := addEntry(t, s, time.Now(), "Work", 60, "")

	if err := s.AssignClient(e.ID, c.ID); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetEntry(e.ID)
	if got.ClientID != c.ID {
		t.Fatalf("client not assigned: %+v", got)
	}

	if err := s.AssignClient(e.ID, ""); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetEntry(e.ID)
	if got.ClientID != "" {
		t.Fatal("client should be cleared")
	}

	if err := s.AssignClient("missing", c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateEntryNotesAndDelete(t *testing.T) {
	s := newTestStore(t)
	e := addEntry(t, s, time.Now(), "Work", 60, "")

	if err := s.UpdateEntryNotes(e.ID, "call with client"); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetEntry(e.ID)
	if got.Notes != "call with client" {
		t.Fatalf("notes = %q", got.Notes)
	}

	if err := s.DeleteEntry(e.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetEntry(e.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestAddEntryUsesStoreLocation(t *testing.T) {
	s := newTestStore(t)
	loc := time.FixedZone("UTC-5", -5*3600)
	s.SetLocation(loc)

	if _, err := s.AddEntry(model.TimeEntry{
		Timestamp:   "2024-03-04T02:00:00",
		AppName:     "Code",
		WindowTitle: "late night",
		Duration:    3600,
	}); err != nil {
		t.Fatal(err)
	}

	from := time.Date(2024, 3, 4, 0, 0, 0, 0, loc)
	to := from.AddDate(0, 0, 1)
	entries, err := s.ListEntries(EntryFilter{From: &from, To: &to})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected the entry inside its local day, got %d entries", len(entries))
	}

	days, err := billing.AggregateDaily(entries, from, from, loc)
	if err != nil {
		t.Fatal(err)
	}
	if days[0].Hours != 1 {
		t.Fatalf("expected 1h on Mar 4, got %v", days[0].Hours)
	}

	total, err := s.TrackedSeconds(from, to)
	if err != nil {
		t.Fatal(err)
	}
	if total != 3600 {
		t.Fatalf("expected 3600 tracked seconds, got %d", total)
	}
}

func TestTrackedSeconds(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	addEntry(t, s, base.Add(9*time.Hour), "A", 1800, "")
	addEntry(t, s, base.Add(14*time.Hour), "B", 600, "")
	addEntry(t, s, base.Add(30*time.Hour), "C", 999, "")

	total, err := s.TrackedSeconds(base, base.Add(24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if total != 2400 {
		t.Fatalf("expected 2400, got %d", total)
	}
}

// ============================================================
// Partner applications
// ============================================================

func TestApplicationsLifecycle(t *testing.T) {
	s := newTestStore(t)
	a, err := s.CreateApplication("Jo Doe", "jo@example.test", "Doe Consulting", "We resell.")
	if err != nil {
		t.Fatal(err)
	}
	if a.Status != model.ApplicationPending {
		t.Fatalf("new application status = %q", a.Status)
	}
	s.CreateApplication("Sam Roe", "sam@example.test", "", "")

	if err := s.SetApplicationStatus(a.ID, model.ApplicationApproved); err != nil {
		t.Fatal(err)
	}

	pending, _ := s.ListApplications(model.ApplicationPending)
	if len(pending) != 1 || pending[0].Name != "Sam Roe" {
		t.Fatalf("unexpected pending list: %+v", pending)
	}
	all, _ := s.ListApplications("")
	if len(all) != 2 {
		t.Fatalf("expected 2 applications, got %d", len(all))
	}
}

func TestListApplicationsSubmissionOrder(t *testing.T) {
	s := newTestStore(t)
	var want []string
	for i := 0; i < 20; i++ {
		a, err := s.CreateApplication(fmt.Sprintf("Partner %02d", i), "p@example.test", "", "")
		if err != nil {
			t.Fatal(err)
		}
		want = append(want, a.ID)
	}

	apps, err := s.ListApplications("")
	if err != nil {
		t.Fatal(err)
	}
	if len(apps) != len(want) {
		t.Fatalf("expected %d applications, got %d", len(want), len(apps))
	}
	for i, a := range apps {
		if a.ID != want[i] {
			t.Fatalf("position %d: got %s, want %s", i, a.Name, fmt.Sprintf("Partner %02d", i))
		}
	}
	if apps[0].CreatedAt.IsZero() {
		t.Fatal("created_at was not parsed")
	}
}

func TestApplicationValidation(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.CreateApplication("", "x@example.test", "", ""); err == nil {
		t.Fatal("expected error for missing name")
	}
	a, _ := s.CreateApplication("Jo", "jo@example.test", "", "")
	if err := s.SetApplicationStatus(a.ID, "maybe"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if err := s.SetApplicationStatus("missing", model.ApplicationRejected); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// ============================================================
// Settings
// ============================================================

func TestSetAndGetSetting(t *testing.T) {
	s := newTestStore(t)
	if err := s.SetSetting(SettingDefaultRate, "42.5"); err != nil {
		t.Fatal(err)
	}
	if got := s.GetFloatSetting(SettingDefaultRate, 0); got != 42.5 {
		t.Fatalf("default rate = %v", got)
	}

	s.SetSetting(SettingChartDays, "abc")
	if got := s.GetIntSetting(SettingChartDays, 7); got != 7 {
		t.Fatalf("expected fallback 7, got %d", got)
	}
	if got := s.GetFloatSetting("nope", 1.5); got != 1.5 {
		t.Fatalf("expected fallback, got %v", got)
	}
}

func TestGetSettingMissing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetSetting("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetAllSettings(t *testing.T) {
	s := newTestStore(t)
	settings, err := s.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	if len(settings) != 4 {
		t.Fatalf("expected 4 default settings, got %d", len(settings))
	}
	if settings[0].Key != SettingChartDays {
		t.Fatalf("expected sorted keys, got %s first", settings[0].Key)
	}
}

// ============================================================
// Snapshot and admin stats
// ============================================================

func TestLoadSnapshot(t *testing.T) {
	s := newTestStore(t)
	c, _ := s.CreateClient(ClientInput{Name: "Acme", HourlyRate: 100})
	addEntry(t, s, time.Now(), "A", 60, c.ID)
	addEntry(t, s, time.Now(), "B", 60, "")

	snap, err := s.LoadSnapshot(context.Background(), EntryFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Entries) != 2 || len(snap.Clients) != 1 {
		t.Fatalf("unexpected snapshot: %d entries, %d clients", len(snap.Entries), len(snap.Clients))
	}
}

func TestLoadSnapshotCancelled(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.LoadSnapshot(ctx, EntryFilter{}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestLoadSnapshotFailsWhole(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.db.Exec(`DROP TABLE clients`); err != nil {
		t.Fatal(err)
	}
	addEntry(t, s, time.Now(), "A", 60, "")
	if _, err := s.LoadSnapshot(context.Background(), EntryFilter{}); err == nil {
		t.Fatal("expected snapshot to fail when one read fails")
	}
}

func TestAdminStats(t *testing.T) {
	s := newTestStore(t)
	c, _ := s.CreateClient(ClientInput{Name: "Acme"})
	addEntry(t, s, time.Now(), "A", 600, c.ID)
	addEntry(t, s, time.Now(), "B", 300, "")
	a, _ := s.CreateApplication("Jo", "jo@example.test", "", "")
	s.CreateApplication("Sam", "sam@example.test", "", "")
	s.SetApplicationStatus(a.ID, model.ApplicationRejected)

	counts, err := s.AdminStats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if counts.Clients != 1 || counts.Entries != 2 || counts.TrackedSeconds != 900 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
	if counts.Applications[model.ApplicationPending] != 1 ||
		counts.Applications[model.ApplicationRejected] != 1 ||
		counts.Applications[model.ApplicationApproved] != 0 {
		t.Fatalf("unexpected application counts: %+v", counts.Applications)
	}
}
