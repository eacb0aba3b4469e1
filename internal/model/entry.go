package model

import "time"

// TimeEntry is one observed interval of activity, as delivered by the
// capture agent. Timestamp is kept in its wire form (RFC 3339) and parsed
// by whoever needs a time.Time.
type TimeEntry struct {
	ID            string `json:"id"`
	Timestamp     string `json:"timestamp"`
	AppName       string `json:"app_name"`
	WindowTitle   string `json:"window_title"`
	Duration      int64  `json:"duration"` // seconds
	ClientID      string `json:"client_id,omitempty"`
	Notes         string `json:"notes,omitempty"`
	ScreenshotURL string `json:"screenshot_url,omitempty"`
	Billable      *bool  `json:"billable,omitempty"`

	// Merge is set only on synthetic entries built from a run of entries.
	Merge *MergeInfo `json:"merge,omitempty"`
}

// MergeInfo describes the run of source entries a merged entry stands for.
type MergeInfo struct {
	Count int       `json:"count"`
	IDs   []string  `json:"ids"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Merged reports whether e was produced by a merge.
func (e TimeEntry) Merged() bool {
	return e.Merge != nil
}

// HasClient reports whether the entry carries a client reference. The
// reference may still be dangling.
func (e TimeEntry) HasClient() bool {
	return e.ClientID != ""
}
