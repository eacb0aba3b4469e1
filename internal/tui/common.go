package tui

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sadopc/smartbill/internal/model"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewClients
	viewAnalytics
	viewSettings
)

var viewNames = []string{"Dashboard", "Clients", "Analytics", "Settings"}

// --- Messages ---

type timerStartedMsg struct{}

type timerStoppedMsg struct {
	entry *model.TimeEntry
}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int64) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

func formatHours(h float64) string {
	return fmt.Sprintf("%.1fh", h)
}

// formatMoney renders an amount with thousands separators and two decimals.
func formatMoney(currency string, v float64) string {
	return currency + humanize.FormatFloat("#,###.##", v)
}
