package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/sadopc/smartbill/internal/store"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// newTable returns a bordered table for command output.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

func money(currency string, v float64) string {
	return currency + humanize.FormatFloat("#,###.##", v)
}

func hours(h float64) string {
	return fmt.Sprintf("%.1fh", h)
}

func formatSeconds(secs int64) string {
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}

// currency reads the currency symbol setting.
func currency(s *store.Store) string {
	c, err := s.GetSetting(store.SettingCurrency)
	if err != nil {
		return "$"
	}
	return c
}
