package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/smartbill/internal/billing"
	"github.com/sadopc/smartbill/internal/logging"
	"github.com/sadopc/smartbill/internal/model"
	"github.com/sadopc/smartbill/internal/store"
)

type analyticsModel struct {
	store  *store.Store
	log    logging.Logger
	loc    *time.Location
	now    func() time.Time
	width  int
	height int

	days     int
	offset   int // blocks of days back from today (0 = current)
	daily    []billing.DayHours
	stats    billing.DashboardStats
	clients  []model.Client
	currency string

	chart barchart.Model
}

func newAnalyticsModel(s *store.Store, log logging.Logger, loc *time.Location) analyticsModel {
	return analyticsModel{
		store:    s,
		log:      log,
		loc:      loc,
		now:      time.Now,
		days:     7,
		currency: "$",
		chart:    barchart.New(60, 12),
	}
}

func (a *analyticsModel) setSize(w, h int) {
	a.width = w
	a.height = h
}

type analyticsDataMsg struct {
	days     int
	daily    []billing.DayHours
	stats    billing.DashboardStats
	clients  []model.Client
	currency string
}

func (a analyticsModel) dateRange(days int) (time.Time, time.Time) {
	return billing.LastDays(a.now(), days, a.offset, a.loc)
}

func (a analyticsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		days := a.store.GetIntSetting(store.SettingChartDays, 7)
		from, to := a.dateRange(days)
		end := time.Date(to.Year(), to.Month(), to.Day()+1, 0, 0, 0, 0, to.Location())

		snap, err := a.store.LoadSnapshot(ctx, store.EntryFilter{From: &from, To: &end})
		if err != nil {
			a.log.Error(ctx, "load analytics", "err", err)
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		daily, err := billing.AggregateDaily(snap.Entries, from, to, a.loc)
		if err != nil {
			a.log.Error(ctx, "aggregate daily hours", "err", err)
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		currency, err := a.store.GetSetting(store.SettingCurrency)
		if err != nil {
			currency = "$"
		}

		return analyticsDataMsg{
			days:     days,
			daily:    daily,
			stats:    billing.ComputeStats(snap.Entries, snap.Clients, a.store.GetFloatSetting(store.SettingDefaultRate, 0)),
			clients:  snap.Clients,
			currency: currency,
		}
	}
}

func (a analyticsModel) update(msg tea.Msg) (analyticsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case analyticsDataMsg:
		a.days = msg.days
		a.daily = msg.daily
		a.stats = msg.stats
		a.clients = msg.clients
		a.currency = msg.currency
		a.buildChart()
		return a, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			a.offset++
			return a, a.refresh()
		case key.Matches(msg, keys.Right):
			if a.offset > 0 {
				a.offset--
			}
			return a, a.refresh()
		}
	}
	return a, nil
}

func (a *analyticsModel) buildChart() {
	chartWidth := max(a.width-8, 20)
	chartHeight := 12
	if a.height > 30 {
		chartHeight = 16
	}

	a.chart = barchart.New(chartWidth, chartHeight)

	barStyle := lipgloss.NewStyle().Foreground(colorPrimary)
	bars := make([]barchart.BarData, 0, len(a.daily))
	for _, d := range a.daily {
		style := barStyle
		if d.Hours == 0 {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}
		bars = append(bars, barchart.BarData{
			Label:  d.Label(),
			Values: []barchart.BarValue{{Name: "Hours", Value: d.Hours, Style: style}},
		})
	}

	a.chart.PushAll(bars)
	a.chart.Draw()
}

func (a analyticsModel) totalHours() float64 {
	var total float64
	for _, d := range a.daily {
		total += d.Hours
	}
	return total
}

func (a analyticsModel) view() string {
	w := a.width - 4

	rangeLabel := ""
	if len(a.daily) > 0 {
		first, last := a.daily[0].Date, a.daily[len(a.daily)-1].Date
		rangeLabel = mutedStyle.Render(fmt.Sprintf("%s to %s", first.Format("Jan 02"), last.Format("Jan 02, 2006")))
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Analytics"), "  ",
		highlightStyle.Render(fmt.Sprintf("%d days, %s", a.days, formatHours(a.totalHours()))), "  ",
		rangeLabel,
	)

	nav := mutedStyle.Render("  ←/→: navigate")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", a.chart.View(), "", a.renderClientTable(w), "", nav,
		),
	)
}

func (a analyticsModel) renderClientTable(w int) string {
	if len(a.stats.ClientDistribution) == 0 && a.stats.UnbilledHours == 0 {
		return mutedStyle.Render("  No data for this period")
	}

	colors := make(map[string]string, len(a.clients))
	for _, c := range a.clients {
		colors[c.ID] = c.Color
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-22s %8s %14s", "Client", "Hours", "Amount")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 46))))

	for _, s := range a.stats.ClientDistribution {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(colors[s.ClientID])).Render("●")
		rows = append(rows, fmt.Sprintf("  %s %-20s %8s %14s",
			dot, s.ClientName, formatHours(s.Hours), formatMoney(a.currency, s.Amount)))
	}
	if a.stats.UnbilledHours > 0 {
		rows = append(rows, warningStyle.Render(fmt.Sprintf("  ○ %-20s %8s %14s",
			"Unbilled", formatHours(a.stats.UnbilledHours), formatMoney(a.currency, a.stats.UnbilledAmount))))
	}
	rows = append(rows, titleStyle.Render(fmt.Sprintf("  %-22s %8s %14s",
		"Total", formatHours(a.stats.TotalHours), formatMoney(a.currency, a.stats.BilledAmount()+a.stats.UnbilledAmount))))

	return strings.Join(rows, "\n")
}
