package tui

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/smartbill/internal/billing"
	"github.com/sadopc/smartbill/internal/logging"
	"github.com/sadopc/smartbill/internal/model"
	"github.com/sadopc/smartbill/internal/store"
)

const recentLimit = 8

// pickerPurpose says what the client picker was opened for.
type pickerPurpose int

const (
	pickStart pickerPurpose = iota
	pickAssign
)

type dashboardModel struct {
	store  *store.Store
	log    logging.Logger
	loc    *time.Location
	now    func() time.Time
	timer  timerModel
	width  int
	height int

	stats    billing.DashboardStats
	today    int64
	recent   []model.TimeEntry
	clients  []model.Client
	currency string
	merge    bool
	cursor   int

	// Client picker state
	picking      bool
	pickFor      pickerPurpose
	pickerCursor int

	// Manual entry form
	formActive  bool
	form        *huh.Form
	formTitle   *string
	formClient  *string
	formMinutes *string
}

func newDashboardModel(s *store.Store, log logging.Logger, loc *time.Location) dashboardModel {
	title, client, minutes := "", "", ""
	return dashboardModel{
		store:       s,
		log:         log,
		loc:         loc,
		now:         time.Now,
		timer:       newTimerModel(s),
		currency:    "$",
		merge:       true,
		formTitle:   &title,
		formClient:  &client,
		formMinutes: &minutes,
	}
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d dashboardModel) isRunning() bool { return d.timer.running() }
func (d dashboardModel) isPaused() bool  { return d.timer.paused() }
func (d dashboardModel) elapsed() time.Duration {
	return d.timer.currentElapsed()
}

type dashboardDataMsg struct {
	stats    billing.DashboardStats
	today    int64
	entries  []model.TimeEntry
	clients  []model.Client
	currency string
	merge    bool
}

func (d dashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		snap, err := d.store.LoadSnapshot(ctx, store.EntryFilter{})
		if err != nil {
			d.log.Error(ctx, "load dashboard", "err", err)
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}

		from := billing.StartOfDay(d.now(), d.loc)
		today, err := d.store.TrackedSeconds(from, from.AddDate(0, 0, 1))
		if err != nil {
			d.log.Error(ctx, "load today total", "err", err)
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}

		rate := d.store.GetFloatSetting(store.SettingDefaultRate, 0)
		currency, err := d.store.GetSetting(store.SettingCurrency)
		if err != nil {
			currency = "$"
		}

		return dashboardDataMsg{
			stats:    billing.ComputeStats(snap.Entries, snap.Clients, rate),
			today:    today,
			entries:  snap.Entries,
			clients:  snap.Clients,
			currency: currency,
			merge:    d.store.GetBoolSetting(store.SettingMergeEntries, true),
		}
	}
}

// recentEntries returns the newest entries, merged into runs when merge is
// on. entries arrive newest first.
func recentEntries(entries []model.TimeEntry, merge bool, loc *time.Location) ([]model.TimeEntry, error) {
	if !merge {
		return entries[:min(len(entries), recentLimit)], nil
	}
	merged, err := billing.MergeConsecutive(entries, loc)
	if err != nil {
		return nil, err
	}
	slices.Reverse(merged)
	return merged[:min(len(merged), recentLimit)], nil
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	if d.formActive && d.form != nil {
		return d.updateForm(msg)
	}

	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.stats = msg.stats
		d.today = msg.today
		d.clients = msg.clients
		d.currency = msg.currency
		d.merge = msg.merge
		recent, err := recentEntries(msg.entries, d.merge, d.loc)
		if err != nil {
			d.log.Warn(context.Background(), "merge recent entries", "err", err)
			recent, _ = recentEntries(msg.entries, false, d.loc)
		}
		d.recent = recent
		if d.cursor >= len(d.recent) {
			d.cursor = max(0, len(d.recent)-1)
		}
		return d, nil

	case tickMsg:
		d.timer.tick()
		return d, nil

	case tea.KeyMsg:
		d.timer.recordActivity()

		if d.picking {
			return d.updatePicker(msg)
		}

		switch {
		case key.Matches(msg, keys.Start):
			if d.timer.running() {
				return d, nil
			}
			d.picking = true
			d.pickFor = pickStart
			d.pickerCursor = 0
			return d, nil

		case key.Matches(msg, keys.Stop):
			return d.stopTimer()

		case key.Matches(msg, keys.Pause):
			d.timer.toggle()
			return d, nil

		case key.Matches(msg, keys.Up):
			if d.cursor > 0 {
				d.cursor--
			}
		case key.Matches(msg, keys.Down):
			if d.cursor < len(d.recent)-1 {
				d.cursor++
			}

		case key.Matches(msg, keys.Enter):
			if len(d.recent) > 0 {
				d.picking = true
				d.pickFor = pickAssign
				d.pickerCursor = 0
			}

		case key.Matches(msg, keys.Delete):
			if len(d.recent) > 0 {
				return d, d.deleteEntry(d.recent[d.cursor])
			}

		case key.Matches(msg, keys.Merge):
			d.merge = !d.merge
			return d, d.saveMerge()

		case key.Matches(msg, keys.New):
			return d.showEntryForm()
		}
	}
	return d, nil
}

// pickerOptions is the clients list followed by a "No client" choice.
func (d dashboardModel) pickerOptions() int {
	return len(d.clients) + 1
}

func (d dashboardModel) pickedClient() (id, name string) {
	if d.pickerCursor < len(d.clients) {
		c := d.clients[d.pickerCursor]
		return c.ID, c.Name
	}
	return "", ""
}

func (d dashboardModel) updatePicker(msg tea.KeyMsg) (dashboardModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if d.pickerCursor > 0 {
			d.pickerCursor--
		}
	case key.Matches(msg, keys.Down):
		if d.pickerCursor < d.pickerOptions()-1 {
			d.pickerCursor++
		}
	case key.Matches(msg, keys.Enter):
		d.picking = false
		id, name := d.pickedClient()
		if d.pickFor == pickAssign {
			return d, d.assignClient(d.recent[d.cursor], id)
		}
		title := name
		if title == "" {
			title = "Manual entry"
		}
		d.timer.start(title, id, name)
		return d, func() tea.Msg { return timerStartedMsg{} }
	case key.Matches(msg, keys.Back):
		d.picking = false
	}
	return d, nil
}

func (d dashboardModel) stopTimer() (dashboardModel, tea.Cmd) {
	entry, err := d.timer.stop()
	if err != nil {
		d.log.Error(context.Background(), "stop timer", "err", err)
		return d, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
	}
	if entry == nil {
		return d, nil
	}
	return d, tea.Batch(
		d.loadData(),
		func() tea.Msg { return timerStoppedMsg{entry: entry} },
	)
}

// mergedIDs lists every stored entry behind a row.
func mergedIDs(e model.TimeEntry) []string {
	if e.Merge != nil && len(e.Merge.IDs) > 0 {
		return e.Merge.IDs
	}
	return []string{e.ID}
}

func (d dashboardModel) assignClient(e model.TimeEntry, clientID string) tea.Cmd {
	return func() tea.Msg {
		for _, id := range mergedIDs(e) {
			if err := d.store.AssignClient(id, clientID); err != nil {
				d.log.Error(context.Background(), "assign client", "entry", id, "err", err)
				return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
			}
		}
		return d.loadData()()
	}
}

func (d dashboardModel) deleteEntry(e model.TimeEntry) tea.Cmd {
	return func() tea.Msg {
		for _, id := range mergedIDs(e) {
			if err := d.store.DeleteEntry(id); err != nil {
				d.log.Error(context.Background(), "delete entry", "entry", id, "err", err)
				return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
			}
		}
		return d.loadData()()
	}
}

func (d dashboardModel) saveMerge() tea.Cmd {
	value := strconv.FormatBool(d.merge)
	return func() tea.Msg {
		if err := d.store.SetSetting(store.SettingMergeEntries, value); err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return d.loadData()()
	}
}

func (d dashboardModel) showEntryForm() (dashboardModel, tea.Cmd) {
	*d.formTitle = ""
	*d.formClient = ""
	*d.formMinutes = "30"

	options := []huh.Option[string]{huh.NewOption("No client", "")}
	for _, c := range d.clients {
		options = append(options, huh.NewOption(c.Name, c.ID))
	}

	d.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Description").Value(d.formTitle),
			huh.NewSelect[string]().Title("Client").Options(options...).Value(d.formClient),
			huh.NewInput().Title("Minutes").Value(d.formMinutes).Validate(validateMinutes),
		),
	).WithShowHelp(true).WithShowErrors(true)

	d.formActive = true
	return d, d.form.Init()
}

func validateMinutes(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a positive number of minutes")
	}
	return nil
}

func (d dashboardModel) updateForm(msg tea.Msg) (dashboardModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			d.formActive = false
			d.form = nil
			return d, nil
		}
	}

	form, cmd := d.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		d.form = f
	}

	if d.form.State == huh.StateCompleted {
		d.formActive = false
		minutes, _ := strconv.Atoi(strings.TrimSpace(*d.formMinutes))
		title := strings.TrimSpace(*d.formTitle)
		if title == "" {
			title = "Manual entry"
		}
		entry := model.TimeEntry{
			Timestamp:   time.Now().Add(-time.Duration(minutes) * time.Minute).Format(time.RFC3339),
			AppName:     timerAppName,
			WindowTitle: title,
			Duration:    int64(minutes) * 60,
			ClientID:    *d.formClient,
		}
		return d, func() tea.Msg {
			if _, err := d.store.AddEntry(entry); err != nil {
				d.log.Error(context.Background(), "add manual entry", "err", err)
				return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
			}
			return d.loadData()()
		}
	}

	return d, cmd
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4

	if d.formActive && d.form != nil {
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("New Entry"), "", d.form.View())
		return panelStyle.Width(contentWidth).Render(content)
	}

	timerPanel := d.renderTimerPanel(contentWidth)
	cards := d.renderStatCards(contentWidth)

	var bottomPanel string
	if d.picking {
		bottomPanel = d.renderClientPicker(contentWidth)
	} else {
		bottomPanel = d.renderRecentPanel(contentWidth)
	}

	return lipgloss.JoinVertical(lipgloss.Left, timerPanel, cards, bottomPanel)
}

func (d dashboardModel) renderTimerPanel(w int) string {
	if d.timer.running() {
		timeStr := formatDuration(d.timer.currentElapsed())

		var timeDisplay, indicator string
		if d.timer.paused() {
			timeDisplay = timerPausedStyle.Width(w - 6).Render(timeStr)
			if d.timer.isIdle {
				indicator = warningStyle.Render("⏸  IDLE")
			} else {
				indicator = warningStyle.Render("⏸  PAUSED")
			}
		} else {
			timeDisplay = timerRunningStyle.Width(w - 6).Render(timeStr)
			indicator = successStyle.Render("●  RUNNING")
		}

		clientLine := mutedStyle.Render("No client")
		if d.timer.clientName != "" {
			clientLine = highlightStyle.Render(d.timer.clientName)
		}

		content := lipgloss.JoinVertical(lipgloss.Center, timeDisplay, indicator, clientLine)
		return activePanelStyle.Width(w).Render(content)
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		timerStyle.Width(w-6).Render("00:00:00"),
		mutedStyle.Render("■  STOPPED"),
		mutedStyle.Render("Press s to start tracking, n to add an entry"),
	)
	return panelStyle.Width(w).Render(content)
}

func (d dashboardModel) renderStatCards(w int) string {
	cardW := max(w/5-2, 12)
	card := func(label, value string) string {
		return cardStyle.Width(cardW).Render(lipgloss.JoinVertical(lipgloss.Center, value, mutedStyle.Render(label)))
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Today", cardValueStyle.Render(formatSeconds(d.today))),
		card("Total", cardValueStyle.Render(formatHours(d.stats.TotalHours))),
		card("Billable", cardValueStyle.Render(formatHours(d.stats.BillableHours))),
		card("Billed", moneyStyle.Render(formatMoney(d.currency, d.stats.BilledAmount()))),
		card("Unbilled", warningStyle.Render(formatHours(d.stats.UnbilledHours)+"  "+formatMoney(d.currency, d.stats.UnbilledAmount))),
	)

	if len(d.stats.ClientDistribution) == 0 {
		return row
	}

	var lines []string
	lines = append(lines, titleStyle.Render("By Client"))
	colors := make(map[string]string, len(d.clients))
	for _, c := range d.clients {
		colors[c.ID] = c.Color
	}
	for _, s := range d.stats.ClientDistribution {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(colors[s.ClientID])).Render("●")
		lines = append(lines, fmt.Sprintf("  %s %-20s %7s  %s",
			dot, s.ClientName, formatHours(s.Hours), moneyStyle.Render(formatMoney(d.currency, s.Amount))))
	}
	return lipgloss.JoinVertical(lipgloss.Left, row, panelStyle.Width(w).Render(strings.Join(lines, "\n")))
}

func (d dashboardModel) renderRecentPanel(w int) string {
	title := titleStyle.Render("Recent Entries")
	if d.merge {
		title += mutedStyle.Render("  (merged)")
	}
	if len(d.recent) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No entries yet"),
		)
		return panelStyle.Width(w).Render(content)
	}

	idx := model.ClientIndex(d.clients)

	var rows []string
	rows = append(rows, title)
	for i, e := range d.recent {
		cName := "Unassigned"
		if c, ok := idx[e.ClientID]; ok {
			cName = c.Name
		}
		cursor := "  "
		style := normalItemStyle
		if i == d.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		row := style.Render(fmt.Sprintf("%s%-19s %-36s %-14s %s",
			cursor,
			billing.TimeRangeText(e, d.loc),
			billing.DisplayText(e),
			cName,
			formatSeconds(e.Duration),
		))
		rows = append(rows, row)
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: assign client  d: delete  m: toggle merge  n: new entry"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderClientPicker(w int) string {
	title := titleStyle.Render("Select Client")
	if d.pickFor == pickAssign {
		title = titleStyle.Render("Assign Client")
	}

	var rows []string
	rows = append(rows, title)
	for i := 0; i < d.pickerOptions(); i++ {
		label := mutedStyle.Render("○") + " No client"
		if i < len(d.clients) {
			c := d.clients[i]
			label = lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Render("●") + " " + c.Name
		}
		cursor := "  "
		style := normalItemStyle
		if i == d.pickerCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+label))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: select  esc: cancel"))

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
