package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/smartbill/internal/logging"
	"github.com/sadopc/smartbill/internal/store"
)

type settingsModel struct {
	store  *store.Store
	log    logging.Logger
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	defaultRate *string
	currency    *string
	chartDays   *string
	merge       *bool
}

func newSettingsModel(s *store.Store, log logging.Logger) settingsModel {
	rate, cur, days := "", "", ""
	merge := true
	return settingsModel{
		store:       s,
		log:         log,
		defaultRate: &rate,
		currency:    &cur,
		chartDays:   &days,
		merge:       &merge,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, err := s.store.GetAllSettings()
		if err != nil {
			s.log.Error(context.Background(), "load settings", "err", err)
		}
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.defaultRate = s.getVal(store.SettingDefaultRate, "0")
	*s.currency = s.getVal(store.SettingCurrency, "$")
	*s.chartDays = s.getVal(store.SettingChartDays, "7")
	*s.merge = s.store.GetBoolSetting(store.SettingMergeEntries, true)

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Rate for unassigned time").Value(s.defaultRate).Validate(validateRate),
			huh.NewInput().Title("Currency symbol").Value(s.currency),
		).Title("Billing"),
		huh.NewGroup(
			huh.NewInput().Title("Chart days").Value(s.chartDays).Validate(validateChartDays),
			huh.NewConfirm().Title("Merge consecutive entries").Value(s.merge),
		).Title("Display"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func validateChartDays(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 || n > 90 {
		return fmt.Errorf("enter a number of days between 1 and 90")
	}
	return nil
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if err := s.saveSettings(); err != nil {
			s.log.Error(context.Background(), "save settings", "err", err)
			return s, func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
			}
		}
		return s, s.refresh()
	}

	return s, cmd
}

func (s settingsModel) saveSettings() error {
	values := map[string]string{
		store.SettingDefaultRate:  strings.TrimSpace(*s.defaultRate),
		store.SettingCurrency:     *s.currency,
		store.SettingChartDays:    strings.TrimSpace(*s.chartDays),
		store.SettingMergeEntries: strconv.FormatBool(*s.merge),
	}
	for k, v := range values {
		if err := s.store.SetSetting(k, v); err != nil {
			return err
		}
	}
	return nil
}

func (s settingsModel) getVal(k, fallback string) string {
	v, err := s.store.GetSetting(k)
	if err != nil {
		return fallback
	}
	return v
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("Press enter to edit settings"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case store.SettingChartDays:
		return v + " days"
	case store.SettingMergeEntries:
		if b, err := strconv.ParseBool(v); err == nil && !b {
			return "off"
		}
		return "on"
	}
	return v
}
