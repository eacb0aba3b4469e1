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
	"github.com/sadopc/smartbill/internal/model"
	"github.com/sadopc/smartbill/internal/store"
)

var clientColors = []string{"#6C63FF", "#2EC4B6", "#FF6B6B", "#F39C12", "#2ECC71", "#E74C3C", "#9B59B6", "#3498DB"}

type clientsModel struct {
	store  *store.Store
	log    logging.Logger
	width  int
	height int

	clients  []model.Client
	cursor   int
	currency string

	formActive bool
	form       *huh.Form
	editing    bool
	editingID  string

	// Form field pointers (survive value copies)
	formName    *string
	formRate    *string
	formColor   *string
	formEmail   *string
	formCompany *string
}

func newClientsModel(s *store.Store, log logging.Logger) clientsModel {
	name, rate, color, email, company := "", "", clientColors[0], "", ""
	return clientsModel{
		store:       s,
		log:         log,
		currency:    "$",
		formName:    &name,
		formRate:    &rate,
		formColor:   &color,
		formEmail:   &email,
		formCompany: &company,
	}
}

func (c *clientsModel) setSize(w, h int) {
	c.width = w
	c.height = h
}

type clientsDataMsg struct {
	clients  []model.Client
	currency string
}

func (c clientsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		clients, err := c.store.ListClients()
		if err != nil {
			c.log.Error(context.Background(), "list clients", "err", err)
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		currency, err := c.store.GetSetting(store.SettingCurrency)
		if err != nil {
			currency = "$"
		}
		return clientsDataMsg{clients: clients, currency: currency}
	}
}

func (c clientsModel) update(msg tea.Msg) (clientsModel, tea.Cmd) {
	if c.formActive && c.form != nil {
		return c.updateForm(msg)
	}

	switch msg := msg.(type) {
	case clientsDataMsg:
		c.clients = msg.clients
		c.currency = msg.currency
		if c.cursor >= len(c.clients) {
			c.cursor = max(0, len(c.clients)-1)
		}
		return c, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if c.cursor > 0 {
				c.cursor--
			}
		case key.Matches(msg, keys.Down):
			if c.cursor < len(c.clients)-1 {
				c.cursor++
			}
		case key.Matches(msg, keys.New):
			return c.showForm(nil)
		case key.Matches(msg, keys.Enter):
			if len(c.clients) > 0 {
				cl := c.clients[c.cursor]
				return c.showForm(&cl)
			}
		case key.Matches(msg, keys.Delete):
			if len(c.clients) > 0 {
				return c, c.deleteClient(c.clients[c.cursor].ID)
			}
		}
	}
	return c, nil
}

func (c clientsModel) deleteClient(id string) tea.Cmd {
	return func() tea.Msg {
		if err := c.store.DeleteClient(id); err != nil {
			c.log.Error(context.Background(), "delete client", "client", id, "err", err)
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return c.refresh()()
	}
}

// showForm opens the client form, prefilled when cl is non-nil.
func (c clientsModel) showForm(cl *model.Client) (clientsModel, tea.Cmd) {
	*c.formName = ""
	*c.formRate = "0"
	*c.formColor = clientColors[0]
	*c.formEmail = ""
	*c.formCompany = ""
	c.editing = false
	c.editingID = ""
	if cl != nil {
		*c.formName = cl.Name
		*c.formRate = strconv.FormatFloat(cl.HourlyRate, 'f', -1, 64)
		*c.formColor = cl.Color
		*c.formEmail = cl.Email
		*c.formCompany = cl.Company
		c.editing = true
		c.editingID = cl.ID
	}

	colorOptions := make([]huh.Option[string], len(clientColors))
	for i, col := range clientColors {
		colorOptions[i] = huh.NewOption(fmt.Sprintf("● %s", col), col)
	}

	c.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Client Name").Value(c.formName).Validate(validateName),
			huh.NewInput().Title("Hourly Rate").Value(c.formRate).Validate(validateRate),
			huh.NewSelect[string]().Title("Color").Options(colorOptions...).Value(c.formColor),
			huh.NewInput().Title("Email").Value(c.formEmail),
			huh.NewInput().Title("Company").Value(c.formCompany),
		),
	).WithShowHelp(true).WithShowErrors(true)

	c.formActive = true
	return c, c.form.Init()
}

func validateName(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

func validateRate(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("enter a number")
	}
	if v < 0 {
		return store.ErrInvalidRate
	}
	return nil
}

func (c clientsModel) input() store.ClientInput {
	rate, _ := strconv.ParseFloat(strings.TrimSpace(*c.formRate), 64)
	return store.ClientInput{
		Name:       strings.TrimSpace(*c.formName),
		HourlyRate: rate,
		Color:      *c.formColor,
		Email:      strings.TrimSpace(*c.formEmail),
		Company:    strings.TrimSpace(*c.formCompany),
	}
}

func (c clientsModel) updateForm(msg tea.Msg) (clientsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			c.formActive = false
			c.form = nil
			return c, nil
		}
	}

	form, cmd := c.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		c.form = f
	}

	if c.form.State == huh.StateCompleted {
		c.formActive = false
		in := c.input()
		editing, id := c.editing, c.editingID
		return c, func() tea.Msg {
			var err error
			if editing {
				err = c.store.UpdateClient(id, in)
			} else {
				_, err = c.store.CreateClient(in)
			}
			if err != nil {
				c.log.Error(context.Background(), "save client", "err", err)
				return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
			}
			return c.refresh()()
		}
	}

	return c, cmd
}

func (c clientsModel) view() string {
	w := c.width - 4

	if c.formActive && c.form != nil {
		title := titleStyle.Render("New Client")
		if c.editing {
			title = titleStyle.Render("Edit Client")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", c.form.View())
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("Clients")

	if len(c.clients) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No clients yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-3s %-24s %-12s %-20s %s", "", "Name", "Rate", "Company", "Email")))

	for i, cl := range c.clients {
		colorDot := lipgloss.NewStyle().Foreground(lipgloss.Color(cl.Color)).Render("●")
		cursor := "  "
		style := normalItemStyle
		if i == c.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rate := formatMoney(c.currency, cl.HourlyRate) + "/h"
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %-24s %-12s %-20s %s", cursor, colorDot, cl.Name, rate, cl.Company, cl.Email)))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  enter: edit  d: delete"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
