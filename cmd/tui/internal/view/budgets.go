package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pennywise/internal/budget"
)

type budgetState int

const (
	budgetStateBrowse budgetState = iota
	budgetStateCreate
)

type BudgetsModel struct {
	CommonModel
	budgetService *budget.Service
	userID        uuid.UUID

	state   budgetState
	table   table.Model
	budgets []*budget.Budget
	form    *huh.Form

	loading bool
	err     error
	status  string

	formCategory string
	formMonth    string
	formLimit    string
}

func NewBudgetsModel(budgetSvc *budget.Service, userID uuid.UUID) BudgetsModel {
	columns := []table.Column{
		{Title: "Category", Width: 16},
		{Title: "Month", Width: 14},
		{Title: "Limit", Width: 12},
		{Title: "Spent", Width: 12},
		{Title: "Remaining", Width: 12},
	}

	return BudgetsModel{
		budgetService: budgetSvc,
		userID:        userID,
		table:         newTable(columns),
	}
}

func (m BudgetsModel) Title() string { return "Budgets" }
func (m BudgetsModel) ShortHelp() string {
	if m.state == budgetStateCreate {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | n: new | x: delete | r: refresh"
}

type loadBudgetsMsg struct {
	budgets []*budget.Budget
	err     error
}

type budgetMutatedMsg struct {
	err error
}

func (m BudgetsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		budgets, err := m.budgetService.List(ctx, m.userID)

		return loadBudgetsMsg{budgets: budgets, err: err}
	}
}

func (m BudgetsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m BudgetsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadBudgetsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.budgets = msg.budgets
		m.refreshTable()
		return m, nil

	case budgetMutatedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = ""
		}
		m.state = budgetStateBrowse
		m.form = nil
		m.table.Focus()
		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case budgetStateBrowse:
		return m.updateBrowse(msg)
	case budgetStateCreate:
		return m.updateCreate(msg)
	}

	return m, nil
}

func (m BudgetsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "n":
			return m.enterCreateMode()
		case "x":
			return m, m.deleteCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m BudgetsModel) enterCreateMode() (tea.Model, tea.Cmd) {
	m.formCategory = ""
	m.formMonth = budget.MonthKey(time.Now())
	m.formLimit = ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("category").
				Title("Category").
				Value(&m.formCategory).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("category cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("month").
				Title("Month").
				Placeholder("March-2025").
				Value(&m.formMonth).
				Validate(func(s string) error {
					_, _, err := budget.ParseMonthKey(strings.TrimSpace(s))
					return err
				}),

			huh.NewInput().
				Key("limit").
				Title("Limit").
				Placeholder("500").
				Value(&m.formLimit).
				Validate(func(s string) error {
					d, err := decimal.NewFromString(strings.TrimSpace(s))
					if err != nil {
						return fmt.Errorf("invalid limit")
					}
					if d.Sign() <= 0 {
						return fmt.Errorf("limit must be positive")
					}
					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = budgetStateCreate
	m.table.Blur()
	return m, m.form.Init()
}

func (m BudgetsModel) updateCreate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = budgetStateBrowse
			m.form = nil
			m.table.Focus()
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.createCmd()
}

func (m BudgetsModel) createCmd() tea.Cmd {
	params := budget.CreateParams{
		Category: strings.TrimSpace(m.formCategory),
		Month:    strings.TrimSpace(m.formMonth),
	}
	params.Limit, _ = decimal.NewFromString(strings.TrimSpace(m.formLimit))

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.budgetService.Create(ctx, m.userID, params)

		return budgetMutatedMsg{err: err}
	}
}

func (m BudgetsModel) deleteCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.budgets) {
		return nil
	}

	id := m.budgets[idx].ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return budgetMutatedMsg{err: m.budgetService.Delete(ctx, m.userID, id)}
	}
}

func (m *BudgetsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.budgets))

	for _, b := range m.budgets {
		rows = append(rows, table.Row{
			b.Category,
			b.Month,
			FormatAmount(b.Limit),
			FormatAmount(b.Spent),
			FormatAmount(b.Limit.Sub(b.Spent)),
		})
	}

	m.table.SetRows(rows)
}

func (m BudgetsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading budgets...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	content := borderedTable(m.table)

	if m.state == budgetStateCreate && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render("New Budget\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}
