package view

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pennywise/internal/goal"
)

type goalState int

const (
	goalStateBrowse goalState = iota
	goalStateCreate
)

type GoalsModel struct {
	CommonModel
	goalService *goal.Service
	userID      uuid.UUID

	state goalState
	table table.Model
	goals []*goal.Goal
	form  *huh.Form

	loading bool
	err     error
	status  string

	formTitle    string
	formTarget   string
	formDeadline string
	formPriority string
}

func NewGoalsModel(goalSvc *goal.Service, userID uuid.UUID) GoalsModel {
	columns := []table.Column{
		{Title: "Title", Width: 22},
		{Title: "Target", Width: 12},
		{Title: "Saved", Width: 12},
		{Title: "Progress", Width: 10},
		{Title: "Priority", Width: 8},
		{Title: "Deadline", Width: 12},
		{Title: "Status", Width: 12},
	}

	return GoalsModel{
		goalService: goalSvc,
		userID:      userID,
		table:       newTable(columns),
	}
}

func (m GoalsModel) Title() string { return "Savings Goals" }
func (m GoalsModel) ShortHelp() string {
	if m.state == goalStateCreate {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | n: new | x: delete | r: refresh"
}

type loadGoalsMsg struct {
	goals []*goal.Goal
	err   error
}

type goalMutatedMsg struct {
	err error
}

func (m GoalsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		goals, err := m.goalService.List(ctx, m.userID)

		return loadGoalsMsg{goals: goals, err: err}
	}
}

func (m GoalsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m GoalsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadGoalsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.goals = msg.goals
		m.refreshTable()
		return m, nil

	case goalMutatedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = ""
		}
		m.state = goalStateBrowse
		m.form = nil
		m.table.Focus()
		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case goalStateBrowse:
		return m.updateBrowse(msg)
	case goalStateCreate:
		return m.updateCreate(msg)
	}

	return m, nil
}

func (m GoalsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
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

func (m GoalsModel) enterCreateMode() (tea.Model, tea.Cmd) {
	m.formTitle = ""
	m.formTarget = ""
	m.formDeadline = ""
	m.formPriority = strconv.Itoa(goal.MinPriority)

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("title").
				Title("Title").
				Value(&m.formTitle).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("title cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("target").
				Title("Target amount").
				Placeholder("1000").
				Value(&m.formTarget).
				Validate(func(s string) error {
					d, err := decimal.NewFromString(strings.TrimSpace(s))
					if err != nil {
						return fmt.Errorf("invalid amount")
					}
					if d.Sign() <= 0 {
						return fmt.Errorf("target must be positive")
					}
					return nil
				}),

			huh.NewInput().
				Key("deadline").
				Title("Deadline (YYYY-MM-DD)").
				Placeholder("2026-12-31").
				Value(&m.formDeadline).
				Validate(func(s string) error {
					_, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
					return err
				}),

			huh.NewInput().
				Key("priority").
				Title(fmt.Sprintf("Priority (%d-%d)", goal.MinPriority, goal.MaxPriority)).
				Value(&m.formPriority).
				Validate(func(s string) error {
					p, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || p < goal.MinPriority || p > goal.MaxPriority {
						return fmt.Errorf("priority must be %d-%d", goal.MinPriority, goal.MaxPriority)
					}
					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = goalStateCreate
	m.table.Blur()
	return m, m.form.Init()
}

func (m GoalsModel) updateCreate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = goalStateBrowse
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

func (m GoalsModel) createCmd() tea.Cmd {
	params := goal.CreateParams{
		Title: strings.TrimSpace(m.formTitle),
	}
	params.TargetAmount, _ = decimal.NewFromString(strings.TrimSpace(m.formTarget))
	params.Deadline, _ = time.Parse(time.DateOnly, strings.TrimSpace(m.formDeadline))

	if p, err := strconv.Atoi(strings.TrimSpace(m.formPriority)); err == nil {
		params.Priority = &p
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.goalService.Create(ctx, m.userID, params)

		return goalMutatedMsg{err: err}
	}
}

func (m GoalsModel) deleteCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.goals) {
		return nil
	}

	id := m.goals[idx].ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return goalMutatedMsg{err: m.goalService.Delete(ctx, m.userID, id)}
	}
}

func (m *GoalsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.goals))

	for _, g := range m.goals {
		progress := decimal.Zero
		if g.TargetAmount.Sign() > 0 {
			progress = g.SavedAmount.Div(g.TargetAmount).Mul(decimal.NewFromInt(100)).Round(2)
		}

		rows = append(rows, table.Row{
			g.Title,
			FormatAmount(g.TargetAmount),
			FormatAmount(g.SavedAmount),
			progress.String() + "%",
			strconv.Itoa(g.Priority),
			FormatDate(g.Deadline),
			string(g.Status),
		})
	}

	m.table.SetRows(rows)
}

func (m GoalsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading goals...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	content := borderedTable(m.table)

	if m.state == goalStateCreate && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render("New Goal\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}
