package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"pennywise/cmd/tui/internal/view"
	"pennywise/internal/budget"
	budgetStore "pennywise/internal/budget/store"
	"pennywise/internal/config"
	"pennywise/internal/database"
	"pennywise/internal/goal"
	goalStore "pennywise/internal/goal/store"
	"pennywise/internal/notification"
	notificationStore "pennywise/internal/notification/store"
	"pennywise/internal/realtime"
	"pennywise/internal/transaction"
	txStore "pennywise/internal/transaction/store"
)

type model struct {
	txService     *transaction.Service
	budgetService *budget.Service
	goalService   *goal.Service
	userID        uuid.UUID

	currentView View

	transactionsView view.TransactionsModel
	budgetsView      view.BudgetsModel
	goalsView        view.GoalsModel
}

type View int

const (
	ViewMenu         View = 0
	ViewTransactions View = 1
	ViewBudgets      View = 2
	ViewGoals        View = 3
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	userID, err := uuid.Parse(cfg.TUI.UserID)
	if err != nil {
		slog.Error("TUI_USER_ID must be set to a valid user id", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	// The TUI has no live websocket clients; pushes land nowhere but
	// notifications still persist.
	notifSvc := notification.NewService(notificationStore.New(db), realtime.NewRegistry())
	budgetSvc := budget.NewService(budgetStore.New(db), notifSvc)
	goalSvc := goal.NewService(goalStore.New(db), notifSvc)
	txSvc := transaction.NewService(txStore.New(db), budgetSvc, goalSvc)

	return model{
		txService:        txSvc,
		budgetService:    budgetSvc,
		goalService:      goalSvc,
		userID:           userID,
		currentView:      ViewMenu,
		transactionsView: view.NewTransactionsModel(txSvc, userID),
		budgetsView:      view.NewBudgetsModel(budgetSvc, userID),
		goalsView:        view.NewGoalsModel(goalSvc, userID),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewTransactions
				m.transactionsView = view.NewTransactionsModel(m.txService, m.userID)

				return m, m.transactionsView.Init()
			case "2":
				m.currentView = ViewBudgets
				m.budgetsView = view.NewBudgetsModel(m.budgetService, m.userID)

				return m, m.budgetsView.Init()
			case "3":
				m.currentView = ViewGoals
				m.goalsView = view.NewGoalsModel(m.goalService, m.userID)

				return m, m.goalsView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewTransactions:
		var newModel tea.Model
		newModel, cmd = m.transactionsView.Update(msg)
		m.transactionsView = newModel.(view.TransactionsModel)
	case ViewBudgets:
		var newModel tea.Model
		newModel, cmd = m.budgetsView.Update(msg)
		m.budgetsView = newModel.(view.BudgetsModel)
	case ViewGoals:
		var newModel tea.Model
		newModel, cmd = m.goalsView.Update(msg)
		m.goalsView = newModel.(view.GoalsModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Pennywise TUI\n\n" +
				"1. Transactions\n" +
				"2. Budgets\n" +
				"3. Savings Goals\n\n" +
				"q. Quit",
		)
	case ViewTransactions:
		return m.transactionsView.View()
	case ViewBudgets:
		return m.budgetsView.View()
	case ViewGoals:
		return m.goalsView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
