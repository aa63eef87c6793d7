package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/money-tracker/internal/cli"
)

// topCategories is how many expense categories the breakdown lists.
const topCategories = 5

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	theme := m.config.Theme
	sections := []string{
		theme.Title.Render(cli.MoneyIcon+" Money Tracker") + "  " + theme.Subtitle.Render(m.period.Label),
		m.balanceView(),
	}

	if m.lastError != nil {
		sections = append(sections, theme.Error.Render("Error: "+m.lastError.Error()))
	}

	if m.loading && m.summary == nil {
		sections = append(sections, m.spinner.View()+" Loading...")
	} else {
		sections = append(sections,
			lipgloss.JoinHorizontal(lipgloss.Top, m.totalsView(), " ", m.categoriesView()),
			theme.Panel.Render(m.table.View()),
			m.insightsView(),
		)
	}

	sections = append(sections, m.help.View(m.keymap))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) balanceView() string {
	theme := m.config.Theme
	if !m.snapshot.Exists {
		return theme.Label.Render("Balance") + theme.Muted.Render("not set yet")
	}

	style := theme.Income
	if m.snapshot.Balance.Amount < 0 {
		style = theme.Expense
	}
	return theme.Label.Render("Balance") + style.Render(cli.FormatMoney(m.snapshot.Balance.Amount))
}

func (m Model) totalsView() string {
	theme := m.config.Theme
	s := m.summary

	net := theme.Income
	if s.Net() < 0 {
		net = theme.Expense
	}

	lines := []string{
		theme.Label.Render("Income") + theme.Income.Render(cli.FormatMoney(s.Income)),
		theme.Label.Render("Expense") + theme.Expense.Render(cli.FormatMoney(s.Expense)),
		theme.Label.Render("Net") + net.Render(cli.FormatMoney(s.Net())),
		theme.Label.Render("Count") + fmt.Sprintf("%d", s.TransactionCount),
	}
	return theme.Panel.Render(strings.Join(lines, "\n"))
}

func (m Model) categoriesView() string {
	theme := m.config.Theme
	top := m.summary.TopExpenses(topCategories)
	if len(top) == 0 {
		return theme.Panel.Render(theme.Muted.Render("No expenses this month"))
	}

	lines := make([]string, 0, len(top))
	for _, c := range top {
		lines = append(lines, fmt.Sprintf("%-18s %12s %5.1f%%", c.Name, cli.FormatMoney(c.Total), c.Percent))
	}
	return theme.Panel.Render(strings.Join(lines, "\n"))
}

func (m Model) insightsView() string {
	theme := m.config.Theme
	if m.thinking {
		return m.spinner.View() + " " + theme.Muted.Render("Thinking up insights...")
	}
	if len(m.insights) == 0 {
		return ""
	}

	lines := make([]string, 0, len(m.insights))
	for _, line := range m.insights {
		lines = append(lines, cli.RobotIcon+" "+line)
	}
	return strings.Join(lines, "\n")
}
