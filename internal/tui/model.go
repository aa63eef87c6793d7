// Package tui is the terminal dashboard. It follows the ledger's state
// stream and re-queries the selected month whenever the balance changes.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/money-tracker/internal/cli"
	"github.com/Veraticus/money-tracker/internal/ledger"
	"github.com/Veraticus/money-tracker/internal/model"
	"github.com/Veraticus/money-tracker/internal/report"
)

// Model holds the dashboard state.
type Model struct {
	ctx        context.Context
	lastError  error
	summary    *report.Summary
	updates    <-chan ledger.Snapshot
	cancel     context.CancelFunc
	categories map[int64]model.Category
	keymap     KeyMap
	period     report.Period
	insights   []string
	help       help.Model
	spinner    spinner.Model
	table      table.Model
	config     Config
	snapshot   ledger.Snapshot
	seq        int
	insightSeq int
	width      int
	height     int
	loading    bool
	thinking   bool
	quitting   bool
}

// New creates a dashboard model showing the current month. The model's
// context is derived from ctx and canceled when the user quits.
func New(ctx context.Context, cfg Config) (Model, error) {
	if err := cfg.validate(); err != nil {
		return Model{}, err
	}

	ctx, cancel := context.WithCancel(ctx)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = cfg.Theme.Title

	t := table.New(
		table.WithColumns(tableColumns(80)),
		table.WithFocused(true),
		table.WithHeight(cfg.RecentLimit+1),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(cfg.Theme.Panel.GetBorderStyle()).
		BorderForeground(cfg.Theme.Border).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.Foreground(cfg.Theme.Primary)
	t.SetStyles(styles)

	return Model{
		ctx:     ctx,
		cancel:  cancel,
		config:  cfg,
		keymap:  DefaultKeyMap(),
		help:    help.New(),
		spinner: s,
		table:   t,
		period:  report.MonthOf(cfg.Now()),
		updates: cfg.Ledger.Updates().Subscribe(ctx),
		loading: true,
	}, nil
}

func tableColumns(width int) []table.Column {
	note := max(width-58, 10)
	return []table.Column{
		{Title: "Date", Width: 10},
		{Title: "Category", Width: 18},
		{Title: "Amount", Width: 16},
		{Title: "Note", Width: note},
	}
}

// Init starts listening for snapshots and loads the first period.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		waitForSnapshot(m.updates),
		m.loadData(m.period, m.seq),
	)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetColumns(tableColumns(msg.Width))
		m.help.Width = msg.Width
		return m, nil

	case snapshotMsg:
		m.snapshot = msg.snapshot
		cmd := m.reload()
		return m, tea.Batch(waitForSnapshot(m.updates), cmd)

	case streamClosedMsg:
		return m, nil

	case dataLoadedMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.loading = false
		m.lastError = msg.err
		if msg.err != nil {
			return m, nil
		}
		m.summary = msg.summary
		m.categories = msg.categories
		m.table.SetRows(m.rows(msg.recent))
		cmd := m.requestInsights()
		return m, cmd

	case insightsMsg:
		// A result arriving after quit or for a superseded request is dropped.
		if m.quitting || msg.seq != m.insightSeq {
			return m, nil
		}
		m.thinking = false
		m.insights = msg.lines
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		m.cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keymap.PrevMonth):
		m.period = report.MonthOf(m.period.Start.AddDate(0, -1, 0))
		cmd := m.reload()
		return m, cmd

	case key.Matches(msg, m.keymap.NextMonth):
		m.period = report.MonthOf(m.period.Start.AddDate(0, 1, 0))
		cmd := m.reload()
		return m, cmd

	case key.Matches(msg, m.keymap.ThisMonth):
		m.period = report.MonthOf(m.config.Now())
		cmd := m.reload()
		return m, cmd

	case key.Matches(msg, m.keymap.Refresh):
		cmd := m.reload()
		return m, cmd

	case key.Matches(msg, m.keymap.Insights):
		if m.summary == nil {
			return m, nil
		}
		cmd := m.requestInsights()
		return m, cmd
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// reload starts a new data request, superseding any in flight.
func (m *Model) reload() tea.Cmd {
	m.seq++
	m.loading = true
	return m.loadData(m.period, m.seq)
}

// requestInsights starts generation for the current summary, superseding any
// request in flight.
func (m *Model) requestInsights() tea.Cmd {
	m.insightSeq++
	m.thinking = true
	return generateInsights(m.ctx, m.config.Insights, m.summary, m.insightSeq)
}

func (m Model) rows(txns []model.Transaction) []table.Row {
	rows := make([]table.Row, 0, len(txns))
	for _, txn := range txns {
		name := "?"
		if cat, ok := m.categories[txn.CategoryID]; ok {
			name = cat.Name
		}
		amount := cli.FormatMoney(txn.Amount)
		if txn.Type == model.TypeIncome {
			amount = "+" + amount
		} else {
			amount = "-" + amount
		}
		rows = append(rows, table.Row{
			txn.Date.UTC().Format(time.DateOnly),
			name,
			amount,
			txn.Note,
		})
	}
	return rows
}
