package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/money-tracker/internal/insight"
	"github.com/Veraticus/money-tracker/internal/ledger"
	"github.com/Veraticus/money-tracker/internal/model"
	"github.com/Veraticus/money-tracker/internal/report"
	"github.com/Veraticus/money-tracker/internal/testutil"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	ledger *ledger.Ledger
	db     *testutil.TestDB
	model  Model
}

func setup(t *testing.T) fixture {
	t.Helper()

	db := testutil.SetupTestDB(t,
		testutil.WithCategory("Salary", model.TypeIncome),
		testutil.WithCategory("Food", model.TypeExpense),
	)
	l := ledger.New(db.Storage, ledger.WithClock(func() time.Time { return testNow }))
	t.Cleanup(l.Close)

	m, err := New(context.Background(), Config{
		Ledger:   l,
		Reports:  report.NewBuilder(db.Storage),
		Storage:  db.Storage,
		Insights: insight.Disabled(),
		Now:      func() time.Time { return testNow },
	})
	require.NoError(t, err)
	t.Cleanup(m.cancel)

	return fixture{ledger: l, db: db, model: m}
}

// step feeds msg to the model and returns the updated model and command.
func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	updated, ok := next.(Model)
	require.True(t, ok)
	return updated, cmd
}

func TestNew_RequiresServices(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.Error(t, err)
}

func TestModel_LoadsDataAndInsights(t *testing.T) {
	f := setup(t)
	salary := f.db.MustCategory("Salary", model.TypeIncome)
	food := f.db.MustCategory("Food", model.TypeExpense)
	f.db.MustAddTransaction(salary, 3000, testNow, "pay")
	f.db.MustAddTransaction(food, 120, testNow, "groceries")
	f.db.MustAddTransaction(food, 999, testNow.AddDate(0, -1, 0), "last month")

	m := f.model
	assert.Equal(t, "03/2024", m.period.Label)

	msg := m.loadData(m.period, m.seq)()
	data, ok := msg.(dataLoadedMsg)
	require.True(t, ok)
	require.NoError(t, data.err)

	m, cmd := step(t, m, data)
	require.NotNil(t, cmd, "insights are requested once data arrives")
	assert.False(t, m.loading)
	assert.True(t, m.thinking)
	assert.Equal(t, 3000.0, m.summary.Income)
	assert.Equal(t, 120.0, m.summary.Expense)
	require.Len(t, m.table.Rows(), 2)

	m, _ = step(t, m, cmd())
	assert.False(t, m.thinking)
	assert.NotEmpty(t, m.insights)

	view := m.View()
	assert.Contains(t, view, "3,000.00")
	assert.Contains(t, view, "Food")
}

func TestModel_SnapshotTriggersReload(t *testing.T) {
	f := setup(t)
	m := f.model

	snap := ledger.Snapshot{Balance: model.Balance{Amount: -50}, Revision: 3, Exists: true}
	m, cmd := step(t, m, snapshotMsg{snapshot: snap})
	require.NotNil(t, cmd)
	assert.Equal(t, 1, m.seq)
	assert.True(t, m.loading)
	assert.Contains(t, m.View(), "-50.00")
}

func TestModel_StaleResultsDropped(t *testing.T) {
	f := setup(t)
	m := f.model

	stale := m.loadData(m.period, m.seq)()

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("h")})
	assert.Equal(t, "02/2024", m.period.Label)

	m, cmd := step(t, m, stale)
	assert.Nil(t, cmd)
	assert.Nil(t, m.summary, "data for the month the user left is ignored")

	m.insightSeq = 5
	m, _ = step(t, m, insightsMsg{seq: 4, lines: []string{"old"}})
	assert.Empty(t, m.insights)
}

func TestModel_InsightsAfterQuitDiscarded(t *testing.T) {
	f := setup(t)
	m := f.model

	m.insightSeq = 1
	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.Error(t, m.ctx.Err(), "quitting cancels in-flight work")
	assert.IsType(t, tea.QuitMsg{}, cmd())

	m, _ = step(t, m, insightsMsg{seq: 1, lines: []string{"too late"}})
	assert.Empty(t, m.insights)
	assert.Empty(t, m.View())
}

func TestModel_MonthNavigation(t *testing.T) {
	f := setup(t)
	m := f.model

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, "04/2024", m.period.Label)

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})
	assert.Equal(t, "03/2024", m.period.Label)
}

func TestWaitForSnapshot(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	salary := f.db.MustCategory("Salary", model.TypeIncome)

	_, err := f.ledger.AddTransaction(ctx, model.Transaction{
		Amount: 10, Date: testNow, CategoryID: salary.ID, Type: model.TypeIncome,
	})
	require.NoError(t, err)

	msg := waitForSnapshot(f.model.updates)()
	snap, ok := msg.(snapshotMsg)
	require.True(t, ok)
	assert.Equal(t, 10.0, snap.snapshot.Balance.Amount)

	f.model.cancel()
	assert.IsType(t, streamClosedMsg{}, waitForSnapshot(f.model.updates)())
}
