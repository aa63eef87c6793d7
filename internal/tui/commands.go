package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/money-tracker/internal/insight"
	"github.com/Veraticus/money-tracker/internal/ledger"
	"github.com/Veraticus/money-tracker/internal/model"
	"github.com/Veraticus/money-tracker/internal/report"
)

// waitForSnapshot blocks on the ledger subscription for the next snapshot.
func waitForSnapshot(updates <-chan ledger.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-updates
		if !ok {
			return streamClosedMsg{}
		}
		return snapshotMsg{snapshot: snap}
	}
}

// loadData queries the summary, recent transactions and categories for
// period.
func (m Model) loadData(period report.Period, seq int) tea.Cmd {
	ctx, reports, store, limit := m.ctx, m.config.Reports, m.config.Storage, m.config.RecentLimit

	return func() tea.Msg {
		summary, err := reports.Summary(ctx, period)
		if err != nil {
			return dataLoadedMsg{seq: seq, err: err}
		}

		recent, err := reports.Recent(ctx, period, limit)
		if err != nil {
			return dataLoadedMsg{seq: seq, err: err}
		}

		all, err := store.GetCategories(ctx)
		if err != nil {
			return dataLoadedMsg{seq: seq, err: fmt.Errorf("failed to load categories: %w", err)}
		}
		categories := make(map[int64]model.Category, len(all))
		for _, c := range all {
			categories[c.ID] = c
		}

		return dataLoadedMsg{seq: seq, summary: summary, recent: recent, categories: categories}
	}
}

// generateInsights runs the generator for summary. The generator never
// fails; a canceled context yields its static fallback, which Update drops
// once the dashboard is quitting.
func generateInsights(ctx context.Context, g *insight.Generator, summary *report.Summary, seq int) tea.Cmd {
	return func() tea.Msg {
		return insightsMsg{seq: seq, lines: g.Generate(ctx, insight.FromReport(summary))}
	}
}
