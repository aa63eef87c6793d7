package tui

import (
	"github.com/Veraticus/money-tracker/internal/ledger"
	"github.com/Veraticus/money-tracker/internal/model"
	"github.com/Veraticus/money-tracker/internal/report"
)

// snapshotMsg carries a balance snapshot from the ledger stream.
type snapshotMsg struct {
	snapshot ledger.Snapshot
}

// streamClosedMsg reports that the ledger stream ended.
type streamClosedMsg struct{}

// dataLoadedMsg carries the queried period data. seq identifies the request
// so results for a period the user already left are dropped.
type dataLoadedMsg struct {
	err        error
	summary    *report.Summary
	categories map[int64]model.Category
	recent     []model.Transaction
	seq        int
}

// insightsMsg carries generated insights for the insight request seq.
type insightsMsg struct {
	lines []string
	seq   int
}
