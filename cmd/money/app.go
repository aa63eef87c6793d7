package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/Veraticus/money-tracker/internal/config"
	"github.com/Veraticus/money-tracker/internal/insight"
	"github.com/Veraticus/money-tracker/internal/ledger"
	"github.com/Veraticus/money-tracker/internal/llm"
	"github.com/Veraticus/money-tracker/internal/report"
	"github.com/Veraticus/money-tracker/internal/storage"
)

// app bundles the services a command needs. Close releases them.
type app struct {
	store   *storage.SQLiteStorage
	ledger  *ledger.Ledger
	reports *report.Builder
}

// openStorage opens and migrates the configured database.
func openStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	db := config.LoadDatabase(viper.GetViper())

	store, err := storage.NewSQLiteStorage(db.Path, storage.WithDestructiveMigrations(db.Destructive))
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", db.Path, err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// openApp opens storage and builds the ledger on top of it. Default
// categories are seeded on first use.
func openApp(ctx context.Context) (*app, error) {
	store, err := openStorage(ctx)
	if err != nil {
		return nil, err
	}

	a := &app{
		store:   store,
		ledger:  ledger.New(store),
		reports: report.NewBuilder(store),
	}

	if _, err := a.ledger.SeedDefaults(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to seed default categories: %w", err)
	}

	return a, nil
}

func (a *app) Close() {
	a.ledger.Close()
	if err := a.store.Close(); err != nil {
		slog.Warn("Failed to close database", "error", err)
	}
}

// newInsightGenerator builds the generator from insights.* config. A disabled
// or unconfigured provider falls back to rule-based insights.
func newInsightGenerator() *insight.Generator {
	cfg := config.LoadInsights(viper.GetViper())
	if !cfg.Enabled {
		return insight.Disabled()
	}

	client, err := llm.NewClient(cfg.LLM)
	if err != nil {
		slog.Warn("Insights provider unavailable, using rule-based insights",
			"provider", cfg.LLM.Provider,
			"error", err)
		return insight.Disabled()
	}

	return insight.New(client, insight.WithLogger(slog.Default()))
}
