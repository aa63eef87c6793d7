package tui

import (
	"fmt"
	"time"

	"github.com/Veraticus/money-tracker/internal/insight"
	"github.com/Veraticus/money-tracker/internal/ledger"
	"github.com/Veraticus/money-tracker/internal/report"
	"github.com/Veraticus/money-tracker/internal/service"
)

// Config wires the dashboard to the application services.
type Config struct {
	Ledger      *ledger.Ledger
	Reports     *report.Builder
	Storage     service.Storage
	Insights    *insight.Generator
	Now         func() time.Time
	Theme       Theme
	RecentLimit int
}

func (c *Config) validate() error {
	if c.Ledger == nil {
		return fmt.Errorf("ledger is required")
	}
	if c.Reports == nil {
		return fmt.Errorf("report builder is required")
	}
	if c.Storage == nil {
		return fmt.Errorf("storage is required")
	}
	if c.Insights == nil {
		c.Insights = insight.Disabled()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.RecentLimit <= 0 {
		c.RecentLimit = 10
	}
	if c.Theme == (Theme{}) {
		c.Theme = DefaultTheme()
	}
	return nil
}
