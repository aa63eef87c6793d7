package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/money-tracker/internal/llm"
	"github.com/Veraticus/money-tracker/internal/sheets"
)

// SetDefaults registers the default value of every known key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", filepath.Join(Dir(), "money.db"))
	v.SetDefault("database.destructive_migrations", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("insights.enabled", true)
	v.SetDefault("insights.provider", "gemini")
	v.SetDefault("insights.timeout", llm.DefaultTimeout)
	v.SetDefault("insights.cache_ttl", 15*time.Minute)
	v.SetDefault("insights.rate_limit", 30)

	v.SetDefault("sheets.token_file", filepath.Join(Dir(), "sheets-token.json"))
	v.SetDefault("sheets.spreadsheet_name", sheets.DefaultConfig().SpreadsheetName)
}

// Database holds the storage settings.
type Database struct {
	Path        string
	Destructive bool
}

// LoadDatabase reads database.* from v.
func LoadDatabase(v *viper.Viper) Database {
	path := v.GetString("database.path")
	if path != ":memory:" {
		path = ExpandPath(path)
	}
	return Database{
		Path:        path,
		Destructive: v.GetBool("database.destructive_migrations"),
	}
}

// Insights holds the insight generator settings.
type Insights struct {
	LLM     llm.Config
	Enabled bool
}

// LoadInsights reads insights.* from v. The API key falls back to the
// provider's conventional environment variable.
func LoadInsights(v *viper.Viper) Insights {
	cfg := llm.Config{
		Provider:  v.GetString("insights.provider"),
		Model:     v.GetString("insights.model"),
		APIKey:    v.GetString("insights.api_key"),
		BaseURL:   v.GetString("insights.base_url"),
		Timeout:   v.GetDuration("insights.timeout"),
		CacheTTL:  v.GetDuration("insights.cache_ttl"),
		RateLimit: v.GetInt("insights.rate_limit"),
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(providerKeyEnv(cfg.Provider))
	}

	return Insights{LLM: cfg, Enabled: v.GetBool("insights.enabled")}
}

func providerKeyEnv(provider string) string {
	switch provider {
	case "openai":
		return "OPENAI_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	default:
		return "GEMINI_API_KEY"
	}
}

// LoadSheets reads sheets.* from v, filling gaps from GOOGLE_SHEETS_*
// environment variables. The result is not validated.
func LoadSheets(v *viper.Viper) sheets.Config {
	cfg := sheets.DefaultConfig()

	cfg.ClientID = v.GetString("sheets.client_id")
	cfg.ClientSecret = v.GetString("sheets.client_secret")
	cfg.RefreshToken = v.GetString("sheets.refresh_token")
	cfg.SpreadsheetID = v.GetString("sheets.spreadsheet_id")
	if name := v.GetString("sheets.spreadsheet_name"); name != "" {
		cfg.SpreadsheetName = name
	}
	if path := v.GetString("sheets.service_account_path"); path != "" {
		cfg.ServiceAccountPath = ExpandPath(path)
	}
	if tz := v.GetString("sheets.time_zone"); tz != "" {
		cfg.TimeZone = tz
	}

	cfg.LoadFromEnv()

	// A token file only counts once the interactive flow has produced it.
	if cfg.ServiceAccountPath == "" {
		cfg.TokenFile = ExpandPath(v.GetString("sheets.token_file"))
	}

	return cfg
}
