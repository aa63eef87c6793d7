package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("MONEY_TEST_DIR", "/data")

	tests := []struct {
		input string
		want  string
	}{
		{input: "", want: ""},
		{input: "~", want: home},
		{input: "~/money.db", want: filepath.Join(home, "money.db")},
		{input: "$MONEY_TEST_DIR/money.db", want: "/data/money.db"},
		{input: "/abs/path", want: "/abs/path"},
		{input: "~other/x", want: "~other/x"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.input))
		})
	}
}

func TestDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, "/xdg/money", Dir())
}

func TestLoadDatabase(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	db := LoadDatabase(v)
	assert.True(t, db.Destructive)
	assert.Equal(t, "money.db", filepath.Base(db.Path))

	v.Set("database.path", ":memory:")
	v.Set("database.destructive_migrations", false)
	db = LoadDatabase(v)
	assert.Equal(t, ":memory:", db.Path)
	assert.False(t, db.Destructive)
}

func TestLoadInsights(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "gemini-env")
	t.Setenv("OPENAI_API_KEY", "openai-env")

	v := viper.New()
	SetDefaults(v)

	cfg := LoadInsights(v)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "gemini-env", cfg.LLM.APIKey)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 30, cfg.LLM.RateLimit)

	v.Set("insights.provider", "openai")
	assert.Equal(t, "openai-env", LoadInsights(v).LLM.APIKey)

	v.Set("insights.api_key", "explicit")
	v.Set("insights.enabled", false)
	cfg = LoadInsights(v)
	assert.Equal(t, "explicit", cfg.LLM.APIKey)
	assert.False(t, cfg.Enabled)
}

func TestLoadSheets(t *testing.T) {
	for _, key := range []string{
		"GOOGLE_SHEETS_CLIENT_ID", "GOOGLE_SHEETS_CLIENT_SECRET", "GOOGLE_SHEETS_REFRESH_TOKEN",
		"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "GOOGLE_SHEETS_SPREADSHEET_ID", "GOOGLE_SHEETS_SPREADSHEET_NAME",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("GOOGLE_SHEETS_CLIENT_SECRET", "env-secret")

	v := viper.New()
	SetDefaults(v)
	v.Set("sheets.client_id", "client")
	v.Set("sheets.spreadsheet_id", "sheet")

	cfg := LoadSheets(v)
	assert.Equal(t, "client", cfg.ClientID)
	assert.Equal(t, "env-secret", cfg.ClientSecret)
	assert.Equal(t, "sheet", cfg.SpreadsheetID)
	assert.Equal(t, "sheets-token.json", filepath.Base(cfg.TokenFile))
	assert.NoError(t, cfg.Validate())

	v.Set("sheets.service_account_path", "/keys/sa.json")
	v.Set("sheets.client_id", "")
	cfg = LoadSheets(v)
	assert.Empty(t, cfg.TokenFile)
	assert.Equal(t, "/keys/sa.json", cfg.ServiceAccountPath)
}
