package main

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/money-tracker/internal/cli"
	"github.com/Veraticus/money-tracker/internal/common"
	"github.com/Veraticus/money-tracker/internal/config"
	"github.com/Veraticus/money-tracker/internal/sheets"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with external services",
	}

	cmd.AddCommand(authSheetsCmd())

	return cmd
}

func authSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Authenticate with Google Sheets",
		Long: `Authenticate with Google Sheets using OAuth2.

This command will:
1. Open your browser to authenticate with Google
2. Wait for the redirect on a local port
3. Save the token to sheets.token_file for 'money export sheets'

A service account (sheets.service_account_path) needs no authentication.`,
		RunE: runAuthSheets,
	}

	cmd.Flags().String("client-id", "", "OAuth2 client ID (overrides config)")
	cmd.Flags().String("client-secret", "", "OAuth2 client secret (overrides config)")
	cmd.Flags().String("listen", "localhost:8080", "address for the OAuth2 redirect")
	cmd.Flags().Bool("no-browser", false, "only print the consent URL")

	return cmd
}

func runAuthSheets(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	flags := cmd.Flags()

	cfg := config.LoadSheets(viper.GetViper())
	if id, _ := flags.GetString("client-id"); id != "" {
		cfg.ClientID = id
	}
	if secret, _ := flags.GetString("client-secret"); secret != "" {
		cfg.ClientSecret = secret
	}

	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return common.NewUserError(
			"OAuth2 credentials not found: set sheets.client_id and sheets.client_secret or use --client-id and --client-secret",
			common.ErrMissingConfig)
	}
	if cfg.TokenFile == "" {
		cfg.TokenFile = config.ExpandPath(viper.GetString("sheets.token_file"))
	}

	listen, _ := flags.GetString("listen")
	noBrowser, _ := flags.GetBool("no-browser")

	slog.Info("Starting Google Sheets authentication", "token_file", cfg.TokenFile)

	if _, err := sheets.Authenticate(ctx, cfg, listen, func(url string) {
		printLine(cmd, cli.FormatInfo("Open this URL to authorize access:"))
		printLine(cmd, url)
		if !noBrowser {
			openBrowser(url)
		}
	}); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	printLine(cmd, cli.FormatSuccess("Authentication successful"))
	printLine(cmd, cli.FormatInfo("Run 'money export sheets' to export a report."))
	return nil
}

// openBrowser tries to open the URL in the default browser.
func openBrowser(url string) {
	var err error
	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", url).Start() //nolint:gosec
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start() //nolint:gosec
	case "darwin":
		err = exec.Command("open", url).Start() //nolint:gosec
	}
	if err != nil {
		slog.Debug("Failed to open browser", "error", err)
	}
}
