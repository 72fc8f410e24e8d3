// cmd/onboard/main.go
//
// Entry point for the onboarding client. Startup order matters: the
// .env file is loaded before config so ONBOARD_* overrides apply, the
// edge server (when enabled and a cloud secret is present) starts
// before the UI so eager uploads have a credential endpoint, and the
// server drains after the UI exits.

package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/recruiteer/onboard/internal/backend"
	"github.com/recruiteer/onboard/internal/config"
	"github.com/recruiteer/onboard/internal/edge"
	"github.com/recruiteer/onboard/internal/logbook"
	"github.com/recruiteer/onboard/internal/signing"
	"github.com/recruiteer/onboard/internal/tui"
	"github.com/recruiteer/onboard/internal/upload"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "onboard: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("working directory: %w", err)
	}
	if err := config.EnsureConfigFile(dir); err != nil {
		return fmt.Errorf("write starter config: %w", err)
	}
	cfg, err := config.New(dir)
	if err != nil {
		return err
	}

	lb, err := logbook.New(cfg.LogPath())
	if err != nil {
		return fmt.Errorf("open logbook: %w", err)
	}
	lb.Info("Session opened · backend %s", cfg.File.Backend.BaseURL)

	client := backend.New(cfg.File.Backend.BaseURL, backend.DefaultTimeout)

	// A configured signature_url wins; otherwise the in-process edge
	// server provides the credential endpoint, but only when it has a
	// secret to sign with.
	signatureURL := cfg.File.Cloud.SignatureURL
	settings := edge.SettingsFromConfig(cfg)
	var server *edge.Server
	if signatureURL == "" && settings.Enabled && cfg.File.Cloud.Secret != "" {
		issuer := signing.NewIssuer(
			cfg.File.Cloud.Name,
			cfg.File.Cloud.APIKey,
			cfg.File.Cloud.Folder,
			cfg.File.Cloud.Secret,
		)
		server = edge.NewServer(settings, issuer, edge.WithLogger(lb))
		if err := server.Start(context.Background()); err != nil {
			return err
		}
		defer func() {
			_ = server.Shutdown(context.Background())
			lb.Info("Edge server drained")
		}()
		signatureURL = server.SignatureURL()
		lb.Info("Edge server ready at %s", server.BaseURL())
	}

	var pipeline *upload.Pipeline
	if signatureURL != "" {
		creds := upload.NewCredentialClient(signatureURL, upload.DefaultCredentialTimeout)
		uploader := upload.NewUploader(cfg.File.Cloud.UploadURL, cfg.MaxUploadBytes(), upload.DefaultUploadTimeout)
		pipeline = upload.NewPipeline(creds, uploader, client)
	} else {
		lb.Warn("No credential endpoint available; eager uploads degrade to inline submission")
	}

	app := tui.NewApp(cfg, lb, client, pipeline)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	lb.Info("Session closed at stage %s", app.Wizard().Stage())
	return nil
}
