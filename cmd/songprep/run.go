package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"songprep/internal/adapters/corpus"
	"songprep/internal/adapters/csvout"
	"songprep/internal/adapters/spotify"
	"songprep/internal/adapters/sqlite"
	"songprep/internal/adapters/xlsxreport"
	"songprep/internal/config"
	"songprep/internal/core/ports"
	"songprep/internal/core/services"
	"songprep/internal/logging"
)

func newRunCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Process the corpus and write the enriched datasets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd.Context(), *configFlag)
		},
	}
}

func runPipeline(parent context.Context, configPath string) error {
	// A missing .env file is fine; real deployments use the environment.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logging.New()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	// One run at a time per output directory.
	lock := flock.New(filepath.Join(cfg.OutputDir, ".songprep.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire output lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another run is already writing to %s", cfg.OutputDir)
	}
	defer lock.Unlock()

	corpusFile, err := os.Open(cfg.CorpusPath)
	if err != nil {
		return fmt.Errorf("open corpus: %w", err)
	}
	defer corpusFile.Close()

	provider := spotify.NewClient(ctx, spotify.Config{
		ClientID:         cfg.Spotify.ClientID,
		ClientSecret:     cfg.Spotify.ClientSecret,
		BaseURL:          cfg.Spotify.BaseURL,
		TokenURL:         cfg.Spotify.TokenURL,
		MaxRetries:       cfg.Spotify.MaxRetries,
		RetryBackoff:     cfg.Spotify.RetryBackoff,
		MinFeatureFields: cfg.Spotify.MinFeatureFields,
	}, log)

	var store ports.RunStore
	if cfg.DatabasePath != "" {
		adapter, err := sqlite.NewAdapter(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("open run store: %w", err)
		}
		defer adapter.Close()
		store = adapter
	}

	pipeline := services.NewPipeline(
		services.NewEnricher(provider, cfg.Workers, log),
		csvout.NewWriter(cfg.OutputDir),
		store,
		cfg.OnWriteError == "abort",
		log,
	)

	report, err := pipeline.Run(ctx, corpus.NewReader(corpusFile))
	if err != nil {
		return err
	}

	fmt.Println(renderSummaryTable(report))
	fmt.Printf("run %s finished: %s\n", report.ID, report.Status)

	if cfg.ReportPath != "" {
		if err := xlsxreport.Write(cfg.ReportPath, report); err != nil {
			log.WithError(err).Error("failed to write report workbook")
		}
	}

	if report.Status == services.StatusFailed {
		return fmt.Errorf("run %s failed: no period produced output", report.ID)
	}
	return nil
}
