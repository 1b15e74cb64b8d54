package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kirillkom/destination-organizer/internal/bootstrap"
	"github.com/kirillkom/destination-organizer/internal/config"
	"github.com/kirillkom/destination-organizer/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.New("organizer", cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{Service: "organizer"})
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	report, err := app.SweepUC.Sweep(ctx)
	app.Metrics.ObserveSweep(err)
	if report != nil {
		logger.Info("run_finished",
			"run_id", report.RunID,
			"seen", report.Seen,
			"ignored", report.Ignored,
			"already_organized", report.AlreadyOrganized,
			"no_text", report.NoText,
			"no_results", report.NoResults,
			"classified", report.Classified,
			"documents_failed", report.Failed,
			"placed", report.Outcomes.Placed,
			"skipped", report.Outcomes.Skipped,
			"rejected", report.Outcomes.Rejected,
			"failed", report.Outcomes.Failed,
			"duration_ms", report.FinishedAt.Sub(report.StartedAt).Milliseconds(),
		)
	}
	if err != nil {
		logger.Error("run_failed", "error", err)
		app.Close()
		os.Exit(1)
	}
}
