package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/kirillkom/destination-organizer/internal/bootstrap"
	"github.com/kirillkom/destination-organizer/internal/config"
	"github.com/kirillkom/destination-organizer/internal/core/domain"
	"github.com/kirillkom/destination-organizer/internal/core/ports"
	"github.com/kirillkom/destination-organizer/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.New("worker", cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{Service: "worker", WithQueue: true})
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           app.Metrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("worker_metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker_metrics_server_error", "error", err)
		}
	}()

	scheduler, err := startSweepSchedule(ctx, app.SweepUC, app.Metrics.ObserveSweep, cfg.SweepSchedule)
	if err != nil {
		logger.Error("sweep_schedule_invalid", "error", err)
		os.Exit(1)
	}

	logger.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeDocuments(ctx, func(handlerCtx context.Context, event domain.DocumentEvent) error {
		app.Metrics.StartDocument()
		defer app.Metrics.FinishDocument()
		if !event.CreatedAt.IsZero() {
			app.Metrics.ObserveQueueLag(time.Since(event.CreatedAt))
		}

		doc, err := app.EventUC.Handle(handlerCtx, event)
		if err != nil {
			return err
		}
		logger.Info("document_handled", "document_id", doc.ID, "status", doc.Status, "outcomes", len(doc.Outcomes))
		return nil
	})
	if err != nil {
		logger.Error("worker_subscribe_error", "error", err)
	}

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(shutdownCtx)
}

// startSweepSchedule runs the source sweep on a cron schedule. Overlapping
// runs are skipped. An empty spec disables the schedule.
func startSweepSchedule(ctx context.Context, sweeper ports.SourceSweeper, observe func(error), spec string) (*cron.Cron, error) {
	if spec == "" {
		return nil, nil
	}
	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := scheduler.AddFunc(spec, func() {
		report, err := sweeper.Sweep(ctx)
		if observe != nil {
			observe(err)
		}
		if err != nil {
			slog.Error("scheduled_sweep_failed", "error", err)
			return
		}
		slog.Info("scheduled_sweep_finished",
			"run_id", report.RunID,
			"seen", report.Seen,
			"classified", report.Classified,
			"placed", report.Outcomes.Placed,
		)
	})
	if err != nil {
		return nil, err
	}
	scheduler.Start()
	slog.Info("sweep_scheduled", "spec", spec)
	return scheduler, nil
}
