package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/destination-organizer/internal/config"
	"github.com/kirillkom/destination-organizer/internal/core/destination"
	"github.com/kirillkom/destination-organizer/internal/core/ports"
	"github.com/kirillkom/destination-organizer/internal/core/taxonomy"
	"github.com/kirillkom/destination-organizer/internal/core/usecase"
	"github.com/kirillkom/destination-organizer/internal/infrastructure/extractor"
	htmlextractor "github.com/kirillkom/destination-organizer/internal/infrastructure/extractor/html"
	"github.com/kirillkom/destination-organizer/internal/infrastructure/extractor/pdf"
	"github.com/kirillkom/destination-organizer/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/destination-organizer/internal/infrastructure/extractor/spreadsheet"
	"github.com/kirillkom/destination-organizer/internal/infrastructure/llm/anthropic"
	"github.com/kirillkom/destination-organizer/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/destination-organizer/internal/infrastructure/queue/nats"
	"github.com/kirillkom/destination-organizer/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/destination-organizer/internal/infrastructure/repository/sqlite"
	"github.com/kirillkom/destination-organizer/internal/infrastructure/resilience"
	"github.com/kirillkom/destination-organizer/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/destination-organizer/internal/observability/diagnostics"
	"github.com/kirillkom/destination-organizer/internal/observability/metrics"
)

type Options struct {
	// Service labels metrics.
	Service string
	// WithQueue connects to NATS.
	WithQueue bool
	// RequireLedger fails startup when LEDGER_DRIVER=none.
	RequireLedger bool
}

type App struct {
	Config config.Config

	Queue   *nats.Queue
	Ledger  ports.PlacementLedger
	Metrics *metrics.OrganizerMetrics

	IngestUC   *usecase.IngestDocumentUseCase
	OrganizeUC *usecase.OrganizeDocumentUseCase
	SweepUC    ports.SourceSweeper
	EventUC    *usecase.DocumentEventHandler

	closers []func()
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	app := &App{Config: cfg}
	ok := false
	defer func() {
		if !ok {
			app.Close()
		}
	}()

	journal, err := diagnostics.Open(cfg.LogDir)
	if err != nil {
		return nil, fmt.Errorf("open diagnostics journal: %w", err)
	}
	app.closers = append(app.closers, func() { _ = journal.Close() })

	ledger, err := app.openLedger(ctx)
	if err != nil {
		return nil, err
	}
	if ledger == nil && opts.RequireLedger {
		return nil, fmt.Errorf("LEDGER_DRIVER=%s is not allowed for %s", cfg.LedgerDriver, opts.Service)
	}
	app.Ledger = ledger

	aliases, err := taxonomy.LoadCountryAliasTable(cfg.CountryAliasesPath)
	if err != nil {
		return nil, fmt.Errorf("load country aliases: %w", err)
	}

	classifier, err := newClassifier(cfg)
	if err != nil {
		return nil, err
	}

	textExtractor := extractor.NewRouter().
		Register(".pdf", pdf.NewExtractor()).
		Register(".xlsx", spreadsheet.NewExtractor()).
		Register(".txt", plaintext.NewExtractor()).
		Register(".html", htmlextractor.NewExtractor()).
		Register(".htm", htmlextractor.NewExtractor())
	for _, ext := range cfg.SourceExtensions {
		if !textExtractor.Supports(ext) {
			return nil, fmt.Errorf("SOURCE_EXTENSIONS: no text extractor for %q", ext)
		}
	}

	app.Metrics = metrics.NewOrganizerMetrics(opts.Service)

	processor := usecase.NewClassificationResultProcessor(
		taxonomy.NewNormalizer(aliases),
		destination.NewResolver(cfg.DestinationDir),
		destination.NewDeduplicator(),
		localfs.NewPlacer(),
		journal,
		app.Metrics,
	)
	app.OrganizeUC = usecase.NewOrganizeDocumentUseCase(
		textExtractor,
		classifier,
		processor,
		ledger,
		journal,
		app.Metrics,
		usecase.OrganizeOptions{
			PageLimit:       cfg.PageExtractLimit,
			ClassifyTimeout: cfg.ClassifyTimeout(),
		},
	)
	app.SweepUC = usecase.NewSweepSourceUseCase(app.OrganizeUC, ledger, journal, usecase.SweepOptions{
		SourceDir:      cfg.SourceDir,
		Extensions:     cfg.SourceExtensions,
		IgnoreKeywords: cfg.IgnoreKeywords,
	})
	app.EventUC = usecase.NewDocumentEventHandler(app.OrganizeUC, ledger, 2*cfg.ClassifyTimeout())

	if opts.WithQueue {
		queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResilienceExecutor: resilience.NewExecutor(resilience.DefaultConfig()),
		})
		if err != nil {
			return nil, fmt.Errorf("init message queue: %w", err)
		}
		app.Queue = queue
		app.closers = append(app.closers, queue.Close)

		if ledger != nil {
			storage, err := localfs.New(cfg.StoragePath)
			if err != nil {
				return nil, fmt.Errorf("init object storage: %w", err)
			}
			app.IngestUC = usecase.NewIngestDocumentUseCase(ledger, storage, queue)
		}
	}

	slog.Info("bootstrap_ready",
		"llm_provider", cfg.LLMProvider,
		"ledger", cfg.LedgerDriver,
		"country_aliases", aliases.Len(),
		"queue", opts.WithQueue,
	)
	ok = true
	return app, nil
}

func (a *App) openLedger(ctx context.Context) (ports.PlacementLedger, error) {
	cfg := a.Config
	switch cfg.LedgerDriver {
	case config.LedgerSQLite:
		ledger, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite ledger: %w", err)
		}
		a.closers = append(a.closers, func() { _ = ledger.Close() })
		return ledger, nil
	case config.LedgerPostgres:
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		a.closers = append(a.closers, func() { _ = db.Close() })
		ledger := postgres.NewLedger(db)
		if err := ledger.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		return ledger, nil
	default:
		return nil, nil
	}
}

func newClassifier(cfg config.Config) (ports.DestinationClassifier, error) {
	policy := resilience.DefaultConfig()
	policy.RetryMaxAttempts = cfg.ClassifyMaxAttempts
	policy.BreakerEnabled = cfg.ClassifyBreakerEnabled
	policy.RatePerSecond = cfg.ClassifyRatePerSecond
	executor := resilience.NewExecutor(policy)

	switch cfg.LLMProvider {
	case config.ProviderOllama:
		return ollama.NewClassifier(ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, executor)), nil
	case config.ProviderAnthropic:
		return anthropic.New(cfg.AnthropicAPIKey, cfg.AnthropicModel, executor), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
