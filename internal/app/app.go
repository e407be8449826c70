package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"macro-signal/internal/alerting"
	"macro-signal/internal/config"
	"macro-signal/internal/fetcher"
	"macro-signal/internal/httpapi"
	"macro-signal/internal/indicator"
	"macro-signal/internal/metrics"
	"macro-signal/internal/narrative"
	"macro-signal/internal/scheduler"
	"macro-signal/internal/series"
	"macro-signal/internal/service"
	"macro-signal/internal/version"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Metrics *metrics.Recorder

	// test seams
	fetcher  fetcher.SeriesFetcher
	narrator narrative.Narrator
	notifier alerting.Notifier
	clock    func() time.Time
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{
		Config:  cfg,
		Logger:  logger.With().Str("component", "app").Logger(),
		Metrics: metrics.New(),
	}
}

func (a *App) newFetcher() fetcher.SeriesFetcher {
	if a.fetcher != nil {
		return a.fetcher
	}
	cfg := a.Config.Ecos
	if cfg.APIKey == "" {
		a.Logger.Warn().Msg("ecos api key not configured; every indicator will be empty")
	}
	return fetcher.NewEcos(fetcher.EcosOptions{
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Format:      cfg.Format,
		Lang:        cfg.Lang,
		PageStart:   cfg.PageStart,
		PageEnd:     cfg.PageEnd,
		StartPeriod: series.PeriodKey(cfg.StartPeriod),
		Timeout:     cfg.RequestTimeout,
		UserAgent:   cfg.UserAgent,
	}, a.Logger, a.Metrics)
}

func (a *App) newNarrator() narrative.Narrator {
	if a.narrator != nil {
		return a.narrator
	}
	cfg := a.Config.Narrative
	if !cfg.Enabled {
		a.Logger.Info().Msg("narrative disabled; static recommendations only")
		return narrative.Static{}
	}
	return narrative.NewGemini(narrative.GeminiOptions{
		URL:             cfg.URL,
		APIKey:          cfg.APIKey,
		Temperature:     cfg.Temperature,
		Timeout:         cfg.RequestTimeout,
		MaxAttempts:     cfg.MaxAttempts,
		InitialInterval: cfg.InitialInterval,
		MaxInterval:     cfg.MaxInterval,
	}, a.Logger)
}

func (a *App) serviceOptions() (service.Options, error) {
	opts := service.DefaultOptions()
	analysis := a.Config.Analysis

	catalog, policy, model, err := analysis.Economic.Resolve(opts.Economic.Catalog, opts.Economic.Model)
	if err != nil {
		return opts, fmt.Errorf("analysis.economic: %w", err)
	}
	opts.Economic = service.Family{Catalog: catalog, Policy: policy, Model: model}

	catalog, policy, model, err = analysis.RealEstate.Resolve(opts.RealEstate.Catalog, opts.RealEstate.Model)
	if err != nil {
		return opts, fmt.Errorf("analysis.real_estate: %w", err)
	}
	opts.RealEstate = service.Family{Catalog: catalog, Policy: policy, Model: model}

	opts.EconomicThresholds = analysis.EconomicThresholds
	opts.RealEstateThresholds = analysis.RealEstateThresholds
	if a.clock != nil {
		opts.Clock = a.clock
	}
	return opts, nil
}

func (a *App) newService() (*service.Service, error) {
	opts, err := a.serviceOptions()
	if err != nil {
		return nil, err
	}
	return service.New(opts, a.newFetcher(), a.newNarrator(), a.Metrics, a.Logger)
}

func (a *App) newNotifier() alerting.Notifier {
	if a.notifier != nil {
		return a.notifier
	}
	if a.Config.Alerting.Enabled && a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, cfg.Timeout, a.Logger)
	}
	return alerting.NewLogNotifier(a.Logger)
}

// Serve runs the HTTP API until SIGINT or SIGTERM.
func (a *App) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc, err := a.newService()
	if err != nil {
		return err
	}

	cfg := a.Config.Server
	srv := httpapi.NewServer(httpapi.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
		CORS:            cfg.CORS,
		StaticDir:       cfg.StaticDir,
		DefaultPeriod:   indicator.Period(cfg.DefaultPeriod),
	}, svc, a.Metrics, a.Logger)

	a.Logger.Info().Str("version", version.Version).Msg("starting http api")
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("http api terminated with error")
		return err
	}
	a.Logger.Info().Msg("http api stopped")
	return nil
}

// Watch pushes a digest of both families on every scheduler tick.
func (a *App) Watch(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc, err := a.newService()
	if err != nil {
		return err
	}

	sched, err := scheduler.New(scheduler.Options{
		Interval:       a.Config.Scheduler.Interval,
		AlignToStart:   a.Config.Scheduler.AlignToBucket,
		StartupDelay:   a.Config.Scheduler.StartupDelay,
		RunImmediately: true,
	}, a.Logger)
	if err != nil {
		return err
	}

	notifier := a.newNotifier()
	period := indicator.ParsePeriod(a.Config.Scheduler.Period)

	a.Logger.Info().Dur("interval", a.Config.Scheduler.Interval).Str("period", string(period)).Msg("starting digest watcher")
	err = sched.Run(ctx, func(ctx context.Context, bucket time.Time) error {
		return a.digest(ctx, svc, notifier, period, bucket)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	a.Logger.Info().Msg("digest watcher stopped")
	return nil
}

func (a *App) digest(ctx context.Context, svc *service.Service, notifier alerting.Notifier, period indicator.Period, bucket time.Time) error {
	sig, err := svc.Signal(ctx, period)
	if err != nil {
		return err
	}
	re, err := svc.RealEstate(ctx, period)
	if err != nil {
		return err
	}

	d := alerting.Digest{
		Bucket: bucket,
		Period: string(period),
		AsOf:   string(sig.AsOf),
		Lines: []alerting.Line{
			{
				Family:         string(narrative.FamilyEconomic),
				Label:          sig.Classification.Label,
				Level:          string(sig.Classification.Level),
				Color:          sig.Classification.Color,
				CompositeScore: sig.CompositeScore,
				Recommendation: sig.Classification.Recommendation,
				Summary:        sig.Classification.Description,
			},
			{
				Family:         string(narrative.FamilyRealEstate),
				Label:          re.Risk.Label,
				Level:          string(re.Risk.Level),
				Color:          re.Risk.Color,
				CompositeScore: re.CompositeScore,
				Recommendation: re.Risk.Recommendation,
				Summary:        re.ShortSummary,
			},
		},
	}
	return notifier.Notify(ctx, d)
}

// ReportOptions configure the report command.
type ReportOptions struct {
	Family string
	Period string
}

// ExportOptions hold parameters for exporting indicator chart data.
type ExportOptions struct {
	Family    string
	Period    string
	PNGPath   string
	CSVPath   string
	MaxPoints int
}

// Family names accepted by report and export.
const (
	FamilySignal     = "signal"
	FamilyRealEstate = "realestate"
)
