package commands

import (
	"fmt"

	"github.com/avidela/folio/internal/batch"
	"github.com/avidela/folio/internal/marketdata"
	"github.com/avidela/folio/internal/publish"
	"github.com/avidela/folio/internal/reports"
	"github.com/avidela/folio/internal/scheduler"
	"github.com/avidela/folio/internal/store"
	"github.com/avidela/folio/internal/symbols"
	"github.com/avidela/folio/internal/telemetry"
	"github.com/avidela/folio/pkg/config"
	"github.com/avidela/folio/pkg/database"
	"github.com/avidela/folio/pkg/httputil"
	"github.com/avidela/folio/pkg/logger"
	"github.com/avidela/folio/pkg/redis"
)

// pipeline bundles everything a command needs after wiring.
type pipeline struct {
	cfg          *config.Config
	log          *logger.Logger
	db           *database.DB
	redisClient  *redis.Client
	orchestrator *batch.Orchestrator
	metrics      *telemetry.Metrics
}

// close releases the pipeline's connections.
func (p *pipeline) close() {
	if p.redisClient != nil {
		_ = p.redisClient.Close()
	}
	if p.db != nil {
		p.db.Close()
	}
}

// initPipeline loads config and wires the full batch pipeline: database,
// cache, provider gateway, renderer, blob store, processor, orchestrator.
func initPipeline() (*pipeline, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	redisClient, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	cache := redis.NewCache(redisClient, "folio")

	providerHTTP := httputil.New(log, cfg.MarketData.Timeout).
		WithRateLimit(cfg.MarketData.RequestsPerSec)
	storageHTTP := httputil.New(log, cfg.Storage.Timeout)

	gateway := marketdata.NewClient(providerHTTP, cfg.MarketData.BaseURL, cache, cfg.MarketData.QuoteCacheTTL, log)
	resolver := marketdata.NewResolver(symbols.New(nil), gateway, cfg.MarketData.LookbackRange, log)

	repo := store.NewRepository(db.Pool)
	publisher := publish.NewStorageClient(storageHTTP, cfg.Storage.BaseURL, cfg.Storage.Bucket, cfg.Storage.APIKey, log)
	logos := reports.NewLogoResolver(httputil.New(log, cfg.MarketData.Timeout), log)

	processor := batch.NewProcessor(
		repo, resolver, gateway, reports.NewJSONRenderer(), publisher, logos,
		cfg.Batch.RiskFreeRate, log,
	)
	orchestrator := batch.NewOrchestrator(repo, processor, cfg.Batch.Workers, log)

	var metrics *telemetry.Metrics
	if cfg.MetricsEnabled {
		metrics = telemetry.New()
	}

	return &pipeline{
		cfg:          cfg,
		log:          log,
		db:           db,
		redisClient:  redisClient,
		orchestrator: orchestrator,
		metrics:      metrics,
	}, nil
}

// sessionWindow builds the scheduler window from config.
func sessionWindow(cfg *config.Config) (scheduler.SessionWindow, error) {
	w := scheduler.NewYorkSession()

	loc, err := cfg.Location()
	if err != nil {
		return w, fmt.Errorf("invalid timezone %q: %w", cfg.Scheduler.Timezone, err)
	}

	w.Location = loc
	w.OpenHour = cfg.Scheduler.OpenHour
	w.OpenMinute = cfg.Scheduler.OpenMinute
	w.CloseHour = cfg.Scheduler.CloseHour
	w.CloseMinute = cfg.Scheduler.CloseMinute
	return w, nil
}
