// Command veritas runs the claim-extraction and fact-verification
// pipeline: it loads one source's transcript segments from the configured
// ingest feed, runs them through the full extract -> route -> fetch ->
// score -> persist -> aggregate pipeline, and serves the optional
// WebSocket feed and Prometheus metrics endpoints while it does.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/obelus-labs/veritas/internal/adapter"
	"github.com/obelus-labs/veritas/internal/aggregator"
	"github.com/obelus-labs/veritas/internal/api"
	"github.com/obelus-labs/veritas/internal/config"
	"github.com/obelus-labs/veritas/internal/extractor"
	"github.com/obelus-labs/veritas/internal/ingest"
	"github.com/obelus-labs/veritas/internal/model"
	"github.com/obelus-labs/veritas/internal/orchestrator"
	"github.com/obelus-labs/veritas/internal/ratelimit"
	"github.com/obelus-labs/veritas/internal/resilience"
	"github.com/obelus-labs/veritas/internal/scorer"
	"github.com/obelus-labs/veritas/internal/store"
)

func main() {
	_ = godotenv.Load() // silently ignore if .env doesn't exist; adapter API keys (§10) read their env vars regardless

	var (
		configPath string
		sourceID   string
		sourceKind string
	)
	flag.StringVar(&configPath, "config", "configs/config.yaml", "path to configuration file")
	flag.StringVar(&sourceID, "source-id", "", "id of the source to ingest and run")
	flag.StringVar(&sourceKind, "ingest", "sse", "ingest feed to use: sse or kafka")
	flag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := initLogger(cfg)
	logger.Info().Str("config", configPath).Msg("starting veritas")

	lex, err := cfg.Lexicons.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load lexicon")
	}

	st, err := buildStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize store")
	}

	seg, err := buildSegmentSource(cfg, sourceKind, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize ingest feed")
	}

	reg := adapter.NewRegistry()
	limiter := ratelimit.NewRegistry(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	breakers := resilience.NewCircuitBreakerRegistry(logger)
	adapter.RegisterDefaultsResilientWithOverrides(reg, lex, logger, limiter, breakers, cfg.ToAdapterOverrides())

	ex := extractor.New(lex, logger)
	sc := scorer.New(lex, cfg.Scorer.ToWeights())
	agg := aggregator.New(lex)

	feedServer := api.NewServer(logger)

	orch := orchestrator.New(ex, reg, sc, st, agg, lex, orchestrator.Config{
		FanoutConcurrency: cfg.Orchestrator.FanoutConcurrency,
		RouterConfig:      cfg.Router.ToRouterConfig(),
		PerSourceDeadline: cfg.Orchestrator.PerSourceDeadline,
	}, logger)
	orch.Broadcast = feedServer.Hub()

	metricsServer := startMetricsServer(logger)
	feedHTTPServer := startFeedServer(feedServer, logger)

	ctx, cancel := context.WithCancel(context.Background())
	go runOnce(ctx, orch, seg, sourceID, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = metricsServer.Shutdown(shutdownCtx)
	_ = feedHTTPServer.Shutdown(shutdownCtx)
	feedServer.Stop()

	logger.Info().Msg("veritas shutdown complete")
}

// runOnce lists the source's segments and runs the full pipeline against
// them exactly once; now is stamped at run start, the single wall-clock
// read in the whole command, and threaded through as the deterministic
// core's only notion of "the present".
func runOnce(ctx context.Context, orch *orchestrator.Orchestrator, seg ingest.SegmentSource, sourceID string, logger zerolog.Logger) {
	segments, err := seg.ListSegments(ctx, sourceID)
	if err != nil {
		logger.Error().Err(err).Str("source_id", sourceID).Msg("failed to list segments")
		return
	}

	src := model.Source{
		ID:         sourceID,
		Kind:       model.SourceText,
		Title:      sourceID,
		IngestedAt: time.Now(),
	}

	stats, err := orch.RunSource(ctx, src, segments, time.Now())
	if err != nil {
		logger.Error().Err(err).Str("source_id", sourceID).Msg("run failed")
		return
	}
	logger.Info().
		Str("source_id", sourceID).
		Int("extracted", stats.Extracted).
		Int("evidenced", stats.Evidenced).
		Int("supported", stats.Supported).
		Int("partial", stats.Partial).
		Int("unknown", stats.Unknown).
		Int("errored", stats.Errored).
		Msg("run complete")
}

func buildStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		return store.NewSQLiteStore(cfg.Store.SQLitePath)
	}
}

func buildSegmentSource(cfg *config.Config, kind string, logger zerolog.Logger) (ingest.SegmentSource, error) {
	switch kind {
	case "kafka":
		kafkaCfg := ingest.DefaultKafkaSegmentSourceConfig(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
		kafkaCfg.Topic = cfg.Kafka.Topic
		return ingest.NewKafkaSegmentSource(kafkaCfg, logger), nil
	default:
		return ingest.NewSSETextSource(ingest.SSETextSourceConfig{
			URL:             cfg.SSE.URL,
			SegmentDuration: cfg.SSE.SegmentDurationS,
			MaxSegments:     cfg.SSE.MaxSegments,
		}, logger), nil
	}
}

func startMetricsServer(logger zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: ":2112", Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("metrics server failed")
		}
	}()
	logger.Info().Str("addr", srv.Addr).Msg("metrics server started")
	return srv
}

func startFeedServer(s *api.Server, logger zerolog.Logger) *http.Server {
	srv := &http.Server{Addr: ":8090", Handler: s}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("feed server failed")
		}
	}()
	logger.Info().Str("addr", srv.Addr).Msg("feed server started")
	return srv
}

func initLogger(cfg *config.Config) zerolog.Logger {
	level := zerolog.InfoLevel
	switch cfg.Logging.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Logging.Format == "pretty" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	return log.Logger.With().Str("service", "veritas").Logger()
}
