package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/dstepanov/hwpolicy/internal/api"
	"github.com/dstepanov/hwpolicy/internal/config"
	"github.com/dstepanov/hwpolicy/internal/document"
	"github.com/dstepanov/hwpolicy/internal/platform"
	"github.com/dstepanov/hwpolicy/internal/policy"
	"github.com/dstepanov/hwpolicy/internal/snapshot"
	"github.com/dstepanov/hwpolicy/internal/store"
	"github.com/dstepanov/hwpolicy/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("config load failed")
	}

	logger := newLogger(cfg)

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("config validation failed")
	}

	telemetry.Init()

	ctx := context.Background()
	st, err := store.NewStore(ctx, cfg.StoreType, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("store init failed")
	}
	defer st.Close()

	buildOpts, err := buildOptions(cfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("bad policy options")
	}

	srvAPI := api.NewServer(st, api.Options{
		AdminAPIKey:    cfg.AdminAPIKey,
		BuildOptions:   buildOpts,
		RateLimitPerIP: cfg.RateLimitPerIP,
		Logger:         logger,
	})

	if err := loadInitialPolicy(ctx, cfg, st, srvAPI, buildOpts, logger); err != nil {
		logger.Fatal().Err(err).Msg("initial policy load failed")
	}

	// metrics endpoint on its own listener
	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: promhttp.Handler()}
	go func() {
		logger.Info().Str("addr", cfg.MetricsAddr).Msg("metrics listening")
		if err := metricsSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server stopped")
		}
	}()

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srvAPI.Router(),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 0, // SSE connections stay open
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShut, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShut)
	_ = metricsSrv.Shutdown(ctxShut)
	logger.Info().Msg("stopped")
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	if cfg.AppEnv == "dev" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return logger
}

func buildOptions(cfg *config.Config, logger *zerolog.Logger) (document.BuildOptions, error) {
	opts := document.BuildOptions{Logger: logger}

	if cfg.AppVersion != "" {
		v, ok := policy.ParseVersion(cfg.AppVersion)
		if !ok {
			return opts, errors.New("APP_VERSION does not parse as a dotted version")
		}
		opts.BrowserVersion = v
	}
	if cfg.OsFilter == "current" {
		opts.OsFilter = policy.CurrentOsOnly
		opts.CurrentOS = platform.Current()
	}
	return opts, nil
}

// loadInitialPolicy restores the persisted document, or seeds the store from
// POLICY_PATH when it is empty. Starting with no policy at all is allowed;
// the API serves 404s until one is pushed.
func loadInitialPolicy(ctx context.Context, cfg *config.Config, st store.Store, srv *api.Server, opts document.BuildOptions, logger zerolog.Logger) error {
	doc, err := st.GetDocument(ctx)
	if err == nil {
		set, berr := document.Build(doc.Body, opts)
		if berr != nil {
			return berr
		}
		snap := snapshot.New(set, doc.Body)
		snapshot.Update(snap)
		telemetry.PolicyRules.Set(float64(set.NumRules()))
		telemetry.PolicyMaxRuleID.Set(float64(set.MaxRuleID()))
		logger.Info().Int("rules", set.NumRules()).Str("etag", snap.ETag).Msg("policy restored from store")
		return nil
	}
	if !errors.Is(err, store.ErrNoDocument) {
		return err
	}

	if cfg.PolicyPath == "" {
		logger.Warn().Msg("starting without a policy; push one via the API")
		return nil
	}

	raw, err := os.ReadFile(cfg.PolicyPath)
	if err != nil {
		return err
	}
	snap, err := srv.ApplyPolicy(ctx, raw)
	if err != nil {
		return err
	}
	logger.Info().Str("path", cfg.PolicyPath).Str("etag", snap.ETag).Msg("policy seeded from file")
	return nil
}
