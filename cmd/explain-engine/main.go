package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fundsight/explain-engine/internal/api"
	"github.com/fundsight/explain-engine/internal/artifacts"
	"github.com/fundsight/explain-engine/internal/cache"
	"github.com/fundsight/explain-engine/internal/config"
	"github.com/fundsight/explain-engine/internal/engine"
	"github.com/fundsight/explain-engine/internal/explain"
	"github.com/fundsight/explain-engine/internal/inference"
	"github.com/fundsight/explain-engine/internal/metrics"
	"github.com/fundsight/explain-engine/internal/reason"
	"github.com/fundsight/explain-engine/internal/services"
	"github.com/fundsight/explain-engine/internal/transform"
	"github.com/fundsight/explain-engine/internal/utils"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
	logger.Info("starting explain-engine", slog.String("address", cfg.Server.Address))

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	scaler, err := artifacts.LoadScaler(cfg.Artifacts.ScalerPath)
	if err != nil {
		logger.Error("failed to load scaler", slog.Any("error", err))
		os.Exit(1)
	}
	encoders, err := artifacts.LoadEncoders(cfg.Artifacts)
	if err != nil {
		logger.Error("failed to load encoders", slog.Any("error", err))
		os.Exit(1)
	}
	transformer := transform.NewTransformer(scaler, encoders, cfg.Artifacts.Passthrough)
	inputWidth := len(transformer.Columns())

	classifier, err := artifacts.LoadClassifier(cfg.Artifacts, inputWidth)
	if err != nil {
		logger.Error("failed to load classifier", slog.Any("error", err))
		os.Exit(1)
	}
	defer classifier.Close()

	explainer, err := buildExplainer(cfg.Explainer, classifier, inputWidth)
	if err != nil {
		logger.Error("failed to build attribution engine", slog.Any("error", err))
		os.Exit(1)
	}

	labels, err := reason.LoadLabels(cfg.Reason.LabelsPath)
	if err != nil {
		logger.Error("failed to load label pack", slog.Any("error", err))
		os.Exit(1)
	}
	outcome := reason.Outcome{
		PositiveLabel: cfg.Reason.PositiveLabel,
		NegativeLabel: cfg.Reason.NegativeLabel,
	}
	var strategy reason.Strategy = reason.NewRankedStrategy(labels, outcome)
	if cfg.Reason.Strategy == "sampled" {
		strategy = reason.NewSampledStrategy(labels, outcome, cfg.Reason.SampleSize)
	}

	derivations := make([]engine.Derivation, 0, len(cfg.Derived))
	for _, d := range cfg.Derived {
		derivations = append(derivations, engine.Derivation{Field: d.Field, DateField: d.DateField})
	}

	pipeline := engine.NewPipeline(
		logger,
		transformer,
		inference.NewPredictor(classifier),
		explainer,
		strategy,
		outcome,
		derivations,
	)

	var cacheProvider cache.Provider = cache.NoopProvider{}
	if cfg.Cache.Enabled {
		cacheProvider = cache.NewMemoryProvider(cfg.Cache.TTL)
	}
	defer cacheProvider.Close()

	svc := services.NewExplainService(logger, pipeline, cacheProvider, cfg.Cache.TTL)
	handler := api.NewHandler(logger, svc)

	server, err := api.NewServer(cfg.Server, handler.Routes())
	if err != nil {
		logger.Error("failed to create HTTP server", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if cfg.Server.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", slog.String("address", cfg.Server.MetricsAddress))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	go func() {
		if serveErr := server.Start(); serveErr != nil {
			logger.Error("HTTP server exited", slog.Any("error", serveErr))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	server.Shutdown(shutdownCtx)

	if metricsServer != nil {
		metricsCtx, cancelMetrics := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(metricsCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
		cancelMetrics()
	}

	logger.Info("explain-engine stopped")
}

func buildExplainer(cfg config.ExplainerConfig, classifier inference.Classifier, inputWidth int) (explain.Engine, error) {
	background := explain.ZeroBackground(cfg.BackgroundRows, inputWidth)
	if cfg.Engine == "linear" {
		weights, err := artifacts.LoadWeights(cfg.WeightsPath)
		if err != nil {
			return nil, err
		}
		return explain.NewLinearExplainer(weights, background)
	}
	return explain.NewKernelExplainer(classifier, background, cfg.Samples)
}
