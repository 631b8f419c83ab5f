package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/traffic-insights/internal/adapter/chart"
	"github.com/couchcryptid/traffic-insights/internal/adapter/csvfile"
	httpadapter "github.com/couchcryptid/traffic-insights/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/traffic-insights/internal/adapter/kafka"
	"github.com/couchcryptid/traffic-insights/internal/adapter/xlsx"
	"github.com/couchcryptid/traffic-insights/internal/config"
	"github.com/couchcryptid/traffic-insights/internal/domain"
	"github.com/couchcryptid/traffic-insights/internal/observability"
	"github.com/couchcryptid/traffic-insights/internal/pipeline"
	"github.com/couchcryptid/traffic-insights/internal/reference"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	tables, err := reference.Load(cfg.ReferenceFile)
	if err != nil {
		logger.Error("failed to load reference tables", "error", err)
		return 1
	}

	opts := pipeline.DefaultOptions()
	opts.Clean = domain.CleanOptions{
		ExcludedVehicleType: cfg.ExcludedVehicleType,
		IncludeTimeOfDay:    cfg.IncludeTimeOfDay,
	}
	opts.Matrix = tables.MatrixSpec(cfg.SyntheticSeed)
	opts.Retries = cfg.SinkRetries

	sinks := pipeline.Sinks{Output: csvfile.NewWriter(cfg.OutputPath, logger)}

	// Optional sinks are enabled by their settings.
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled() {
		writer = kafkaadapter.NewWriter(cfg, logger)
		sinks.Tables = append(sinks.Tables, writer)
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaTopic, "batch_size", cfg.KafkaBatchSize)
	}
	if cfg.WorkbookPath != "" {
		sinks.Reports = append(sinks.Reports, xlsx.NewWorkbook(cfg.WorkbookPath, logger))
	}
	if cfg.ChartDir != "" {
		sinks.Reports = append(sinks.Reports, chart.NewCharts(cfg.ChartDir, logger))
	}

	p := pipeline.New(csvfile.NewReader(cfg.InputPath, logger), sinks, opts, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var srv *httpadapter.Server
	if cfg.Serve {
		srv = httpadapter.NewServer(cfg.HTTPAddr, p, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
				stop()
			}
		}()
	}

	exitCode := 0
	if _, err := p.Run(ctx); err != nil {
		logger.Error("analysis run failed", "error", err)
		exitCode = 1
	}

	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	if srv != nil {
		if exitCode == 0 {
			logger.Info("serving report until interrupted", "addr", cfg.HTTPAddr)
			<-ctx.Done()
		}
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}

	logger.Info("done")
	return exitCode
}
