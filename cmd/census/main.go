// Command census compiles immigration counts from the City of Calgary
// community profile reports into a CSV table.
//
// Without flags it shows an interactive menu. Pass -command to run a single
// operation and exit:
//
//	go run ./cmd/census -command compile-keep
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	kafkaadapter "github.com/couchcryptid/community-census-etl/internal/adapter/kafka"
	"github.com/couchcryptid/community-census-etl/internal/adapter/pdf"
	"github.com/couchcryptid/community-census-etl/internal/adapter/report"
	"github.com/couchcryptid/community-census-etl/internal/command"
	"github.com/couchcryptid/community-census-etl/internal/config"
	"github.com/couchcryptid/community-census-etl/internal/observability"
	"github.com/couchcryptid/community-census-etl/internal/pipeline"
)

func main() {
	cmdFlag := flag.String("command", "", "run one command (1-5 or compile-clear, compile-keep, clear-cache, clear-output) instead of the menu")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	for _, dir := range []string{cfg.CacheDir, cfg.OutputDir} {
		if err := command.EnsureDir(dir); err != nil {
			logger.Error("failed to prepare directory", "error", err)
			os.Exit(1)
		}
	}

	client := report.NewClient(cfg.ReportBaseURL, cfg.HTTPTimeout, cfg.FetchRateLimit, metrics, logger)
	fetcher := report.NewDiskCache(client, cfg.CacheDir, metrics)

	// Validation is optional; a nil validator skips it.
	var validator pipeline.DocumentValidator
	if cfg.ValidateDocuments {
		validator = pdf.NewValidator()
	}
	extractor := pipeline.NewExtractor(pdf.NewReader(), validator, cfg.ReportPage, logger)

	compiler := pipeline.New(fetcher, extractor, logger, metrics, pipeline.Options{
		Workers:    cfg.Workers,
		LogFetch:   cfg.LogFetch,
		LogExtract: cfg.LogExtract,
	})

	d := &command.Dispatcher{
		Config:   cfg,
		Compiler: compiler,
		Pusher:   metrics,
		Logger:   logger,
		Out:      os.Stdout,
	}

	// Publish rows to Kafka as well (feature-flagged via KAFKA_BROKERS).
	var publisher *kafkaadapter.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher = kafkaadapter.NewPublisher(cfg, logger)
		d.Sinks = append(d.Sinks, publisher)
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, *cmdFlag, d, logger)
	stop()

	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}
	os.Exit(code)
}

func run(ctx context.Context, name string, d *command.Dispatcher, logger *slog.Logger) int {
	if name == "" {
		if err := command.RunMenu(ctx, os.Stdin, os.Stdout, d); err != nil {
			logger.Error("menu stopped", "error", err)
			return 1
		}
		return 0
	}

	cmd, err := command.ParseCommand(name)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if err := d.Dispatch(ctx, cmd); err != nil {
		logger.Error("command failed", "command", cmd.String(), "error", err)
		return 1
	}
	return 0
}
