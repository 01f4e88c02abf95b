package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/couchcryptid/community-census-etl/internal/adapter/table"
	"github.com/couchcryptid/community-census-etl/internal/config"
	"github.com/couchcryptid/community-census-etl/internal/domain"
	"github.com/couchcryptid/community-census-etl/internal/pipeline"
)

const metricsJob = "community_census_etl"

// Compiler runs the fetch-extract pipeline over a community list.
type Compiler interface {
	Compile(ctx context.Context, communities []domain.Community, sink pipeline.RowSink) (pipeline.Summary, error)
}

// Pusher sends run metrics to a Pushgateway.
type Pusher interface {
	Push(ctx context.Context, url, job string) error
}

// Dispatcher executes validated commands.
type Dispatcher struct {
	Config   *config.Config
	Compiler Compiler
	// Sinks receive every row in addition to the CSV table.
	Sinks []pipeline.RowSink
	// Pusher is used after each compile when Config.PushgatewayURL is set.
	Pusher Pusher
	Logger *slog.Logger
	// Out receives short user-facing confirmations.
	Out io.Writer
}

// Dispatch runs cmd. Exit is a no-op; the caller decides when to stop.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) error {
	switch cmd {
	case CompileAndClear:
		_, err := d.Compile(ctx, true)
		return err
	case CompileAndKeep:
		_, err := d.Compile(ctx, false)
		return err
	case ClearCache:
		return d.clear(d.Config.CacheDir, "PDFs cleared.")
	case ClearOutput:
		return d.clear(d.Config.OutputDir, "CSVs cleared.")
	case Exit:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
	}
}

// Compile reads the community list, starts a fresh output table, runs the
// pipeline into it, and optionally clears the report cache afterwards.
func (d *Dispatcher) Compile(ctx context.Context, clearCache bool) (pipeline.Summary, error) {
	cfg := d.Config

	communities, err := domain.ReadCommunities(cfg.CommunityList)
	if err != nil {
		return pipeline.Summary{}, err
	}
	if err := EnsureDir(cfg.CacheDir); err != nil {
		return pipeline.Summary{}, err
	}
	if err := EnsureDir(cfg.OutputDir); err != nil {
		return pipeline.Summary{}, err
	}

	tbl, err := table.Open(cfg.OutputPath(), table.WriteTruncate)
	if err != nil {
		return pipeline.Summary{}, err
	}

	sinks := append([]pipeline.RowSink{tbl}, d.Sinks...)
	summary, compileErr := d.Compiler.Compile(ctx, communities, pipeline.Tee(sinks...))
	if err := tbl.Close(); err != nil {
		compileErr = errors.Join(compileErr, fmt.Errorf("close table: %w", err))
	}

	if clearCache {
		if err := d.clear(cfg.CacheDir, ""); err != nil {
			compileErr = errors.Join(compileErr, err)
		}
	}

	if d.Pusher != nil && cfg.PushgatewayURL != "" {
		if err := d.Pusher.Push(ctx, cfg.PushgatewayURL, metricsJob); err != nil {
			d.logger().Warn("metrics push failed", "error", err)
		}
	}

	fmt.Fprintf(d.out(), "Compilation completed in %.2f seconds (%d rows written to %s)\n",
		summary.Elapsed.Seconds(), summary.Rows, tbl.Path())
	return summary, compileErr
}

func (d *Dispatcher) clear(dir, message string) error {
	removed, err := ClearDir(dir)
	if err != nil {
		return err
	}
	d.logger().Info("directory cleared", "dir", dir, "removed", removed)
	if message != "" {
		fmt.Fprintln(d.out(), message)
	}
	return nil
}

func (d *Dispatcher) out() io.Writer {
	if d.Out == nil {
		return io.Discard
	}
	return d.Out
}

func (d *Dispatcher) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.Logger
}
