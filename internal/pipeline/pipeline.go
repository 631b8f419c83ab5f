package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/traffic-insights/internal/domain"
	"github.com/couchcryptid/traffic-insights/internal/observability"
)

const (
	defaultInitialBackoff = 200 * time.Millisecond
	defaultMaxBackoff     = 5 * time.Second
)

// TableSource loads the raw dataset.
type TableSource interface {
	Load(ctx context.Context) (domain.Table, error)
}

// TableSink receives the cleaned table.
type TableSink interface {
	Name() string
	Write(ctx context.Context, t domain.Table) error
}

// ReportSink receives the cleaned table together with the finished report.
type ReportSink interface {
	Name() string
	Render(ctx context.Context, cleaned domain.Table, report *domain.Report) error
}

// Sinks groups the output collaborators of a run. Output is mandatory: a
// run whose Output fails is a failed run. The others are best effort.
type Sinks struct {
	Output  TableSink
	Tables  []TableSink
	Reports []ReportSink
}

// Options tunes a run.
type Options struct {
	Clean    domain.CleanOptions
	Requests []domain.SummaryRequest
	Matrix   domain.MatrixSpec

	// Retries is the number of attempts per sink.
	Retries        int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultOptions returns the standard cleaning rules, summaries, and matrix.
func DefaultOptions() Options {
	return Options{
		Clean:          domain.DefaultCleanOptions(),
		Requests:       domain.DefaultSummaryRequests(),
		Matrix:         domain.DefaultMatrixSpec(),
		Retries:        3,
		InitialBackoff: defaultInitialBackoff,
		MaxBackoff:     defaultMaxBackoff,
	}
}

// Pipeline orchestrates one load, clean, write, report run.
type Pipeline struct {
	source  TableSource
	sinks   Sinks
	opts    Options
	logger  *slog.Logger
	metrics *observability.Metrics
	report  atomic.Pointer[domain.Report]
}

// New creates a Pipeline with the given collaborators and observability.
func New(source TableSource, sinks Sinks, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	if opts.Retries < 1 {
		opts.Retries = 1
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = defaultInitialBackoff
	}
	if opts.MaxBackoff < opts.InitialBackoff {
		opts.MaxBackoff = max(defaultMaxBackoff, opts.InitialBackoff)
	}
	return &Pipeline{source: source, sinks: sinks, opts: opts, logger: logger, metrics: metrics}
}

// Report returns the last finished report, or nil before the first run completes.
func (p *Pipeline) Report() *domain.Report {
	return p.report.Load()
}

// Run executes the stages in order: load the raw table, clean it, deliver
// it to the table sinks, build the report, and hand the report to the
// report sinks. The report is published for readers before Run returns.
func (p *Pipeline) Run(ctx context.Context) (*domain.Report, error) {
	start := time.Now()
	p.logger.Info("analysis run started")

	raw, err := p.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	p.metrics.RecordsLoaded.Add(float64(raw.Len()))

	cleaned, stats, err := domain.Clean(raw, p.opts.Clean)
	if err != nil {
		return nil, err
	}
	p.metrics.RecordsDropped.WithLabelValues("missing").Add(float64(stats.DroppedMissing))
	p.metrics.RecordsDropped.WithLabelValues("excluded").Add(float64(stats.DroppedExcluded))
	p.logger.Info("dataset cleaned",
		"raw_rows", stats.RawRows,
		"dropped_missing", stats.DroppedMissing,
		"dropped_excluded", stats.DroppedExcluded,
		"clean_rows", stats.CleanRows,
	)

	if p.sinks.Output == nil {
		return nil, errors.New("no output sink configured")
	}
	if err := p.writeTable(ctx, p.sinks.Output, cleaned); err != nil {
		return nil, err
	}
	for _, sink := range p.sinks.Tables {
		if err := p.writeTable(ctx, sink, cleaned); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			p.logger.Error("optional sink failed, continuing", "sink", sink.Name(), "error", err)
		}
	}

	report, err := domain.BuildReport(domain.ReportInput{
		Raw:      raw,
		Cleaned:  cleaned,
		Stats:    stats,
		Requests: p.opts.Requests,
		Matrix:   p.opts.Matrix,
	})
	if err != nil {
		return nil, err
	}
	p.recordReport(report)

	for _, sink := range p.sinks.Reports {
		err := p.retry(ctx, sink.Name(), func(ctx context.Context) error {
			return sink.Render(ctx, cleaned, report)
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			p.logger.Error("report sink failed, continuing", "sink", sink.Name(), "error", err)
		}
	}

	p.report.Store(report)
	p.metrics.ReportReady.Set(1)
	p.metrics.RunDuration.Observe(time.Since(start).Seconds())
	p.logger.Info("analysis run finished", "duration", time.Since(start))
	return report, nil
}

func (p *Pipeline) writeTable(ctx context.Context, sink TableSink, t domain.Table) error {
	err := p.retry(ctx, sink.Name(), func(ctx context.Context) error {
		return sink.Write(ctx, t)
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", sink.Name(), err)
	}
	p.metrics.RecordsWritten.WithLabelValues(sink.Name()).Add(float64(t.Len()))
	return nil
}

func (p *Pipeline) recordReport(r *domain.Report) {
	p.metrics.SummariesComputed.Add(float64(len(r.Summaries)))
	for _, s := range r.Skipped {
		p.metrics.SummariesSkipped.WithLabelValues(s.Name).Inc()
		p.logger.Warn("summary skipped", "summary", s.Name, "reason", s.Reason)
	}
	if fit := r.SpeedEnergyFit; fit != nil {
		p.logger.Info("linear fit", "y", fit.Y, "x", fit.X, "intercept", fit.Intercept, "slope", fit.Slope, "n", fit.N)
	}
	for _, gf := range r.FitsByVehicle {
		p.logger.Debug("linear fit by vehicle", "vehicle_type", gf.Key, "intercept", gf.Fit.Intercept, "slope", gf.Fit.Slope, "n", gf.Fit.N)
	}
	p.logger.Info("report built",
		"summaries", len(r.Summaries),
		"skipped", len(r.Skipped),
		"matrix_seed", r.Matrix.Seed,
	)
}

// retry calls fn up to opts.Retries times with exponential backoff between
// attempts. It gives up early when ctx is cancelled.
func (p *Pipeline) retry(ctx context.Context, name string, fn func(context.Context) error) error {
	backoff := p.opts.InitialBackoff
	var err error
	for attempt := 1; attempt <= p.opts.Retries; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		p.metrics.SinkErrors.WithLabelValues(name).Inc()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt == p.opts.Retries {
			break
		}
		p.logger.Warn("sink attempt failed, retrying",
			"sink", name, "attempt", attempt, "backoff", backoff, "error", err)
		if !sleepWithContext(ctx, backoff) {
			return ctx.Err()
		}
		backoff = nextBackoff(backoff, p.opts.MaxBackoff)
	}
	return err
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
