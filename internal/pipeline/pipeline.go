// Package pipeline runs the batch flow for one file: detect format, parse,
// classify, aggregate. All intermediate state stays in memory; nothing is
// written anywhere until every stage has succeeded.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"nem12-tou/internal/aggregate"
	"nem12-tou/internal/meterdata/domain"
	"nem12-tou/internal/meterdata/filesource"
	"nem12-tou/internal/meterdata/format"
	"nem12-tou/internal/observability/metrics"
	"nem12-tou/internal/tou/classifier"
	tou "nem12-tou/internal/tou/domain"
)

// Result is the full output of one run.
type Result struct {
	Format     format.Format
	Intervals  []domain.IntervalRecord
	Summary    domain.MeterSummary
	Warnings   []domain.Warning
	Used       int
	Skipped    int
	Classified []tou.ClassifiedInterval
	Rows       []aggregate.Row
	Stats      aggregate.Summary
}

// Runner orchestrates the pipeline stages.
type Runner struct {
	source filesource.Source
	logger *zap.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithSource overrides the file source.
func WithSource(source filesource.Source) Option {
	return func(r *Runner) {
		if source != nil {
			r.source = source
		}
	}
}

// WithLogger sets the run logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner builds a runner with an OS file source and a no-op logger.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{source: filesource.OS{}, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the pipeline for one file against a period configuration.
func (r *Runner) Run(ctx context.Context, path string, periods []tou.PeriodDefinition, state string) (*Result, error) {
	content, err := r.source.Read(path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	detected := format.Detect(content)
	parser, err := format.ParserFor(detected)
	if err != nil {
		return nil, err
	}
	r.logger.Info("parsing meter data", zap.String("file", path), zap.String("format", string(detected)))

	if detected == format.FormatNEM12 {
		// Advisory envelope check; the parser itself stays more tolerant.
		if err := format.ValidateNEM12Structure(content); err != nil {
			r.logger.Warn("NEM12 envelope incomplete", zap.Error(err))
		}
	}

	start := time.Now()
	parsed, err := parser.Parse(content)
	if err != nil {
		metrics.ObserveParse(string(detected), metrics.ResultError, time.Since(start))
		return nil, err
	}
	metrics.ObserveParse(string(detected), metrics.ResultSuccess, time.Since(start))
	metrics.AddIntervalsParsed(len(parsed.Intervals))
	metrics.AddParseWarnings(len(parsed.Warnings))

	for _, warning := range parsed.Warnings {
		r.logger.Warn("record skipped", zap.Int("line", warning.Line), zap.String("reason", warning.Message))
	}
	r.logger.Info("parsed meter data",
		zap.String("nmi", parsed.Summary.NMI),
		zap.Int("intervals", len(parsed.Intervals)),
		zap.Int("records_used", parsed.RecordsUsed),
		zap.Int("records_skipped", parsed.RecordsSkipped),
		zap.Int("interval_length", parsed.Summary.IntervalLength),
	)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cls, err := classifier.New(periods, state)
	if err != nil {
		return nil, err
	}
	start = time.Now()
	classified := cls.Classify(parsed.Intervals)
	metrics.ObserveClassify(time.Since(start))

	engine, err := aggregate.NewEngine(state, parsed.Summary.IntervalLength)
	if err != nil {
		return nil, err
	}
	start = time.Now()
	rows, stats := engine.Aggregate(classified, periods)
	metrics.ObserveAggregate(time.Since(start))
	metrics.AddDSTTransitionDays(len(stats.DSTTransitions))

	for _, transition := range stats.DSTTransitions {
		r.logger.Info("DST-variant day",
			zap.String("date", transition.Date),
			zap.Int("intervals", transition.IntervalCount),
			zap.Int("expected", transition.ExpectedCount),
			zap.String("zone", transition.LocalZone),
			zap.String("type", transition.Type),
		)
	}
	r.logger.Info("aggregation complete",
		zap.Int("periods", len(rows)),
		zap.Float64("total_kwh", stats.TotalKWh),
		zap.Int("unclassified", stats.UnclassifiedIntervals),
	)

	return &Result{
		Format:     detected,
		Intervals:  parsed.Intervals,
		Summary:    parsed.Summary,
		Warnings:   parsed.Warnings,
		Used:       parsed.RecordsUsed,
		Skipped:    parsed.RecordsSkipped,
		Classified: classified,
		Rows:       rows,
		Stats:      stats,
	}, nil
}
