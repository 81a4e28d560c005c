package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "nem12tou_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	parseTotal   *prometheus.CounterVec
	parseLatency *prometheus.HistogramVec

	intervalsParsed   prometheus.Counter
	parseWarnings     prometheus.Counter
	classifyLatency   prometheus.Histogram
	aggregateLatency  prometheus.Histogram
	exportTotal       *prometheus.CounterVec
	exportLatency     *prometheus.HistogramVec
	dstTransitionDays prometheus.Counter
)

// Init registers pipeline metrics. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		parseTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "parse_total",
				Help: "Total parse operations by format and result",
			},
			[]string{"format", "result"},
		)
		parseLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "parse_latency_seconds",
				Help:    "Parse latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		)
		intervalsParsed = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "intervals_parsed_total",
				Help: "Total interval records produced by parsers",
			},
		)
		parseWarnings = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "parse_warnings_total",
				Help: "Total recovered structural warnings",
			},
		)
		classifyLatency = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "classify_latency_seconds",
				Help:    "Classification latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
		)
		aggregateLatency = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "aggregate_latency_seconds",
				Help:    "Aggregation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
		)
		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total report exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)
		dstTransitionDays = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "dst_transition_days_total",
				Help: "Total DST-variant days detected",
			},
		)

		prometheus.MustRegister(
			parseTotal,
			parseLatency,
			intervalsParsed,
			parseWarnings,
			classifyLatency,
			aggregateLatency,
			exportTotal,
			exportLatency,
			dstTransitionDays,
		)
	})
}

// ObserveParse records one parse operation.
func ObserveParse(format, result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if parseTotal != nil {
		parseTotal.WithLabelValues(format, result).Inc()
	}
	if parseLatency != nil {
		parseLatency.WithLabelValues(format).Observe(duration.Seconds())
	}
}

// AddIntervalsParsed increments the produced-interval counter.
func AddIntervalsParsed(count int) {
	if count > 0 && intervalsParsed != nil {
		intervalsParsed.Add(float64(count))
	}
}

// AddParseWarnings increments the recovered-warning counter.
func AddParseWarnings(count int) {
	if count > 0 && parseWarnings != nil {
		parseWarnings.Add(float64(count))
	}
}

// ObserveClassify records classification duration.
func ObserveClassify(duration time.Duration) {
	if classifyLatency != nil {
		classifyLatency.Observe(duration.Seconds())
	}
}

// ObserveAggregate records aggregation duration.
func ObserveAggregate(duration time.Duration) {
	if aggregateLatency != nil {
		aggregateLatency.Observe(duration.Seconds())
	}
}

// ObserveExport records one report export by format and result.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// AddDSTTransitionDays increments the DST-variant day counter.
func AddDSTTransitionDays(count int) {
	if count > 0 && dstTransitionDays != nil {
		dstTransitionDays.Add(float64(count))
	}
}

// Exported result constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
