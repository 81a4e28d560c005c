// Command nem12-tou aggregates Australian interval-meter data (NEM12 or the
// generic wide CSV) into user-defined time-of-use periods.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"nem12-tou/internal/observability/logging"
	"nem12-tou/internal/observability/metrics"
	"nem12-tou/internal/pipeline"
	"nem12-tou/internal/report"
	reportpg "nem12-tou/internal/report/postgres"
	touconfig "nem12-tou/internal/tou/config"
)

type cliConfig struct {
	file          string
	config        string
	outDir        string
	export        string
	detailed      bool
	dbURL         string
	metricsListen string
	logLevel      string
	logFormat     string
}

func main() {
	var cfg cliConfig
	flag.StringVar(&cfg.file, "file", "", "meter data file (NEM12 or wide-format CSV)")
	flag.StringVar(&cfg.config, "config", "", "time-of-use period configuration (yaml)")
	flag.StringVar(&cfg.outDir, "out", ".", "output directory for exports")
	flag.StringVar(&cfg.export, "export", "", "comma-separated export formats: csv,xlsx,pdf")
	flag.BoolVar(&cfg.detailed, "detailed", false, "also export the classified interval stream as CSV")
	flag.StringVar(&cfg.dbURL, "db-url", "", "optional postgres URL to archive run results")
	flag.StringVar(&cfg.metricsListen, "metrics-listen", "", "optional listen address for /metrics")
	flag.StringVar(&cfg.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flag.StringVar(&cfg.logFormat, "log-format", "console", "log format: console or json")
	flag.Parse()

	logger, err := logging.New(cfg.logLevel, cfg.logFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.file == "" || cfg.config == "" {
		flag.Usage()
		logger.Fatal("both -file and -config are required")
	}

	periods, state, err := touconfig.Load(cfg.config)
	if err != nil {
		logger.Fatal("config error", zap.Error(err))
	}

	metrics.Init()
	if cfg.metricsListen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.metricsListen, mux); err != nil {
				logger.Warn("metrics listener stopped", zap.Error(err))
			}
		}()
	}

	ctx := context.Background()
	runner := pipeline.NewRunner(pipeline.WithLogger(logger))
	result, err := runner.Run(ctx, cfg.file, periods, state)
	if err != nil {
		logger.Fatal("run failed", zap.Error(err))
	}

	printSummary(result, state)

	// Exports only happen once parse and aggregation have both succeeded.
	stamp := time.Now().Format("20060102_150405")
	for _, kind := range splitCSV(cfg.export) {
		if err := export(kind, cfg.outDir, stamp, result); err != nil {
			logger.Fatal("export failed", zap.String("format", kind), zap.Error(err))
		}
		logger.Info("export written", zap.String("format", kind))
	}
	if cfg.detailed {
		if err := export("detailed", cfg.outDir, stamp, result); err != nil {
			logger.Fatal("export failed", zap.String("format", "detailed"), zap.Error(err))
		}
		logger.Info("export written", zap.String("format", "detailed"))
	}

	if cfg.dbURL != "" {
		if err := archive(ctx, cfg, state, result); err != nil {
			logger.Fatal("archive failed", zap.Error(err))
		}
		logger.Info("run archived")
	}
}

func export(kind, outDir, stamp string, result *pipeline.Result) error {
	start := time.Now()
	err := writeExport(kind, outDir, stamp, result)
	outcome := metrics.ResultSuccess
	if err != nil {
		outcome = metrics.ResultError
	}
	metrics.ObserveExport(kind, outcome, time.Since(start))
	return err
}

func writeExport(kind, outDir, stamp string, result *pipeline.Result) error {
	switch kind {
	case "csv":
		path := filepath.Join(outDir, fmt.Sprintf("aggregated_results_%s_%s.csv", result.Summary.NMI, stamp))
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return report.WriteAggregateCSV(f, result.Rows)
	case "detailed":
		path := filepath.Join(outDir, fmt.Sprintf("detailed_intervals_%s_%s.csv", result.Summary.NMI, stamp))
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return report.WriteDetailedCSV(f, result.Classified)
	case "xlsx":
		data, err := report.BuildReportXLSX(result.Summary, result.Rows, result.Stats)
		if err != nil {
			return err
		}
		path := filepath.Join(outDir, fmt.Sprintf("aggregated_results_%s_%s.xlsx", result.Summary.NMI, stamp))
		return os.WriteFile(path, data, 0o644)
	case "pdf":
		data, err := report.BuildReportPDF(result.Summary, result.Rows, result.Stats)
		if err != nil {
			return err
		}
		path := filepath.Join(outDir, fmt.Sprintf("aggregated_results_%s_%s.pdf", result.Summary.NMI, stamp))
		return os.WriteFile(path, data, 0o644)
	}
	return fmt.Errorf("unsupported export format %q", kind)
}

func archive(ctx context.Context, cfg cliConfig, state string, result *pipeline.Result) error {
	db, err := sql.Open("pgx", cfg.dbURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return err
	}

	repo := reportpg.NewRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	_, err = repo.SaveRun(ctx, reportpg.RunMeta{
		SourceFile: cfg.file,
		NMI:        result.Summary.NMI,
		State:      state,
		Format:     string(result.Format),
	}, result.Rows, result.Stats)
	return err
}

func printSummary(result *pipeline.Result, state string) {
	stats := result.Stats

	fmt.Printf("\nNMI %s (%s, %d-minute intervals, %s)\n",
		result.Summary.NMI, state, result.Summary.IntervalLength, result.Format)
	if len(result.Summary.AllNMIs) > 1 {
		fmt.Printf("note: %d NMIs in file, only %s processed\n",
			len(result.Summary.AllNMIs), result.Summary.NMI)
	}
	fmt.Printf("%s to %s, %d intervals, %.3f kWh total\n",
		stats.DateRangeStart.Format("2006-01-02"), stats.DateRangeEnd.Format("2006-01-02"),
		stats.TotalIntervals, stats.TotalKWh)
	fmt.Printf("records used: %d, skipped: %d (%d warnings)\n",
		result.Used, result.Skipped, len(result.Warnings))
	fmt.Printf("day types: %d weekday / %d weekend / %d holiday intervals\n",
		stats.WeekdayIntervals, stats.WeekendIntervals, stats.HolidayIntervals)
	fmt.Printf("estimated: %d (%.1f%%), unclassified: %d (%.1f%%)\n\n",
		stats.EstimatedIntervals, stats.EstimatedPercentage,
		stats.UnclassifiedIntervals, stats.UnclassifiedPercentage)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PERIOD\tTOTAL kWh\tSHARE\tINTERVALS\tAVG kWh\tEST\tCOST")
	for _, row := range result.Rows {
		cost := "-"
		if row.TotalCost != nil {
			cost = fmt.Sprintf("$%.2f", *row.TotalCost)
		}
		fmt.Fprintf(w, "%s\t%.3f\t%.1f%%\t%d\t%.4f\t%d\t%s\n",
			row.Period, row.TotalKWh, row.Percentage, row.IntervalCount,
			row.AvgKWhPerInterval, row.EstimatedCount, cost)
	}
	w.Flush()

	for _, transition := range stats.DSTTransitions {
		fmt.Printf("\nDST: %s had %d intervals (expected %d) in %s (%s)",
			transition.Date, transition.IntervalCount, transition.ExpectedCount,
			transition.LocalZone, transition.Type)
	}
	if len(stats.DSTTransitions) > 0 {
		fmt.Println()
	}
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
