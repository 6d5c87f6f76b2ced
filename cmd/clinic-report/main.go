package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"clinicreport/internal/app"
	"clinicreport/internal/config"
	"clinicreport/internal/files"
	"clinicreport/internal/infrastructure"
	"clinicreport/internal/services"
	"clinicreport/pkg/contracts/domain"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

type cliFlags struct {
	configPath    string
	year          int
	month         int
	referenceYear int
	source        string
	formats       string
	out           string
	metricsFile   string
}

func parseFlags(args []string, stderr io.Writer) (*cliFlags, error) {
	now := time.Now()
	f := &cliFlags{}

	fset := flag.NewFlagSet(config.AppName, flag.ContinueOnError)
	fset.SetOutput(stderr)
	fset.StringVar(&f.configPath, "config", "", "path to clinic-report.yaml (defaults to the well-known locations)")
	fset.IntVar(&f.year, "year", now.Year(), "report year")
	fset.IntVar(&f.month, "month", int(now.Month()), "report month (1-12)")
	fset.IntVar(&f.referenceYear, "reference-year", 0, "year applied to tracker dates (defaults to -year)")
	fset.StringVar(&f.source, "source", "", "read the tracker from a local .xlsx or .csv file instead of the configured source")
	fset.StringVar(&f.formats, "formats", "", "comma separated output formats: tex, csv, xlsx, json (defaults to config)")
	fset.StringVar(&f.out, "out", "", "output directory (defaults to config)")
	fset.StringVar(&f.metricsFile, "metrics-file", "", "write run metrics in Prometheus text format to this file")

	if err := fset.Parse(args); err != nil {
		return nil, err
	}
	if fset.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fset.Args(), " "))
	}
	return f, nil
}

// overrides applies command line flags on top of file and environment config
func (f *cliFlags) overrides(cfg *config.Config) {
	if f.source != "" {
		cfg.Source.Path = f.source
		switch strings.ToLower(filepath.Ext(f.source)) {
		case ".csv":
			cfg.Source.Kind = "csv"
		default:
			cfg.Source.Kind = "xlsx"
		}
	}
	if f.formats != "" {
		cfg.Report.Formats = strings.Split(f.formats, ",")
	}
	if f.out != "" {
		cfg.Report.OutputDir = f.out
	}
}

// resolveSource replaces a -source directory with its newest tracker export
func (f *cliFlags) resolveSource() error {
	if f.source == "" {
		return nil
	}
	info, err := os.Stat(f.source)
	if err != nil || !info.IsDir() {
		// a missing file is reported by the source itself
		return nil
	}
	latest, err := files.NewDiscovery().LatestTracker(f.source)
	if err != nil {
		return err
	}
	f.source = latest.Path
	return nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(stderr, "failed to load .env: %v\n", err)
		return 1
	}

	if err := flags.resolveSource(); err != nil {
		fmt.Fprintf(stderr, "failed to locate tracker export: %v\n", err)
		return 1
	}

	cfg, err := config.LoadWithOverrides(flags.configPath, flags.overrides)
	if err != nil {
		fmt.Fprintf(stderr, "failed to load configuration: %v\n", err)
		return 1
	}

	logger, closer, err := infrastructure.NewLogger(cfg.Logging, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "failed to initialize logger: %v\n", err)
		return 1
	}
	defer closer.Close()

	ctx = infrastructure.EnsureTraceID(ctx)
	ctx, cancel := context.WithTimeout(ctx, config.ReportGenerationTimeout)
	defer cancel()

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, config.AppVersion, logger,
		infrastructure.WithTraceWriter(stderr))
	if err != nil {
		logger.ErrorContext(ctx, "failed to initialize telemetry", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	logger.InfoContext(ctx, "starting monthly report",
		slog.String("source", cfg.Source.Kind),
		slog.Int("year", flags.year),
		slog.Int("month", flags.month),
		slog.String("output_dir", cfg.Report.OutputDir))

	svc, err := app.NewReportService(ctx, cfg, providers, logger, nil)
	if err != nil {
		logger.ErrorContext(ctx, "failed to create report service", slog.String("error", err.Error()))
		return 1
	}

	result, genErr := svc.Generate(ctx, services.ReportRequest{
		Period:        domain.ReportPeriod{Year: flags.year, Month: time.Month(flags.month)},
		ReferenceYear: flags.referenceYear,
	})

	if flags.metricsFile != "" {
		if err := providers.WriteMetricsFile(flags.metricsFile); err != nil {
			logger.WarnContext(ctx, "failed to write metrics file", slog.String("error", err.Error()))
		}
	}

	if genErr != nil {
		// the service already logged the failure with its run id
		return 1
	}

	for _, output := range result.Outputs {
		fmt.Fprintf(stdout, "Report for %s saved to %s\n", result.Document.PeriodLabel, output.Path)
	}
	return 0
}
