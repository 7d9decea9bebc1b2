package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"strikecharts/internal/config"
	"strikecharts/internal/dataprocessing"
	"strikecharts/internal/errors"
	"strikecharts/internal/exporter"
	"strikecharts/internal/files"
	"strikecharts/internal/infrastructure"
	"strikecharts/internal/validation"
	"strikecharts/pkg/contracts"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// options holds the command line flags
type options struct {
	workbook    string
	configFile  string
	reports     string
	csvDir      string
	pngDir      string
	backup      bool
	concurrency int
	version     bool
	set         map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{set: make(map[string]bool)}

	fs := flag.NewFlagSet(config.AppName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.workbook, "workbook", "", "incident workbook to read and extend (default "+config.DefaultWorkbookPath+")")
	fs.StringVar(&opts.configFile, "config", "", "optional YAML configuration file")
	fs.StringVar(&opts.reports, "reports", "", "comma separated reports to build (default all: years,months,airlines)")
	fs.StringVar(&opts.csvDir, "csv-dir", "", "also write each report as CSV into this directory")
	fs.StringVar(&opts.pngDir, "png-dir", "", "also render each chart as PNG into this directory")
	fs.BoolVar(&opts.backup, "backup", false, "copy the workbook to <name>.bak.xlsx before overwriting it")
	fs.IntVar(&opts.concurrency, "concurrency", 0, "reports computed in parallel")
	fs.BoolVar(&opts.version, "version", false, "print version information and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return opts, nil
}

// apply overrides cfg with every flag given on the command line
func (o *options) apply(cfg *config.Config) error {
	if o.set["workbook"] {
		cfg.Workbook.Path = o.workbook
	}
	if o.set["csv-dir"] {
		cfg.Output.CSVDir = o.csvDir
	}
	if o.set["png-dir"] {
		cfg.Output.PNGDir = o.pngDir
	}
	if o.set["backup"] {
		cfg.Output.Backup = o.backup
	}
	if o.set["concurrency"] {
		cfg.Pipeline.Concurrency = o.concurrency
	}
	if o.reports != "" {
		if err := cfg.SelectReports(strings.Split(o.reports, ",")); err != nil {
			return errors.NewConfigError("invalid -reports", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return errors.NewConfigError("config validation failed", err)
	}
	return nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err == flag.ErrHelp {
		return exitOK
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	if opts.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return exitOK
	}

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}
	if err := opts.apply(cfg); err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}

	logger, err := infrastructure.InitializeLoggerTo(cfg.Logging, stdout)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}
	defer infrastructure.CloseLogFile()

	ctx = infrastructure.WithRunID(ctx, infrastructure.NewRunID())

	telemetry, err := infrastructure.InitializeTelemetry(cfg.Telemetry, logger)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to initialize telemetry", slog.String("error", err.Error()))
		return exitError
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	logger.InfoContext(ctx, "Starting strike report run",
		slog.String("version", config.AppVersion),
		slog.String("workbook", cfg.Workbook.Path),
		slog.Int("reports", len(cfg.Reports)))

	results, err := execute(ctx, cfg, logger, telemetry)
	if err != nil {
		logFailure(ctx, logger, err)
		return exitError
	}

	for _, res := range results {
		fmt.Fprintln(stderr, res)
	}
	return exitOK
}

// execute validates inputs, wires the side exporters and runs every report
func execute(ctx context.Context, cfg *config.Config, logger *slog.Logger, telemetry *infrastructure.Telemetry) ([]*dataprocessing.Result, error) {
	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateWorkbook(cfg.Workbook.Path); err != nil {
		return nil, errors.InStage(err, "", dataprocessing.StageRead)
	}

	runOpts := dataprocessing.RunnerOptions{
		Concurrency: cfg.Pipeline.Concurrency,
		SourceSheet: cfg.Workbook.SourceSheet,
	}

	if cfg.Output.CSVDir != "" {
		if err := validator.ValidateOutputDirectory(cfg.Output.CSVDir); err != nil {
			return nil, errors.InStage(err, "", dataprocessing.StageExport)
		}
		runOpts.Exporters = append(runOpts.Exporters, exporter.NewCSVExporter(cfg.Output.CSVDir, logger))
	}
	if cfg.Output.PNGDir != "" {
		if err := validator.ValidateOutputDirectory(cfg.Output.PNGDir); err != nil {
			return nil, errors.InStage(err, "", dataprocessing.StageExport)
		}
		runOpts.Exporters = append(runOpts.Exporters, exporter.NewBarChartRenderer(cfg.Output.PNGDir, logger))
	}
	if cfg.Output.Backup {
		manager := files.NewManager(logger)
		runOpts.BeforeSave = func(path string) error {
			_, err := manager.Backup(path)
			return err
		}
	}

	runner := dataprocessing.NewRunner(exporter.NewWorkbookEmitter(logger), runOpts, logger, telemetry)
	return runner.Run(ctx, cfg.Workbook.Path, dataprocessing.SpecsFromConfig(cfg.Reports))
}

// logFailure logs err with the report and stage it carries
func logFailure(ctx context.Context, logger *slog.Logger, err error) {
	attrs := []any{slog.String("error", err.Error())}
	if appErr, ok := errors.AsAppError(err); ok {
		attrs = append(attrs, slog.String("type", string(appErr.Type)))
		for _, key := range []string{errors.ContextReport, errors.ContextStage} {
			if v, ok := appErr.Context[key]; ok {
				attrs = append(attrs, slog.Any(key, v))
			}
		}
	}
	logger.ErrorContext(ctx, "Strike report run failed", attrs...)
}
