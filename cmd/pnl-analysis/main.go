package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/iwvelando/pnl-analysis/internal/cache"
	"github.com/iwvelando/pnl-analysis/internal/config"
	"github.com/iwvelando/pnl-analysis/internal/logging"
	"github.com/iwvelando/pnl-analysis/internal/report"
	"github.com/iwvelando/pnl-analysis/internal/store"
	"github.com/iwvelando/pnl-analysis/pkg/constants"
	"github.com/iwvelando/pnl-analysis/pkg/output"
	"github.com/iwvelando/pnl-analysis/pkg/validation"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "output format (pretty, csv, json, xlsx)")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	// Environment overrides such as PNL_DATABASE_DSN may come from a local .env
	envErr := godotenv.Load()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		logger.Warn("failed to load .env file",
			zap.String("op", "main"),
			zap.Error(envErr),
		)
	}

	// CLI override takes precedence over config
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	months, err := conf.ReportMonths()
	if err != nil {
		logger.Fatal("failed to parse report months",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	ctx := context.Background()

	src, closeSource, err := openSource(ctx, conf, logger)
	if err != nil {
		logger.Fatal("failed to open dataset",
			zap.String("op", "main"),
			zap.String("source", conf.Dataset.Source),
			zap.Error(err),
		)
	}
	defer closeSource()

	ds, err := report.Load(ctx, src, conf.Report.UserID, conf.Report.Year, conf.Report.PriorYear)
	if err != nil {
		logger.Fatal("failed to load report inputs",
			zap.String("op", "main"),
			zap.Int("year", conf.Report.Year),
			zap.Error(err),
		)
	}

	var analyzer report.Analyzer
	if conf.Cache.Addr != "" {
		client := cache.NewClient(cache.Options{
			Addr:     conf.Cache.Addr,
			Password: conf.Cache.Password,
			DB:       conf.Cache.DB,
			TTL:      conf.CacheTTL(),
		})
		defer func() {
			_ = client.Close()
		}()
		analyzer = cache.NewRedis(client, conf.CacheTTL(), logger)
	}

	rep, err := report.NewRunner(analyzer, logger).Run(ctx, ds, months)
	if err != nil {
		logger.Fatal("failed to compute report",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if err := writeReport(outputFormat, conf.Output.File, rep); err != nil {
		logger.Fatal("failed to write report",
			zap.String("op", "main"),
			zap.String("format", outputFormat),
			zap.Error(err),
		)
	}
}

// openSource returns the configured dataset reader and a cleanup func.
func openSource(ctx context.Context, conf *config.Configuration, logger *zap.Logger) (store.Reader, func(), error) {
	switch conf.Dataset.Source {
	case constants.DatasetSourcePostgres:
		db, err := store.Open(ctx, conf.Database.DSN)
		if err != nil {
			return nil, nil, err
		}
		return store.NewPostgres(db, logger), func() { _ = db.Close() }, nil
	default:
		f, err := store.OpenFile(conf.Dataset.Path)
		if err != nil {
			return nil, nil, err
		}
		return f, func() {}, nil
	}
}

func writeReport(outputFormat, path string, rep *report.Report) error {
	if outputFormat != constants.OutputFormatXLSX {
		return output.Write(os.Stdout, outputFormat, rep)
	}
	if path == "" {
		path = constants.DefaultXLSXFile
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := output.Write(f, outputFormat, rep); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	fmt.Printf("Report written to %s\n", path)
	return nil
}
