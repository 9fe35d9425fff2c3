package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/iwvelando/unsub-forecast/internal/config"
	"github.com/iwvelando/unsub-forecast/internal/portfolio"
	"github.com/iwvelando/unsub-forecast/internal/rawdata"
	"github.com/iwvelando/unsub-forecast/internal/report"
	"github.com/iwvelando/unsub-forecast/pkg/constants"
	"github.com/iwvelando/unsub-forecast/pkg/output"
	"github.com/iwvelando/unsub-forecast/pkg/validation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// parseLogLevel maps a configured level name onto a zap level.
func parseLogLevel(level string) (zapcore.Level, error) {
	switch level {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("invalid log level: %s", level)
	}
}

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// CLI override takes precedence
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	zapLevel, err := parseLogLevel(level)
	if err != nil {
		return nil, err
	}

	var zapConfig zap.Config
	switch loggingConfig.Format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
	case "", "json":
		zapConfig = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", loggingConfig.Format)
	}
	zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)

	// Logs go to stderr unless a file is configured so stdout stays clean for
	// csv and json reports.
	zapConfig.OutputPaths = []string{"stderr"}
	zapConfig.ErrorOutputPaths = []string{"stderr"}
	if path := loggingConfig.OutputFile; path != "" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", path, err)
		}
		_ = file.Close()

		zapConfig.OutputPaths = []string{path}
		zapConfig.ErrorOutputPaths = []string{path}
	}

	return zapConfig.Build()
}

// run projects the configured scenario, selects subscriptions under its spend
// cap and writes the report to w.
func run(ctx context.Context, logger *zap.Logger, conf *config.Configuration, outputFormat string, w io.Writer) error {
	data, err := rawdata.LoadFile(conf.Scenario.DataFile)
	if err != nil {
		return fmt.Errorf("failed to load journal data: %w", err)
	}
	known := data.IDs()

	for _, warning := range conf.ValidateConfiguration(known) {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	s, err := conf.ResolveSettings()
	if err != nil {
		return err
	}

	p, err := portfolio.New(ctx, logger, conf.JournalIDs(known), data, s)
	if err != nil {
		return fmt.Errorf("failed to build portfolio: %w", err)
	}

	sel, err := p.SelectSubscriptions(conf.Scenario.SpendCapPercent)
	if err != nil {
		return fmt.Errorf("failed to select subscriptions: %w", err)
	}

	view := conf.Output.View
	if view == "" {
		view = constants.DefaultView
	}
	doc, err := report.BuildView(p, &sel, view, conf.Output.PageSize)
	if err != nil {
		return err
	}
	return output.Write(w, outputFormat, doc)
}

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	spendCap := flag.Float64("spend-cap", -1, "spend cap override as a percent of the big deal price")
	viewFlag := flag.String("view", "", "report view override: "+strings.Join(constants.Views, ", "))
	flag.Parse()

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	// Initialize logging based on config and CLI override
	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty // Default to pretty format
	}

	err = validation.ValidateOutputFormat(outputFormat)
	if err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	if *viewFlag != "" {
		conf.Output.View = *viewFlag
	}
	if conf.Output.View == "" {
		conf.Output.View = constants.DefaultView
	}
	if err := validation.ValidateView(outputFormat, conf.Output.View); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	if *spendCap >= 0 {
		conf.Scenario.SpendCapPercent = *spendCap
	}

	if err := run(context.Background(), logger, conf, outputFormat, os.Stdout); err != nil {
		logger.Fatal("failed to run scenario",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
