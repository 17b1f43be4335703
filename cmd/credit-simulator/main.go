package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/nmendoza-ar/credit-simulator/internal/config"
	"github.com/nmendoza-ar/credit-simulator/internal/ingest"
	"github.com/nmendoza-ar/credit-simulator/internal/server"
	"github.com/nmendoza-ar/credit-simulator/internal/simulation"
	"github.com/nmendoza-ar/credit-simulator/pkg/constants"
	"github.com/nmendoza-ar/credit-simulator/pkg/datetime"
	"github.com/nmendoza-ar/credit-simulator/pkg/output"
	"github.com/nmendoza-ar/credit-simulator/pkg/validation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time via -ldflags.
var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info" // Default to info level
	}

	// Parse log level
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	// Determine output format
	format := loggingConfig.Format
	if format == "" {
		format = "json" // Default to JSON for production
	}

	// Configure encoder
	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	// Configure output file if specified
	if loggingConfig.OutputFile != "" {
		// Ensure the directory exists
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		// Test if we can create/write to the file
		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	rosterLocation := flag.String("roster", "", "path to the counterpart roster file (name;taxId;billing rows)")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	serve := flag.Bool("serve", false, "start the HTTP API instead of running configured scenarios")
	serverConfigLocation := flag.String("server-config", constants.DefaultServerConfigFile, "path to the server configuration file")
	listen := flag.String("listen", "", "listen address override for -serve")
	flag.Parse()

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return
	}

	// Initialize logging based on config and CLI override
	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Validate configuration and display any warnings
	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	if *serve {
		runServer(logger, conf, *serverConfigLocation, *listen)
		return
	}

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

	if *rosterLocation == "" {
		logger.Fatal("no roster file given; use -roster to point at the counterpart data",
			zap.String("op", "main"),
		)
	}

	// Ingest the counterpart roster.
	rosterFile, err := os.Open(*rosterLocation)
	if err != nil {
		logger.Fatal(fmt.Sprintf("failed to open roster at %s", *rosterLocation),
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	ingestor := ingest.NewIngestor(logger)
	counterparts, stats, err := ingestor.IngestReader(rosterFile)
	_ = rosterFile.Close()
	if err != nil {
		logger.Fatal("failed to ingest roster",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	logger.Info(fmt.Sprintf("ingested roster: %d rows, %d accepted, %d skipped",
		stats.Rows, stats.Accepted, stats.Skipped),
		zap.String("op", "main"),
	)

	byTaxID := make(map[string]simulation.Counterpart, len(counterparts))
	for _, counterpart := range counterparts {
		byTaxID[counterpart.TaxID] = counterpart
	}

	// Run all configured scenarios through the engine.
	catalog := conf.CatalogOrDefault()
	engine := simulation.NewEngine(logger).WithScheduler(datetime.NewScheduler(time.Now()))

	var results []output.ScenarioResult
	for _, scenario := range conf.Scenarios {
		counterpart, ok := byTaxID[scenario.TaxID]
		if !ok {
			logger.Warn(fmt.Sprintf("scenario %s references tax id %s not present in the roster, skipping",
				scenario.Name, scenario.TaxID),
				zap.String("op", "main"),
			)
			continue
		}
		result, err := engine.Simulate(counterpart, scenario.PlanParameters(), catalog)
		if err != nil {
			logger.Fatal(fmt.Sprintf("failed to simulate scenario %s", scenario.Name),
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		results = append(results, output.ScenarioResult{
			Name:        scenario.Name,
			Counterpart: counterpart,
			Result:      result,
		})
	}

	// Handle output.
	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(os.Stdout, results)
	case constants.OutputFormatCSV:
		output.CsvFormat(os.Stdout, results)
	}
}

func runServer(logger *zap.Logger, conf *config.Configuration, serverConfigLocation, listenOverride string) {
	serverConfig, err := server.LoadConfig(serverConfigLocation)
	if err != nil {
		logger.Fatal("failed to load server configuration",
			zap.String("op", "main.runServer"),
			zap.Error(err),
		)
	}

	address := serverConfig.Address
	if listenOverride != "" {
		address = listenOverride
	}

	handler := server.NewHandler(logger, serverConfig.UploadSizeBytes(), version, conf.CatalogOrDefault())

	logger.Info(fmt.Sprintf("listening on %s", address),
		zap.String("op", "main.runServer"),
	)
	if err := http.ListenAndServe(address, handler); err != nil {
		logger.Fatal("server stopped",
			zap.String("op", "main.runServer"),
			zap.Error(err),
		)
	}
}
