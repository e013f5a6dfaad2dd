package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/username/worktime-calendar/internal/annotation"
	"github.com/username/worktime-calendar/internal/calendar"
	"github.com/username/worktime-calendar/internal/config"
	"github.com/username/worktime-calendar/internal/timemanager"
)

var (
	configPath      string
	annotationsPath string
	yearFlag        int
	logger          *zap.Logger
	out             io.Writer = os.Stdout
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "worktime",
		Short: "Work-time calendar",
		Long:  "Compute a year's work-time record from German holidays and annotated exceptions",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load config to get log file path
			cfg, err := config.Load(configPath)
			if err == nil && cfg.Log.File != "" {
				logger, err = initFileLogger(cfg.Log.File, cfg.Log.GetLevel())
				if err != nil {
					initLogger() // Fallback to console
				}
			} else {
				initLogger()
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			syncLogger()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path")
	rootCmd.PersistentFlags().StringVarP(&annotationsPath, "annotations", "a", "", "Annotations file (overrides calendar.annotations_file)")
	rootCmd.PersistentFlags().IntVarP(&yearFlag, "year", "y", 0, "Calendar year (overrides calendar.year)")

	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(dayCmd())
	rootCmd.AddCommand(datesCmd())
	rootCmd.AddCommand(exportCmd())

	if err := rootCmd.Execute(); err != nil {
		syncLogger()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads the configuration and applies command-line overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if annotationsPath != "" {
		cfg.Calendar.AnnotationsFile = annotationsPath
	}
	if yearFlag != 0 {
		cfg.Calendar.Year = yearFlag
	}
	return cfg, nil
}

// readAnnotations returns the configured annotation lines, if any
func readAnnotations(cfg *config.Config) ([]string, error) {
	if cfg.Calendar.AnnotationsFile == "" {
		return nil, nil
	}
	lines, err := annotation.LoadFile(cfg.Calendar.AnnotationsFile)
	if err != nil {
		return nil, err
	}
	logger.Debug("Annotations loaded",
		zap.String("file", cfg.Calendar.AnnotationsFile),
		zap.Int("lines", len(lines)))
	return lines, nil
}

// buildEngine computes the records of one year
func buildEngine(cfg *config.Config, year int, lines []string, cache *calendar.Cache) (*timemanager.Engine, error) {
	tags, err := cfg.Calendar.GetTags()
	if err != nil {
		return nil, fmt.Errorf("invalid tags: %w", err)
	}

	engine, err := timemanager.NewEngine(timemanager.Options{
		Year:      year,
		WorkHours: cfg.Calendar.GetWorkHours(),
		Tags:      tags,
		Cache:     cache,
		Logger:    logger,
	}, lines)
	if err != nil {
		return nil, fmt.Errorf("failed to compute calendar %d: %w", year, err)
	}

	return engine, nil
}

func outPrintf(format string, a ...interface{}) {
	fmt.Fprintf(out, format, a...)
}

func outPrintln(a ...interface{}) {
	fmt.Fprintln(out, a...)
}

func initLogger() {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

// syncLogger flushes buffered log entries; errors on stdout/stderr are expected
func syncLogger() {
	if logger != nil {
		_ = logger.Sync()
	}
}

func initFileLogger(logFile string, level zapcore.Level) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("log file is not writable: %w", err)
	}
	f.Close()

	// Setup lumberjack for log rotation
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100,  // MB
		MaxBackups: 3,    // Keep max 3 old log files
		MaxAge:     28,   // days
		Compress:   true, // Compress old logs with gzip
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		level,
	)

	return zap.New(core), nil
}
