package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/username/year-dots/internal/config"
	"github.com/username/year-dots/internal/yeartracker"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	configPath   string
	yearOverride int
	logger       *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "year-dots",
		Short: "One dot per day of the year",
		Long:  "Track a year as a grid of dots, mark days, keep a small journal and watch the counter grow",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load config to get log file path
			cfg, err := config.Load(configPath)
			if err == nil && cfg.Daemon.LogFile != "" {
				logger, err = initFileLogger(cfg.Daemon.LogFile, cfg.Daemon.LogLevel)
				if err != nil {
					initLogger() // Fallback to console
				}
			} else {
				initLogger() // Default console logger
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Config file path")
	rootCmd.PersistentFlags().IntVar(&yearOverride, "year", 0, "Track this year instead of the configured one")

	rootCmd.AddCommand(
		showCmd(),
		toggleCmd(),
		countCmd(),
		statusCmd(),
		journalCmd(),
		tuiCmd(),
		serveCmd(),
		daemonCmd(),
		exportCmd(),
		themeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ExpandEnvVars()

	if yearOverride != 0 {
		cfg.Year = yearOverride
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid year: %w", err)
		}
	}
	return cfg, nil
}

// initializeManager opens the configured storage and loads the tracked year
func initializeManager(ctx context.Context) (*config.Config, *yeartracker.Manager, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	manager, err := yeartracker.Open(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := manager.Init(ctx); err != nil {
		manager.Close()
		return nil, nil, err
	}

	return cfg, manager, nil
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

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	// Setup lumberjack for log rotation
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10,   // MB
		MaxBackups: 3,    // Keep max 3 old log files
		MaxAge:     28,   // days
		Compress:   true, // Compress old logs with gzip
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	// Parse log level
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		zapLevel,
	)

	return zap.New(core), nil
}
