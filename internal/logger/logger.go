package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/DeRuina/timberjack"
	"github.com/sirupsen/logrus"
)

var (
	// Logger is the process-wide logger. Components log through GetLogger or WithRun.
	Logger *logrus.Logger
	// initialized tracks if logger has been initialized
	initialized bool
)

// LogConfig holds configuration for logging
type LogConfig struct {
	Level        string // "debug", "info", "warn", "error"
	FilePath     string // Path to log file, empty for stdout only
	RotationTime string // Time-based rotation interval (e.g., "1h", "24h")
	MaxSize      int    // Maximum size in megabytes before rotation
	MaxBackups   int    // Maximum number of old log files to retain
	MaxAge       int    // Maximum number of days to retain old log files
	Compress     bool   // Whether to compress rotated log files
}

// Init configures the global logger. Calling it more than once is a no-op.
func Init(config LogConfig) error {
	if initialized && Logger != nil {
		return nil
	}

	if Logger == nil {
		Logger = logrus.New()
	}
	Logger.SetOutput(io.Discard)

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	Logger.SetLevel(level)
	Logger.SetFormatter(newFormatter())

	var writers []io.Writer

	// Skip stdout when it is already redirected into a file (daemon mode writes there).
	if !isStdoutRedirectedToFile() {
		writers = append(writers, os.Stdout)
	}

	if config.FilePath != "" {
		fileWriter, err := newFileWriter(config)
		if err != nil {
			return err
		}
		writers = append(writers, fileWriter)
	}

	if len(writers) == 0 {
		writers = append(writers, os.Stdout)
	}
	Logger.SetOutput(io.MultiWriter(writers...))

	initialized = true
	return nil
}

func newFileWriter(config LogConfig) (io.Writer, error) {
	dir := filepath.Dir(config.FilePath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	maxSize := config.MaxSize
	if maxSize == 0 {
		maxSize = 50
	}
	maxBackups := config.MaxBackups
	if maxBackups == 0 {
		maxBackups = 7
	}
	maxAge := config.MaxAge
	if maxAge == 0 {
		maxAge = 30
	}

	// A report runs once a day, so rotate daily unless told otherwise.
	rotationDuration := 24 * time.Hour
	if config.RotationTime != "" {
		var err error
		rotationDuration, err = time.ParseDuration(config.RotationTime)
		if err != nil {
			return nil, fmt.Errorf("invalid rotation_time: %w", err)
		}
	}

	compression := ""
	if config.Compress {
		compression = "gzip"
	}

	return &timberjack.Logger{
		Filename:         config.FilePath,
		MaxSize:          maxSize,
		MaxBackups:       maxBackups,
		MaxAge:           maxAge,
		RotationInterval: rotationDuration,
		Compression:      compression,
		LocalTime:        true,
	}, nil
}

func newFormatter() logrus.Formatter {
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		DisableColors:   true,
	}
}

// isStdoutRedirectedToFile checks if stdout is redirected to a regular file
func isStdoutRedirectedToFile() bool {
	stat, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode()&os.ModeCharDevice) == 0 && stat.Mode().IsRegular()
}

// GetLogger returns the global logger, creating a stdout logger when Init was never called.
func GetLogger() *logrus.Logger {
	if Logger == nil {
		// Init may still reconfigure this one later.
		Logger = logrus.New()
		Logger.SetOutput(os.Stdout)
		Logger.SetLevel(logrus.InfoLevel)
		Logger.SetFormatter(newFormatter())
	}
	return Logger
}

// WithRun returns an entry tagged with the report run ID.
func WithRun(runID string) *logrus.Entry {
	return GetLogger().WithField("run_id", runID)
}
