package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

func parseLogLevel(raw string) (log.Level, error) {
	switch raw {
	case "debug":
		return log.DebugLevel, nil
	case "info", "":
		return log.InfoLevel, nil
	case "warn":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	default:
		return log.InfoLevel, fmt.Errorf("invalid log level %q", raw)
	}
}

// setupLogging installs a charmbracelet handler as the default slog
// logger. Logs go to stderr so command output on stdout stays clean.
func setupLogging(rawLevel string) error {
	level, err := parseLogLevel(rawLevel)
	if err != nil {
		return err
	}

	handler := log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		TimeFormat:      time.RFC3339,
		ReportTimestamp: true,
		TimeFunction:    log.NowUTC,
	})
	slog.SetDefault(slog.New(handler))
	return nil
}
