package loadtest

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/covid19india/pkg/logger"
)

// SetupLogging sends log output to both stdout and logFile. If logFile is
// empty, a timestamped filename is generated. The returned closer releases
// the file.
func SetupLogging(logFile string, verbose bool) (io.Closer, error) {
	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "load_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, filePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	if err := logger.InitWithWriter(io.MultiWriter(os.Stdout, file)); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}

	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return file, nil
}

// ShowHelp prints usage information for the load tool.
func ShowHelp() {
	os.Stdout.WriteString(`covid19India District Load Tool
===============================

Inserts random districts into one state concurrently and checks that the
state's stats grew by exactly the inserted counts.

Usage:
  go run ./cmd/load-districts [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:3000")
  -state int
        State id the districts are added to (default 1)
  -districts int
        Number of districts to generate and submit (default 1000)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        JSON file for the generated districts (not written when empty)
  -log string
        Log file for run output (default: load_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Run with default settings
  go run ./cmd/load-districts

  # Load Kerala with 5000 districts over 16 workers
  go run ./cmd/load-districts -state 17 -districts 5000 -workers 16

  # Keep the generated districts
  go run ./cmd/load-districts -output out/districts.json
`)
}
