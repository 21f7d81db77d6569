package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/covid19india/internal/loadtest"
)

// Default configuration constants.
const (
	defaultStateID      = 1
	defaultNumDistricts = 1000
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultTimeout      = 30 * time.Second
	defaultRunTimeout   = 10 * time.Minute
)

func main() {
	var (
		baseURL      = flag.String("url", "http://localhost:3000", "Base URL of the service")
		stateID      = flag.Int64("state", defaultStateID, "State id the districts are added to")
		numDistricts = flag.Int("districts", defaultNumDistricts, "Number of districts to generate and submit")
		workers      = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout      = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile   = flag.String("output", "", "JSON file for the generated districts (not written when empty)")
		logFile      = flag.String("log", "", "Log file for run output (default: load_log_TIMESTAMP.log)")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
		help         = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadtest.ShowHelp()
		return
	}

	closer, err := loadtest.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)

	config := &loadtest.Config{
		BaseURL:      *baseURL,
		StateID:      *stateID,
		NumDistricts: *numDistricts,
		Workers:      *workers,
		Timeout:      *timeout,
		OutputFile:   *outputFile,
		LogFile:      *logFile,
		Verbose:      *verbose,
	}

	runErr := loadtest.Run(ctx, config)
	cancel()
	_ = closer.Close()

	if runErr != nil {
		os.Stderr.WriteString("Load run failed: " + runErr.Error() + "\n")
		os.Exit(1)
	}
}
