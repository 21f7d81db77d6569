// Package loadtest drives a running covid19india API with concurrent
// district inserts and checks that the state totals add up.
package loadtest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/covid19india/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// Run executes the complete load run.
func Run(ctx context.Context, config *Config) error {
	if err := validate(config); err != nil {
		return err
	}

	stats := &Stats{
		StartTime: time.Now(),
	}

	log := logger.Get()
	log.Info(ctx, "starting covid19india district load run",
		logger.String("baseURL", config.BaseURL),
		logger.Int64("stateId", config.StateID),
		logger.Int("districts", config.NumDistricts),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
		logger.String("logFile", config.LogFile),
		logger.Any("verbose", config.Verbose))

	client := newHTTPClient(config.BaseURL, config.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Read current totals
	before, err := fetchTotals(ctx, client, config.StateID)
	if err != nil {
		return fmt.Errorf("reading initial stats failed: %w", err)
	}
	stats.Before = before

	// Step 3: Generate districts
	districts, err := generateDistricts(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("district generation failed: %w", err)
	}

	// Step 4: Submit districts concurrently
	accepted, uncertain := submitDistricts(ctx, config, client, districts, stats)

	// Step 5: Read totals again and verify
	after, err := fetchTotals(ctx, client, config.StateID)
	if err != nil {
		return fmt.Errorf("reading final stats failed: %w", err)
	}
	stats.After = after

	if err := verifyTotals(ctx, before, after, accepted, uncertain); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	// Step 6: Save districts to file
	if config.OutputFile != "" {
		if err := saveDistrictsToFile(ctx, config.OutputFile, districts); err != nil {
			log.Warn(ctx, "failed to save districts to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(ctx, stats)

	log.Info(ctx, "load run completed successfully")
	return nil
}

func validate(config *Config) error {
	switch {
	case config == nil:
		return fmt.Errorf("%w: nil config", ErrInvalidRun)
	case config.BaseURL == "":
		return fmt.Errorf("%w: empty base url", ErrInvalidRun)
	case config.NumDistricts <= 0:
		return fmt.Errorf("%w: districts must be positive", ErrInvalidRun)
	case config.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive", ErrInvalidRun)
	}
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	logger.Get().Info(ctx, "checking service health")

	status, _, err := client.Get(ctx, "/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if status != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, status)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveDistrictsToFile writes the generated districts as a JSON array.
func saveDistrictsToFile(ctx context.Context, filename string, districts []District) error {
	if len(districts) == 0 {
		return fmt.Errorf("no districts to save")
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(districts, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal districts: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Get().Info(ctx, "districts saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, districtsPerSecond float64

	if stats.DistrictsSubmitted > 0 {
		successRate = float64(stats.DistrictsSuccessful) / float64(stats.DistrictsSubmitted) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		districtsPerSecond = float64(stats.DistrictsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("districtsGenerated", stats.DistrictsGenerated),
		logger.Int("districtsSubmitted", stats.DistrictsSubmitted),
		logger.Int("districtsSuccessful", stats.DistrictsSuccessful),
		logger.Int("districtsFailed", stats.DistrictsFailed),
		logger.Int("districtsUnanswered", stats.DistrictsUnanswered),
		logger.Int64("casesBefore", stats.Before.Cases),
		logger.Int64("casesAfter", stats.After.Cases),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("districtsPerSecond", districtsPerSecond))
}
