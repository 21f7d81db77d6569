package loadtest

import "errors"

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
	PercentageMultiplier    = 100
)

// Bounds for generated case counts.
const (
	maxCases = 100000
)

// Sentinel errors.
var (
	ErrUnhealthy    = errors.New("service unhealthy")
	ErrUnexpected   = errors.New("unexpected response")
	ErrVerification = errors.New("totals mismatch")
	ErrInvalidRun   = errors.New("invalid run configuration")
	ErrNoResponse   = errors.New("no response")
)
