package loadtest

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/okian/covid19india/pkg/logger"
)

// randInt64 returns a uniform value in [0, n] using crypto/rand.
func randInt64(n int64) int64 {
	if n <= 0 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(n+1))
	if err != nil {
		return 0
	}
	return v.Int64()
}

// generateDistricts creates config.NumDistricts districts with unique names.
// Every district satisfies cases = cured + active + deaths.
func generateDistricts(ctx context.Context, config *Config, stats *Stats) ([]District, error) {
	logger.Get().Info(ctx, "generating districts", logger.Int("numDistricts", config.NumDistricts))

	districts := make([]District, config.NumDistricts)
	for i := range districts {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during district generation: %w", err)
		}
		districts[i] = generateSingleDistrict(config.StateID)
	}

	stats.DistrictsGenerated = len(districts)
	logger.Get().Info(ctx, "generated districts successfully", logger.Int("count", len(districts)))
	return districts, nil
}

func generateSingleDistrict(stateID int64) District {
	cases := randInt64(maxCases)
	cured := randInt64(cases)
	deaths := randInt64(cases - cured)
	return District{
		DistrictName: "load-" + uuid.NewString(),
		StateID:      stateID,
		Cases:        cases,
		Cured:        cured,
		Active:       cases - cured - deaths,
		Deaths:       deaths,
	}
}
