package loadtest

import (
	"context"
	"fmt"

	"github.com/okian/covid19india/pkg/logger"
)

// verifyTotals checks that the state's totals grew by the sums of the
// accepted districts. Districts whose POST got no response may or may not
// have been stored, so each total may additionally grow by up to their sum.
// Concurrent writers to the same state make this fail.
func verifyTotals(ctx context.Context, before, after, accepted, uncertain Totals) error {
	logger.Get().Info(ctx, "verifying totals")

	low := Totals{
		Cases:  before.Cases + accepted.Cases,
		Cured:  before.Cured + accepted.Cured,
		Active: before.Active + accepted.Active,
		Deaths: before.Deaths + accepted.Deaths,
	}
	high := Totals{
		Cases:  low.Cases + uncertain.Cases,
		Cured:  low.Cured + uncertain.Cured,
		Active: low.Active + uncertain.Active,
		Deaths: low.Deaths + uncertain.Deaths,
	}
	if !within(after.Cases, low.Cases, high.Cases) ||
		!within(after.Cured, low.Cured, high.Cured) ||
		!within(after.Active, low.Active, high.Active) ||
		!within(after.Deaths, low.Deaths, high.Deaths) {
		if low == high {
			return fmt.Errorf("%w: want %+v, got %+v", ErrVerification, low, after)
		}
		return fmt.Errorf("%w: want between %+v and %+v, got %+v", ErrVerification, low, high, after)
	}

	logger.Get().Info(ctx, "totals verified",
		logger.Int64("totalCases", after.Cases),
		logger.Int64("totalCured", after.Cured),
		logger.Int64("totalActive", after.Active),
		logger.Int64("totalDeaths", after.Deaths))
	return nil
}

func within(v, low, high int64) bool {
	return v >= low && v <= high
}
