package loadtest

import (
	"fmt"
	"time"

	"github.com/okian/covid19india/internal/domain/model"
)

// Config holds configuration for a load run.
type Config struct {
	BaseURL      string        // Base URL of the service
	StateID      int64         // State the generated districts belong to
	NumDistricts int           // Number of districts to generate
	Workers      int           // Number of concurrent workers
	Timeout      time.Duration // HTTP request timeout
	OutputFile   string        // Optional JSON file for generated districts
	LogFile      string        // Log file for run output
	Verbose      bool          // Enable verbose logging
}

// District is the body submitted to POST /districts/.
type District struct {
	DistrictName string `json:"districtName"`
	StateID      int64  `json:"stateId"`
	Cases        int64  `json:"cases"`
	Cured        int64  `json:"cured"`
	Active       int64  `json:"active"`
	Deaths       int64  `json:"deaths"`
}

// Totals are case sums with null treated as zero.
type Totals struct {
	Cases  int64
	Cured  int64
	Active int64
	Deaths int64
}

func totalsFrom(s model.StateStats) (Totals, error) {
	var t Totals
	for _, f := range []struct {
		name string
		src  model.Scalar
		dst  *int64
	}{
		{"totalCases", s.TotalCases, &t.Cases},
		{"totalCured", s.TotalCured, &t.Cured},
		{"totalActive", s.TotalActive, &t.Active},
		{"totalDeaths", s.TotalDeaths, &t.Deaths},
	} {
		if f.src.IsNull() {
			continue
		}
		n, ok := f.src.Int64()
		if !ok {
			return Totals{}, fmt.Errorf("%w: %s is not an integer: %v", ErrUnexpected, f.name, f.src.Raw())
		}
		*f.dst = n
	}
	return t, nil
}

// Add returns the element-wise sum of t and d's counts.
func (t Totals) Add(d District) Totals {
	return Totals{
		Cases:  t.Cases + d.Cases,
		Cured:  t.Cured + d.Cured,
		Active: t.Active + d.Active,
		Deaths: t.Deaths + d.Deaths,
	}
}

// Stats holds run statistics.
type Stats struct {
	DistrictsGenerated  int
	DistrictsSubmitted  int
	DistrictsSuccessful int
	DistrictsFailed     int
	DistrictsUnanswered int // failed without a response, may have committed
	Before              Totals
	After               Totals
	StartTime           time.Time
	EndTime             time.Time
	Duration            time.Duration
}
