package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/covid19india/internal/domain/model"
	"github.com/okian/covid19india/pkg/logger"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Get performs a GET request and returns the status and body.
func (c *HTTPClient) Get(ctx context.Context, path string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(ctx context.Context, path string, body any) (int, []byte, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *HTTPClient) do(req *http.Request) (int, []byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %s %s: %w", ErrNoResponse, req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// fetchTotals reads the stats of a state.
func fetchTotals(ctx context.Context, client *HTTPClient, stateID int64) (Totals, error) {
	path := "/states/" + strconv.FormatInt(stateID, 10) + "/stats/"
	status, body, err := client.Get(ctx, path)
	if err != nil {
		return Totals{}, err
	}
	if status != http.StatusOK {
		return Totals{}, fmt.Errorf("%w: GET %s returned %d", ErrUnexpected, path, status)
	}
	var stats model.StateStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return Totals{}, fmt.Errorf("%w: decode stats: %w", ErrUnexpected, err)
	}
	return totalsFrom(stats)
}

// submitDistricts posts districts concurrently using a worker pool. It
// returns the sums of the districts the service accepted and of those whose
// POST got no response: a client timeout may still have committed the row.
func submitDistricts(ctx context.Context, config *Config, client *HTTPClient, districts []District, stats *Stats) (accepted, uncertain Totals) {
	log := logger.Get()
	log.Info(ctx, "submitting districts",
		logger.Int("count", len(districts)),
		logger.Int("workers", config.Workers))

	var (
		successful int64
		failed     int64
		unanswered int64
		submitted  int64

		mu sync.Mutex
	)

	districtChan := make(chan District, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for d := range districtChan {
				if ctx.Err() != nil {
					continue
				}
				total := atomic.AddInt64(&submitted, 1)
				if err := submitSingleDistrict(ctx, client, d); err != nil {
					atomic.AddInt64(&failed, 1)
					if errors.Is(err, ErrNoResponse) {
						atomic.AddInt64(&unanswered, 1)
						mu.Lock()
						uncertain = uncertain.Add(d)
						mu.Unlock()
					}
					log.Debug(ctx, "district submission failed",
						logger.String("districtName", d.DistrictName), logger.Error(err))
					continue
				}
				atomic.AddInt64(&successful, 1)
				mu.Lock()
				accepted = accepted.Add(d)
				mu.Unlock()

				log.Debug(ctx, "progress",
					logger.Int64("submitted", total),
					logger.Int("total", len(districts)))
			}
		}()
	}

	go func() {
		defer close(districtChan)
		for _, d := range districts {
			select {
			case <-ctx.Done():
				return
			case districtChan <- d:
			}
		}
	}()

	wg.Wait()

	stats.DistrictsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.DistrictsSuccessful = int(atomic.LoadInt64(&successful))
	stats.DistrictsFailed = int(atomic.LoadInt64(&failed))
	stats.DistrictsUnanswered = int(atomic.LoadInt64(&unanswered))

	log.Info(ctx, "district submission completed",
		logger.Int("successful", stats.DistrictsSuccessful),
		logger.Int("failed", stats.DistrictsFailed),
		logger.Int("unanswered", stats.DistrictsUnanswered))
	return accepted, uncertain
}

// submitSingleDistrict posts one district. A 200 whose body could not be
// read still counts as accepted.
func submitSingleDistrict(ctx context.Context, client *HTTPClient, d District) error {
	status, body, err := client.Post(ctx, "/districts/", d)
	switch {
	case status == http.StatusOK:
		return nil
	case err != nil:
		return err
	default:
		return fmt.Errorf("%w: status %d: %s", ErrUnexpected, status, body)
	}
}
