// Package osrm queries the table service of an OSRM server for road distance matrices.
package osrm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

const (
	providerName   = "osrm"
	maxErrorBody   = 4 << 10
	defaultLimit   = 4
	defaultTimeout = 20 * time.Second
)

// Config holds client settings
type Config struct {
	BaseURL       string
	Profile       string
	Timeout       time.Duration
	MaxConcurrent int
}

// HTTPError is returned for non-2xx answers
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("osrm returned status %d: %s", e.StatusCode, e.Body)
}

// Client implements routing.MatrixProvider against the OSRM table API
type Client struct {
	baseURL string
	profile string
	http    *http.Client
	timeout time.Duration
	sem     *semaphore.Weighted
	group   singleflight.Group
}

type tableResponse struct {
	Code      string       `json:"code"`
	Message   string       `json:"message"`
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

type tableResult struct {
	distances [][]float64
	durations [][]float64
}

// New creates a client with its own http.Client
func New(cfg Config) (*Client, error) {
	return NewWithHTTPClient(cfg, &http.Client{Timeout: timeoutOf(cfg)})
}

func timeoutOf(cfg Config) time.Duration {
	if cfg.Timeout <= 0 {
		return defaultTimeout
	}
	return cfg.Timeout
}

// NewWithHTTPClient creates a client using the given http.Client
func NewWithHTTPClient(cfg Config, httpClient *http.Client) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, entities.NewConfigurationError("ROUTING_PROVIDER_URL", "invalid provider url %q", cfg.BaseURL)
	}
	profile := cfg.Profile
	if profile == "" {
		profile = "driving"
	}
	limit := cfg.MaxConcurrent
	if limit <= 0 {
		limit = defaultLimit
	}

	return &Client{
		baseURL: base.String(),
		profile: profile,
		http:    httpClient,
		timeout: timeoutOf(cfg),
		sem:     semaphore.NewWeighted(int64(limit)),
	}, nil
}

// Name identifies the provider in errors and matrix sources
func (c *Client) Name() string {
	return providerName
}

// FetchMatrix returns distances in meters and durations in seconds. Unreachable pairs
// come back as NaN so the caller rejects the matrix.
func (c *Client) FetchMatrix(ctx context.Context, points []entities.GeoPoint) ([][]float64, [][]float64, error) {
	endpoint := c.tableURL(points)

	// Identical concurrent requests share one upstream call. The shared call is detached
	// from any single caller and bounded by the client timeout; each caller may still
	// leave early when its own context ends.
	ch := c.group.DoChan(endpoint, func() (interface{}, error) {
		sharedCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		if err := c.sem.Acquire(sharedCtx, 1); err != nil {
			return nil, err
		}
		defer c.sem.Release(1)
		return c.fetch(sharedCtx, endpoint, len(points))
	})

	select {
	case <-ctx.Done():
		return nil, nil, &entities.ExternalProviderError{Provider: providerName, Op: "table", Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return nil, nil, &entities.ExternalProviderError{Provider: providerName, Op: "table", StatusCode: statusOf(res.Err), Err: res.Err}
		}
		result := res.Val.(*tableResult)
		return copyGrid(result.distances), copyGrid(result.durations), nil
	}
}

func (c *Client) tableURL(points []entities.GeoPoint) string {
	coords := make([]string, len(points))
	for i, p := range points {
		coords[i] = strconv.FormatFloat(p.Lon, 'f', 6, 64) + "," + strconv.FormatFloat(p.Lat, 'f', 6, 64)
	}
	return fmt.Sprintf("%s/table/v1/%s/%s?annotations=distance,duration",
		c.baseURL, url.PathEscape(c.profile), strings.Join(coords, ";"))
}

func (c *Client) fetch(ctx context.Context, endpoint string, n int) (*tableResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var payload tableResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode table response: %w", err)
	}
	if payload.Code != "Ok" {
		return nil, fmt.Errorf("table request rejected: %s %s", payload.Code, payload.Message)
	}
	if len(payload.Distances) != n {
		return nil, fmt.Errorf("table response has %d rows, expected %d", len(payload.Distances), n)
	}

	result := &tableResult{distances: fromNullable(payload.Distances)}
	if payload.Durations != nil {
		result.durations = fromNullable(payload.Durations)
	}
	return result, nil
}

func fromNullable(grid [][]*float64) [][]float64 {
	out := make([][]float64, len(grid))
	for i, row := range grid {
		out[i] = make([]float64, len(row))
		for j, cell := range row {
			if cell == nil {
				out[i][j] = math.NaN()
				continue
			}
			out[i][j] = *cell
		}
	}
	return out
}

func copyGrid(grid [][]float64) [][]float64 {
	if grid == nil {
		return nil
	}
	out := make([][]float64, len(grid))
	for i, row := range grid {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

func statusOf(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}
