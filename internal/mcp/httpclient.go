package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/fitcount/internal/exercise"
	"github.com/claude/fitcount/internal/sessionlog"
	"github.com/claude/fitcount/internal/tracker"
	"github.com/claude/fitcount/internal/workout"
)

// HTTPClient implements DataSource by calling the fitcount REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// the tracker runs on another machine (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

var errNotFound = errors.New("not found")

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("httpclient: %s: %w", path, errNotFound)
	case http.StatusServiceUnavailable:
		return nil, fmt.Errorf("httpclient: %s: %w", path, ErrNoHistory)
	default:
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}
}

func timeParams(start, end time.Time) url.Values {
	v := url.Values{}
	v.Set("start", start.Format(time.RFC3339))
	v.Set("end", end.Format(time.RFC3339))
	return v
}

func (c *HTTPClient) Session(ctx context.Context) (workout.Snapshot, error) {
	body, err := c.get(ctx, "/api/v1/session", nil)
	if errors.Is(err, errNotFound) {
		return workout.Snapshot{}, tracker.ErrNoSession
	}
	if err != nil {
		return workout.Snapshot{}, err
	}

	var snap workout.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return workout.Snapshot{}, fmt.Errorf("httpclient: decode session: %w", err)
	}
	return snap, nil
}

func (c *HTTPClient) Exercises(ctx context.Context) ([]exercise.Kind, error) {
	body, err := c.get(ctx, "/api/v1/exercises", nil)
	if err != nil {
		return nil, err
	}

	var kinds []exercise.Kind
	if err := json.Unmarshal(body, &kinds); err != nil {
		return nil, fmt.Errorf("httpclient: decode exercises: %w", err)
	}
	return kinds, nil
}

func (c *HTTPClient) QuerySets(ctx context.Context, start, end time.Time, exerciseFilter string) ([]sessionlog.SetRow, error) {
	params := timeParams(start, end)
	if exerciseFilter != "" {
		params.Set("exercise", exerciseFilter)
	}

	body, err := c.get(ctx, "/api/v1/sets", params)
	if err != nil {
		return nil, err
	}

	var rows []sessionlog.SetRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("httpclient: decode sets: %w", err)
	}
	return rows, nil
}

func (c *HTTPClient) RecentSessions(ctx context.Context, limit int) ([]sessionlog.SessionRow, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	body, err := c.get(ctx, "/api/v1/sessions", params)
	if err != nil {
		return nil, err
	}

	var rows []sessionlog.SessionRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("httpclient: decode sessions: %w", err)
	}
	return rows, nil
}
