package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.openweathermap.org/data/2.5"

// Client fetches current conditions by coordinates. The response body is
// treated as an opaque payload.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds an API client with a bounded request timeout.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	base := strings.TrimSpace(baseURL)
	if base == "" {
		base = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Current retrieves the weather payload for a longitude/latitude pair.
func (c *Client) Current(ctx context.Context, lon, lat float64) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("units", "metric")
	if c.apiKey != "" {
		query.Set("appid", c.apiKey)
	}
	endpoint := fmt.Sprintf("%s/weather?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build weather request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("weather request error: status=%d body=%s", resp.StatusCode, string(payload))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read weather response: %w", err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("weather response is not valid JSON")
	}
	return json.RawMessage(body), nil
}
