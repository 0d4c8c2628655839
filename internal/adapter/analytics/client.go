// internal/adapter/analytics/client.go

package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"poidash/internal/domain/dashboard"
	"poidash/internal/domain/poi"
)

// DefaultLimit is the page size requested when none is given
const DefaultLimit = 50

// StatusError is returned when the analytics API answers with a non-2xx status
type StatusError struct {
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("analytics API %s returned status %d", e.Path, e.StatusCode)
}

// Client implements poi.Source over the analytics HTTP API
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a new analytics client
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// ListPOIs returns one page of POIs. Errors are returned to the caller
// together with an empty page.
func (c *Client) ListPOIs(ctx context.Context, params poi.ListParams) (poi.PaginatedResponse, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit <= 0 {
		params.Limit = DefaultLimit
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(params.Page))
	query.Set("limit", strconv.Itoa(params.Limit))
	setCategory(query, params.Category)
	if params.Search != "" {
		query.Set("search", params.Search)
	}
	if params.Sentiment != "" {
		query.Set("sentiment", params.Sentiment)
	}

	var resp poi.PaginatedResponse
	if err := c.get(ctx, "/pois", query, &resp); err != nil {
		log.Printf("Failed to fetch POIs: %v", err)
		return poi.EmptyPage(params.Limit), fmt.Errorf("fetching POIs: %w", err)
	}
	if resp.Data == nil {
		resp.Data = []poi.POI{}
	}

	return resp, nil
}

// SentimentAnalytics returns the sentiment distribution
func (c *Client) SentimentAnalytics(ctx context.Context) []poi.SentimentCount {
	var resp []poi.SentimentCount
	if err := c.get(ctx, "/analytics/sentiment", nil, &resp); err != nil {
		log.Printf("Failed to fetch sentiment analytics: %v", err)
		return []poi.SentimentCount{}
	}
	if resp == nil {
		return []poi.SentimentCount{}
	}
	return resp
}

// CategoryAnalytics returns the category aggregate
func (c *Client) CategoryAnalytics(ctx context.Context) []poi.CategoryCount {
	var resp []poi.CategoryCount
	if err := c.get(ctx, "/analytics/categories", nil, &resp); err != nil {
		log.Printf("Failed to fetch category analytics: %v", err)
		return []poi.CategoryCount{}
	}
	if resp == nil {
		return []poi.CategoryCount{}
	}
	return resp
}

// EmotionAnalytics returns the emotion averages, or nil on failure
func (c *Client) EmotionAnalytics(ctx context.Context) *poi.EmotionAverages {
	var resp *poi.EmotionAverages
	if err := c.get(ctx, "/analytics/emotions", nil, &resp); err != nil {
		log.Printf("Failed to fetch emotion analytics: %v", err)
		return nil
	}
	return resp
}

// GeoData returns the map points for the filter
func (c *Client) GeoData(ctx context.Context, params poi.GeoParams) []poi.GeoPoint {
	query := url.Values{}
	setCategory(query, params.Category)
	if params.Sentiment != "" {
		query.Set("sentiment", params.Sentiment)
	}

	var resp []poi.GeoPoint
	if err := c.get(ctx, "/analytics/geo", query, &resp); err != nil {
		log.Printf("Failed to fetch geo data: %v", err)
		return []poi.GeoPoint{}
	}
	if resp == nil {
		return []poi.GeoPoint{}
	}
	return resp
}

func setCategory(query url.Values, category string) {
	if category != "" && category != dashboard.AllCategories {
		query.Set("category", category)
	}
}

// get issues a GET request and decodes the JSON body into out
func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling analytics API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Path: path, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}

	return nil
}

var _ poi.Source = (*Client)(nil)
