// Package marketdata provides a client for the EODHD market data API.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/interfaces"
	"github.com/bobmcallan/fathom/internal/models"
)

// Ensure Client implements MarketDataClient
var _ interfaces.MarketDataClient = (*Client)(nil)

const (
	DefaultBaseURL   = "https://eodhd.com/api"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
)

// flexFloat64 handles JSON values that may be either a number or a string.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "N/A" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

// Client implements the MarketDataClient interface
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new market data client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("market data API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("Market data API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// quoteResponse represents the real-time quote API response
type quoteResponse struct {
	Code          string      `json:"code"`
	Close         flexFloat64 `json:"close"`
	PreviousClose flexFloat64 `json:"previousClose"`
	Change        flexFloat64 `json:"change"`
	ChangePct     flexFloat64 `json:"change_p"`
	High          flexFloat64 `json:"high"`
	Low           flexFloat64 `json:"low"`
	Volume        flexFloat64 `json:"volume"`
	Timestamp     int64       `json:"timestamp"`
}

// GetQuote retrieves the latest quote for a symbol.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	path := fmt.Sprintf("/real-time/%s", symbol)

	var raw quoteResponse
	if err := c.get(ctx, path, nil, &raw); err != nil {
		return nil, err
	}

	quote := &models.Quote{
		Symbol:        symbol,
		Price:         float64(raw.Close),
		PreviousClose: float64(raw.PreviousClose),
		Change:        float64(raw.Change),
		ChangePct:     float64(raw.ChangePct),
		Volume:        int64(raw.Volume),
		Timestamp:     time.Unix(raw.Timestamp, 0),
	}

	// The real-time endpoint has no 52-week range; enrich from the
	// fundamentals highlights when available.
	if err := c.enrichQuote(ctx, symbol, quote); err != nil {
		c.logger.Debug().Err(err).Str("symbol", symbol).Msg("Quote enrichment skipped")
	}

	return quote, nil
}

// highlightsResponse carries the subset of the fundamentals endpoint used
// for valuation inputs.
type highlightsResponse struct {
	Highlights struct {
		MarketCap flexFloat64 `json:"MarketCapitalization"`
		High52    flexFloat64 `json:"52WeekHigh"`
		Low52     flexFloat64 `json:"52WeekLow"`
	} `json:"Highlights"`
	SharesStats struct {
		SharesOutstanding flexFloat64 `json:"SharesOutstanding"`
	} `json:"SharesStats"`
}

func (c *Client) enrichQuote(ctx context.Context, symbol string, quote *models.Quote) error {
	params := url.Values{}
	params.Set("filter", "Highlights,SharesStats")

	var raw highlightsResponse
	if err := c.get(ctx, fmt.Sprintf("/fundamentals/%s", symbol), params, &raw); err != nil {
		return err
	}

	quote.MarketCap = float64(raw.Highlights.MarketCap)
	quote.High52Week = float64(raw.Highlights.High52)
	quote.Low52Week = float64(raw.Highlights.Low52)
	quote.SharesOutstanding = int64(raw.SharesStats.SharesOutstanding)
	return nil
}
