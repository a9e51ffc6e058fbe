// Package moat provides a client for an external moat-analysis service.
package moat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/interfaces"
	"github.com/bobmcallan/fathom/internal/models"
)

const (
	DefaultTimeout = 15 * time.Second
)

// Client fetches competitive-moat scores from an external service. The
// service is optional: a missing score is reported as (nil, nil) and the
// composite calculator treats it as a zero moat contribution.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new moat client
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type moatResponse struct {
	Symbol       string  `json:"symbol"`
	OverallScore float64 `json:"overall_score"`
	Summary      string  `json:"summary"`
}

// GetMoatScore retrieves the moat score for a symbol. A 404 from the
// service means no analysis exists and returns (nil, nil).
func (c *Client) GetMoatScore(ctx context.Context, symbol string) (*models.MoatScore, error) {
	url := fmt.Sprintf("%s/moat/%s", c.baseURL, symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.logger.Debug().Str("symbol", symbol).Msg("No moat analysis available")
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("moat service error: %s (status: %d)", string(body), resp.StatusCode)
	}

	var raw moatResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &models.MoatScore{
		Symbol:       symbol,
		OverallScore: raw.OverallScore,
		Summary:      raw.Summary,
		GeneratedAt:  time.Now(),
	}, nil
}

// Ensure Client implements MoatClient
var _ interfaces.MoatClient = (*Client)(nil)
