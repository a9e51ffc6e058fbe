// Package secfacts provides a client for the SEC XBRL company facts API.
package secfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/interfaces"
	"github.com/bobmcallan/fathom/internal/models"
)

// Ensure Client implements FactsClient
var _ interfaces.FactsClient = (*Client)(nil)

const (
	DefaultBaseURL   = "https://data.sec.gov/api/xbrl"
	DefaultTickerURL = "https://www.sec.gov/files/company_tickers.json"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 8 // requests per second, SEC fair-access limit is 10
)

// Client fetches company facts from the SEC's public XBRL API. The SEC
// requires a descriptive User-Agent on every request and enforces a
// fair-access rate limit.
type Client struct {
	baseURL    string
	tickerURL  string
	userAgent  string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter

	mu      sync.Mutex
	tickers map[string]string // symbol -> zero-padded CIK
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithTickerURL sets the ticker-to-CIK mapping URL
func WithTickerURL(tickerURL string) ClientOption {
	return func(c *Client) {
		c.tickerURL = tickerURL
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

// NewClient creates a new SEC facts client. userAgent must identify the
// application and a contact address per SEC fair-access policy.
func NewClient(userAgent string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		tickerURL: DefaultTickerURL,
		userAgent: userAgent,
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

// APIError represents an SEC API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("SEC API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request with the mandatory User-Agent.
func (c *Client) get(ctx context.Context, url string, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", url).Msg("SEC API request")

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
			Endpoint:   url,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// GetCompanyFacts retrieves and parses all XBRL facts for a symbol.
func (c *Client) GetCompanyFacts(ctx context.Context, symbol string) (*models.CompanyFacts, error) {
	cik, err := c.resolveCIK(ctx, symbol)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/companyfacts/CIK%s.json", c.baseURL, cik)

	var raw companyFactsResponse
	if err := c.get(ctx, url, &raw); err != nil {
		return nil, err
	}

	facts := parseCompanyFacts(symbol, cik, &raw)

	c.logger.Debug().
		Str("symbol", symbol).
		Str("cik", cik).
		Int("concepts", len(facts.Facts)).
		Msg("Retrieved company facts")

	return facts, nil
}

// resolveCIK maps a ticker symbol to its zero-padded CIK, loading the SEC
// ticker file on first use.
func (c *Client) resolveCIK(ctx context.Context, symbol string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tickers == nil {
		var raw map[string]tickerEntry
		if err := c.get(ctx, c.tickerURL, &raw); err != nil {
			return "", fmt.Errorf("failed to load ticker mapping: %w", err)
		}
		c.tickers = make(map[string]string, len(raw))
		for _, entry := range raw {
			c.tickers[strings.ToUpper(entry.Ticker)] = fmt.Sprintf("%010d", entry.CIK)
		}
		c.logger.Debug().Int("tickers", len(c.tickers)).Msg("Loaded SEC ticker mapping")
	}

	cik, ok := c.tickers[strings.ToUpper(symbol)]
	if !ok {
		return "", fmt.Errorf("unknown symbol %s: no CIK mapping", symbol)
	}
	return cik, nil
}

type tickerEntry struct {
	CIK    int    `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// companyFactsResponse mirrors the SEC companyfacts JSON shape.
type companyFactsResponse struct {
	CIK        int    `json:"cik"`
	EntityName string `json:"entityName"`
	Facts      map[string]map[string]conceptFacts `json:"facts"`
}

type conceptFacts struct {
	Label string                       `json:"label"`
	Units map[string][]factObservation `json:"units"`
}

type factObservation struct {
	Start string  `json:"start"`
	End   string  `json:"end"`
	Val   float64 `json:"val"`
	FY    int     `json:"fy"`
	FP    string  `json:"fp"`
	Form  string  `json:"form"`
	Filed string  `json:"filed"`
}

// parseCompanyFacts flattens the taxonomy/unit nesting into the concept ->
// observations mapping the normalizer consumes. Observations with
// unparseable dates are dropped.
func parseCompanyFacts(symbol, cik string, raw *companyFactsResponse) *models.CompanyFacts {
	facts := &models.CompanyFacts{
		Symbol:      symbol,
		CIK:         cik,
		EntityName:  raw.EntityName,
		Facts:       make(map[string][]models.Observation),
		RetrievedAt: time.Now(),
	}

	for _, concepts := range raw.Facts {
		for concept, cf := range concepts {
			for unit, observations := range cf.Units {
				for _, o := range observations {
					end, err := time.Parse("2006-01-02", o.End)
					if err != nil {
						continue
					}
					obs := models.Observation{
						End:          end,
						Unit:         unit,
						Value:        o.Val,
						FiscalYear:   o.FY,
						FiscalPeriod: o.FP,
						Form:         o.Form,
					}
					if o.Start != "" {
						if start, err := time.Parse("2006-01-02", o.Start); err == nil {
							obs.Start = start
						}
					}
					if filed, err := time.Parse("2006-01-02", o.Filed); err == nil {
						obs.Filed = filed
					}
					facts.Facts[concept] = append(facts.Facts[concept], obs)
				}
			}
		}
	}

	return facts
}
