// Package gemini provides a client for the Google Gemini API
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/interfaces"
	"github.com/bobmcallan/fathom/internal/models"
)

const (
	DefaultModel = "gemini-3-flash-preview"
)

// Client implements the GeminiClient interface
type Client struct {
	client *genai.Client
	model  string
	logger *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		client: genaiClient,
		model:  DefaultModel,
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// GenerateContent generates AI content from a prompt
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug().Str("model", c.model).Msg("Generating content")

	contents := genai.Text(prompt)
	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(result)
}

// SummarizeScore generates a short qualitative commentary for a computed
// composite score. The commentary is enrichment only: scoring never
// depends on it.
func (c *Client) SummarizeScore(ctx context.Context, analysis *models.StockAnalysis, score *models.CompositeScore) (string, error) {
	prompt := buildScorePrompt(analysis, score)
	return c.GenerateContent(ctx, prompt)
}

// extractTextFromResponse extracts text from a generate content response
func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	text := ""
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}

	return text, nil
}

// buildScorePrompt creates a prompt summarizing the computed metrics
func buildScorePrompt(analysis *models.StockAnalysis, score *models.CompositeScore) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `Summarize the investment picture for %s in 3-4 sentences for a retail investor.
Base the summary strictly on the metrics below. Do not invent figures.

Composite Score: %.1f/100 (%s)
- Business Quality: %.1f/60
- Timing: %.1f/40
- Financial Health: %.0f/100
`, score.Symbol, score.Overall, score.Recommendation, score.BusinessQuality, score.Timing, score.FinancialHealth)

	if analysis != nil && analysis.HealthScore != nil {
		fmt.Fprintf(&sb, "- Health Grade: %s\n", analysis.HealthScore.Grade)
		for _, f := range analysis.HealthScore.KeyStrengths {
			fmt.Fprintf(&sb, "- Strength: %s\n", f.Title)
		}
		for _, f := range analysis.HealthScore.KeyWeaknesses {
			fmt.Fprintf(&sb, "- Weakness: %s\n", f.Title)
		}
	}

	sb.WriteString("\nKeep the tone factual and balanced.")
	return sb.String()
}

// Ensure Client implements GeminiClient
var _ interfaces.GeminiClient = (*Client)(nil)
