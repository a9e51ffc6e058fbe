package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/interfaces"
	"github.com/bobmcallan/fathom/internal/models"
	"github.com/bobmcallan/fathom/internal/services/analyzer"
)

// handleGetVersion implements the get_version tool
func handleGetVersion() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := fmt.Sprintf("Fathom MCP Server\nVersion: %s\nBuild: %s\nCommit: %s\nStatus: OK",
			common.GetVersion(), common.GetBuild(), common.GetGitCommit())
		return textResult(result), nil
	}
}

// handleAnalyzeStock implements the analyze_stock tool
func handleAnalyzeStock(analysisService interfaces.AnalysisService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, err := request.RequireString("symbol")
		if err != nil || symbol == "" {
			return errorResult("Error: symbol parameter is required"), nil
		}
		force := request.GetBool("force", false)

		analysis, err := analysisService.AnalyzeStock(ctx, symbol, force)
		if err != nil {
			if errors.Is(err, analyzer.ErrInsufficientData) {
				return errorResult(fmt.Sprintf("No usable financial data for %s", strings.ToUpper(symbol))), nil
			}
			logger.Error().Err(err).Str("symbol", symbol).Msg("Stock analysis failed")
			return errorResult(fmt.Sprintf("Analysis error: %v", err)), nil
		}

		return textResult(formatAnalysis(analysis)), nil
	}
}

// handleGetHealthScore implements the get_health_score tool
func handleGetHealthScore(analysisService interfaces.AnalysisService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, err := request.RequireString("symbol")
		if err != nil || symbol == "" {
			return errorResult("Error: symbol parameter is required"), nil
		}

		analysis, err := analysisService.GetAnalysis(ctx, symbol)
		if err != nil {
			return errorResult(fmt.Sprintf("No stored analysis for %s - run analyze_stock first", strings.ToUpper(symbol))), nil
		}
		if analysis.HealthScore == nil {
			return errorResult(fmt.Sprintf("Analysis for %s has no health score", strings.ToUpper(symbol))), nil
		}

		return textResult(formatHealthScore(analysis.Symbol, analysis.HealthScore)), nil
	}
}

// handleComputeCompositeScore implements the compute_composite_score tool
func handleComputeCompositeScore(scoreService interfaces.ScoreService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, err := request.RequireString("symbol")
		if err != nil || symbol == "" {
			return errorResult("Error: symbol parameter is required"), nil
		}
		force := request.GetBool("force", false)

		result, err := scoreService.ComputeCompositeScore(ctx, symbol, force)
		if err != nil {
			if errors.Is(err, analyzer.ErrInsufficientData) {
				return errorResult(fmt.Sprintf("No usable financial data for %s", strings.ToUpper(symbol))), nil
			}
			logger.Error().Err(err).Str("symbol", symbol).Msg("Composite score failed")
			return errorResult(fmt.Sprintf("Score error: %v", err)), nil
		}

		return textResult(formatCompositeScore(result)), nil
	}
}

// handleListSymbols implements the list_symbols tool
func handleListSymbols(storageManager interfaces.StorageManager, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbols, err := storageManager.AnalysisStorage().ListAnalyzedSymbols(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("List symbols failed")
			return errorResult(fmt.Sprintf("Error listing symbols: %v", err)), nil
		}
		if len(symbols) == 0 {
			return textResult("No analyzed symbols yet. Use analyze_stock to add one."), nil
		}
		return textResult("Analyzed symbols:\n- " + strings.Join(symbols, "\n- ")), nil
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}

// formatAnalysis renders a stock analysis as markdown for MCP clients.
func formatAnalysis(analysis *models.StockAnalysis) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s Fundamental Analysis\n\n", analysis.Symbol)
	if analysis.HealthScore != nil {
		fmt.Fprintf(&b, "**Health Score:** %.0f/100 (%s)\n\n", analysis.HealthScore.Overall, analysis.HealthScore.Grade)
	}

	if len(analysis.RedFlags) > 0 {
		b.WriteString("## Red Flags\n\n")
		for _, f := range analysis.RedFlags {
			fmt.Fprintf(&b, "- **%s** (%s): %s\n", f.Title, f.Severity, f.Explanation)
		}
		b.WriteString("\n")
	}

	if len(analysis.GreenFlags) > 0 {
		b.WriteString("## Green Flags\n\n")
		for _, f := range analysis.GreenFlags {
			fmt.Fprintf(&b, "- **%s** (%s): %s\n", f.Title, f.Strength, f.Explanation)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Key Ratios\n\n")
	b.WriteString("| Ratio | Value | Rating |\n|---|---|---|\n")
	for _, r := range analysis.Ratios {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", r.Name, formatRatioValue(r), r.Bucket)
	}
	b.WriteString("\n")

	if len(analysis.Trends) > 0 {
		b.WriteString("## Trends\n\n")
		for _, t := range analysis.Trends {
			if t.CAGR != nil {
				fmt.Fprintf(&b, "- %s: %s, %.1f%% CAGR\n", t.Metric, t.Direction, *t.CAGR*100)
			} else {
				fmt.Fprintf(&b, "- %s: %s\n", t.Metric, t.Direction)
			}
		}
	}

	return b.String()
}

func formatRatioValue(r models.Ratio) string {
	if r.Value == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *r.Value)
}

// formatHealthScore renders a health score breakdown as markdown.
func formatHealthScore(symbol string, hs *models.HealthScore) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s Financial Health\n\n", symbol)
	fmt.Fprintf(&b, "**Overall:** %.0f/100 (%s)\n\n", hs.Overall, hs.Grade)

	b.WriteString("| Category | Score | Weight |\n|---|---|---|\n")
	for _, c := range hs.Categories {
		fmt.Fprintf(&b, "| %s | %.0f | %.0f%% |\n", c.Name, c.Score, c.Weight)
	}
	b.WriteString("\n")

	if len(hs.KeyStrengths) > 0 {
		b.WriteString("**Strengths:**\n")
		for _, f := range hs.KeyStrengths {
			fmt.Fprintf(&b, "- %s\n", f.Title)
		}
		b.WriteString("\n")
	}
	if len(hs.KeyWeaknesses) > 0 {
		b.WriteString("**Weaknesses:**\n")
		for _, f := range hs.KeyWeaknesses {
			fmt.Fprintf(&b, "- %s\n", f.Title)
		}
	}

	return b.String()
}

// formatCompositeScore renders a composite score as markdown.
func formatCompositeScore(score *models.CompositeScore) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s Composite Score\n\n", score.Symbol)
	fmt.Fprintf(&b, "**Overall:** %.1f/100 - %s\n\n", score.Overall, strings.ReplaceAll(string(score.Recommendation), "_", " "))
	fmt.Fprintf(&b, "Business Quality: %.1f/60 | Timing: %.1f/40\n\n", score.BusinessQuality, score.Timing)

	b.WriteString("| Input | Score |\n|---|---|\n")
	fmt.Fprintf(&b, "| Financial Health | %.0f |\n", score.FinancialHealth)
	fmt.Fprintf(&b, "| Moat | %.0f |\n", score.Moat)
	fmt.Fprintf(&b, "| Growth | %.0f |\n", score.Growth)
	fmt.Fprintf(&b, "| Valuation | %.0f |\n", score.Valuation)
	fmt.Fprintf(&b, "| Technical | %.0f |\n", score.Technical)

	if score.Commentary != "" {
		fmt.Fprintf(&b, "\n%s\n", score.Commentary)
	}

	return b.String()
}
