package app

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createGetVersionTool returns the get_version tool definition
func createGetVersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the Fathom MCP server version and status. Use this to verify connectivity."),
	)
}

// createAnalyzeStockTool returns the analyze_stock tool definition
func createAnalyzeStockTool() mcp.Tool {
	return mcp.NewTool("analyze_stock",
		mcp.WithDescription("Run the full fundamental analysis pipeline for a stock: normalized financial statements, ratio catalogue, red/green flags, multi-year trends and the 0-100 financial health score."),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Stock ticker symbol (e.g., 'AAPL', 'MSFT')"),
		),
		mcp.WithBoolean("force",
			mcp.Description("Force a re-fetch of company facts even if stored data is fresh (default: false)"),
		),
	)
}

// createGetHealthScoreTool returns the get_health_score tool definition
func createGetHealthScoreTool() mcp.Tool {
	return mcp.NewTool("get_health_score",
		mcp.WithDescription("Get the stored financial health score for a stock: overall 0-100 score, letter grade, per-category breakdown and the top strengths and weaknesses."),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Stock ticker symbol (e.g., 'AAPL', 'MSFT')"),
		),
	)
}

// createComputeCompositeScoreTool returns the compute_composite_score tool definition
func createComputeCompositeScoreTool() mcp.Tool {
	return mcp.NewTool("compute_composite_score",
		mcp.WithDescription("Compute the composite investability score for a stock: business quality (financial health, moat, growth) plus timing (valuation, technicals) with a buy/hold/sell recommendation."),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Stock ticker symbol (e.g., 'AAPL', 'MSFT')"),
		),
		mcp.WithBoolean("force",
			mcp.Description("Force recomputation even if a fresh score exists (default: false)"),
		),
	)
}

// createListSymbolsTool returns the list_symbols tool definition
func createListSymbolsTool() mcp.Tool {
	return mcp.NewTool("list_symbols",
		mcp.WithDescription("List all symbols with a stored analysis."),
	)
}
