// Package app wires configuration, storage, clients and services into a
// single application core shared by the server binary and its tests.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/fathom/internal/clients/gemini"
	"github.com/bobmcallan/fathom/internal/clients/marketdata"
	"github.com/bobmcallan/fathom/internal/clients/moat"
	"github.com/bobmcallan/fathom/internal/clients/secfacts"
	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/interfaces"
	"github.com/bobmcallan/fathom/internal/services/analyzer"
	"github.com/bobmcallan/fathom/internal/services/score"
	"github.com/bobmcallan/fathom/internal/storage"
)

// App holds all initialized services, clients, and the MCP server.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	FactsClient      interfaces.FactsClient
	MarketDataClient interfaces.MarketDataClient
	MoatClient       interfaces.MoatClient
	GeminiClient     interfaces.GeminiClient
	AnalysisService  interfaces.AnalysisService
	ScoreService     interfaces.ScoreService
	MCPServer        *server.MCPServer
	StartupTime      time.Time

	schedulerStop   func()
	warmCacheCancel context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes storage, clients, services and the MCP server.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	// Load configuration - check provided path, FATHOM_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("FATHOM_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "fathom.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/fathom.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative badger path to binary directory
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	ctx := context.Background()

	// SEC requires a contact User-Agent on every request
	secUserAgent := config.Clients.SECFacts.UserAgent
	if secUserAgent == "" {
		logger.Warn().Msg("SEC user agent not configured - set clients.secfacts.user_agent or FATHOM_SEC_USER_AGENT")
		secUserAgent = "fathom/" + common.GetVersion()
	}

	factsOpts := []secfacts.ClientOption{
		secfacts.WithLogger(logger),
		secfacts.WithRateLimit(config.Clients.SECFacts.RateLimit),
		secfacts.WithTimeout(config.Clients.SECFacts.GetTimeout()),
	}
	if config.Clients.SECFacts.BaseURL != "" {
		factsOpts = append(factsOpts, secfacts.WithBaseURL(config.Clients.SECFacts.BaseURL))
	}
	factsClient := secfacts.NewClient(secUserAgent, factsOpts...)

	var marketClient interfaces.MarketDataClient
	if config.Clients.MarketData.APIKey != "" {
		opts := []marketdata.ClientOption{
			marketdata.WithLogger(logger),
			marketdata.WithRateLimit(config.Clients.MarketData.RateLimit),
			marketdata.WithTimeout(config.Clients.MarketData.GetTimeout()),
		}
		if config.Clients.MarketData.BaseURL != "" {
			opts = append(opts, marketdata.WithBaseURL(config.Clients.MarketData.BaseURL))
		}
		marketClient = marketdata.NewClient(config.Clients.MarketData.APIKey, opts...)
	} else {
		logger.Warn().Msg("Market data API key not configured - timing scores will be neutral")
	}

	var moatClient interfaces.MoatClient
	if config.Clients.Moat.BaseURL != "" {
		moatClient = moat.NewClient(config.Clients.Moat.BaseURL,
			moat.WithLogger(logger),
			moat.WithTimeout(config.Clients.Moat.GetTimeout()),
		)
	}

	var geminiClient interfaces.GeminiClient
	if config.Clients.Gemini.APIKey != "" {
		gc, err := gemini.NewClient(ctx, config.Clients.Gemini.APIKey,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client - scores ship without commentary")
		} else {
			geminiClient = gc
		}
	}

	analysisService := analyzer.NewService(storageManager, factsClient, logger)
	scoreService := score.NewService(storageManager, analysisService, marketClient, moatClient, geminiClient, logger)

	mcpServer := server.NewMCPServer(
		"fathom",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	a := &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		FactsClient:      factsClient,
		MarketDataClient: marketClient,
		MoatClient:       moatClient,
		GeminiClient:     geminiClient,
		AnalysisService:  analysisService,
		ScoreService:     scoreService,
		MCPServer:        mcpServer,
		StartupTime:      startupStart,
	}

	a.registerTools()

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
// Shutdown order: stop scheduler, cancel warm cache, close storage.
func (a *App) Close() {
	if a.schedulerStop != nil {
		a.schedulerStop()
		a.schedulerStop = nil
	}
	if a.warmCacheCancel != nil {
		a.warmCacheCancel()
		a.warmCacheCancel = nil
	}
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}

// StartWarmCache launches the background cache warming goroutine.
func (a *App) StartWarmCache() {
	warmCtx, warmCancel := context.WithTimeout(context.Background(), 10*time.Minute)
	a.warmCacheCancel = warmCancel
	go func() {
		defer warmCancel()
		warmCache(warmCtx, a.AnalysisService, a.ScoreService, a.Config.Symbols, a.Logger)
	}()
}

// registerTools registers all MCP tools on the App's MCPServer.
func (a *App) registerTools() {
	s := a.MCPServer
	logger := a.Logger

	s.AddTool(createGetVersionTool(), handleGetVersion())
	s.AddTool(createAnalyzeStockTool(), handleAnalyzeStock(a.AnalysisService, logger))
	s.AddTool(createGetHealthScoreTool(), handleGetHealthScore(a.AnalysisService, logger))
	s.AddTool(createComputeCompositeScoreTool(), handleComputeCompositeScore(a.ScoreService, logger))
	s.AddTool(createListSymbolsTool(), handleListSymbols(a.Storage, logger))
}
