package server

import (
	"errors"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/bobmcallan/fathom/internal/common"
	"github.com/bobmcallan/fathom/internal/services/analyzer"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/diagnostics", s.handleDiagnostics)
	mux.HandleFunc("/api/mcp/tools", s.handleToolCatalog)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)
	mux.HandleFunc("/debug/memstats", s.handleMemstats)

	// Analysis
	mux.HandleFunc("/api/analyze", s.handleAnalyze)
	mux.HandleFunc("/api/analysis/", s.routeAnalysis)
	mux.HandleFunc("/api/symbols", s.handleSymbols)

	// Facts
	mux.HandleFunc("/api/facts/", s.handleFacts)

	// Scoring
	mux.HandleFunc("/api/score", s.handleScore)
	mux.HandleFunc("/api/score/", s.handleScoreGet)
}

// routeAnalysis dispatches /api/analysis/{symbol}/* to the appropriate handler.
func (s *Server) routeAnalysis(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/analysis/")
	if path == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required in path")
		return
	}

	parts := strings.SplitN(path, "/", 2)
	symbol := parts[0]
	subpath := ""
	if len(parts) > 1 {
		subpath = parts[1]
	}

	switch subpath {
	case "":
		if r.Method == http.MethodPost {
			s.handleAnalysisRun(w, r, symbol)
			return
		}
		s.handleAnalysisGet(w, r, symbol)
	case "chart":
		s.handleAnalysisChart(w, r, symbol)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// --- Analysis handlers ---

// handleAnalyze handles POST /api/analyze: runs the full pipeline for a symbol.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req AnalyzeRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	analysis, err := s.app.AnalysisService.AnalyzeStock(r.Context(), req.Symbol, req.Force)
	if err != nil {
		if errors.Is(err, analyzer.ErrInsufficientData) {
			WriteErrorWithCode(w, http.StatusUnprocessableEntity, err.Error(), "insufficient_data")
			return
		}
		s.logger.Error().Err(err).Str("symbol", req.Symbol).Msg("Stock analysis failed")
		WriteError(w, http.StatusBadGateway, "Analysis failed: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, analysis)
}

// handleAnalysisRun handles POST /api/analysis/{symbol}: runs the pipeline
// for the path symbol. ?force=true bypasses stored-facts freshness.
func (s *Server) handleAnalysisRun(w http.ResponseWriter, r *http.Request, symbol string) {
	force := r.URL.Query().Get("force") == "true"

	analysis, err := s.app.AnalysisService.AnalyzeStock(r.Context(), symbol, force)
	if err != nil {
		if errors.Is(err, analyzer.ErrInsufficientData) {
			WriteErrorWithCode(w, http.StatusUnprocessableEntity, err.Error(), "insufficient_data")
			return
		}
		s.logger.Error().Err(err).Str("symbol", symbol).Msg("Stock analysis failed")
		WriteError(w, http.StatusBadGateway, "Analysis failed: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, analysis)
}

// handleAnalysisGet handles GET /api/analysis/{symbol}: returns the stored analysis.
func (s *Server) handleAnalysisGet(w http.ResponseWriter, r *http.Request, symbol string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	analysis, err := s.app.AnalysisService.GetAnalysis(r.Context(), symbol)
	if err != nil {
		WriteError(w, http.StatusNotFound, "No stored analysis for "+strings.ToUpper(symbol))
		return
	}

	WriteJSON(w, http.StatusOK, analysis)
}

// handleAnalysisChart handles GET /api/analysis/{symbol}/chart: renders the
// revenue and net income trend chart as PNG.
func (s *Server) handleAnalysisChart(w http.ResponseWriter, r *http.Request, symbol string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	analysis, err := s.app.AnalysisService.GetAnalysis(r.Context(), symbol)
	if err != nil {
		WriteError(w, http.StatusNotFound, "No stored analysis for "+strings.ToUpper(symbol))
		return
	}

	png, err := analyzer.RenderTrendChart(analysis)
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, "Chart unavailable: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// handleSymbols handles GET /api/symbols: lists symbols with a stored analysis.
func (s *Server) handleSymbols(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbols, err := s.app.Storage.AnalysisStorage().ListAnalyzedSymbols(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("List symbols failed")
		WriteError(w, http.StatusInternalServerError, "Failed to list symbols")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"symbols": symbols,
		"count":   len(symbols),
	})
}

// handleFacts handles GET /api/facts/{symbol}: returns stored raw company facts.
func (s *Server) handleFacts(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := PathParam(r, "/api/facts/", "")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required in path")
		return
	}

	facts, err := s.app.Storage.FactsStorage().GetCompanyFacts(r.Context(), strings.ToUpper(symbol))
	if err != nil {
		WriteError(w, http.StatusNotFound, "No stored facts for "+strings.ToUpper(symbol))
		return
	}

	WriteJSON(w, http.StatusOK, facts)
}

// --- Score handlers ---

// handleScore handles POST /api/score: computes the composite score for a symbol.
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req ScoreRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	score, err := s.app.ScoreService.ComputeCompositeScore(r.Context(), req.Symbol, req.Force)
	if err != nil {
		if errors.Is(err, analyzer.ErrInsufficientData) {
			WriteErrorWithCode(w, http.StatusUnprocessableEntity, err.Error(), "insufficient_data")
			return
		}
		s.logger.Error().Err(err).Str("symbol", req.Symbol).Msg("Composite score failed")
		WriteError(w, http.StatusBadGateway, "Score failed: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, score)
}

// handleScoreGet handles GET /api/score/{symbol}: returns the composite
// score, computing it when no fresh stored copy exists. ?force=true forces
// recomputation.
func (s *Server) handleScoreGet(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := PathParam(r, "/api/score/", "")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required in path")
		return
	}
	force := r.URL.Query().Get("force") == "true"

	score, err := s.app.ScoreService.ComputeCompositeScore(r.Context(), symbol, force)
	if err != nil {
		if errors.Is(err, analyzer.ErrInsufficientData) {
			WriteErrorWithCode(w, http.StatusUnprocessableEntity, err.Error(), "insufficient_data")
			return
		}
		s.logger.Error().Err(err).Str("symbol", symbol).Msg("Composite score failed")
		WriteError(w, http.StatusBadGateway, "Score failed: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, score)
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	cfg := s.app.Config

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"environment":           cfg.Environment,
		"symbols":               cfg.Symbols,
		"storage_backend":       cfg.Storage.Backend,
		"storage_address":       cfg.Storage.Address,
		"storage_namespace":     cfg.Storage.Namespace,
		"storage_database":      cfg.Storage.Database,
		"storage_path":          cfg.Storage.Path,
		"logging_level":         cfg.Logging.Level,
		"scheduler_enabled":     cfg.Scheduler.Enabled,
		"scheduler_spec":        cfg.Scheduler.Spec,
		"sec_user_agent":        cfg.Clients.SECFacts.UserAgent,
		"marketdata_api_key":    maskSecret(cfg.Clients.MarketData.APIKey),
		"marketdata_configured": s.app.MarketDataClient != nil,
		"moat_configured":       s.app.MoatClient != nil,
		"gemini_configured":     s.app.GeminiClient != nil,
	})
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	uptime := time.Since(s.app.StartupTime).Round(time.Second)

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"version":    common.GetVersion(),
		"build":      common.GetBuild(),
		"commit":     common.GetGitCommit(),
		"uptime":     uptime.String(),
		"started_at": s.app.StartupTime,
		"goroutines": runtime.NumGoroutine(),
	})
}

func (s *Server) handleToolCatalog(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, buildToolCatalog())
}

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}

func (s *Server) handleMemstats(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"heap_alloc_bytes": m.HeapAlloc,
		"heap_inuse_bytes": m.HeapInuse,
		"sys_bytes":        m.Sys,
		"num_gc":           m.NumGC,
		"heap_alloc_mb":    float64(m.HeapAlloc) / 1024 / 1024,
	})
}

// toolCatalogEntry describes one MCP tool for the REST catalog endpoint.
type toolCatalogEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// buildToolCatalog lists the MCP tools exposed at /mcp so REST clients can
// discover them without speaking the MCP protocol.
func buildToolCatalog() []toolCatalogEntry {
	return []toolCatalogEntry{
		{Name: "get_version", Description: "Get the server version and status"},
		{Name: "analyze_stock", Description: "Run the full fundamental analysis pipeline for a stock"},
		{Name: "get_health_score", Description: "Get the stored financial health score for a stock"},
		{Name: "compute_composite_score", Description: "Compute the composite investability score for a stock"},
		{Name: "list_symbols", Description: "List all symbols with a stored analysis"},
	}
}
