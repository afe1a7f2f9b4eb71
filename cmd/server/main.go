package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pcdash/review-dashboard/internal/adapters"
	"github.com/pcdash/review-dashboard/internal/analysis"
	"github.com/pcdash/review-dashboard/internal/cache"
	"github.com/pcdash/review-dashboard/internal/errors"
	"github.com/pcdash/review-dashboard/internal/monitoring"
	"github.com/pcdash/review-dashboard/internal/security"
)

// config holds server configuration, read from the environment
type config struct {
	Host      string
	Port      string
	DataDir   string
	StaticDir string
	CacheTTL  time.Duration
}

func loadConfig() config {
	cacheTTL := 15 * time.Minute
	if raw := os.Getenv("CACHE_TTL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			cacheTTL = d
		}
	}

	return config{
		Host:      getEnvOrDefault("HOST", "127.0.0.1"),
		Port:      getEnvOrDefault("PORT", "8787"),
		DataDir:   os.Getenv("DATA_DIR"),
		StaticDir: getEnvOrDefault("STATIC_DIR", "web"),
		CacheTTL:  cacheTTL,
	}
}

// reviewsData is the /api/reviews payload: the engine's summary plus the
// provenance metadata from the folder load.
type reviewsData struct {
	analysis.Summary
	SourceFolder string   `json:"sourceFolder"`
	XMLFiles     int      `json:"xmlFiles"`
	ParsedFiles  int      `json:"parsedFiles"`
	ParseErrors  []string `json:"parseErrors"`
}

// server bundles the handler dependencies
type server struct {
	cfg     config
	metrics *monitoring.Metrics
	logger  *monitoring.Logger
}

// resolveDir picks the review folder: the dir query parameter wins, then
// the configured default data directory.
func (s *server) resolveDir(c *gin.Context) (string, *errors.AppError) {
	dir := strings.TrimSpace(c.Query("dir"))
	if dir == "" {
		dir = s.cfg.DataDir
	}
	if dir == "" {
		return "", errors.NewValidationError(
			"No review folder specified. Provide ?dir=/path/to/xml-folder or set DATA_DIR.")
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.NewValidationError("invalid folder path: " + dir)
	}
	return abs, nil
}

// loadReviews runs the adapter and the aggregation engine for one folder.
func (s *server) loadReviews(c *gin.Context) (*reviewsData, *errors.AppError) {
	dir, appErr := s.resolveDir(c)
	if appErr != nil {
		return nil, appErr
	}

	start := time.Now()

	ds, err := adapters.LoadFolder(dir)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	s.metrics.IncrementFoldersLoaded()
	s.metrics.RecordParseResults(ds.ParsedFiles, len(ds.ParseErrors))
	s.logger.ParseLogger(ds.SourceFolder, ds.XMLFiles, ds.ParsedFiles, len(ds.ParseErrors))

	summary := analysis.Summarize(ds.Records)
	s.logger.SummaryLogger(ds.SourceFolder, summary.PaperCount, summary.ReviewCount,
		summary.ReviewerCount, time.Since(start), c.GetBool("cache_hit"))

	return &reviewsData{
		Summary:      summary,
		SourceFolder: ds.SourceFolder,
		XMLFiles:     ds.XMLFiles,
		ParsedFiles:  ds.ParsedFiles,
		ParseErrors:  ds.ParseErrors,
	}, nil
}

func (s *server) handleReviews(c *gin.Context) {
	data, appErr := s.loadReviews(c)
	if appErr != nil {
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, gin.H{"ok": false, "error": appErr.ErrBuilder.Msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "data": data})
}

func (s *server) handlePapers(c *gin.Context) {
	sortField := c.DefaultQuery("sort", "submission")
	if !analysis.IsPaperSortField(sortField) {
		appErr := errors.NewValidationError("unknown sort field: " + sortField)
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, gin.H{"ok": false, "error": appErr.ErrBuilder.Msg})
		return
	}

	order := c.DefaultQuery("order", "asc")
	if order != "asc" && order != "desc" {
		appErr := errors.NewValidationError("order must be asc or desc")
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, gin.H{"ok": false, "error": appErr.ErrBuilder.Msg})
		return
	}

	data, appErr := s.loadReviews(c)
	if appErr != nil {
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, gin.H{"ok": false, "error": appErr.ErrBuilder.Msg})
		return
	}

	analysis.SortPapers(data.Papers, sortField, order == "desc")

	c.JSON(http.StatusOK, gin.H{"ok": true, "data": gin.H{
		"paperCount": data.PaperCount,
		"papers":     data.Papers,
		"sort":       sortField,
		"order":      order,
	}})
}

// rowFilterQuery binds the review-row filter window from query params.
type rowFilterQuery struct {
	MinWords      *int     `form:"minWords" binding:"omitempty,gte=0"`
	MaxWords      *int     `form:"maxWords" binding:"omitempty,gte=0"`
	MinConfidence *float64 `form:"minConfidence" binding:"omitempty,gte=1,lte=5"`
	MaxConfidence *float64 `form:"maxConfidence" binding:"omitempty,gte=1,lte=5"`
	ShortOnly     bool     `form:"shortOnly"`
}

func (s *server) handleRows(c *gin.Context) {
	var q rowFilterQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		appErr := errors.NewValidationError("invalid filter parameters", err.Error())
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, gin.H{"ok": false, "error": appErr.ErrBuilder.Msg})
		return
	}

	filter := analysis.DefaultRowFilter()
	if q.MinWords != nil {
		filter.MinWords = *q.MinWords
	}
	if q.MaxWords != nil {
		filter.MaxWords = *q.MaxWords
	}
	if q.MinConfidence != nil {
		filter.MinConfidence = *q.MinConfidence
	}
	if q.MaxConfidence != nil {
		filter.MaxConfidence = *q.MaxConfidence
	}
	filter.ShortOnly = q.ShortOnly

	data, appErr := s.loadReviews(c)
	if appErr != nil {
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, gin.H{"ok": false, "error": appErr.ErrBuilder.Msg})
		return
	}

	rows := analysis.FilterReviewRows(data.ReviewRows, filter)

	c.JSON(http.StatusOK, gin.H{"ok": true, "data": gin.H{
		"rowCount": len(rows),
		"rows":     rows,
	}})
}

// histogramMetrics lists the paper metrics exposed for distribution plots.
var histogramMetrics = map[string]func(*analysis.PaperSummary) *float64{
	"avgScore":                func(p *analysis.PaperSummary) *float64 { return p.AvgScore },
	"scoreDiscrepancy":        func(p *analysis.PaperSummary) *float64 { return p.ScoreDiscrepancy },
	"avgConfidence":           func(p *analysis.PaperSummary) *float64 { return p.AvgConfidence },
	"confidenceWeightedScore": func(p *analysis.PaperSummary) *float64 { return p.ConfidenceWeightedScore },
	"reviewerAdjustedScore":   func(p *analysis.PaperSummary) *float64 { return p.ReviewerAdjustedScore },
}

func (s *server) handleHistogram(c *gin.Context) {
	metric := c.DefaultQuery("metric", "reviewerAdjustedScore")
	accessor, ok := histogramMetrics[metric]
	if !ok {
		appErr := errors.NewValidationError("unknown histogram metric: " + metric)
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, gin.H{"ok": false, "error": appErr.ErrBuilder.Msg})
		return
	}

	data, appErr := s.loadReviews(c)
	if appErr != nil {
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, gin.H{"ok": false, "error": appErr.ErrBuilder.Msg})
		return
	}

	values := make([]float64, 0, len(data.Papers))
	for i := range data.Papers {
		if v := accessor(&data.Papers[i]); v != nil {
			values = append(values, *v)
		}
	}

	counts := analysis.Histogram(values, analysis.ScoreHistogramMin,
		analysis.ScoreHistogramMax, analysis.DefaultHistogramBins)

	c.JSON(http.StatusOK, gin.H{"ok": true, "data": gin.H{
		"metric":     metric,
		"min":        analysis.ScoreHistogramMin,
		"max":        analysis.ScoreHistogramMax,
		"counts":     counts,
		"barHeights": analysis.BarHeights(counts),
	}})
}

// setupRouter wires the middleware chain and routes. Split out of main
// so tests can exercise the full handler stack.
func setupRouter(cfg config, metrics *monitoring.Metrics, logger *monitoring.Logger) *gin.Engine {
	s := &server{cfg: cfg, metrics: metrics, logger: logger}

	r := gin.New()

	secConfig := security.DefaultConfig()
	sec := security.NewMiddleware(secConfig)
	if err := r.SetTrustedProxies(secConfig.TrustedProxies); err != nil {
		slog.Warn("Failed to set trusted proxies", "error", err)
	}

	r.Use(monitoring.RequestIDMiddleware())
	r.Use(monitoring.MonitoringMiddleware(metrics, logger))
	r.Use(errors.ErrorHandler())
	r.Use(errors.RecoveryHandler())
	r.Use(sec.SecurityHeaders)
	r.Use(sec.RateLimitByIP)
	r.Use(sec.CORSConfig())

	appCache := cache.NewCache(cfg.CacheTTL)
	r.Use(appCache.Middleware(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   "1.0.0",
			"metrics":   metrics.GetStats(),
		})
	})

	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, metrics.GetStats())
	})

	r.GET("/cache/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, appCache.Stats())
	})

	r.GET("/api/reviews", s.handleReviews)
	r.GET("/api/reviews/papers", s.handlePapers)
	r.GET("/api/reviews/rows", s.handleRows)
	r.GET("/api/reviews/histogram", s.handleHistogram)

	// Serve the dashboard frontend when a static directory exists.
	if cfg.StaticDir != "" {
		if info, err := os.Stat(cfg.StaticDir); err == nil && info.IsDir() {
			fileServer := http.FileServer(http.Dir(cfg.StaticDir))
			r.NoRoute(func(c *gin.Context) {
				fileServer.ServeHTTP(c.Writer, c.Request)
			})
		}
	}

	return r
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := loadConfig()

	appMetrics := monitoring.NewMetrics()
	appLogger := monitoring.NewLogger()

	r := setupRouter(cfg, appMetrics, appLogger)

	srv := &http.Server{
		Addr:    cfg.Host + ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("Starting server", "host", cfg.Host, "port", cfg.Port,
			"data_dir", cfg.DataDir, "static_dir", cfg.StaticDir)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
