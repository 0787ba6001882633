package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spacesedan/confessit/internal/logging"
	"github.com/spacesedan/confessit/internal/metrics"
	"github.com/spacesedan/confessit/internal/models"
	"github.com/spacesedan/confessit/internal/processing"
	"github.com/spacesedan/confessit/internal/utils"
)

//go:embed templates/*.html static/*
var assets embed.FS

// Server is the web front end. It owns the single confession buffer that
// fetch and manual entry replace and that analysis reads.
type Server struct {
	router      *gin.Engine
	httpServer  *http.Server
	fetcher     *processing.Fetcher
	analyzer    *processing.Analyzer
	confessions *utils.Buffer[models.Confession]
	sourceUp    *atomic.Bool
}

type Option func(*Server)

// WithSourceHealth reports the flag maintained by a source health monitor
// on /healthz.
func WithSourceHealth(healthy *atomic.Bool) Option {
	return func(s *Server) {
		s.sourceUp = healthy
	}
}

func New(addr string, fetcher *processing.Fetcher, analyzer *processing.Analyzer, opts ...Option) (*Server, error) {
	tmpl, err := template.ParseFS(assets, "templates/*.html")
	if err != nil {
		return nil, err
	}
	static, err := fs.Sub(assets, "static")
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLogger())
	router.SetHTMLTemplate(tmpl)
	router.StaticFS("/static", http.FS(static))

	s := &Server{
		router:      router,
		fetcher:     fetcher,
		analyzer:    analyzer,
		confessions: utils.NewBuffer[models.Confession](),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() {
	s.router.GET("/", s.handleIndex)
	s.router.POST("/confessions/manual", s.handleManualEntry)
	s.router.POST("/confessions/fetch", s.handleFetch)
	s.router.POST("/analyze", s.handleAnalyze)
	s.router.GET("/analyze/charts", s.handleCharts)
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api")
	{
		api.GET("/confessions", s.handleListConfessions)
		api.POST("/analyze", s.handleAPIAnalyze)
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	slog.Info("[Server] Listening", slog.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

const REQUEST_ID_HEADER = "X-Request-ID"

// requestID tags each request with the caller's X-Request-ID or a new uuid and
// carries it on the request context for logging.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(REQUEST_ID_HEADER)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(REQUEST_ID_HEADER, id)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		duration := time.Since(start)
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(duration.Seconds())

		slog.InfoContext(c.Request.Context(), "[Server] Request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", duration))
	}
}
