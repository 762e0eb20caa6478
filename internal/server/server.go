// Package server implements the decicalc HTTP API.
package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/zephyrtronium/decicalc"
	"github.com/zephyrtronium/decicalc/internal/docstore"
)

// Config configures a Server.
type Config struct {
	// Engine are the options for the shared evaluation context.
	Engine []decicalc.ContextOption
	// EvalTimeout bounds each evaluation. Zero means no bound.
	EvalTimeout time.Duration
	// Store backs the document routes. If nil, those routes are not
	// registered.
	Store *docstore.Store
	// Logger receives request logs. If nil, slog.Default is used.
	Logger *slog.Logger
	// RateLimit is the sustained number of API requests per second allowed
	// across all clients, and RateBurst the number allowed at once. A zero
	// RateLimit disables limiting.
	RateLimit float64
	RateBurst int
	// Registry receives the server's metrics and is served on /metrics. If
	// nil, a new registry is used.
	Registry *prometheus.Registry
}

// Server serves the HTTP API.
type Server struct {
	// mu guards vars. Evaluations run on clones of vars, so only variable
	// writes and clones hold it.
	mu   sync.Mutex
	vars *decicalc.Context

	timeout time.Duration
	store   *docstore.Store
	log     *slog.Logger
	limiter *rate.Limiter
	reg     *prometheus.Registry
	metrics *metrics
	router  *gin.Engine

	// evaluate evaluates on a private context.
	evaluate func(ctx *decicalc.Context, expr string, steps bool) decicalc.Result
}

// New creates a server.
func New(cfg Config) *Server {
	s := &Server{
		vars:     decicalc.NewContext(cfg.Engine...),
		timeout:  cfg.EvalTimeout,
		store:    cfg.Store,
		log:      cfg.Logger,
		reg:      cfg.Registry,
		evaluate: (*decicalc.Context).Evaluate,
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.reg == nil {
		s.reg = prometheus.NewRegistry()
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	s.metrics = newMetrics(s.reg)
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler for the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests())

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	if s.limiter != nil {
		api.Use(s.limit)
	}
	api.POST("/evaluate", s.evaluateExpr)
	api.GET("/variables", s.listVars)
	api.GET("/variables/:name", s.getVar)
	api.PUT("/variables/:name", s.setVar)
	api.POST("/text", s.transformText)
	if s.store != nil {
		docs := api.Group("/docs/:collection")
		docs.GET("", s.listDocs)
		docs.POST("", s.addDoc)
		docs.GET("/:id", s.getDoc)
		docs.PUT("/:id", s.putDoc)
		docs.DELETE("/:id", s.deleteDoc)
	}
	return r
}

// logRequests logs each request and counts it by route.
func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		s.metrics.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(status)).Inc()
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		s.log.LogAttrs(c.Request.Context(), level, "request",
			slog.String("method", c.Request.Method),
			slog.String("route", route),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
		)
	}
}

// limit rejects requests beyond the rate limit.
func (s *Server) limit(c *gin.Context) {
	if !s.limiter.Allow() {
		s.metrics.limited.Inc()
		c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limit exceeded"})
		return
	}
	c.Next()
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
