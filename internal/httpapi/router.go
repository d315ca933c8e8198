// Package httpapi serves a read-only view of the restaurant over HTTP:
// menu, stock, budget and per-user order history.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/hammamikhairi/ottodine/internal/domain"
	"github.com/hammamikhairi/ottodine/internal/logger"
)

// Board is the read side of the engine.
type Board interface {
	Menu() []domain.Dish
	Stock() []domain.Ingredient
	Balance() decimal.Decimal
	History(user string) []domain.Order
}

// Option configures the router.
type Option func(*config)

type config struct {
	origins []string
}

// WithAllowedOrigins restricts CORS to the given origins. The default
// allows any origin.
func WithAllowedOrigins(origins ...string) Option {
	return func(c *config) {
		c.origins = origins
	}
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(board Board, log *logger.Logger, opts ...Option) *gin.Engine {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	corsCfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}
	if len(cfg.origins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.origins
	}
	r.Use(cors.New(corsCfg))

	h := &handler{board: board}
	r.GET("/health", h.health)
	r.GET("/menu", h.menu)
	r.GET("/stock", h.stock)
	r.GET("/budget", h.budget)
	r.GET("/orders/:user", h.orders)
	return r
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Microsecond))
	}
}

// Server runs the router on an address until shut down.
type Server struct {
	srv *http.Server
	log *logger.Logger
}

// NewServer wraps the router in an http.Server listening on addr.
func NewServer(addr string, board Board, log *logger.Logger, opts ...Option) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(board, log, opts...),
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log,
	}
}

// Start listens in the background. Errors other than a clean shutdown are
// logged.
func (s *Server) Start() {
	go func() {
		s.log.Info("menu board listening on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("http server: %v", err)
		}
	}()
}

// Shutdown stops the server, waiting for in-flight requests until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}
