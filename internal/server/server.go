package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/tokencrypt-go/internal/auth"
	"github.com/tokencrypt-go/internal/cache"
	"github.com/tokencrypt-go/internal/config"
	"github.com/tokencrypt-go/internal/dao"
	"github.com/tokencrypt-go/internal/encryption"
	"github.com/tokencrypt-go/internal/handler"
	"github.com/tokencrypt-go/internal/storage"
)

// maxBodyBytes bounds request bodies for the JSON API
const maxBodyBytes = 8 << 20

// Server represents the HTTP server
type Server struct {
	cfg        *config.Config
	store      *storage.Store
	engine     *gin.Engine
	httpServer *http.Server
	cache      *cache.Cache
	pipeline   *encryption.Pipeline
	jwtAuth    *auth.JWTAuth
	userDAO    *dao.UserDAO
	historyDAO *dao.HistoryDAO
}

// New creates a new server instance
func New(cfg *config.Config) (*Server, error) {
	pipeline, err := encryption.NewPipelineForSuite(cfg.Crypto.Compression)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	s := &Server{
		cfg:        cfg,
		store:      store,
		pipeline:   pipeline,
		jwtAuth:    auth.NewJWTAuth(cfg.JWTSecret, cfg.JWTExpiration()),
		userDAO:    dao.NewUserDAO(store),
		historyDAO: dao.NewHistoryDAO(store),
	}
	if cfg.Cache.Enable {
		s.cache = cache.NewCache(cfg.CacheTTL(), cfg.Cache.MaxSize)
	}

	if err := s.userDAO.EnsureDefaultUser(); err != nil {
		log.Warn().Err(err).Msg("Failed to ensure default user")
	}

	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(TraceMiddleware())
	r.Use(LoggerMiddleware())
	r.Use(CORSMiddleware())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
		c.Next()
	})

	r.GET("/health", HealthHandler(s.pipeline.Compression()))
	r.GET("/ready", ReadyHandler(s.store))

	apiHandler := handler.NewAPIHandler(s.jwtAuth, s.pipeline, s.userDAO, s.historyDAO, s.cache)

	api := r.Group("/api")
	api.POST("/login", apiHandler.Login)

	protected := api.Group("")
	protected.Use(AuthMiddleware(s.jwtAuth))
	protected.POST("/encrypt", apiHandler.Encrypt)
	protected.POST("/decrypt", apiHandler.Decrypt)
	protected.GET("/history", apiHandler.History)
	protected.POST("/password", apiHandler.UpdatePassword)

	s.engine = r
}

// Handler returns the root handler, wrapped for h2c when enabled
func (s *Server) Handler() http.Handler {
	if !s.cfg.IsH2CEnabled() {
		return s.engine
	}
	h2s := &http2.Server{
		MaxConcurrentStreams: 1000,
		IdleTimeout:          120 * time.Second,
	}
	return h2c.NewHandler(s.engine, h2s)
}

// Start serves HTTP until Shutdown is called
func (s *Server) Start() error {
	addr := s.cfg.GetHTTPAddr()

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info().
		Str("addr", addr).
		Bool("h2c", s.cfg.IsH2CEnabled()).
		Str("compression", s.pipeline.Compression()).
		Msg("Starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down server...")

	var lastErr error

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			lastErr = err
		}
	}

	if s.cache != nil {
		s.cache.Close()
	}

	if err := s.store.Close(); err != nil {
		lastErr = err
	}

	return lastErr
}
