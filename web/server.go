// Package web serves the document locker pages and endpoints.
package web

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meowdada/doclocker"
	"github.com/meowdada/doclocker/auth"
	"github.com/meowdada/doclocker/metrics"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// UploadConfig bounds the upload endpoint.
type UploadConfig struct {
	TempDir   string
	MaxBytes  int64
	RateLimit float64
	Burst     int
}

// Config configures the http server.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
	CORSOrigins  []string
	StaticDir    string
	Upload       UploadConfig

	// GovernmentWallets may hold the government role.
	GovernmentWallets []string
}

// Deps are the collaborators the server routes to.
type Deps struct {
	Uploader Uploader
	Users    doclocker.Users
	Lister   Lister
	Sessions auth.Handler
	Wallets  WalletProver
	Observer *metrics.Observer
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// Server is the document locker http server.
type Server struct {
	cfg    Config
	engine *gin.Engine
	logger *zap.Logger
}

type routeRegistrar interface {
	RegisterRoutes(server *gin.Engine)
}

// NewServer builds the gin engine and registers every route.
func NewServer(cfg Config, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger), corsMiddleware(cfg.CORSOrigins))
	engine.Use(auth.CheckLogin(deps.Sessions))
	engine.SetHTMLTemplate(loadTemplates())
	if len(cfg.StaticDir) != 0 {
		engine.Static("/static", cfg.StaticDir)
	}

	engine.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if deps.Gatherer != nil {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	handlers := []routeRegistrar{
		NewPageHandler(deps.Lister, deps.Sessions, logger),
		NewAuthHandler(deps.Users, deps.Sessions, deps.Wallets, cfg.GovernmentWallets, logger),
		NewUploadHandler(deps.Uploader, deps.Observer, logger, cfg.Upload),
	}
	for _, h := range handlers {
		h.RegisterRoutes(engine)
	}

	return &Server{
		cfg:    cfg,
		engine: engine,
		logger: logger,
	}
}

// Handler exposes the engine, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "serve")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	conf := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{auth.TokenHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			conf.AllowAllOrigins = true
			return cors.New(conf)
		}
	}
	if len(origins) == 0 {
		conf.AllowAllOrigins = true
		return cors.New(conf)
	}
	conf.AllowOrigins = origins
	conf.AllowCredentials = true
	return cors.New(conf)
}

func equalWallet(a, b string) bool {
	return strings.EqualFold(a, b)
}
