// Package server hosts the HTTP boundary: session-guarded JSON API plus the
// embedded dashboard frontend.
package server

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/facultydesk/facultydesk/internal/auth"
	"github.com/facultydesk/facultydesk/internal/config"
	"github.com/facultydesk/facultydesk/internal/status"
)

//go:embed all:web
var webFiles embed.FS

// ReportBuilder computes the full faculty status report. Implemented by
// status.Builder.
type ReportBuilder interface {
	BuildShared(ctx context.Context) (status.Report, error)
}

type Server struct {
	router   *gin.Engine
	http     *http.Server
	log      *zap.Logger
	sessions *auth.Sessions
	builder  ReportBuilder

	serviceAccount string
	secureCookies  bool
}

func New(cfg *config.Config, sessions *auth.Sessions, builder ReportBuilder, log *zap.Logger) *Server {
	if !cfg.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	s := &Server{
		router:         router,
		log:            log,
		sessions:       sessions,
		builder:        builder,
		serviceAccount: cfg.ServiceAccountEmail,
		secureCookies:  !cfg.DevMode,
	}

	s.routes()

	s.http = &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	return s
}

func (s *Server) routes() {
	api := s.router.Group("/api")
	{
		api.POST("/login", s.login)
		api.POST("/logout", s.logout)
		api.GET("/session", s.authRequired(), s.session)
		api.GET("/faculty-status", s.authRequired(), s.facultyStatus)
	}

	web, err := fs.Sub(webFiles, "web")
	if err != nil {
		panic(err)
	}

	s.router.NoRoute(gin.WrapH(http.FileServer(http.FS(web))))
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errs := make(chan error, 1)

	go func() {
		s.log.Info("listening", zap.String("addr", s.http.Addr))

		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	select {
	case err := <-errs:
		return err

	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return s.http.Shutdown(shutdown)
	}
}

// Router exposes the gin engine for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
