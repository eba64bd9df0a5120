// Package server exposes the quiz service as a JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/abhisek/fedrill/internal/config"
	"github.com/abhisek/fedrill/internal/logger"
	"github.com/abhisek/fedrill/internal/selector"
	"github.com/abhisek/fedrill/internal/session"
)

const defaultQuizSize = 10

// Server serves the HTTP API.
type Server struct {
	engine *gin.Engine
	svc    *session.Service
	cfg    config.ServerConfig
	quiz   config.QuizConfig
	log    *logger.Logger
}

// New builds the router over svc. quiz supplies the size and mode used
// when a quiz request leaves them out.
func New(svc *session.Service, cfg config.ServerConfig, quiz config.QuizConfig, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	if quiz.Size <= 0 {
		quiz.Size = defaultQuizSize
	}
	if quiz.Mode == "" {
		quiz.Mode = string(selector.ModeAdaptive)
	}
	s := &Server{svc: svc, cfg: cfg, quiz: quiz, log: log}

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(log))
	if c, ok := corsConfig(cfg.AllowOrigins); ok {
		r.Use(cors.New(c))
	}

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	api := r.Group("/api/v1")
	api.Use(EnsureUser(cfg.UserCookie))
	{
		api.POST("/quizzes", s.createQuiz)
		api.POST("/answers", s.recordAnswer)
		api.POST("/sessions", s.finishSession)
		api.GET("/reviews", s.dueReviews)
		api.GET("/stats", s.stats)
		api.GET("/admin/attempts", s.requireAdmin, s.adminAttempts)
	}

	s.engine = r
	return s
}

func corsConfig(origins []string) (cors.Config, bool) {
	if len(origins) == 0 {
		return cors.Config{}, false
	}
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", "Authorization", UserHeader},
		ExposeHeaders: []string{UserHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c, true
		}
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c, true
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on cfg.Addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
