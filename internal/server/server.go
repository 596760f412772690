// Package server implements the preview server: it loads every definition of
// a directory into a live runtime, renders it as HTML a browser can drive and
// exposes the instance and field operations as HTTP endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phuslu/log"

	"github.com/goliatone/go-formruntime/internal/config"
	"github.com/goliatone/go-formruntime/internal/logging"
	"github.com/goliatone/go-formruntime/pkg/model"
	"github.com/goliatone/go-formruntime/pkg/orchestrator"
	"github.com/goliatone/go-formruntime/pkg/render"
	"github.com/goliatone/go-formruntime/pkg/renderers/html"
	"github.com/goliatone/go-formruntime/pkg/renderers/jsonstate"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for access and reload logs.
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithOrchestratorOptions appends options to the orchestrator building the
// forms (transformers, id generators, ...).
func WithOrchestratorOptions(options ...orchestrator.Option) Option {
	return func(s *Server) {
		s.genOptions = append(s.genOptions, options...)
	}
}

// Server is the preview HTTP server.
type Server struct {
	cfg        *config.Config
	logger     *log.Logger
	metrics    *Metrics
	gen        *orchestrator.Orchestrator
	genOptions []orchestrator.Option
	store      *Store
	engine     *gin.Engine
	json       *jsonstate.Renderer
}

// New wires the renderers, the store and the routes. Definitions are not read
// until Load is called.
func New(cfg *config.Config, options ...Option) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("server: config is required")
	}

	s := &Server{
		cfg:     cfg,
		logger:  logging.Discard(),
		metrics: NewMetrics(),
		json:    jsonstate.New(jsonstate.WithData(true)),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}

	htmlOptions := []html.Option{html.WithDocument(cfg.Render.Lang)}
	if cfg.Render.TemplatesDir != "" {
		htmlOptions = append(htmlOptions, html.WithTemplatesDir(cfg.Render.TemplatesDir))
	}
	page, err := html.New(htmlOptions...)
	if err != nil {
		return nil, fmt.Errorf("server: html renderer: %w", err)
	}
	registry := render.NewRegistry()
	registry.MustRegister(page)
	registry.MustRegister(s.json)

	genOptions := []orchestrator.Option{
		orchestrator.WithRegistry(registry),
		orchestrator.WithDefaultRenderer(html.Name),
		orchestrator.WithBuilderOptions(
			model.WithDefaultMinOccur(cfg.Forms.DefaultMinOccur),
			model.WithDefaultInitialOccur(cfg.Forms.DefaultInitialOccur),
		),
	}
	s.gen = orchestrator.New(append(genOptions, s.genOptions...)...)
	s.store = NewStore(cfg.Forms.Dir, s.gen)

	gin.SetMode(cfg.Server.Mode)
	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), s.accessLog())
	if cfg.Metrics.Enabled {
		s.engine.Use(s.metrics.Middleware())
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.engine.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/forms") })
	s.engine.GET("/healthz", s.handleHealth)
	if s.cfg.Metrics.Enabled {
		s.engine.GET(s.cfg.Metrics.Path, s.metrics.Handler())
	}

	forms := s.engine.Group("/forms")
	forms.GET("", s.handleList)
	forms.GET("/:name", s.handleRender)
	forms.GET("/:name/state", s.handleState)
	forms.POST("/:name/instances/:id/:action", s.handleInstance)
	forms.POST("/:name/fields/:id", s.handleField)
	forms.POST("/:name/reset", s.handleReset)
	forms.POST("/:name/validate", s.handleValidate)
	forms.POST("/:name/errors", s.handleErrors)
}

// Handler exposes the gin engine.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Store returns the form store.
func (s *Server) Store() *Store {
	return s.store
}

// Metrics returns the server collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Load reads every definition of the configured directory.
func (s *Server) Load(ctx context.Context) error {
	err := s.store.LoadAll(ctx)
	s.metrics.reload(err)
	s.metrics.setForms(s.store.Len())
	for _, name := range s.store.Names() {
		s.logger.Info().Str("form", name).Msg("definition loaded")
	}
	return err
}

// Run loads the definitions, starts the file watcher when enabled and serves
// HTTP until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Load(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("some definitions failed to load")
	}

	if s.cfg.Forms.Watch {
		watcher, err := NewWatcher(s.store, s.logger, s.metrics)
		if err != nil {
			return err
		}
		go func() {
			if err := watcher.Run(ctx); err != nil {
				s.logger.Error().Err(err).Msg("definition watcher stopped")
			}
		}()
	}

	srv := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", srv.Addr).Strs("forms", s.store.Names()).Msg("preview server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	s.logger.Info().Msg("preview server stopped")
	return nil
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		var entry *log.Entry
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry = s.logger.Error()
		} else {
			entry = s.logger.Info()
		}
		entry.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}
