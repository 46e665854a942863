// Package api serves the store over HTTP with JSON bodies.
package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/twiced-technology-gmbh/tasktracker/internal/store"
)

const shutdownTimeout = 5 * time.Second

// Persister saves the store after a successful mutation.
type Persister interface {
	Save(s *store.Store) error
}

// Server routes HTTP requests to a store.
type Server struct {
	echo    *echo.Echo
	store   *store.Store
	persist Persister
	log     zerolog.Logger

	// saveMu orders mutations with their saves so the file never goes
	// back in time.
	saveMu sync.Mutex
}

// New creates a server for s. p may be nil for a server that keeps its
// state in memory only.
func New(s *store.Store, p Persister, log zerolog.Logger) *Server {
	srv := &Server{
		echo:    echo.New(),
		store:   s,
		persist: p,
		log:     log,
	}
	srv.echo.HideBanner = true
	srv.echo.HidePort = true
	srv.echo.HTTPErrorHandler = srv.handleError

	srv.registerMiddlewares()
	srv.registerRoutes()
	return srv
}

// Handler returns the server's HTTP handler.
func (srv *Server) Handler() http.Handler {
	return srv.echo
}

// Run listens on addr until ctx is canceled, then shuts down gracefully.
func (srv *Server) Run(ctx context.Context, addr string) error {
	errc := make(chan error, 1)
	go func() {
		srv.log.Info().Str("addr", addr).Msg("listening")
		errc <- srv.echo.Start(addr)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		srv.log.Info().Msg("shutting down")
		return srv.echo.Shutdown(shutdownCtx)
	}
}

func (srv *Server) registerMiddlewares() {
	srv.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	srv.echo.Use(requestLogger(srv.log))
	srv.echo.Use(middleware.Recover())
}

func (srv *Server) registerRoutes() {
	for _, col := range srv.collections() {
		g := srv.echo.Group(col.path)
		g.GET("", srv.listHandler(col))
		g.POST("", srv.saveHandler(col))
		g.DELETE("", srv.clearHandler(col))
		g.GET("/:id", srv.getHandler(col))
		g.DELETE("/:id", srv.deleteHandler(col))
	}
	srv.echo.GET("/epics/:id/subtasks", srv.epicSubTasksHandler)
	srv.echo.GET("/history", srv.historyHandler)
	srv.echo.GET("/prioritized", srv.prioritizedHandler)
}

// mutate runs fn and saves the store if fn succeeded.
func (srv *Server) mutate(fn func() error) error {
	srv.saveMu.Lock()
	defer srv.saveMu.Unlock()

	if err := fn(); err != nil {
		return err
	}
	if srv.persist == nil {
		return nil
	}
	return srv.persist.Save(srv.store)
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}

			req, res := c.Request(), c.Response()
			ev := log.Info()
			if res.Status >= http.StatusInternalServerError {
				ev = log.Error()
			}
			ev.Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Msg("request")
			return nil
		}
	}
}
