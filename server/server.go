package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/spektr-org/supplylens/config"
	"github.com/spektr-org/supplylens/engine"
)

const shutdownTimeout = 10 * time.Second

// Server exposes a dataset's dashboard over JSON.
type Server struct {
	echo          *echo.Echo
	addr          string
	view          engine.RecordView
	filterColumns []string
	opts          []engine.Option
	cache         *engine.Cache // nil when caching is disabled
}

// New wires the routes for view. filterColumns are the selectors listed by
// /api/filters; opts are passed to every dashboard build.
func New(view engine.RecordView, cfg *config.Config, filterColumns []string, opts ...engine.Option) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.Logger())

	s := &Server{
		echo:          e,
		addr:          cfg.ListenAddr,
		view:          view,
		filterColumns: filterColumns,
		opts:          opts,
	}
	if cfg.CacheEnabled {
		s.cache = engine.NewCache(view, opts...)
	}
	s.registerRoutes()
	return s
}

// Handler returns the HTTP handler, for embedding or tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on the configured address until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("🚀 Supplylens: serving %d records on %s", s.view.Len(), s.addr)
		errCh <- s.echo.Start(s.addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Printf("🛑 Supplylens: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	}
}
