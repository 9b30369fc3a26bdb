package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"halawa/internal/availability"
	"halawa/internal/calendar"
	"halawa/internal/config"
	"halawa/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// CalendarView is the read side of the event calendar used to render month grids.
type CalendarView interface {
	Check(date time.Time) error
	Location() *time.Location
	Today() time.Time
	Month(year int, month time.Month, selected *time.Time) calendar.Month
	Months() []calendar.YearMonth
	HasMonth(year int, month time.Month) bool
}

type Deps struct {
	Bookings    domain.BookingService
	Selection   domain.SelectionService
	Preferences domain.PreferencesService
	Calendar    CalendarView
	Calculator  *availability.Calculator
}

// HTTPServer exposes the booking engine over JSON.
type HTTPServer struct {
	cfg    config.APIConfig
	deps   Deps
	auth   *HTTPAuth
	logger *zerolog.Logger
	router chi.Router
	server *http.Server
}

func NewHTTPServer(cfg config.APIConfig, deps Deps, logger *zerolog.Logger) *HTTPServer {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	srv := &HTTPServer{
		cfg:    cfg,
		deps:   deps,
		auth:   NewHTTPAuth(cfg),
		logger: logger,
	}
	srv.router = srv.routes()

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           srv.router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}
	return srv
}

func (s *HTTPServer) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(loggingMiddleware(s.logger))
	r.Use(s.auth.RateLimit)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/event", s.handleEvent)
		r.Get("/calendar", s.handleCalendar)
		r.Get("/availability", s.handleAvailability)
		r.Get("/phone/validate", s.handleValidatePhone)

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", s.handleSubmit)
			r.With(s.auth.Require(permReadBookings)).Get("/", s.handleListBookings)
			r.With(s.auth.Require(permExportBookings)).Get("/export", s.handleExport)
		})

		r.Route("/selection", func(r chi.Router) {
			r.Get("/", s.handleGetSelection)
			r.Put("/", s.handlePutSelection)
			r.Delete("/", s.handleDeleteSelection)
		})

		r.Route("/preferences", func(r chi.Router) {
			r.Get("/", s.handleGetPreferences)
			r.Put("/", s.handlePutPreferences)
		})
	})

	return r
}

// Handler returns the routed handler, for tests and embedding.
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

func (s *HTTPServer) Addr() string {
	return s.server.Addr
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
