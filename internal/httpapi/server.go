package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"horse.fit/seoguard/internal/db"
	"horse.fit/seoguard/internal/dedup"
	"horse.fit/seoguard/internal/logging"
)

const maxRequestBodyBytes = 1 << 20

// Store is everything the API needs from persistence. *db.Pool implements it.
type Store interface {
	dedup.Store
	Ping(ctx context.Context) error
	GetFingerprint(ctx context.Context, pageType, exactHash string) (db.FingerprintRecord, error)
	CountFingerprintsByPageType(ctx context.Context) ([]db.PageTypeCount, error)
}

type Options struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	Dedup dedup.Options
	// MinWords resolves the thin-content threshold for a page type.
	MinWords func(pageType string) int
}

type Server struct {
	store    Store
	detector *dedup.Detector
	logger   zerolog.Logger
	opts     Options
	counters *evalCounters
}

func (o Options) withDefaults() Options {
	o.Host = strings.TrimSpace(o.Host)
	if o.Host == "" {
		o.Host = "0.0.0.0"
	}
	if o.Port <= 0 {
		o.Port = 8090
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = 10 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 30 * time.Second
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = 10 * time.Second
	}
	if o.MinWords == nil {
		o.MinWords = func(string) int { return 0 }
	}
	return o
}

func NewServer(store Store, logger zerolog.Logger, opts Options) *Server {
	var detector *dedup.Detector
	if store != nil {
		detector = dedup.NewDetector(store, logger, opts.Dedup)
	}
	return &Server{
		store:    store,
		detector: detector,
		logger:   logging.WithComponent(logger, "httpapi"),
		opts:     opts.withDefaults(),
		counters: &evalCounters{},
	}
}

// Handler builds the echo router. Start serves it; tests drive it directly.
func (s *Server) Handler() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(
		middleware.Recover(),
		middleware.RequestID(),
		middleware.BodyLimit(fmt.Sprintf("%dB", maxRequestBodyBytes)),
		requestLogger(s.logger),
	)

	api := e.Group("/api/v1")
	api.GET("/health", s.handleHealth)
	api.GET("/stats", s.handleStats)
	api.POST("/evaluate", s.handleEvaluate)
	api.POST("/fingerprint", s.handleFingerprint)
	api.GET("/fingerprints/:page_type/:exact_hash", s.handleGetFingerprint)

	return e
}

// requestLogger logs failed requests at error level and the rest at debug.
func requestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogMethod:    true,
		LogRoutePath: true,
		LogURI:       true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			event := logger.Debug()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				event = logger.Error().Err(v.Error)
			}
			event.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("route", v.RoutePath).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("http request")
			return nil
		},
	})
}

func (s *Server) Start(ctx context.Context) error {
	if s == nil || s.store == nil {
		return fmt.Errorf("server is not initialized")
	}

	e := s.Handler()
	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error().Err(shutdownErr).Msg("server shutdown failed")
		}
	}()

	s.logger.Info().
		Str("addr", addr).
		Int("near_dup_max_distance", s.detector.Options().MaxDistance).
		Int("candidate_limit", s.detector.Options().CandidateLimit).
		Msg("seoguard api server started")

	if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	s.logger.Info().Msg("seoguard api server stopped")
	return nil
}

// httpErrorHandler renders router and middleware errors (unknown routes, body
// limit, panics) as JSend envelopes.
func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code >= http.StatusInternalServerError {
		_ = internalError(c, "Internal server error")
		return
	}

	message, _ := he.Message.(string)
	if strings.TrimSpace(message) == "" {
		message = http.StatusText(he.Code)
	}
	_ = fail(c, he.Code, message)
}
