// Package server assembles the HTTP surface: the application router on
// the main port and the diagnostics router with /metrics on the diag
// port.
package server

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/metric/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/global"
	export "go.opentelemetry.io/otel/sdk/export/metric"
	"go.opentelemetry.io/otel/sdk/metric/aggregator/histogram"
	controller "go.opentelemetry.io/otel/sdk/metric/controller/basic"
	processor "go.opentelemetry.io/otel/sdk/metric/processor/basic"
	selector "go.opentelemetry.io/otel/sdk/metric/selector/simple"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spotterai/spotter/internal/auth"
	"github.com/spotterai/spotter/internal/compliance"
	"github.com/spotterai/spotter/internal/config"
	"github.com/spotterai/spotter/internal/hos"
	"github.com/spotterai/spotter/internal/routing"
	"github.com/spotterai/spotter/internal/staticfiles"
	"github.com/spotterai/spotter/internal/trips"
)

const ServiceName = "spotter"

const shutdownTimeout = 10 * time.Second

type CtxKey int8

const (
	CtxKeyLogger CtxKey = iota
)

// App carries the wired application: configuration, storage handles and
// the shared logger.
type App struct {
	sugarLogger *zap.SugaredLogger
	config      config.Config
	db          *sql.DB
	authRs      *auth.Resource
	tripsRs     *trips.Resource
	hosRs       *compliance.Resource
	exporter    *prometheus.Exporter

	requestCount    metric.Int64Counter
	requestDuration metric.Float64ValueRecorder
}

// New wires the resources and the metrics pipeline.
func New(cfg config.Config, logger *zap.SugaredLogger, db *sql.DB, revoked *auth.RevocationStore) (*App, error) {
	a := &App{
		sugarLogger: logger,
		config:      cfg,
		db:          db,
	}

	promCfg := prometheus.Config{}
	c := controller.New(
		processor.New(
			selector.NewWithHistogramDistribution(
				histogram.WithExplicitBoundaries(promCfg.DefaultHistogramBoundaries),
			),
			export.CumulativeExportKindSelector(),
			processor.WithMemory(true),
		),
	)

	exporter, err := prometheus.NewExporter(promCfg, c)
	if err != nil {
		return nil, err
	}

	global.SetMeterProvider(exporter.MeterProvider())
	a.exporter = exporter

	meter := global.Meter(ServiceName)
	a.requestCount = metric.Must(meter).NewInt64Counter(
		"http/server/completed_count",
		metric.WithDescription("Count of completed requests, by route, method and response status"),
	)
	a.requestDuration = metric.Must(meter).NewFloat64ValueRecorder(
		"http/server/duration",
		metric.WithDescription("Request duration in seconds, by route, method and response status"),
	)

	tokens := &auth.Tokens{
		Secret:     []byte(cfg.SecretKey),
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
	}

	a.authRs = &auth.Resource{DB: db, Tokens: tokens, Revoked: revoked, Log: logger}

	rules := hos.PropertyCarrying()
	planner := &routing.Planner{
		DB:    db,
		ORS:   routing.NewORSClient(cfg.ORSBaseURL, cfg.ORSKey),
		Rules: rules,
		Log:   logger,
	}

	a.tripsRs = &trips.Resource{DB: db, Planner: planner, Log: logger}
	a.hosRs = &compliance.Resource{DB: db, Rules: rules, Log: logger}

	return a, nil
}

// Router builds the application router.
func (a *App) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.Logger)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.URLFormat)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Use(a.Metrics)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, err := w.Write([]byte("spotter."))
		if err != nil {
			a.sugarLogger.Errorw(err.Error())
		}
	})

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		logger := r.Context().Value(CtxKeyLogger).(*zap.SugaredLogger)
		logger.Infow("ping")

		_, err := w.Write([]byte("pong"))
		if err != nil {
			a.sugarLogger.Errorw(err.Error())
		}
	})

	r.Mount("/api/auth", a.authRs.Routes())

	r.Group(func(r chi.Router) {
		r.Use(a.authRs.Authenticator)
		r.Mount("/api/trips", a.tripsRs.Routes())
		r.Mount("/api/hos", a.hosRs.Routes())
		r.Mount("/admin", a.adminRouter())
	})

	staticfiles.FileServer(r, "/static", a.staticRoot())

	return r
}

// DiagRouter exposes /metrics for scraping.
func (a *App) DiagRouter() chi.Router {
	r := chi.NewRouter()
	r.Get("/metrics", a.exporter.ServeHTTP)

	return r
}

// Run serves both listeners until ctx is cancelled, then shuts them down
// gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{Addr: a.config.Addr, Handler: a.Router()}
	diag := &http.Server{Addr: a.config.DiagAddr, Handler: a.DiagRouter()}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.sugarLogger.Infow("listening", "addr", a.config.Addr)

		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}

		return nil
	})

	g.Go(func() error {
		a.sugarLogger.Infow("diag listening", "addr", a.config.DiagAddr)

		if err := diag.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// nolint
		diag.Shutdown(shutdownCtx)

		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// staticRoot prefers the collected directory when one is configured; the
// embedded copy is the fallback, so the binary serves assets on its own.
func (a *App) staticRoot() http.FileSystem {
	if a.config.StaticRoot != "" {
		return http.Dir(a.config.StaticRoot)
	}

	return staticfiles.Assets()
}

// Logger puts the app logger on the request context.
func (a *App) Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), CtxKeyLogger, a.sugarLogger)))
	})
}

// Metrics records the completed-request counter and duration recorder
// with route, method and status labels.
func (a *App) Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		labels := []attribute.KeyValue{
			attribute.String("route", route),
			attribute.String("method", r.Method),
			attribute.Int("status", ww.Status()),
		}

		a.requestCount.Add(r.Context(), 1, labels...)
		a.requestDuration.Record(r.Context(), time.Since(start).Seconds(), labels...)
	})
}
