package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/minhvu/catalogue/internal/config"
	"github.com/minhvu/catalogue/internal/http/apierr"
	"github.com/minhvu/catalogue/internal/http/metric"
	"github.com/minhvu/catalogue/internal/http/middleware"
	"github.com/minhvu/catalogue/internal/http/swagger"
	"github.com/minhvu/catalogue/internal/service"
	"github.com/minhvu/catalogue/internal/storage/db"
	"github.com/minhvu/catalogue/pkg/errs"
)

var tracer = otel.Tracer("internal/http")

// Service represents the HTTP service.
type Service struct {
	cfg     config.HTTP
	logger  *slog.Logger
	metrics *metric.Metrics

	productSvc  service.ProductService
	variantSvc  service.VariantService
	categorySvc service.CategoryService
	health      db.HealthChecker
}

type CleanupFunc func(ctx context.Context) error

func New(
	cfg config.HTTP,
	log *slog.Logger,
	productSvc service.ProductService,
	variantSvc service.VariantService,
	categorySvc service.CategoryService,
	health db.HealthChecker,
) *Service {
	return &Service{
		cfg:         cfg,
		logger:      log.With(slog.String("service", "http")),
		metrics:     metric.New(),
		productSvc:  productSvc,
		variantSvc:  variantSvc,
		categorySvc: categorySvc,
		health:      health,
	}
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		swagger.Register(r)
	}

	s.RegisterHandlers(r)

	return s.RunWithServer(ctx, r)
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	productH := newProductHandler(s, s.productSvc)
	variantH := newVariantHandler(s, s.variantSvc)
	categoryH := newCategoryHandler(s, s.categorySvc)

	r.Route("/products", func(r chi.Router) {
		r.Get("/", productH.list)
		r.Post("/", productH.create)
		r.Get("/{id}", productH.get)
		r.Put("/{id}", productH.update)
		r.Delete("/{id}", productH.delete)
		r.Post("/{id}/variants", productH.addVariant)
	})

	r.Route("/variants", func(r chi.Router) {
		r.Get("/{id}", variantH.get)
		r.Put("/{id}", variantH.update)
		r.Delete("/{id}", variantH.delete)
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", categoryH.list)
		r.Get("/{id}", categoryH.get)
	})

	r.Get("/healthz", s.handleHealthz)

	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))
}

func (s *Service) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if ok, err := s.health.IsHealthy(r.Context()); err != nil || !ok {
			s.respondError(w, r, errs.NewInternalServerError("UNHEALTHY", "database unreachable"))
			return
		}
	}

	s.respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// invalidBodyErr is the uniform answer to a body that does not parse.
var invalidBodyErr = errs.NewBadRequest("INVALID_BODY", "Invalid request body")

func (s *Service) decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return invalidBodyErr.WrapParent(err)
	}
	return nil
}

func (s *Service) respondJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.ErrorContext(r.Context(), "error encoding response",
			slog.Any("error", err))
	}
}

func (s *Service) respondError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	s.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	if err := json.NewEncoder(w).Encode(res); err != nil {
		s.logger.ErrorContext(r.Context(), "error encoding error response",
			slog.Any("error", err))
	}
}
