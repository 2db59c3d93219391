// Package api exposes the food repository over HTTP.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"foodflow/pkg/food"
	"foodflow/pkg/logger"
	"foodflow/pkg/session"
)

const (
	defaultListSize = 10
	defaultPageSize = 10
	// maxPageSize caps size and rowsPerPage.
	maxPageSize = 1000
)

// Options configures a Handler. Only Repo is required.
type Options struct {
	Repo   food.Repository
	Log    *logger.Logger
	Tracer trace.Tracer
	// Sessions enables POST /login and session auth on /food routes.
	Sessions session.Store
	// RateLimit in requests per second; 0 disables the limiter.
	RateLimit      float64
	RateLimitBurst int
}

// Handler serves the food API.
type Handler struct {
	repo       food.Repository
	log        *logger.Logger
	tracer     trace.Tracer
	sessions session.Store
	limiter  *rate.Limiter
}

func New(opts Options) *Handler {
	h := &Handler{
		repo:     opts.Repo,
		log:      opts.Log,
		tracer:   opts.Tracer,
		sessions: opts.Sessions,
	}
	if h.log == nil {
		h.log = logger.Nop()
	}
	if h.tracer == nil {
		h.tracer = otel.Tracer("foodflow")
	}
	if opts.RateLimit > 0 {
		burst := opts.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		h.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return h
}

// Router builds the route table. Middleware runs outermost first: metrics,
// request ID, panic recovery, rate limit, tracing, logging.
func (h *Handler) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(
		h.metricsMiddleware,
		h.requestIDMiddleware,
		h.recoveryMiddleware,
		h.rateLimitMiddleware,
		h.traceMiddleware,
		h.loggingMiddleware,
	)

	r.HandleFunc("/healthz", h.healthz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	api := r.PathPrefix("/food").Subrouter()
	if h.sessions != nil {
		r.HandleFunc("/login", h.login).Methods(http.MethodPost)
		api.Use(h.authMiddleware)
	}
	api.HandleFunc("/all", h.listAll).Methods(http.MethodGet)
	api.HandleFunc("/GetByQuery", h.getByQuery).Methods(http.MethodGet)
	api.HandleFunc("/UpdatePartial", h.updatePartial).Methods(http.MethodPut)
	api.HandleFunc("/paging", h.pageByContinuation).Methods(http.MethodGet)
	api.HandleFunc("/paging/offset", h.pageByOffset).Methods(http.MethodGet)
	api.HandleFunc("", h.get).Methods(http.MethodGet)
	api.HandleFunc("", h.add).Methods(http.MethodPost)
	api.HandleFunc("", h.update).Methods(http.MethodPut)
	api.HandleFunc("", h.remove).Methods(http.MethodDelete)

	return r
}
