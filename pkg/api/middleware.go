package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"foodflow/pkg/metrics"
	fotel "foodflow/pkg/otel"
	"foodflow/pkg/session"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	userKey
)

const requestIDHeader = "X-Request-Id"

// RequestID returns the request ID stored by the request ID middleware.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// User returns the authenticated user name, if any.
func User(ctx context.Context) string {
	u, _ := ctx.Value(userKey).(string)
	return u
}

// responseWriter records the status code written by the handler.
type responseWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, status: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(status int) {
	if rw.written {
		return
	}
	rw.status = status
	rw.written = true
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.written = true
	return rw.ResponseWriter.Write(b)
}

func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
}

func (h *Handler) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		route := routeName(r)
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rw.status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// requestIDMiddleware keeps a caller-supplied UUID request ID or issues a
// new one.
func (h *Handler) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func (h *Handler) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				metrics.PanicRecoveries.Inc()
				h.log.Error(r.Context(), "panic recovered",
					"error", fmt.Sprint(v),
					"request_id", RequestID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
				)
				writeError(w, r, http.StatusInternalServerError, ErrCodeInternal, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}
		if !h.limiter.Allow() {
			metrics.RateLimitRejects.Inc()
			w.Header().Set("Retry-After", "1")
			writeError(w, r, http.StatusTooManyRequests, ErrCodeRateLimited, "rate limit exceeded")
			return
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(int(h.limiter.Limit())))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(h.limiter.Tokens())))
		next.ServeHTTP(w, r)
	})
}

// traceMiddleware continues the caller's trace and makes the tracer
// available to handler spans.
func (h *Handler) traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx = fotel.InjectTracing(ctx, h.tracer)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)
		h.log.Info(r.Context(), "request",
			"request_id", RequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"elapsed_ms", float64(time.Since(start).Microseconds())/1000,
		)
	})
}

// authMiddleware requires a live session, read from the session cookie or
// the session header. It is only installed when a session store is
// configured. A store outage is a 500, not a 401.
func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := r.Header.Get(sessionHeader)
		if c, err := r.Cookie(sessionCookie); err == nil {
			sid = c.Value
		}
		if sid == "" {
			writeError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, "unauthorized")
			return
		}
		user, err := h.sessions.Lookup(r.Context(), sid)
		if errors.Is(err, session.ErrNoSession) {
			h.log.Debug(r.Context(), "session lookup", "error", err)
			writeError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, "unauthorized")
			return
		}
		if err != nil {
			h.log.Error(r.Context(), "session lookup", "error", err)
			writeError(w, r, http.StatusInternalServerError, ErrCodeInternal, "session error")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}
