package api

import (
	"github.com/gorilla/mux"
	"github.com/nu7hatch/gouuid"
	"go.uber.org/zap"
	"net/http"
	"time"
)

const RequestIdHeader = "X-Request-Id"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s Server) requestMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestId := r.Header.Get(RequestIdHeader)
		if requestId == "" {
			if u, err := uuid.NewV4(); err == nil {
				requestId = u.String()
			}
		}
		w.Header().Set(RequestIdHeader, requestId)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		if s.metrics != nil {
			s.metrics.ObserveRequest(route, rec.status, elapsed.Seconds())
		}

		zap.L().With(
			zap.String("requestId", requestId),
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", elapsed),
		).Debug("Api: Request")
	})
}
