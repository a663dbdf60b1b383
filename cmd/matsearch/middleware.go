package main

import (
	"encoding/json"
	"net/http"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	logpkg "github.com/kailas-cloud/matsearch/internal/logger"
	chiTransport "github.com/kailas-cloud/matsearch/internal/transport/chi"
)

// jsonRecoverer turns a handler panic into a JSON 500. http.ErrAbortHandler is re-raised.
func jsonRecoverer(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				switch rvr {
				case nil:
					return
				case http.ErrAbortHandler:
					panic(rvr)
				}
				logpkg.FromContextOr(r.Context(), logger).Error("Handler panicked",
					zap.Any("panic", rvr),
					zap.String("route", r.Method+" "+r.URL.Path),
					zap.Stack("stacktrace"),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
					Code:    chiTransport.ErrorCodeInternalError,
					Message: "internal error",
				})
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware attaches a request-scoped logger and writes one "http_request"
// line per request once the handler returns. Server errors log at warn.
func wideEventMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := chiMiddleware.GetReqID(r.Context())
			if reqID != "" {
				w.Header().Set("X-Request-ID", reqID)
			}

			reqLog := logger.With(zap.String("request_id", reqID))
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(logpkg.ContextWithLogger(r.Context(), reqLog)))

			reqLog.Log(requestLevel(ww.Status()), "http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.Int("response_bytes", ww.BytesWritten()),
				zap.String("remote_addr", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
			)
		})
	}
}

func requestLevel(status int) zapcore.Level {
	if status >= http.StatusInternalServerError {
		return zap.WarnLevel
	}
	return zap.InfoLevel
}
