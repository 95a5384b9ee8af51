package api

import (
	"context"
	"encoding/json/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	apperrors "github.com/driftpix/driftpix-server/internal/errors"
	"github.com/driftpix/driftpix-server/internal/store"
)

// clientContext resolves the client address and attaches the mutable
// request info record that handlers fill in as they authenticate.
func (s *Server) clientContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := &requestInfo{ClientIP: clientIP(r)}
		ctx := context.WithValue(r.Context(), requestInfoKey, info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// rateLimit admits requests per (client, route) window. Denials carry a
// Retry-After header and feed the abuse escalator through the limiter.
// A broken KV store fails open: serving without a budget beats serving
// nobody.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter == nil || r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		decision, err := s.limiter.Admit(r.Context(), clientIPFrom(r.Context()), r.URL.Path)
		if err != nil {
			s.logger.WithError(err).Warn("rate limiter unavailable", "path", r.URL.Path)
			next.ServeHTTP(w, r)
			return
		}

		if !decision.Allowed {
			retryAfter := int(decision.RetryAfter.Seconds()) + 1
			rateErr := apperrors.RateLimited("too many requests", retryAfter)

			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.MarshalWrite(w, &APIError{
				Code:    string(rateErr.Code),
				Message: rateErr.Message,
				Details: rateErr.Details,
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requestLog writes one access log row per request, asynchronously. Log
// failures never touch the response path.
func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		entry := store.RequestLog{
			RemoteAddress: clientIPFrom(r.Context()),
			URL:           r.URL.String(),
			UserAgent:     r.UserAgent(),
			UserID:        authenticatedUserID(r.Context()),
			Version:       apiVersion,
			ExecTime:      time.Since(start),
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 5*time.Second)
			defer cancel()
			if err := s.store.LogRequest(ctx, entry); err != nil {
				s.logger.WithError(err).Warn("request log write failed", "url", entry.URL)
			}
		}()
	})
}

// clientIP extracts the client IP from the request. Proxy headers win
// over the socket address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// The first address in the chain is the client.
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	// Fall back to RemoteAddr with the port stripped.
	addr := r.RemoteAddr
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[:i]
		}
	}
	return addr
}
