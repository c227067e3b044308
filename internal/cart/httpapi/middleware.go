package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dwikikusuma/storefront-cart/internal/cart/infra/auth"
	"github.com/gorilla/mux"
)

// authenticate marks the request signed in when it carries an accepted
// bearer token. Anonymous requests still reach the handlers.
func authenticate(v *auth.TokenVerifier) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			signedIn := v.Verify(auth.BearerToken(r.Header.Get("Authorization")))
			next.ServeHTTP(w, r.WithContext(auth.WithSignedIn(r.Context(), signedIn)))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func logRequests(log *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.Info("http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Duration("took", time.Since(start)),
			)
		})
	}
}
