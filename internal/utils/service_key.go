package utils

import (
	"log"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const ServiceKeyHeader = "X-Service-Key"

// HashServiceKey returns the bcrypt hash to put in INTERNAL_SERVICE_KEY_HASH.
func HashServiceKey(key string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ServiceKeyMiddleware admits only callers presenting the key matching
// keyHash. An empty hash leaves the internal API open, which is meant for
// local development only.
func ServiceKeyMiddleware(keyHash string) func(http.Handler) http.Handler {
	if keyHash == "" {
		log.Println("[INTERNAL] No service key hash configured, internal API is unauthenticated")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if keyHash != "" {
				key := r.Header.Get(ServiceKeyHeader)
				if key == "" {
					http.Error(w, "service key required", http.StatusUnauthorized)
					return
				}
				if err := bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(key)); err != nil {
					http.Error(w, "invalid service key", http.StatusForbidden)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs one line per request on the internal API.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("[INTERNAL] %s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}
