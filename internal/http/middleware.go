package httpx

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/cors"

	"github.com/rajnish-49/collab-whiteboard/internal/app"
	"github.com/rajnish-49/collab-whiteboard/pkg/auth"
	"github.com/rajnish-49/collab-whiteboard/pkg/ratelimit"
)

type Middleware struct {
	cors   *cors.Cors
	auth   *auth.JWT
	rlimit *ratelimit.Limiter
}

// NewMiddleware builds the shared middleware stack from config
func NewMiddleware(cfg app.Config) *Middleware {
	return &Middleware{
		cors: cors.New(cors.Options{
			AllowedOrigins:   cfg.CORSAllow,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
		}),
		auth:   auth.New(cfg.JWTSecret),
		rlimit: ratelimit.New(60, time.Minute),
	}
}

// Wrap applies CORS + rate limiting to the REST API. The websocket upgrade
// path stays outside: throttling it would punish reconnecting clients.
func (m *Middleware) Wrap(h http.Handler) http.Handler {
	return m.cors.Handler(m.rlimit.Middleware(h))
}

// Auth enforces a bearer token and adds the user ID to the request context
func (m *Middleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b := r.Header.Get("Authorization")
		if !strings.HasPrefix(b, "Bearer ") {
			http.Error(w, "authorization token missing", http.StatusUnauthorized)
			return
		}
		uid, err := m.auth.Verify(strings.TrimPrefix(b, "Bearer "))
		if err != nil {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), uid)))
	})
}
