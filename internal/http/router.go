package httpx

import (
	"encoding/json"
	"net/http"

	"log/slog"

	"github.com/rajnish-49/collab-whiteboard/internal/app"
	"github.com/rajnish-49/collab-whiteboard/internal/store"
	"github.com/rajnish-49/collab-whiteboard/internal/ws"
	"github.com/rajnish-49/collab-whiteboard/pkg/auth"
	"github.com/rajnish-49/collab-whiteboard/pkg/metrics"
)

// NewRouter wires up all HTTP routes, middleware, and handlers
func NewRouter(cfg app.Config, logger *slog.Logger, hub *ws.Hub, db *store.Postgres) http.Handler {
	mw := NewMiddleware(cfg)

	j := auth.New(cfg.JWTSecret)
	authAPI := &AuthAPI{DB: db, JWT: j, TTL: cfg.JWTTTL}
	roomsAPI := &RoomsAPI{DB: db}

	// REST API behind CORS + rate limiting
	api := http.NewServeMux()
	api.Handle("POST /api/auth/register", http.HandlerFunc(authAPI.Register))
	api.Handle("POST /api/auth/login", http.HandlerFunc(authAPI.Login))
	api.Handle("GET /api/auth/me", mw.Auth(http.HandlerFunc(authAPI.Me)))
	api.Handle("POST /api/rooms", mw.Auth(http.HandlerFunc(roomsAPI.Create)))
	api.Handle("GET /api/rooms", mw.Auth(http.HandlerFunc(roomsAPI.List)))
	api.Handle("GET /api/rooms/{slug}", http.HandlerFunc(roomsAPI.Get))

	mux := http.NewServeMux()
	mux.Handle("/api/", mw.Wrap(api))

	// WebSocket endpoint; auth happens on the upgrade request itself
	mux.Handle("/ws", http.HandlerFunc(hub.ServeWS))

	// Health / readiness / metrics / stats
	mux.Handle("/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) }))
	mux.Handle("/readyz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			logger.Error("readyz.db", "err", err)
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
	}))
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/stats", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		rooms, conns := hub.Stats()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]int{"rooms": rooms, "connections": conns})
	}))

	return mux
}
