package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rajnish-49/collab-whiteboard/internal/store"
	"github.com/rajnish-49/collab-whiteboard/pkg/auth"
)

// UserStore is the slice of the store the auth API needs.
type UserStore interface {
	CreateUser(ctx context.Context, email, password, name string) (store.User, error)
	VerifyUser(ctx context.Context, email, password string) (store.User, error)
}

type AuthAPI struct {
	DB  UserStore
	JWT *auth.JWT
	TTL time.Duration
}

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type tokenResp struct {
	Token string      `json:"token"`
	User  authUserDTO `json:"user"`
}
type authUserDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Register handles user signup and returns a JWT for auto-login
func (a *AuthAPI) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	// Basic validation
	if len(req.Password) < 8 || !strings.Contains(req.Email, "@") {
		http.Error(w, "invalid email or weak password", http.StatusBadRequest)
		return
	}

	u, err := a.DB.CreateUser(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			http.Error(w, "email already in use", http.StatusConflict)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	tok, _ := a.JWT.Sign(u.ID, a.TTL)
	writeJSON(w, http.StatusCreated, tokenResp{Token: tok, User: authUserDTO{ID: u.ID, Email: u.Email, Name: u.Name}})
}

// Login verifies credentials and returns a JWT
func (a *AuthAPI) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}

	u, err := a.DB.VerifyUser(r.Context(), req.Email, req.Password)
	if err != nil {
		// Unknown email and wrong password answer identically.
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	tok, _ := a.JWT.Sign(u.ID, a.TTL)
	writeJSON(w, http.StatusOK, tokenResp{Token: tok, User: authUserDTO{ID: u.ID, Email: u.Email, Name: u.Name}})
}

// Me returns the authenticated user's ID
func (a *AuthAPI) Me(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserID(r.Context())
	if uid == "anon" || uid == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"userId": uid})
}

// send JSON with proper headers
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
