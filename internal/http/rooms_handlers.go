package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/rajnish-49/collab-whiteboard/internal/store"
	"github.com/rajnish-49/collab-whiteboard/pkg/auth"
)

// RoomStore is the slice of the store the rooms API needs.
type RoomStore interface {
	CreateRoom(ctx context.Context, slug, adminID string) (store.Room, error)
	GetRoomBySlug(ctx context.Context, slug string) (store.Room, error)
	ListRooms(ctx context.Context, limit, offset int) ([]store.Room, error)
}

type RoomsAPI struct{ DB RoomStore }

// slugPattern keeps room slugs URL-safe.
var slugPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

type createRoomReq struct {
	Slug string `json:"slug"`
}

type roomDTO struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	AdminID   string    `json:"adminId"`
	CreatedAt time.Time `json:"createdAt"`
}

func toRoomDTO(rm store.Room) roomDTO {
	return roomDTO{ID: rm.ID, Slug: rm.Slug, AdminID: rm.AdminID, CreatedAt: rm.CreatedAt}
}

// Create registers room metadata for the authenticated user. Note that the
// realtime hub never consults this table: any string is a legal room id on
// the socket, this API only backs room discovery.
func (a *RoomsAPI) Create(w http.ResponseWriter, r *http.Request) {
	var req createRoomReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !slugPattern.MatchString(req.Slug) {
		http.Error(w, "invalid slug", http.StatusBadRequest)
		return
	}

	rm, err := a.DB.CreateRoom(r.Context(), req.Slug, auth.UserID(r.Context()))
	if err != nil {
		if errors.Is(err, store.ErrRoomExists) {
			http.Error(w, "room already exists", http.StatusConflict)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, toRoomDTO(rm))
}

// Get returns room metadata by slug
func (a *RoomsAPI) Get(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		http.Error(w, "slug required", http.StatusBadRequest)
		return
	}

	rm, err := a.DB.GetRoomBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, store.ErrRoomNotFound) {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toRoomDTO(rm))
}

// List returns up to 100 rooms
func (a *RoomsAPI) List(w http.ResponseWriter, r *http.Request) {
	rooms, err := a.DB.ListRooms(r.Context(), 100, 0)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := make([]roomDTO, 0, len(rooms))
	for _, rm := range rooms {
		resp = append(resp, toRoomDTO(rm))
	}
	writeJSON(w, http.StatusOK, resp)
}
