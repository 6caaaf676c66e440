package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajnish-49/collab-whiteboard/internal/store"
	"github.com/rajnish-49/collab-whiteboard/pkg/auth"
)

type mockUserStore struct {
	createErr error
	verifyErr error
	user      store.User
}

func (m *mockUserStore) CreateUser(_ context.Context, email, _, name string) (store.User, error) {
	if m.createErr != nil {
		return store.User{}, m.createErr
	}
	u := m.user
	u.Email = email
	u.Name = name
	return u, nil
}

func (m *mockUserStore) VerifyUser(_ context.Context, _, _ string) (store.User, error) {
	if m.verifyErr != nil {
		return store.User{}, m.verifyErr
	}
	return m.user, nil
}

type mockRoomStore struct {
	createErr error
	getErr    error
	room      store.Room
	rooms     []store.Room
}

func (m *mockRoomStore) CreateRoom(_ context.Context, slug, adminID string) (store.Room, error) {
	if m.createErr != nil {
		return store.Room{}, m.createErr
	}
	rm := m.room
	rm.Slug = slug
	rm.AdminID = adminID
	return rm, nil
}

func (m *mockRoomStore) GetRoomBySlug(_ context.Context, _ string) (store.Room, error) {
	if m.getErr != nil {
		return store.Room{}, m.getErr
	}
	return m.room, nil
}

func (m *mockRoomStore) ListRooms(_ context.Context, _, _ int) ([]store.Room, error) {
	return m.rooms, nil
}

func TestAuthAPI_Register(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		storeErr   error
		wantStatus int
	}{
		{
			name:       "success",
			body:       `{"email":"a@example.com","password":"longenough","name":"A"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "weak password",
			body:       `{"email":"a@example.com","password":"short"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad email",
			body:       `{"email":"nope","password":"longenough"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "duplicate email",
			body:       `{"email":"a@example.com","password":"longenough"}`,
			storeErr:   store.ErrEmailTaken,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "bad payload",
			body:       `{{{`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &AuthAPI{
				DB:  &mockUserStore{createErr: tt.storeErr, user: store.User{ID: "u1"}},
				JWT: auth.New("test-secret"),
				TTL: time.Hour,
			}

			req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			api.Register(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusCreated {
				var resp tokenResp
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.NotEmpty(t, resp.Token)
				assert.Equal(t, "a@example.com", resp.User.Email)

				// The returned token is immediately usable.
				uid, err := auth.New("test-secret").Verify(resp.Token)
				require.NoError(t, err)
				assert.Equal(t, "u1", uid)
			}
		})
	}
}

func TestAuthAPI_Login(t *testing.T) {
	api := &AuthAPI{
		DB:  &mockUserStore{user: store.User{ID: "u1", Email: "a@example.com"}},
		JWT: auth.New("test-secret"),
		TTL: time.Hour,
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"a@example.com","password":"longenough"}`))
	rec := httptest.NewRecorder()
	api.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp tokenResp
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp.Token)
}

func TestAuthAPI_LoginRejected(t *testing.T) {
	api := &AuthAPI{
		DB:  &mockUserStore{verifyErr: store.ErrInvalidCredentials},
		JWT: auth.New("test-secret"),
		TTL: time.Hour,
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"a@example.com","password":"wrong"}`))
	rec := httptest.NewRecorder()
	api.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid credentials")
}

func TestRoomsAPI_Create(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		storeErr   error
		wantStatus int
	}{
		{name: "success", body: `{"slug":"my-board"}`, wantStatus: http.StatusCreated},
		{name: "bad slug", body: `{"slug":"no spaces!"}`, wantStatus: http.StatusBadRequest},
		{name: "empty slug", body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "duplicate", body: `{"slug":"my-board"}`, storeErr: store.ErrRoomExists, wantStatus: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &RoomsAPI{DB: &mockRoomStore{createErr: tt.storeErr, room: store.Room{ID: "r1"}}}

			req := httptest.NewRequest(http.MethodPost, "/api/rooms", strings.NewReader(tt.body))
			req = req.WithContext(auth.WithUser(req.Context(), "u1"))
			rec := httptest.NewRecorder()
			api.Create(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusCreated {
				var resp roomDTO
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, "my-board", resp.Slug)
				assert.Equal(t, "u1", resp.AdminID)
			}
		})
	}
}

func TestRoomsAPI_GetNotFound(t *testing.T) {
	api := &RoomsAPI{DB: &mockRoomStore{getErr: store.ErrRoomNotFound}}

	req := httptest.NewRequest(http.MethodGet, "/api/rooms/ghost", nil)
	req.SetPathValue("slug", "ghost")
	rec := httptest.NewRecorder()
	api.Get(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMiddleware_Auth(t *testing.T) {
	j := auth.New("test-secret")
	mw := &Middleware{auth: j}

	var gotUID string
	h := mw.Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUID = auth.UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		tok, err := j.Sign("u1", time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "u1", gotUID)
	})
}
