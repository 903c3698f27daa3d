package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/westmarch-io/westmarch/internal/models"
	"github.com/westmarch-io/westmarch/internal/sessions"
	"github.com/westmarch-io/westmarch/internal/storage"
	"github.com/westmarch-io/westmarch/internal/testing/fakes"
	"github.com/westmarch-io/westmarch/internal/token"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  map[string]string
	Header http.Header
	Body   map[string]any
}

type testServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
}

func newTestServer(t *testing.T, handler http.HandlerFunc) *testServer {
	t.Helper()

	ts := &testServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorded := recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  map[string]string{},
			Header: r.Header.Clone(),
		}
		for key := range r.URL.Query() {
			recorded.Query[key] = r.URL.Query().Get(key)
		}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&recorded.Body)
		}

		ts.mu.Lock()
		ts.requests = append(ts.requests, recorded)
		ts.mu.Unlock()

		handler(w, r)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *testServer) Requests() []recordedRequest {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return append([]recordedRequest(nil), ts.requests...)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func newSession(t *testing.T) *sessions.Manager {
	t.Helper()
	m := sessions.NewManager(storage.NewMemory(), token.NewJWTDecoder())
	m.Init(context.Background())
	return m
}

func loggedInSession(t *testing.T, userID int64, username string, staff bool) *sessions.Manager {
	t.Helper()
	m := newSession(t)
	_, err := m.Login(context.Background(), fakes.AccessToken(t, userID, username, staff), fakes.RefreshToken(t, userID))
	require.NoError(t, err)
	return m
}

func TestClient_LoginStoresIssuedCredentials(t *testing.T) {
	access := fakes.AccessToken(t, 3, "brienne", false)
	refresh := fakes.RefreshToken(t, 3)

	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.TokenPair{Access: access, Refresh: refresh})
	})

	session := newSession(t)
	client := NewClient(server.URL, session)

	identity, err := client.Login(context.Background(), "brienne", "tarth")
	require.NoError(t, err)
	assert.Equal(t, int64(3), identity.UserID)

	stored, _ := session.AccessToken()
	assert.Equal(t, access, stored)
	storedRefresh, _ := session.RefreshToken()
	assert.Equal(t, refresh, storedRefresh)

	requests := server.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, http.MethodPost, requests[0].Method)
	assert.Equal(t, "/api/token/", requests[0].Path)
	assert.Equal(t, map[string]any{"username": "brienne", "password": "tarth"}, requests[0].Body)
	assert.Empty(t, requests[0].Header.Get("Authorization"))
}

func TestClient_LoginWithBadCredentials(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"detail": "No active account found with the given credentials",
		})
	})

	session := newSession(t)
	client := NewClient(server.URL, session)

	_, err := client.Login(context.Background(), "nobody", "wrong")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "No active account")
	assert.Equal(t, models.StateAnonymous, session.State())
}

func TestClient_LoginRejectsUndecodableAccess(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.TokenPair{Access: "opaque", Refresh: "r"})
	})

	session := newSession(t)
	client := NewClient(server.URL, session)

	_, err := client.Login(context.Background(), "a", "b")
	assert.ErrorIs(t, err, token.ErrUndecodable)
	assert.Equal(t, models.StateAnonymous, session.State())
}

func TestClient_ProtectedCallAttachesBearer(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.Character{
			{ID: 1, User: 8, Name: "Kael", Class: "Ranger"},
		})
	})

	session := loggedInSession(t, 8, "kael", false)
	client := NewClient(server.URL, session)

	characters, err := client.ListCharacters(context.Background(), CharacterFilter{Mine: true})
	require.NoError(t, err)
	require.Len(t, characters, 1)
	assert.Equal(t, "Kael", characters[0].Name)

	access, _ := session.AccessToken()
	requests := server.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, "/api/personajes/", requests[0].Path)
	assert.Equal(t, "Bearer "+access, requests[0].Header.Get("Authorization"))
	assert.Equal(t, "8", requests[0].Query["user"])

	_, err = uuid.Parse(requests[0].Header.Get(RequestIDHeader))
	assert.NoError(t, err)
	assert.Contains(t, requests[0].Header.Get("User-Agent"), "westmarch/")
}

func TestClient_ListCharactersAcceptsPaginatedBody(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.Page[models.Character]{
			Count:   2,
			Results: []models.Character{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}},
		})
	})

	client := NewClient(server.URL, loggedInSession(t, 1, "a", false))

	characters, err := client.ListCharacters(context.Background(), CharacterFilter{})
	require.NoError(t, err)
	assert.Len(t, characters, 2)
	assert.Empty(t, server.Requests()[0].Query)
}

func TestClient_UnauthorizedLogsOut(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired"})
	})

	session := loggedInSession(t, 2, "gwen", false)
	client := NewClient(server.URL, session)

	var events []models.EventKind
	session.Subscribe(func(e models.Event) { events = append(events, e.Kind) })

	_, err := client.ListCharacters(context.Background(), CharacterFilter{})
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, models.StateAnonymous, session.State())
	assert.Equal(t, []models.EventKind{models.EventLogout}, events)
}

func TestClient_ProtectedCallWithoutSession(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	client := NewClient(server.URL, newSession(t))

	_, err := client.ListCharacters(context.Background(), CharacterFilter{})
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	err = client.Get(context.Background(), "/api/objetos/", nil)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestClient_ProtectedCallWaitsForInit(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.Character{})
	})

	store := storage.NewMemory()
	require.NoError(t, store.Set(context.Background(), sessions.AccessTokenKey, fakes.AccessToken(t, 5, "eli", false)))

	session := sessions.NewManager(store, token.NewJWTDecoder())
	client := NewClient(server.URL, session)

	done := make(chan error, 1)
	go func() {
		_, err := client.ListCharacters(context.Background(), CharacterFilter{})
		done <- err
	}()

	select {
	case err := <-done:
		t.Fatalf("call returned before init: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	session.Init(context.Background())

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("call did not resume after init")
	}
	assert.Len(t, server.Requests(), 1)
}

func TestClient_ProtectedCallHonoursContext(t *testing.T) {
	session := sessions.NewManager(storage.NewMemory(), token.NewJWTDecoder())
	client := NewClient("http://127.0.0.1:1", session)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := client.ListCharacters(ctx, CharacterFilter{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_ListClasses(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.Page[models.DnDClass]{
			Count:   25,
			Results: []models.DnDClass{{ID: 1, Slug: "wizard", Name: "Wizard", HitDie: 6}},
		})
	})

	client := NewClient(server.URL, loggedInSession(t, 1, "dm", true))

	page, err := client.ListClasses(context.Background(), 2, " wiz ")
	require.NoError(t, err)
	assert.Equal(t, 25, page.Count)
	assert.Equal(t, 3, page.TotalPages(ClassesPageSize))
	require.Len(t, page.Results, 1)
	assert.Equal(t, "wizard", page.Results[0].Slug)

	requests := server.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, "/api/classes/", requests[0].Path)
	assert.Equal(t, map[string]string{"page": "2", "search": "wiz"}, requests[0].Query)
}

func TestClient_ListClassesRequiresStaff(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	client := NewClient(server.URL, loggedInSession(t, 1, "player", false))

	_, err := client.ListClasses(context.Background(), 1, "")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestClient_ForbiddenDoesNotLogOut(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]string{"detail": "nope"})
	})

	session := loggedInSession(t, 1, "player", false)
	client := NewClient(server.URL, session)

	err := client.Get(context.Background(), "api/npcs/", nil)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, models.StateAuthenticated, session.State())
}

func TestClient_GetReturnsAPIError(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
	})

	client := NewClient(server.URL, loggedInSession(t, 1, "a", false))

	err := client.Get(context.Background(), "/api/tiendas/99/", nil)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Not found.", apiErr.Message)
	assert.Equal(t, "/api/tiendas/99/", server.Requests()[0].Path)
}

func TestClient_GetDecodes(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"nombre": "Forja"})
	})

	client := NewClient(server.URL, loggedInSession(t, 1, "a", false))

	var out map[string]string
	require.NoError(t, client.Get(context.Background(), "api/tiendas/1/", &out))
	assert.Equal(t, "Forja", out["nombre"])
}

func TestClient_Refresh(t *testing.T) {
	newAccess := fakes.AccessToken(t, 4, "dane", true)

	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"access": newAccess})
	})

	session := loggedInSession(t, 4, "dane", false)
	oldRefresh, _ := session.RefreshToken()
	client := NewClient(server.URL, session)

	identity, err := client.Refresh(context.Background())
	require.NoError(t, err)
	assert.True(t, identity.IsStaff)

	access, _ := session.AccessToken()
	assert.Equal(t, newAccess, access)
	refresh, _ := session.RefreshToken()
	assert.Equal(t, oldRefresh, refresh)

	requests := server.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, "/api/token/refresh/", requests[0].Path)
	assert.Equal(t, map[string]any{"refresh": oldRefresh}, requests[0].Body)
}

func TestClient_RefreshRotation(t *testing.T) {
	newAccess := fakes.AccessToken(t, 4, "dane", false)
	newRefresh := fakes.RefreshToken(t, 4) + "-rotated"

	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.TokenPair{Access: newAccess, Refresh: newRefresh})
	})

	session := loggedInSession(t, 4, "dane", false)
	client := NewClient(server.URL, session)

	_, err := client.Refresh(context.Background())
	require.NoError(t, err)

	refresh, _ := session.RefreshToken()
	assert.Equal(t, newRefresh, refresh)
}

func TestClient_RefreshRejected(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token is blacklisted"})
	})

	session := loggedInSession(t, 4, "dane", false)
	client := NewClient(server.URL, session)

	_, err := client.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, models.StateAnonymous, session.State())
}

func TestClient_RefreshWithoutSession(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", newSession(t))

	_, err := client.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestClient_Register(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]string{"username": "new"})
	})

	client := NewClient(server.URL, newSession(t))

	err := client.Register(context.Background(), models.RegisterRequest{
		Username:  "new",
		Email:     "new@example.com",
		Password:  "secret123",
		FirstName: "Nia",
	})
	require.NoError(t, err)

	requests := server.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, "/api/register/", requests[0].Path)
	assert.Equal(t, "Nia", requests[0].Body["first_name"])
	assert.NotContains(t, requests[0].Body, "last_name")
}

func TestClient_RegisterJoinsFieldErrors(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"username": []string{"A user with that username already exists."},
			"email":    []string{"Enter a valid email address."},
		})
	})

	client := NewClient(server.URL, newSession(t))

	err := client.Register(context.Background(), models.RegisterRequest{Username: "dup"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Enter a valid email address. A user with that username already exists.", apiErr.Message)
}

func TestClient_Activate(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        any
		wantMessage string
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body:   map[string]string{"message": "ok"},
		},
		{
			name:        "server message",
			status:      http.StatusBadRequest,
			body:        map[string]string{"error": "Token already used"},
			wantMessage: "Token already used",
		},
		{
			name:        "default message",
			status:      http.StatusBadRequest,
			body:        map[string]string{},
			wantMessage: activateFailedMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})

			client := NewClient(server.URL, newSession(t))

			err := client.Activate(context.Background(), "MQ", "c2d-abc")
			assert.Equal(t, "/api/activate/MQ/c2d-abc/", server.Requests()[0].Path)

			if len(tt.wantMessage) == 0 {
				require.NoError(t, err)
				return
			}

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
		})
	}
}
