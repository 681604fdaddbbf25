package server_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/kogase-admin/analytics"
	"github.com/jrsteele09/kogase-admin/apiclient"
	"github.com/jrsteele09/kogase-admin/auth"
	"github.com/jrsteele09/kogase-admin/credentials"
	fakecredentialsrepo "github.com/jrsteele09/kogase-admin/credentials/repofake"
	"github.com/jrsteele09/kogase-admin/health"
	"github.com/jrsteele09/kogase-admin/iam"
	"github.com/jrsteele09/kogase-admin/internal/config"
	"github.com/jrsteele09/kogase-admin/projects"
	"github.com/jrsteele09/kogase-admin/server"
	"github.com/jrsteele09/kogase-admin/telemetry"
	"github.com/jrsteele09/kogase-admin/users"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type testFixture struct {
	backend *httptest.Server
	mux     *http.ServeMux
	repo    *fakecredentialsrepo.FakeRepo
	store   *credentials.Store
	server  *server.Server
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	t.Setenv("ENV", "TEST")
	f := &testFixture{mux: http.NewServeMux()}
	f.backend = httptest.NewServer(f.mux)
	t.Cleanup(f.backend.Close)

	cfg, err := config.New()
	require.NoError(t, err)

	f.repo = fakecredentialsrepo.NewFakeRepo()
	store, err := credentials.NewStore(f.repo)
	require.NoError(t, err)
	f.store = store

	client, err := apiclient.New(f.backend.URL+"/api/v1", store)
	require.NoError(t, err)
	identities, err := iam.NewService(client)
	require.NoError(t, err)
	telemetrySvc, err := telemetry.NewService(client)
	require.NoError(t, err)
	authSvc, err := auth.NewService(client, identities)
	require.NoError(t, err)
	t.Cleanup(authSvc.Close)
	loader, err := analytics.NewLoader(identities, telemetrySvc,
		analytics.WithNowTime(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	monitor, err := health.NewMonitor(client)
	require.NoError(t, err)

	srv, err := server.New(cfg, server.Services{
		Auth:      authSvc,
		IAM:       identities,
		Telemetry: telemetrySvc,
		Analytics: loader,
		Health:    monitor,
	})
	require.NoError(t, err)
	f.server = srv
	return f
}

func (f *testFixture) signIn(t *testing.T) {
	t.Helper()
	require.NoError(t, f.store.Save(&oauth2.Token{AccessToken: "access-1", RefreshToken: "refresh-1"},
		&users.User{ID: "u-1", Email: "ada@example.com"}))
}

func (f *testFixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

type errorBody struct {
	Message     string            `json:"message"`
	FieldErrors map[string]string `json:"fieldErrors"`
}

func TestNew_Validation(t *testing.T) {
	cfg, err := config.New()
	require.NoError(t, err)
	_, err = server.New(cfg, server.Services{})
	require.Error(t, err)
	_, err = server.New(nil, server.Services{})
	require.Error(t, err)
}

func TestServer_Routes(t *testing.T) {
	f := setupTestFixture(t)
	require.Contains(t, f.server.Routes(), "GET "+server.RouteAnalytics)
	require.Contains(t, f.server.Routes(), "POST "+server.RouteAuthLogin)
}

func TestServer_Health(t *testing.T) {
	f := setupTestFixture(t)
	rec := f.do(t, http.MethodGet, server.RouteHealth, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "unknown", decode[map[string]any](t, rec)["status"])
}

func TestServer_Login(t *testing.T) {
	f := setupTestFixture(t)
	f.mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req auth.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid email or password"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"token": "access-new", "refreshToken": "refresh-new", "userId": "u-1"})
	})
	f.mux.HandleFunc("GET /api/v1/iam/users/u-1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, users.User{ID: "u-1", Email: "ada@example.com"})
	})

	t.Run("me requires sign in", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, server.RouteAuthMe, "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Authentication required", decode[errorBody](t, rec).Message)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, server.RouteAuthLogin, "{")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing password", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, server.RouteAuthLogin, `{"email":"ada@example.com"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejected keeps backend status and message", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, server.RouteAuthLogin, `{"email":"ada@example.com","password":"nope"}`)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Invalid email or password", decode[errorBody](t, rec).Message)
	})

	t.Run("success then me then logout", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, server.RouteAuthLogin, `{"email":"ada@example.com","password":"secret"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "u-1", decode[users.User](t, rec).ID)

		rec = f.do(t, http.MethodGet, server.RouteAuthMe, "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "ada@example.com", decode[users.User](t, rec).Email)

		f.mux.HandleFunc("POST /api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		rec = f.do(t, http.MethodPost, server.RouteAuthLogout, "")
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = f.do(t, http.MethodGet, server.RouteAuthMe, "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestServer_Projects(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t)
	f.mux.HandleFunc("GET /api/v1/iam/projects", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []projects.Project{{ID: "p-1", Name: "Game"}})
	})

	rec := f.do(t, http.MethodGet, server.RouteProjects, "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]projects.Project](t, rec)
	require.Len(t, list, 1)
	require.Equal(t, "Game", list[0].Name)
}

func TestServer_BackendValidationErrors(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t)
	f.mux.HandleFunc("GET /api/v1/telemetry/projects/p-1/event-definitions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"title":  "One or more validation errors occurred.",
			"errors": map[string]any{"eventName": []string{"required", "too short"}},
		})
	})

	rec := f.do(t, http.MethodGet, "/api/projects/p-1/event-definitions", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorBody](t, rec)
	require.Equal(t, "One or more validation errors occurred.", body.Message)
	require.Equal(t, map[string]string{"eventName": "required"}, body.FieldErrors)
}

func TestServer_BackendUnavailable(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t)
	f.backend.Close()

	rec := f.do(t, http.MethodGet, server.RouteProjects, "")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Equal(t, "network error or server unavailable", decode[errorBody](t, rec).Message)
}

func TestServer_Sessions(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t)

	var gotPath, gotQuery string
	handler := func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		writeJSON(w, http.StatusOK, []map[string]any{{"id": "s-1", "userId": "u-9"}})
	}
	f.mux.HandleFunc("GET /api/v1/telemetry/sessions", handler)
	f.mux.HandleFunc("GET /api/v1/telemetry/projects/p-1/sessions", handler)

	rec := f.do(t, http.MethodGet, server.RouteSessions, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "/api/v1/telemetry/sessions", gotPath)
	sessions := decode[[]telemetry.PlaySession](t, rec)
	require.Len(t, sessions, 1)
	require.Equal(t, "u-9", sessions[0].UserID)

	rec = f.do(t, http.MethodGet, server.RouteSessions+"?project=p-1&page=2&active=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "/api/v1/telemetry/projects/p-1/sessions", gotPath)
	require.Contains(t, gotQuery, "page=2")
	require.Contains(t, gotQuery, "isActive=true")

	rec = f.do(t, http.MethodGet, server.RouteSessions+"?page=two", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Analytics(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t)
	f.mux.HandleFunc("GET /api/v1/iam/projects", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []projects.Project{{ID: "p-1", Name: "Game"}})
	})
	f.mux.HandleFunc("GET /api/v1/telemetry/projects/p-1/sessions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": "s-1", "userId": "u-1", "startedAt": "2024-06-15T09:00:00Z", "endedAt": "2024-06-15T09:10:00Z"},
			{"id": "s-2", "userId": "u-2", "startedAt": "2024-06-12T09:00:00Z"},
		})
	})
	f.mux.HandleFunc("GET /api/v1/telemetry/projects/p-1/events", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{{"id": "e-1"}})
	})

	t.Run("report", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, server.RouteAnalytics+"?timeframe=7d", "")
		require.Equal(t, http.StatusOK, rec.Code)
		report := decode[analytics.Report](t, rec)
		require.Equal(t, analytics.AllProjects, report.Scope)
		require.Equal(t, 1, report.Summary.DAU)
		require.Equal(t, 2, report.Summary.WAU)
		require.Equal(t, 600.0, report.Summary.AvgSessionDuration)
		require.Len(t, report.Summary.ProjectComparison, 1)
		require.Equal(t, "Game", report.Summary.ProjectComparison[0].ProjectName)
	})

	t.Run("invalid timeframe", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, server.RouteAnalytics+"?timeframe=1y", "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("requires sign in", func(t *testing.T) {
		require.NoError(t, f.store.Clear())
		rec := f.do(t, http.MethodGet, server.RouteAnalytics, "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestServer_ExpiredCredentialIsUnauthorized(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t)
	f.mux.HandleFunc("GET /api/v1/iam/projects", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "expired"})
	})
	f.mux.HandleFunc("POST /api/v1/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "revoked"})
	})

	rec := f.do(t, http.MethodGet, server.RouteProjects, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Authentication failed. Please log in again.", decode[errorBody](t, rec).Message)

	rec = f.do(t, http.MethodGet, server.RouteAuthMe, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_CorsPreflight(t *testing.T) {
	f := setupTestFixture(t)

	req := httptest.NewRequest(http.MethodOptions, server.RouteProjects, nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	require.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Methods"))

	req = httptest.NewRequest(http.MethodOptions, server.RouteProjects, nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_RecoverMiddleware(t *testing.T) {
	f := setupTestFixture(t)
	handler := server.ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}, f.server.APIMiddleware()...)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/anything", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "internal error", decode[errorBody](t, rec).Message)
}

func TestServer_StorageFailureIsInternal(t *testing.T) {
	f := setupTestFixture(t)
	f.signIn(t)
	f.repo.SetError(errors.New("disk full"))

	rec := f.do(t, http.MethodPost, server.RouteAuthLogout, "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "internal error", decode[errorBody](t, rec).Message)
}
