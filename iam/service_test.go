package iam_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/kogase-admin/apiclient"
	"github.com/jrsteele09/kogase-admin/credentials"
	fakecredentialsrepo "github.com/jrsteele09/kogase-admin/credentials/repofake"
	"github.com/jrsteele09/kogase-admin/iam"
	interrors "github.com/jrsteele09/kogase-admin/internal/errors"
	"github.com/jrsteele09/kogase-admin/projects"
	"github.com/jrsteele09/kogase-admin/roles"
	"github.com/jrsteele09/kogase-admin/users"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type recorded struct {
	method string
	path   string
	query  string
	body   string
	auth   string
}

type testFixture struct {
	service *iam.Service
	last    recorded
	status  int
	reply   string
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	f := &testFixture{status: http.StatusOK, reply: "null"}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		f.last = recorded{
			method: r.Method,
			path:   r.URL.EscapedPath(),
			query:  r.URL.RawQuery,
			body:   string(raw),
			auth:   r.Header.Get("Authorization"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(f.reply))
	}))
	t.Cleanup(server.Close)

	store, err := credentials.NewStore(fakecredentialsrepo.NewFakeRepo())
	require.NoError(t, err)
	require.NoError(t, store.Save(&oauth2.Token{AccessToken: "tok", RefreshToken: "ref"}, &users.User{ID: "admin"}))

	client, err := apiclient.New(server.URL+"/api/v1", store)
	require.NoError(t, err)
	f.service, err = iam.NewService(client)
	require.NoError(t, err)
	return f
}

func TestNewService_RequiresClient(t *testing.T) {
	_, err := iam.NewService(nil)
	require.Error(t, err)
}

func TestService_Endpoints(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	tests := []struct {
		name   string
		call   func() error
		method string
		path   string
		query  string
		body   string
	}{
		{"list projects", func() error { _, err := f.service.Projects(ctx); return err }, "GET", "/api/v1/iam/projects", "", ""},
		{"get project", func() error { _, err := f.service.Project(ctx, "p-1"); return err }, "GET", "/api/v1/iam/projects/p-1", "", ""},
		{"create project", func() error {
			_, err := f.service.CreateProject(ctx, projects.CreateRequest{Name: "Game", Description: "d", OwnerID: "o"})
			return err
		}, "POST", "/api/v1/iam/projects", "", `{"name":"Game","description":"d","ownerId":"o"}`},
		{"update project", func() error {
			active := false
			_, err := f.service.UpdateProject(ctx, "p-1", projects.UpdateRequest{IsActive: &active})
			return err
		}, "PUT", "/api/v1/iam/projects/p-1", "", `{"isActive":false}`},
		{"delete project", func() error { return f.service.DeleteProject(ctx, "p-1") }, "DELETE", "/api/v1/iam/projects/p-1", "", ""},

		{"list users default paging", func() error { _, err := f.service.Users(ctx, 0, 0); return err }, "GET", "/api/v1/iam/users", "page=1&pageSize=10", ""},
		{"list users", func() error { _, err := f.service.Users(ctx, 3, 25); return err }, "GET", "/api/v1/iam/users", "page=3&pageSize=25", ""},
		{"get user", func() error { _, err := f.service.User(ctx, "u-1"); return err }, "GET", "/api/v1/iam/users/u-1", "", ""},
		{"create user", func() error {
			_, err := f.service.CreateUser(ctx, users.CreateUserRequest{Email: "e", Password: "p", FirstName: "f", LastName: "l", Type: users.UserTypeDeveloper})
			return err
		}, "POST", "/api/v1/iam/users", "", `{"email":"e","password":"p","firstName":"f","lastName":"l","type":1}`},
		{"update user", func() error {
			_, err := f.service.UpdateUser(ctx, "u-1", users.UpdateUserRequest{FirstName: "Ada"})
			return err
		}, "PUT", "/api/v1/iam/users/u-1", "", `{"firstName":"Ada"}`},
		{"activate", func() error { return f.service.ActivateUser(ctx, "u-1") }, "PUT", "/api/v1/iam/users/u-1/activate", "", `{}`},
		{"deactivate", func() error { return f.service.DeactivateUser(ctx, "u-1") }, "PUT", "/api/v1/iam/users/u-1/deactivate", "", `{}`},
		{"suspend", func() error { return f.service.SuspendUser(ctx, "u-1") }, "PUT", "/api/v1/iam/users/u-1/suspend", "", `{}`},
		{"project users", func() error { _, err := f.service.ProjectUsers(ctx, "p-1"); return err }, "GET", "/api/v1/iam/projects/p-1/users", "", ""},

		{"list roles", func() error { _, err := f.service.Roles(ctx); return err }, "GET", "/api/v1/iam/roles", "", ""},
		{"get role", func() error { _, err := f.service.Role(ctx, "r-1"); return err }, "GET", "/api/v1/iam/roles/r-1", "", ""},
		{"create role", func() error {
			_, err := f.service.CreateRole(ctx, roles.Request{Name: "viewer", Permissions: []string{"read"}})
			return err
		}, "POST", "/api/v1/iam/roles", "", `{"name":"viewer","permissions":["read"]}`},
		{"update role", func() error {
			_, err := f.service.UpdateRole(ctx, "r-1", roles.Request{Description: "d"})
			return err
		}, "PUT", "/api/v1/iam/roles/r-1", "", `{"description":"d"}`},
		{"delete role", func() error { return f.service.DeleteRole(ctx, "r-1") }, "DELETE", "/api/v1/iam/roles/r-1", "", ""},
		{"project roles", func() error { _, err := f.service.ProjectRoles(ctx, "p-1"); return err }, "GET", "/api/v1/iam/projects/p-1/roles", "", ""},

		{"user roles", func() error { _, err := f.service.UserRoles(ctx, "u-1"); return err }, "GET", "/api/v1/iam/users/u-1/roles", "", ""},
		{"user project roles", func() error { _, err := f.service.UserProjectRoles(ctx, "p-1", "u-1"); return err }, "GET", "/api/v1/iam/projects/p-1/users/u-1/roles", "", ""},
		{"assign role", func() error { _, err := f.service.AssignRole(ctx, "p-1", "u-1", "r-1"); return err }, "POST", "/api/v1/iam/projects/p-1/users/u-1/roles", "", `{"roleId":"r-1"}`},
		{"remove role", func() error { return f.service.RemoveRole(ctx, "ur-1") }, "DELETE", "/api/v1/iam/user-roles/ur-1", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.call())
			require.Equal(t, tt.method, f.last.method)
			require.Equal(t, tt.path, f.last.path)
			require.Equal(t, tt.query, f.last.query)
			require.Equal(t, "Bearer tok", f.last.auth)
			if tt.body == "" {
				require.Empty(t, f.last.body)
			} else {
				require.JSONEq(t, tt.body, f.last.body)
			}
		})
	}
}

func TestService_RegisterUserIsUnauthenticated(t *testing.T) {
	f := setupTestFixture(t)
	f.reply = `{"id":"u-9","email":"new@kogase.io"}`

	u, err := f.service.RegisterUser(context.Background(), users.RegisterRequest{Email: "new@kogase.io", Password: "pw"})
	require.NoError(t, err)
	require.Equal(t, "u-9", u.ID)
	require.Empty(t, f.last.auth)
}

func TestService_DecodesResponses(t *testing.T) {
	f := setupTestFixture(t)
	f.reply = `[{"id":"p-1","name":"Alpha","isActive":true},{"id":"p-2","name":"Beta"}]`

	list, err := f.service.Projects(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "Alpha", projects.NameOf(list, "p-1"))
	require.True(t, list[0].IsActive)
}

func TestService_EscapesIDs(t *testing.T) {
	f := setupTestFixture(t)
	_, err := f.service.Project(context.Background(), "a/b c")
	require.NoError(t, err)
	require.Equal(t, "/api/v1/iam/projects/a%2Fb%20c", f.last.path)
}

func TestService_MissingIDs(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	_, err := f.service.Project(ctx, "")
	require.ErrorIs(t, err, interrors.ErrMissingID)
	require.ErrorIs(t, f.service.DeleteRole(ctx, " "), interrors.ErrMissingID)
	require.ErrorIs(t, f.service.RemoveRole(ctx, ""), interrors.ErrMissingID)
	_, err = f.service.AssignRole(ctx, "p", "u", "")
	require.ErrorIs(t, err, interrors.ErrMissingID)
	require.Empty(t, f.last.method)
}

func TestService_PropagatesBackendErrors(t *testing.T) {
	f := setupTestFixture(t)
	f.status = http.StatusConflict
	f.reply = `{"message":"project name taken"}`

	_, err := f.service.CreateProject(context.Background(), projects.CreateRequest{Name: "dup"})
	apiErr, ok := apiclient.AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusConflict, apiErr.Status)
	require.Equal(t, "project name taken", apiErr.Message)
}
