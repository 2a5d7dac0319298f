package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/studio-manager-api/internal/cache"
	"github.com/yukikurage/studio-manager-api/internal/constants"
	"github.com/yukikurage/studio-manager-api/internal/database"
	"github.com/yukikurage/studio-manager-api/internal/repository"
	"github.com/yukikurage/studio-manager-api/internal/services"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type handlerEnv struct {
	db     *gorm.DB
	svc    Services
	server *httptest.Server
}

// newHandlerEnv serves the full router over an in-memory database.
func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	db, err := database.OpenInMemory()
	require.NoError(t, err)

	invites, err := services.NewInviteIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	queryCache := cache.New(time.Minute)
	accounts := repository.NewAccountRepository(db)
	profiles := repository.NewProfileRepository(db)
	clients := repository.NewClientRepository(db)
	projects := repository.NewProjectRepository(db)
	tasks := repository.NewTaskRepository(db)
	entries := repository.NewTimeEntryRepository(db)

	projectService := services.NewProjectService(projects, clients, profiles, queryCache)
	svc := Services{
		Auth:      services.NewAuthService(accounts, profiles, invites),
		Users:     services.NewUserService(accounts, profiles, invites, queryCache),
		Clients:   services.NewClientService(clients, queryCache),
		Projects:  projectService,
		Tasks:     services.NewTaskService(tasks, profiles, projectService, nil, queryCache),
		Time:      services.NewTimeService(entries, tasks, projectService, queryCache),
		Dashboard: services.NewDashboardService(projects, tasks, entries, queryCache),
	}

	// httptest serves plain http, so the cookie must not be Secure.
	store := cookie.NewStore([]byte("test-session-secret"))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   constants.SessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := httptest.NewServer(NewRouter(svc, store, logger))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		server.Close()
		sqlDB.Close()
	})

	return &handlerEnv{db: db, svc: svc, server: server}
}

// apiClient is a browser-like client that keeps the session cookie.
type apiClient struct {
	t      *testing.T
	base   string
	client *http.Client
}

func (env *handlerEnv) newClient(t *testing.T) *apiClient {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &apiClient{t: t, base: env.server.URL, client: &http.Client{Jar: jar}}
}

// signIn creates an account with the given password and logs the client in.
// Admin accounts are created through EnsureAdmin, everyone else signs up.
func (env *handlerEnv) signIn(t *testing.T, email string, admin bool) *apiClient {
	t.Helper()

	const password = "supersecret"
	c := env.newClient(t)
	if admin {
		require.NoError(t, env.svc.Auth.EnsureAdmin(context.Background(), email, password))
	} else {
		status, _ := c.do(http.MethodPost, "/api/auth/signup", map[string]string{"email": email, "password": password})
		require.Equal(t, http.StatusCreated, status)
	}

	status, _ := c.do(http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, status)

	base, err := url.Parse(c.base)
	require.NoError(t, err)
	require.NotEmpty(t, c.client.Jar.Cookies(base), "session cookie was not kept by the client")
	return c
}

// do sends body as JSON and returns the status with the raw response body.
func (c *apiClient) do(method, path string, body any) (int, []byte) {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.base+path, reader)
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, raw
}

// decode sends the request, checks the status and unmarshals the body into out.
func (c *apiClient) decode(method, path string, body any, wantStatus int, out any) {
	c.t.Helper()

	status, raw := c.do(method, path, body)
	require.Equal(c.t, wantStatus, status, string(raw))
	if out != nil {
		require.NoError(c.t, json.Unmarshal(raw, out))
	}
}
