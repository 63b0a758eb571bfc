package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/job-board/internal/api/dto"
	"github.com/spec-kit/job-board/internal/api/http/handlers"
	"github.com/spec-kit/job-board/internal/config"
	"github.com/spec-kit/job-board/internal/domain"
	"github.com/spec-kit/job-board/internal/repository"
	apperrors "github.com/spec-kit/job-board/pkg/util/errorutil"
)

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("down") }

func testConfig() config.Config {
	return config.Config{
		App:       config.AppConfig{Name: "job-board-test", Version: "test", RequestTimeoutSeconds: 5},
		Auth:      config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5, BcryptCost: 4},
		RateLimit: config.RateLimitConfig{RequestsPerMinute: 6000, Burst: 100},
	}
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	store := repository.NewMemoryStore()
	return NewApp(AppDependencies{
		Config:      testConfig(),
		Jobs:        store.Jobs(),
		Acceptances: store.Acceptances(),
		Accounts:    store.Accounts(),
		Profiles:    store.Profiles(),
	})
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*nethttp.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func register(t *testing.T, app *fiber.App, name, email string) string {
	t.Helper()
	resp, body := doJSON(t, app, nethttp.MethodPost, "/auth/register", "", dto.RegisterRequest{
		Name: name, Email: email, Password: "Secret1",
	})
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode, string(body))
	var env dto.Envelope[dto.AuthResponse]
	require.NoError(t, json.Unmarshal(body, &env))
	return env.Data.Token
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var env dto.ErrorEnvelope
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	return env.Error.Code
}

func TestJobLifecycleOverHTTP(t *testing.T) {
	app := newTestApp(t)
	alice := register(t, app, "Alice", "alice@example.com")
	bob := register(t, app, "Bob", "bob@example.com")

	resp, body := doJSON(t, app, nethttp.MethodPost, "/jobs", "", dto.CreateJobRequest{Title: "x"})
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, apperrors.CodeUnauthorized, errorCode(t, body))

	resp, body = doJSON(t, app, nethttp.MethodPost, "/jobs", alice, dto.CreateJobRequest{
		Title: "Logo design", Category: domain.CategoryGraphicsDesign, Summary: "Need a logo",
	})
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode, string(body))
	var created dto.Envelope[dto.JobResponse]
	require.NoError(t, json.Unmarshal(body, &created))
	job := created.Data
	assert.Equal(t, "Alice", job.PostedByName)
	assert.Equal(t, "alice@example.com", job.PosterEmail)

	resp, body = doJSON(t, app, nethttp.MethodGet, "/jobs?sort=desc&limit=6", "", nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var list dto.Envelope[[]dto.JobResponse]
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list.Data, 1)

	resp, body = doJSON(t, app, nethttp.MethodGet, "/jobs?limit=abc", "", nil)
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, apperrors.CodeValidation, errorCode(t, body))

	resp, _ = doJSON(t, app, nethttp.MethodPost, "/accepted", alice, dto.AcceptJobRequest{JobID: job.ID})
	assert.Equal(t, nethttp.StatusForbidden, resp.StatusCode)

	resp, body = doJSON(t, app, nethttp.MethodPost, "/accepted", bob, dto.AcceptJobRequest{JobID: job.ID})
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode, string(body))
	var accepted dto.Envelope[dto.AcceptanceResponse]
	require.NoError(t, json.Unmarshal(body, &accepted))
	assert.Equal(t, "Logo design", accepted.Data.Title)

	resp, body = doJSON(t, app, nethttp.MethodPost, "/accepted", bob, dto.AcceptJobRequest{JobID: job.ID})
	assert.Equal(t, nethttp.StatusConflict, resp.StatusCode)
	assert.Equal(t, apperrors.CodeDuplicateAcceptance, errorCode(t, body))

	resp, _ = doJSON(t, app, nethttp.MethodGet, "/accepted?email=alice@example.com", bob, nil)
	assert.Equal(t, nethttp.StatusForbidden, resp.StatusCode)

	resp, body = doJSON(t, app, nethttp.MethodGet, "/accepted?email=bob@example.com", bob, nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var held dto.Envelope[[]dto.AcceptanceResponse]
	require.NoError(t, json.Unmarshal(body, &held))
	require.Len(t, held.Data, 1)

	title := "Logo redesign"
	resp, _ = doJSON(t, app, nethttp.MethodPut, "/jobs/"+job.ID, bob, dto.UpdateJobRequest{Title: &title})
	assert.Equal(t, nethttp.StatusForbidden, resp.StatusCode)

	resp, _ = doJSON(t, app, nethttp.MethodDelete, "/accepted/"+accepted.Data.ID+"?reason=done", alice, nil)
	assert.Equal(t, nethttp.StatusForbidden, resp.StatusCode)

	resp, _ = doJSON(t, app, nethttp.MethodDelete, "/accepted/"+accepted.Data.ID+"?reason=done", bob, nil)
	assert.Equal(t, nethttp.StatusNoContent, resp.StatusCode)

	resp, body = doJSON(t, app, nethttp.MethodGet, "/accepted", bob, nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &held))
	assert.Empty(t, held.Data)

	resp, _ = doJSON(t, app, nethttp.MethodDelete, "/jobs/"+job.ID, alice, nil)
	assert.Equal(t, nethttp.StatusNoContent, resp.StatusCode)

	resp, body = doJSON(t, app, nethttp.MethodGet, "/jobs/"+job.ID, "", nil)
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	assert.Equal(t, apperrors.CodeNotFound, errorCode(t, body))
}

func TestAuthEndpoints(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, nethttp.MethodPost, "/auth/register", "", dto.RegisterRequest{Email: "a@example.com", Password: "short"})
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, apperrors.CodeValidation, errorCode(t, body))

	token := register(t, app, "Alice", "alice@example.com")

	resp, body = doJSON(t, app, nethttp.MethodPost, "/auth/login", "", dto.LoginRequest{Email: "alice@example.com", Password: "nope"})
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, apperrors.CodeAuthFailed, errorCode(t, body))

	resp, body = doJSON(t, app, nethttp.MethodPost, "/auth/federated", "", dto.FederatedLoginRequest{Provider: domain.AuthProviderGoogle, Code: "x"})
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, apperrors.CodeAuthFailed, errorCode(t, body))

	resp, body = doJSON(t, app, nethttp.MethodGet, "/auth/me", token, nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var me dto.Envelope[dto.PrincipalResponse]
	require.NoError(t, json.Unmarshal(body, &me))
	assert.Equal(t, "Alice", me.Data.DisplayName)

	resp, _ = doJSON(t, app, nethttp.MethodPost, "/auth/logout", token, nil)
	assert.Equal(t, nethttp.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, nethttp.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
}

func TestRegisterProfile(t *testing.T) {
	app := newTestApp(t)
	resp, body := doJSON(t, app, nethttp.MethodPost, "/users", "", dto.ProfileRequest{Name: "Alice", Email: "alice@example.com"})
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode, string(body))
	var env dto.Envelope[dto.ProfileResponse]
	require.NoError(t, json.Unmarshal(body, &env))
	assert.Equal(t, "alice@example.com", env.Data.Email)
	assert.False(t, env.Data.CreatedAt.IsZero())
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	app := newTestApp(t)
	resp, body := doJSON(t, app, nethttp.MethodGet, "/nope", "", nil)
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	assert.Equal(t, apperrors.CodeNotFound, errorCode(t, body))
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)

	resp, _ := doJSON(t, app, nethttp.MethodGet, "/health/live", "", nil)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, app, nethttp.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, app, nethttp.MethodGet, "/metrics", "", nil)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "jobboard_http_requests_total"), string(body))

	store := repository.NewMemoryStore()
	degraded := NewApp(AppDependencies{
		Config:      testConfig(),
		Jobs:        store.Jobs(),
		Acceptances: store.Acceptances(),
		Accounts:    store.Accounts(),
		Profiles:    store.Profiles(),
		Health:      map[string]handlers.Pinger{"postgres": failingPinger{}},
	})
	resp, body = doJSON(t, degraded, nethttp.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, nethttp.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "DEPENDENCY_UNAVAILABLE", errorCode(t, body))
}
