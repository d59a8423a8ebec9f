package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-go-api/internal/config"
)

func TestNewServerBootsOnSQLite(t *testing.T) {
	cfg := config.Config{
		AppName:             "Campus API",
		AppEnv:              "test",
		DatabaseDriver:      "sqlite",
		DatabaseURL:         "file:api_boot?mode=memory&cache=shared",
		AutoMigrate:         true,
		JWTSecret:           "boot-secret",
		UploadMaxSizeMB:     5,
		AdmissionRateLimit:  5,
		AdmissionRateWindow: time.Minute,
		DashboardCacheTTL:   time.Minute,
	}

	app, cleanup, err := newServer(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(cleanup)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/courses", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	login := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"nobody@example.com","password":"secret123"}`))
	login.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(login, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/students/me", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestNewServerRejectsUnknownDriver(t *testing.T) {
	_, _, err := newServer(config.Config{DatabaseDriver: "oracle", DatabaseURL: "x"}, zerolog.Nop())
	require.ErrorContains(t, err, "unsupported database driver")
}
