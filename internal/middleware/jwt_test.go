package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestJWTProtectedCopiesProfileClaims(t *testing.T) {
	app := fiber.New()
	app.Use(JWTProtected("secret"))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":     c.Locals("user_id"),
			"role":        c.Locals("user_role"),
			"lecturer_id": c.Locals("lecturer_id"),
			"student_id":  c.Locals("student_id"),
		})
	})

	token := signed(t, "secret", jwt.MapClaims{
		"sub":         "12",
		"role":        "Lecturer",
		"lecturer_id": 3,
		"exp":         time.Now().Add(time.Hour).Unix(),
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	decodeJSON(t, resp, &body)
	require.Equal(t, float64(12), body["user_id"])
	require.Equal(t, "lecturer", body["role"])
	require.Equal(t, float64(3), body["lecturer_id"])
	require.Nil(t, body["student_id"])
}

func TestJWTProtectedRejectsBadTokens(t *testing.T) {
	app := fiber.New()
	app.Use(JWTProtected("secret"))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	expired := signed(t, "secret", jwt.MapClaims{"sub": "1", "exp": time.Now().Add(-time.Minute).Unix()})
	foreign := signed(t, "other", jwt.MapClaims{"sub": "1"})

	for _, header := range []string{"", "Token abc", "Bearer " + expired, "Bearer " + foreign} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, header)
	}
}

func decodeJSON(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}
