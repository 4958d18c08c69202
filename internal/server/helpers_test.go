package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"rizq/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanizeParam(t *testing.T) {
	tests := []struct {
		param    string
		expected string
	}{
		{"id", "ID"},
		{"userId", "user ID"},
		{"dealId", "deal ID"},
		{"counterpartyUserId", "counterparty user ID"},
		{"something", "something"},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			assert.Equal(t, tt.expected, humanizeParam(tt.param))
		})
	}
}

func TestParseID(t *testing.T) {
	s := &Server{}
	app := fiber.New()
	app.Get("/deals/:dealId", func(c *fiber.Ctx) error {
		id, err := s.parseID(c, "dealId")
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id})
	})

	tests := []struct {
		path    string
		status  int
		message string
	}{
		{"/deals/42", http.StatusOK, ""},
		{"/deals/abc", http.StatusBadRequest, "Invalid deal ID"},
		{"/deals/0", http.StatusBadRequest, "Invalid deal ID"},
		{"/deals/-3", http.StatusBadRequest, "Invalid deal ID"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.message == "" {
				return
			}
			var body models.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.message, body.Error)
			assert.Equal(t, models.CodeValidation, body.Code)
		})
	}
}

func TestCurrentUser_MissingLocals(t *testing.T) {
	s := &Server{}
	app := fiber.New()
	app.Get("/me", func(c *fiber.Ctx) error {
		if _, err := s.currentUser(c); err != nil {
			return nil
		}
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
