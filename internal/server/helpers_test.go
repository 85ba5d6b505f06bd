package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePagination(t *testing.T) {
	app := fiber.New()

	var got Pagination
	app.Get("/", func(c *fiber.Ctx) error {
		got = parsePagination(c, defaultPageSize)
		return c.SendStatus(http.StatusOK)
	})

	tests := []struct {
		name       string
		url        string
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "/", 20, 0},
		{"explicit values", "/?limit=5&offset=40", 5, 40},
		{"limit capped", "/?limit=1000", maxPaginationLimit, 0},
		{"negative values fall back", "/?limit=-1&offset=-5", 20, 0},
		{"non-numeric values fall back", "/?limit=abc&offset=xyz", 20, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.url, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tc.wantLimit, got.Limit)
			assert.Equal(t, tc.wantOffset, got.Offset)
		})
	}
}

func TestParseID(t *testing.T) {
	app := fiber.New()
	s := &Server{}

	app.Get("/posts/:id", func(c *fiber.Ctx) error {
		id, err := s.parseID(c, "id", "Post")
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id})
	})

	tests := []struct {
		name       string
		url        string
		wantStatus int
	}{
		{"valid id", "/posts/42", http.StatusOK},
		{"zero id", "/posts/0", http.StatusNotFound},
		{"negative id", "/posts/-3", http.StatusNotFound},
		{"non-numeric id", "/posts/abc", http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.url, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tc.wantStatus, resp.StatusCode)
		})
	}
}
