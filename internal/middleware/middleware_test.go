package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/example/gemmarket/internal/models"
)

type stubResolver map[string]*models.User

func (s stubResolver) Session(_ context.Context, token string) (*models.User, error) {
	if user, ok := s[token]; ok {
		return user, nil
	}
	return nil, errors.New("unknown token")
}

func newApp(handlers ...fiber.Handler) *fiber.App {
	resolver := stubResolver{
		"admin-token": {Name: "Admin", Role: models.RoleAdmin},
		"user-token":  {Name: "User", Role: models.RoleUser},
	}
	app := fiber.New()
	app.Use(Session(resolver, "session_token"))
	chain := append(handlers, func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/resource", chain...)
	return app
}

func TestTokenFromRequestPrefersBearer(t *testing.T) {
	app := fiber.New()
	var got string
	app.Get("/", func(c *fiber.Ctx) error {
		got = TokenFromRequest(c, "session_token")
		return nil
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer header-token")
	req.AddCookie(&http.Cookie{Name: "session_token", Value: "cookie-token"})
	if _, err := app.Test(req); err != nil {
		t.Fatal(err)
	}
	if got != "header-token" {
		t.Errorf("expected header token, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: "cookie-token"})
	if _, err := app.Test(req); err != nil {
		t.Fatal(err)
	}
	if got != "cookie-token" {
		t.Errorf("expected cookie token, got %q", got)
	}
}

func TestRequireUser(t *testing.T) {
	app := newApp(RequireUser())

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/resource", nil))
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("expected 401 without session, got %d", resp.StatusCode)
	}

	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	resp, _ = app.Test(req)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("expected 401 for unknown token, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodGet, "/resource", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	resp, _ = app.Test(req)
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200 with session, got %d", resp.StatusCode)
	}
}

func TestAdminGate(t *testing.T) {
	app := newApp(AdminGate())

	cases := []struct {
		token    string
		status   int
		location string
	}{
		{"", fiber.StatusFound, "/login"},
		{"user-token", fiber.StatusFound, "/"},
		{"admin-token", fiber.StatusOK, ""},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/resource", nil)
		if tc.token != "" {
			req.Header.Set("Authorization", "Bearer "+tc.token)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != tc.status || resp.Header.Get(fiber.HeaderLocation) != tc.location {
			t.Errorf("token %q: got %d %q", tc.token, resp.StatusCode, resp.Header.Get(fiber.HeaderLocation))
		}
	}
}

func TestPublicCache(t *testing.T) {
	app := newApp(PublicCache())
	app.Post("/resource", PublicCache(), func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/resource", nil))
	if got := resp.Header.Get(fiber.HeaderCacheControl); got != publicCacheControl {
		t.Errorf("anonymous GET: got %q", got)
	}

	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	resp, _ = app.Test(req)
	if got := resp.Header.Get(fiber.HeaderCacheControl); got != noStore {
		t.Errorf("signed-in GET: got %q", got)
	}

	resp, _ = app.Test(httptest.NewRequest(http.MethodPost, "/resource", nil))
	if got := resp.Header.Get(fiber.HeaderCacheControl); got != noStore {
		t.Errorf("POST: got %q", got)
	}
}
