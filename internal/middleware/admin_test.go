package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func newGatedEcho() *echo.Echo {
	e := echo.New()
	admin := e.Group("/api/admin")
	admin.Use(middleware.BasicAuth(AdminValidator("thomas", "secret")))
	admin.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})
	return e
}

func TestAdminGate(t *testing.T) {
	tests := []struct {
		name         string
		user         string
		pass         string
		withAuth     bool
		expectedCode int
	}{
		{name: "no credentials challenges", withAuth: false, expectedCode: http.StatusUnauthorized},
		{name: "wrong password challenges", user: "thomas", pass: "nope", withAuth: true, expectedCode: http.StatusUnauthorized},
		{name: "wrong user challenges", user: "admin", pass: "secret", withAuth: true, expectedCode: http.StatusUnauthorized},
		{name: "valid credentials pass through", user: "thomas", pass: "secret", withAuth: true, expectedCode: http.StatusOK},
	}

	e := newGatedEcho()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
			if tt.withAuth {
				req.SetBasicAuth(tt.user, tt.pass)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tt.expectedCode {
				t.Errorf("status = %d; want %d", rec.Code, tt.expectedCode)
			}
			if tt.expectedCode == http.StatusUnauthorized && rec.Header().Get("WWW-Authenticate") == "" {
				t.Error("401 response is missing the WWW-Authenticate challenge")
			}
		})
	}
}

func TestNonAdminPathsAreNotGated(t *testing.T) {
	e := newGatedEcho()
	e.GET("/api/listings", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/listings", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d; want 200 without credentials", rec.Code)
	}
}
