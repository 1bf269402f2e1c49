package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/lackwerk/rental-service/internal/config"
	"github.com/lackwerk/rental-service/internal/handler"
)

// Logout sits behind the JWT guard so its revoke-all branch can read
// the user claim; login and refresh stay open.
func TestAuthRouteGuards(t *testing.T) {
	e := echo.New()
	RegisterAuth(e, handler.NewAuthHandler(config.Config{}, nil, nil), "test-secret")

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("logout without token: expected 401, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("login without body: expected 400, got %d", rec.Code)
	}
}
