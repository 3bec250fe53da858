// Package backoffice_test runs DB-less smoke tests over the admin router:
// IP whitelist, admin JWT gating, and route wiring.
package backoffice_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/galdos/auctionhouse/internal/backoffice"
	"github.com/galdos/auctionhouse/internal/config"
	"github.com/galdos/auctionhouse/internal/service"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const testSecret = "test-access-secret-abcdefghijklmnop"

func testCfg(allowedIPs string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Env:                  "development",
			BackofficePort:       "8081",
			BackofficeAllowedIPs: allowedIPs,
		},
		JWT: config.JWTConfig{
			AccessSecret:  testSecret,
			RefreshSecret: "test-refresh-secret-abcdefghijklmnop",
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    30 * 24 * time.Hour,
		},
	}
}

func buildAdminRouter(t *testing.T, allowedIPs string) http.Handler {
	t.Helper()
	cfg := testCfg(allowedIPs)
	return backoffice.SetupBackofficeRouter(backoffice.BackofficeDeps{
		AuthSvc: service.NewAuthService(nil, cfg),
		Cfg:     cfg,
	})
}

// signToken mints an HS256 access token with the given role, signed with the
// same secret the router's AuthService parses with.
func signToken(t *testing.T, role string) string {
	t.Helper()
	claims := service.AppClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Role:      role,
		TokenType: "access",
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return signed
}

func doAdmin(t *testing.T, h http.Handler, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestAdminRoutes_NoToken_Returns401(t *testing.T) {
	h := buildAdminRouter(t, "")
	for _, path := range []string{
		"/admin/dashboard",
		"/admin/auctions",
		"/admin/auctions/11111111-1111-1111-1111-111111111111",
		"/admin/users",
		"/admin/finance/report",
	} {
		rr := doAdmin(t, h, http.MethodGet, path, "")
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without token = %d, want 401", path, rr.Code)
		}
	}
}

func TestAdminRoutes_UserRole_Returns403(t *testing.T) {
	h := buildAdminRouter(t, "")
	token := signToken(t, "user")
	rr := doAdmin(t, h, http.MethodGet, "/admin/dashboard", token)
	if rr.Code != http.StatusForbidden {
		t.Errorf("GET /admin/dashboard with user role = %d, want 403", rr.Code)
	}
}

func TestAdminRoutes_AdminRole_PassesAuth(t *testing.T) {
	h := buildAdminRouter(t, "")
	token := signToken(t, "admin")
	// Nil repos behind the handler: the request reaches it (no 401/403);
	// gin.Recovery turns the nil-DB panic into a 500.
	rr := doAdmin(t, h, http.MethodGet, "/admin/dashboard", token)
	if rr.Code == http.StatusUnauthorized || rr.Code == http.StatusForbidden {
		t.Errorf("admin token should clear the auth middleware, got %d", rr.Code)
	}
}

func TestIPWhitelist_BlocksUnknownIP(t *testing.T) {
	h := buildAdminRouter(t, "10.0.0.1, 10.0.0.2")
	// httptest requests originate from 192.0.2.1 — not in the allowlist.
	rr := doAdmin(t, h, http.MethodGet, "/admin/dashboard", signToken(t, "admin"))
	if rr.Code != http.StatusForbidden {
		t.Errorf("request from unlisted IP = %d, want 403", rr.Code)
	}
}

func TestIPWhitelist_EmptyAllowsAll(t *testing.T) {
	h := buildAdminRouter(t, "")
	rr := doAdmin(t, h, http.MethodGet, "/admin/dashboard", "")
	// Request passes the whitelist and fails on auth instead.
	if rr.Code == http.StatusForbidden {
		t.Errorf("empty allowlist should not block by IP, got %d", rr.Code)
	}
}
