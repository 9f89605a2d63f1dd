package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bizzyglass/bizzyglass-backend/internal/auth"
	pkgerrors "github.com/bizzyglass/bizzyglass-backend/pkg/errors"
	"github.com/bizzyglass/bizzyglass-backend/pkg/types"
)

type stubAuthService struct {
	resp          *auth.TokenResponse
	err           error
	lastPassword  string
	lastAccess    string
	lastRefresh   string
	loggedOutWith string
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.TokenResponse, error) {
	s.lastPassword = req.Password
	return s.resp, s.err
}

func (s *stubAuthService) Refresh(ctx context.Context, accessToken, refreshToken string) (*auth.TokenResponse, error) {
	s.lastAccess = accessToken
	s.lastRefresh = refreshToken
	return s.resp, s.err
}

func (s *stubAuthService) Logout(ctx context.Context, accessToken string) error {
	s.loggedOutWith = accessToken
	return s.err
}

func sampleTokens() *auth.TokenResponse {
	return &auth.TokenResponse{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		TokenType:    "Bearer",
		ExpiresAt:    time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		Role:         "owner",
	}
}

func TestAuthLoginReturnsEnvelope(t *testing.T) {
	svc := &stubAuthService{resp: sampleTokens()}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"password":"hunter2"}`))
	resp := httptest.NewRecorder()

	AuthLogin(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastPassword != "hunter2" {
		t.Fatalf("expected password forwarded, got %q", svc.lastPassword)
	}
	var envelope types.DataEnvelope[auth.TokenResponse]
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.AccessToken != "access-token" || envelope.Data.RefreshToken != "refresh-token" {
		t.Fatalf("unexpected tokens %+v", envelope.Data)
	}
}

func TestAuthLoginRejectsMissingPassword(t *testing.T) {
	svc := &stubAuthService{resp: sampleTokens()}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()

	AuthLogin(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.lastPassword != "" {
		t.Fatal("service should not be called on invalid input")
	}
}

func TestAuthLoginMapsInvalidCredentials(t *testing.T) {
	svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"password":"nope"}`))
	resp := httptest.NewRecorder()

	AuthLogin(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	var body types.ErrorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Message != "invalid credentials" {
		t.Fatalf("unexpected message %q", body.Error.Message)
	}
}

func TestAuthRefreshPassesBothTokens(t *testing.T) {
	svc := &stubAuthService{resp: sampleTokens()}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", strings.NewReader(`{"refresh_token":"old-refresh"}`))
	req.Header.Set("Authorization", "Bearer expired-access")
	resp := httptest.NewRecorder()

	AuthRefresh(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastAccess != "expired-access" || svc.lastRefresh != "old-refresh" {
		t.Fatalf("unexpected tokens forwarded: access=%q refresh=%q", svc.lastAccess, svc.lastRefresh)
	}
}

func TestAuthRefreshRequiresBearer(t *testing.T) {
	svc := &stubAuthService{resp: sampleTokens()}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", strings.NewReader(`{"refresh_token":"old-refresh"}`))
	resp := httptest.NewRecorder()

	AuthRefresh(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthLogoutRevokes(t *testing.T) {
	svc := &stubAuthService{}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer access-token")
	resp := httptest.NewRecorder()

	AuthLogout(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.loggedOutWith != "access-token" {
		t.Fatalf("expected logout with access-token got %q", svc.loggedOutWith)
	}
}

func TestAuthHandlersWithoutService(t *testing.T) {
	resp := httptest.NewRecorder()
	AuthLogin(nil, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{}`)))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}
