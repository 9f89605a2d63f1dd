package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	pkgAuth "github.com/bizzyglass/bizzyglass-backend/pkg/auth"
	"github.com/bizzyglass/bizzyglass-backend/pkg/auth/session"
	"github.com/bizzyglass/bizzyglass-backend/pkg/config"
	pkgerrors "github.com/bizzyglass/bizzyglass-backend/pkg/errors"
	redisclient "github.com/bizzyglass/bizzyglass-backend/pkg/redis"
	"github.com/bizzyglass/bizzyglass-backend/pkg/security"
)

var testJWT = config.JWTConfig{
	Secret:                 "secret",
	Issuer:                 "bizzyglass",
	ExpirationMinutes:      30,
	RefreshTokenTTLMinutes: 120,
}

func newSessionManager(t *testing.T) (*session.Manager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	raw := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })
	mgr, err := session.NewManager(redisclient.Wrap(raw), testJWT)
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}
	return mgr, mr
}

func buildTestService(t *testing.T, owner config.OwnerConfig, allowDev bool) (Service, *session.Manager) {
	t.Helper()
	mgr, _ := newSessionManager(t)
	svc, err := NewService(ServiceParams{
		SessionManager: mgr,
		JWTConfig:      testJWT,
		Owner:          owner,
		AllowDevSecret: allowDev,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, mgr
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func TestNewServiceRequiresCredential(t *testing.T) {
	mgr, _ := newSessionManager(t)
	if _, err := NewService(ServiceParams{SessionManager: mgr}); err == nil {
		t.Fatal("expected missing owner credential to fail")
	}
	if _, err := NewService(ServiceParams{SessionManager: mgr, Owner: config.OwnerConfig{DevPassword: "dev"}}); err == nil {
		t.Fatal("expected dev password outside dev to fail")
	}
	if _, err := NewService(ServiceParams{Owner: config.OwnerConfig{DevPassword: "dev"}, AllowDevSecret: true}); err == nil {
		t.Fatal("expected missing session manager to fail")
	}
}

func TestLoginIssuesOwnerToken(t *testing.T) {
	svc, mgr := buildTestService(t, config.OwnerConfig{PasswordHash: mustHashPassword(t, "glass-owner")}, false)

	resp, err := svc.Login(context.Background(), LoginRequest{Password: "glass-owner"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.TokenType != "Bearer" || resp.RefreshToken == "" {
		t.Fatalf("unexpected response %+v", resp)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Role != pkgAuth.RoleOwner || claims.Subject != pkgAuth.OwnerSubject {
		t.Fatalf("unexpected claims %+v", claims)
	}
	live, err := mgr.HasSession(context.Background(), claims.ID)
	if err != nil || !live {
		t.Fatalf("expected live session, got %v %v", live, err)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _ := buildTestService(t, config.OwnerConfig{PasswordHash: mustHashPassword(t, "glass-owner")}, false)

	for _, pw := range []string{"", "nope"} {
		_, err := svc.Login(context.Background(), LoginRequest{Password: pw})
		if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
			t.Fatalf("expected unauthorized for %q, got %v", pw, err)
		}
	}
}

func TestLoginWithDevSecret(t *testing.T) {
	svc, _ := buildTestService(t, config.OwnerConfig{DevPassword: "letmein"}, true)

	if _, err := svc.Login(context.Background(), LoginRequest{Password: "letmein"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.Login(context.Background(), LoginRequest{Password: "LETMEIN"}); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	svc, mgr := buildTestService(t, config.OwnerConfig{DevPassword: "letmein"}, true)
	first, err := svc.Login(context.Background(), LoginRequest{Password: "letmein"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	next, err := svc.Refresh(context.Background(), first.AccessToken, first.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if next.RefreshToken == first.RefreshToken {
		t.Fatal("expected a new refresh token")
	}

	oldClaims, _ := pkgAuth.ParseAccessToken(testJWT, first.AccessToken)
	if live, _ := mgr.HasSession(context.Background(), oldClaims.ID); live {
		t.Fatal("expected old session to be revoked")
	}

	if _, err := svc.Refresh(context.Background(), first.AccessToken, first.RefreshToken); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected replayed refresh to fail, got %v", err)
	}
}

func TestRefreshAcceptsExpiredAccessToken(t *testing.T) {
	mgr, _ := newSessionManager(t)
	issuedAt := time.Now().Add(-2 * time.Hour)
	svc, err := NewService(ServiceParams{
		SessionManager: mgr,
		JWTConfig:      testJWT,
		Owner:          config.OwnerConfig{DevPassword: "letmein"},
		AllowDevSecret: true,
		Now:            func() time.Time { return issuedAt },
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	first, err := svc.Login(context.Background(), LoginRequest{Password: "letmein"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := pkgAuth.ParseAccessToken(testJWT, first.AccessToken); err == nil {
		t.Fatal("expected access token to be expired")
	}
	if _, err := svc.Refresh(context.Background(), first.AccessToken, first.RefreshToken); err != nil {
		t.Fatalf("refresh with expired access token: %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, mgr := buildTestService(t, config.OwnerConfig{DevPassword: "letmein"}, true)
	resp, err := svc.Login(context.Background(), LoginRequest{Password: "letmein"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Logout(context.Background(), resp.AccessToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	claims, _ := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
	if live, _ := mgr.HasSession(context.Background(), claims.ID); live {
		t.Fatal("expected session to be revoked")
	}
	if err := svc.Logout(context.Background(), "garbage"); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
