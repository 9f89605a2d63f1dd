package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgAuth "github.com/bizzyglass/bizzyglass-backend/pkg/auth"
	"github.com/bizzyglass/bizzyglass-backend/pkg/auth/session"
	"github.com/bizzyglass/bizzyglass-backend/pkg/config"
	pkgerrors "github.com/bizzyglass/bizzyglass-backend/pkg/errors"
	"github.com/bizzyglass/bizzyglass-backend/pkg/logger"
	"github.com/bizzyglass/bizzyglass-backend/pkg/security"
)

const (
	invalidCredentialsMessage = "invalid credentials"
	tokenTypeBearer           = "Bearer"
)

// Service exchanges the owner credential for short-lived access tokens.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenResponse, error)
	Logout(ctx context.Context, accessToken string) error
}

type sessionManager interface {
	Start(ctx context.Context) (session.Pair, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (session.Pair, error)
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	Owner          config.OwnerConfig
	AllowDevSecret bool
	Logger         *logger.Logger
	Now            func() time.Time
}

type service struct {
	sessions       sessionManager
	jwtCfg         config.JWTConfig
	owner          config.OwnerConfig
	allowDevSecret bool
	logg           *logger.Logger
	now            func() time.Time
}

// NewService constructs the owner auth service.
func NewService(params ServiceParams) (Service, error) {
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	hasHash := strings.TrimSpace(params.Owner.PasswordHash) != ""
	hasDev := params.AllowDevSecret && params.Owner.DevPassword != ""
	if !hasHash && !hasDev {
		return nil, fmt.Errorf("owner password hash is required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		sessions:       params.SessionManager,
		jwtCfg:         params.JWTConfig,
		owner:          params.Owner,
		allowDevSecret: params.AllowDevSecret,
		logg:           params.Logger,
		now:            now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	ok, err := s.verify(req.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		if s.logg != nil {
			s.logg.Warn(ctx, "auth.login.rejected")
		}
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	pair, err := s.sessions.Start(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store refresh token")
	}
	return s.issue(pair)
}

func (s *service) Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenResponse, error) {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}

	pair, err := s.sessions.Rotate(ctx, claims.ID, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}
	return s.issue(pair)
}

func (s *service) Logout(ctx context.Context, accessToken string) error {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.ID == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}
	if err := s.sessions.Revoke(ctx, claims.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) issue(pair session.Pair) (*TokenResponse, error) {
	now := s.now()
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		Subject: pkgAuth.OwnerSubject,
		Role:    pkgAuth.RoleOwner,
		JTI:     pair.AccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return &TokenResponse{
		AccessToken:  token,
		RefreshToken: pair.RefreshToken,
		TokenType:    tokenTypeBearer,
		ExpiresAt:    now.Add(s.jwtCfg.AccessTokenTTL()),
		Role:         string(pkgAuth.RoleOwner),
	}, nil
}

// verify prefers the argon2 hash; the plain dev secret is only consulted
// when no hash is configured and the app runs in dev.
func (s *service) verify(password string) (bool, error) {
	if password == "" {
		return false, nil
	}
	if hash := strings.TrimSpace(s.owner.PasswordHash); hash != "" {
		return security.VerifyPassword(password, hash)
	}
	if s.allowDevSecret {
		return security.EqualSecret(password, s.owner.DevPassword), nil
	}
	return false, nil
}
