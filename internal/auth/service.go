// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/apptnu/portal/internal/core"
	"github.com/apptnu/portal/internal/middleware"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type UserInfo struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}

// TokenStore keeps the ids of access tokens revoked before expiry.
type TokenStore interface {
	RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

type Service struct {
	jwt          *JWTManager
	userProvider UserProvider
	hasher       *core.PasswordHasher
	tokens       TokenStore
	logger       *slog.Logger
}

func NewService(
	jwt *JWTManager,
	userProvider UserProvider,
	hasher *core.PasswordHasher,
	tokens TokenStore,
	logger *slog.Logger,
) *Service {
	return &Service{
		jwt:          jwt,
		userProvider: userProvider,
		hasher:       hasher,
		tokens:       tokens,
		logger:       logger,
	}
}

// Login fails with ErrInvalidCredentials for both an unknown email and a
// wrong password, and takes the same time for either.
func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*LoginResponse, error) {
	user, err := s.userProvider.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = s.hasher.VerifyTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := s.hasher.VerifyTimingSafe(
		req.Password,
		&user.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		if err := s.userProvider.UpdatePassword(ctx, user.ID, newHash); err != nil {
			s.logger.WarnContext(ctx, "password rehash failed",
				"user_id", user.ID,
				"error", err,
			)
		}
	}

	token, expiresAt, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		UserID: user.ID,
		Role:   user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	return &LoginResponse{
		User: UserResponse{
			ID:        user.ID,
			Email:     user.Email,
			Role:      user.Role,
			CreatedAt: user.CreatedAt,
			UpdatedAt: user.UpdatedAt,
		},
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
	}, nil
}

// Logout revokes the presented access token until it expires.
func (s *Service) Logout(
	ctx context.Context,
	claims *middleware.AccessTokenClaims,
) error {
	if claims == nil || claims.TokenID == "" {
		return fmt.Errorf("logout: %w", core.ErrUnauthorized)
	}

	if err := s.tokens.RevokeToken(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	return nil
}

// VerifyAccessToken checks the signature and claims, then rejects tokens
// revoked by logout. A revocation store failure rejects the token.
func (s *Service) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := s.jwt.VerifyAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.tokens.IsTokenRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	return claims, nil
}

var _ middleware.TokenVerifier = (*Service)(nil)
