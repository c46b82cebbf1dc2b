package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akorchak/urlstash-server/internal/logger"
	"github.com/akorchak/urlstash-server/internal/model"
	"github.com/akorchak/urlstash-server/internal/token"
)

// TokenPair is what a successful login or refresh hands back to the client.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RegisterParams contains validated registration input.
type RegisterParams struct {
	Email       string
	Username    string
	Password    string
	PhoneNumber string
	Birthdate   time.Time
}

// Auth implements registration, login and refresh-token rotation.
type Auth struct {
	userStore         model.UserStore
	refreshTokenStore model.RefreshTokenStore
	tokenManager      model.TokenManager
	hasher            model.PasswordHasher
	logger            *logger.Logger
}

func NewAuth(
	userStore model.UserStore,
	refreshTokenStore model.RefreshTokenStore,
	tokenManager model.TokenManager,
	hasher model.PasswordHasher,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		userStore:         userStore,
		refreshTokenStore: refreshTokenStore,
		tokenManager:      tokenManager,
		hasher:            hasher,
		logger:            logger,
	}
}

// Register creates a new user. Returns model.ErrConflict when the email,
// username or phone number is taken.
func (a *Auth) Register(ctx context.Context, params RegisterParams) (model.User, error) {
	hash, err := a.hasher.Hash(params.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := model.User{
		ID:           uuid.New(),
		Email:        params.Email,
		Username:     params.Username,
		PhoneNumber:  params.PhoneNumber,
		PasswordHash: hash,
		Birthdate:    params.Birthdate,
	}

	created, err := a.userStore.Create(ctx, user)
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			return model.User{}, model.ErrConflict
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	a.logger.Info("user registered", "user_id", created.ID)

	return created, nil
}

// Login verifies credentials and issues a token pair. Unknown email and
// wrong password are indistinguishable to the caller.
func (a *Auth) Login(ctx context.Context, email string, password string) (TokenPair, error) {
	user, err := a.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return TokenPair{}, model.ErrInvalidCredentials
		}
		return TokenPair{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if !a.hasher.Compare(user.PasswordHash, password) {
		return TokenPair{}, model.ErrInvalidCredentials
	}

	return a.issueTokenPair(ctx, user.ID)
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued. Any problem with the presented token yields
// model.ErrInvalidCredentials.
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	userID, jti, err := a.tokenManager.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, model.ErrInvalidCredentials
	}

	stored, err := a.refreshTokenStore.GetByJTI(ctx, jti)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return TokenPair{}, model.ErrInvalidCredentials
		}
		return TokenPair{}, fmt.Errorf("failed to get refresh token: %w", err)
	}

	if stored.RevokedAt != nil || stored.UserID != userID {
		return TokenPair{}, model.ErrInvalidCredentials
	}
	if time.Now().After(stored.ExpiresAt) {
		return TokenPair{}, model.ErrInvalidCredentials
	}

	if err := a.refreshTokenStore.RevokeByJTI(ctx, jti); err != nil {
		return TokenPair{}, fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	return a.issueTokenPair(ctx, userID)
}

func (a *Auth) issueTokenPair(ctx context.Context, userID uuid.UUID) (TokenPair, error) {
	access, err := a.tokenManager.GenerateAccessToken(userID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	refresh, jti, err := a.tokenManager.GenerateRefreshToken(userID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	now := time.Now()
	err = a.refreshTokenStore.Create(ctx, model.RefreshToken{
		ID:        uuid.New(),
		JTI:       jti,
		UserID:    userID,
		IssuedAt:  now,
		ExpiresAt: now.Add(token.RefreshTTL),
	})
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
