package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/hanayashop/backend/internal/hash"
	"github.com/hanayashop/backend/internal/models"
	"github.com/hanayashop/backend/internal/repo"
	"github.com/hanayashop/backend/internal/tokens"
)

type AuthService struct {
	Repo          *repo.GormRepo
	JWTSecret     []byte
	RefreshSecret []byte
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (s *AuthService) Register(ctx context.Context, username, email, password, locale string) (*models.User, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: username required", ErrValidation)
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}

	if _, err := s.Repo.GetUserByUsername(ctx, username); err == nil {
		return nil, fmt.Errorf("%w: username taken", ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: pwHash,
		Role:         "user",
		Locale:       locale,
	}
	return s.Repo.CreateUser(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenPair, *models.User, error) {
	if username == "" || password == "" {
		return nil, nil, fmt.Errorf("%w: username and password required", ErrValidation)
	}

	user, err := s.Repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: invalid credentials", ErrForbidden)
		}
		return nil, nil, err
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, nil, fmt.Errorf("%w: invalid credentials", ErrForbidden)
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

func (s *AuthService) Refresh(ctx context.Context, rawRefresh string) (*TokenPair, error) {
	claims, err := tokens.RefreshClaimsFromToken(rawRefresh, s.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token", ErrForbidden)
	}

	stored, err := s.Repo.GetRefreshToken(ctx, rawRefresh)
	if err != nil {
		return nil, fmt.Errorf("%w: refresh token not found", ErrForbidden)
	}
	if stored.Revoked || time.Now().Unix() > stored.ExpiresAt {
		return nil, fmt.Errorf("%w: refresh token expired", ErrForbidden)
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token", ErrForbidden)
	}

	user, err := s.Repo.GetUser(ctx, uint(userID))
	if err != nil {
		return nil, fmt.Errorf("%w: user not found", ErrForbidden)
	}

	if err := s.Repo.RevokeRefreshToken(ctx, rawRefresh); err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*TokenPair, error) {
	access, err := tokens.SignAccessToken(user.ID, user.Role, s.JWTSecret)
	if err != nil {
		return nil, err
	}

	refresh, err := tokens.SignRefreshToken(user.ID, s.RefreshSecret)
	if err != nil {
		return nil, err
	}

	if err := s.Repo.SaveRefreshToken(ctx, &models.RefreshToken{
		Token:     refresh,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(tokens.RefreshTTL).Unix(),
	}); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
