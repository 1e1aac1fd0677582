package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/bookworm-app/bookworm-backend/internal/common/utils"
	"github.com/bookworm-app/bookworm-backend/internal/config"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type Service interface {
	Register(ctx context.Context, dto *RegisterDTO) (*AuthResponse, error)
	Login(ctx context.Context, dto *LoginDTO) (*AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error)
	Logout(ctx context.Context, token string) error
	ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
	UpdateProfile(ctx context.Context, userID int64, dto *UpdateProfileDTO) (*User, error)
}

type service struct {
	repo  Repository
	redis *redis.Client
	cfg   *config.Config
}

// NewService builds the auth service. The Redis client backs the token
// blacklist; a nil client disables blacklisting, so logout becomes
// client-side only.
func NewService(repo Repository, redisClient *redis.Client, cfg *config.Config) Service {
	return &service{repo: repo, redis: redisClient, cfg: cfg}
}

func (s *service) Register(ctx context.Context, dto *RegisterDTO) (*AuthResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.cfg.BCryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &User{
		Email:        dto.Email,
		Name:         dto.Name,
		PasswordHash: string(hash),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return s.issueTokens(user)
}

func (s *service) Login(ctx context.Context, dto *LoginDTO) (*AuthResponse, error) {
	user, err := s.repo.GetUserByEmail(ctx, dto.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(dto.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.repo.TouchLastLogin(ctx, user.ID); err != nil {
		log.Printf("failed to record last login for user %d: %v", user.ID, err)
	}

	return s.issueTokens(user)
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.ValidateToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.Type != "refresh" {
		return nil, ErrInvalidToken
	}

	user, err := s.repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	// One-shot refresh tokens: blacklist the used one.
	s.blacklist(ctx, refreshToken, claims.ExpiresAt)

	return s.issueTokens(user)
}

func (s *service) Logout(ctx context.Context, token string) error {
	claims, err := s.ValidateToken(ctx, token)
	if err != nil {
		return ErrInvalidToken
	}
	s.blacklist(ctx, token, claims.ExpiresAt)
	return nil
}

func (s *service) ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error) {
	claims, err := utils.ValidateJWT(token, s.cfg.JWTSecret)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if s.redis != nil {
		blocked, err := s.redis.Exists(ctx, blacklistKey(token)).Result()
		if err != nil {
			log.Printf("token blacklist check failed: %v", err)
		} else if blocked > 0 {
			return nil, ErrInvalidToken
		}
	}

	return claims, nil
}

func (s *service) GetUserByID(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *service) UpdateProfile(ctx context.Context, userID int64, dto *UpdateProfileDTO) (*User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		user.Name = *dto.Name
	}
	if dto.Bio != nil {
		user.Bio = dto.Bio
	}
	if dto.AvatarURL != nil {
		user.AvatarURL = dto.AvatarURL
	}

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *service) issueTokens(user *User) (*AuthResponse, error) {
	now := time.Now()

	access, err := utils.GenerateJWT(&utils.JWTClaims{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Type:      "access",
		ExpiresAt: now.Add(s.cfg.AccessTokenExpiry).Unix(),
		IssuedAt:  now.Unix(),
		Issuer:    "bookworm",
		Subject:   strconv.FormatInt(user.ID, 10),
	}, s.cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}

	refresh, err := utils.GenerateJWT(&utils.JWTClaims{
		UserID:    user.ID,
		Type:      "refresh",
		ExpiresAt: now.Add(s.cfg.RefreshTokenExpiry).Unix(),
		IssuedAt:  now.Unix(),
		Issuer:    "bookworm",
		Subject:   strconv.FormatInt(user.ID, 10),
	}, s.cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("signing refresh token: %w", err)
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.cfg.AccessTokenExpiry.Seconds()),
	}, nil
}

// blacklist stores the token until its natural expiry. Failures are
// logged and swallowed; the token still expires on its own.
func (s *service) blacklist(ctx context.Context, token string, expiresAt int64) {
	if s.redis == nil {
		return
	}
	ttl := time.Until(time.Unix(expiresAt, 0))
	if ttl <= 0 {
		return
	}
	if err := s.redis.Set(ctx, blacklistKey(token), "1", ttl).Err(); err != nil {
		log.Printf("failed to blacklist token: %v", err)
	}
}

func blacklistKey(token string) string {
	return "auth:blacklist:" + token
}
