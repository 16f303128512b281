package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/vncsmyrnk/survey/internal/core/domain"
	"github.com/vncsmyrnk/survey/internal/core/ports"
)

type AuthService struct {
	userRepo    ports.UserRepository
	sessionRepo ports.SessionRepository
	hasher      ports.PasswordHasher
	secret      []byte
	sessionTTL  time.Duration
	now         func() time.Time
}

func NewAuthService(userRepo ports.UserRepository, sessionRepo ports.SessionRepository, hasher ports.PasswordHasher, secret string, sessionTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		hasher:      hasher,
		secret:      []byte(secret),
		sessionTTL:  sessionTTL,
		now:         time.Now,
	}
}

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.ErrMissingCredentials
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !s.hasher.Verify(user.PasswordHash, password) {
		return nil, "", domain.ErrInvalidCredentials
	}

	now := s.now().UTC()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, "", fmt.Errorf("failed to update last login: %w", err)
	}
	user.LastLoginAt = &now

	session := &domain.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, "", fmt.Errorf("failed to store session: %w", err)
	}

	token, err := s.signSession(session)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign session: %w", err)
	}

	return user, token, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.parseSession(token)
	if err != nil {
		return nil
	}

	sessionID, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return nil
	}

	return s.sessionRepo.Revoke(ctx, sessionID)
}

func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.parseSession(token)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}

	sessionID, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil || session.UserID != userID || !session.Valid(s.now()) {
		return nil, domain.ErrUnauthenticated
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}

	return user, nil
}

func (s *AuthService) signSession(session *domain.Session) (string, error) {
	claims := sessionClaims{
		SessionID: session.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *AuthService) parseSession(tokenString string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
