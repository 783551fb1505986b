package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/maarifahub/maarifa-backend/internal/config"
	"github.com/maarifahub/maarifa-backend/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// Common auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionSuperseded  = errors.New("session superseded by a newer login")
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64      `json:"user_id"`
	Role   model.Role `json:"role"`
}

// AuthService handles password hashing, JWTs and the single-active-session
// policy.
type AuthService struct {
	cfg      *config.Config
	sessions SessionStore
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, sessions SessionStore) *AuthService {
	return &AuthService{cfg: cfg, sessions: sessions}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// GenerateToken creates a JWT for a user and registers its JTI as the
// current session. Any previously issued token for this user stops
// validating from this point on.
func (s *AuthService) GenerateToken(ctx context.Context, userID int64, role model.Role) (string, error) {
	jti := uuid.New().String()
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		UserID: userID,
		Role:   role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	if err := s.sessions.Put(ctx, userID, jti, s.cfg.JWTExpiry); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// ValidateSession checks that the token's JTI is still the current one for
// the user. A mismatch means a newer login superseded this token.
func (s *AuthService) ValidateSession(ctx context.Context, userID int64, jti string) error {
	stored, err := s.sessions.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return ErrSessionSuperseded
		}
		return fmt.Errorf("check session: %w", err)
	}
	if stored != jti {
		return ErrSessionSuperseded
	}
	return nil
}

// Logout removes the user's active session.
func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	return s.sessions.Delete(ctx, userID)
}
