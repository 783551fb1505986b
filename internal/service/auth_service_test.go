package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/maarifahub/maarifa-backend/internal/config"
	"github.com/maarifahub/maarifa-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[int64]string
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[int64]string)}
}

func (s *fakeSessionStore) Put(_ context.Context, userID int64, jti string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = jti
	return nil
}

func (s *fakeSessionStore) Get(_ context.Context, userID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	jti, ok := s.sessions[userID]
	if !ok {
		return "", ErrNoSession
	}
	return jti, nil
}

func (s *fakeSessionStore) Delete(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

func newTestAuthService() (*AuthService, *fakeSessionStore) {
	store := newFakeSessionStore()
	cfg := &config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: bcrypt.MinCost,
	}
	return NewAuthService(cfg, store), store
}

func TestTokenRoundTrip(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	token, err := svc.GenerateToken(ctx, 42, model.RoleStudent)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, model.RoleStudent, claims.Role)
	require.NoError(t, svc.ValidateSession(ctx, claims.UserID, claims.ID))
}

func TestNewLoginSupersedesOldToken(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	oldToken, err := svc.GenerateToken(ctx, 42, model.RoleStudent)
	require.NoError(t, err)
	_, err = svc.GenerateToken(ctx, 42, model.RoleStudent)
	require.NoError(t, err)

	// The old token still parses but its session is gone.
	oldClaims, err := svc.ValidateToken(oldToken)
	require.NoError(t, err)
	err = svc.ValidateSession(ctx, oldClaims.UserID, oldClaims.ID)
	assert.ErrorIs(t, err, ErrSessionSuperseded)
}

func TestLogoutInvalidatesSession(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	token, err := svc.GenerateToken(ctx, 42, model.RoleTeacher)
	require.NoError(t, err)
	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, 42))
	err = svc.ValidateSession(ctx, claims.UserID, claims.ID)
	assert.ErrorIs(t, err, ErrSessionSuperseded)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	svc, _ := newTestAuthService()
	other := &config.Config{JWTSecret: "other-secret", JWTExpiry: time.Hour}
	otherSvc := NewAuthService(other, newFakeSessionStore())

	token, err := otherSvc.GenerateToken(context.Background(), 42, model.RoleStudent)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	svc, _ := newTestAuthService()

	hash, err := svc.HashPassword("correct horse battery staple")
	require.NoError(t, err)

	assert.NoError(t, svc.CheckPassword(hash, "correct horse battery staple"))
	assert.ErrorIs(t, svc.CheckPassword(hash, "wrong"), ErrInvalidCredentials)
}
