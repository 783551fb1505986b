package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/maarifahub/maarifa-backend/internal/config"
	"github.com/maarifahub/maarifa-backend/internal/model"
	"github.com/maarifahub/maarifa-backend/internal/repository"
	"github.com/maarifahub/maarifa-backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memSessionStore struct {
	mu       sync.Mutex
	sessions map[int64]string
}

func (s *memSessionStore) Put(_ context.Context, userID int64, jti string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = jti
	return nil
}

func (s *memSessionStore) Get(_ context.Context, userID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	jti, ok := s.sessions[userID]
	if !ok {
		return "", service.ErrNoSession
	}
	return jti, nil
}

func (s *memSessionStore) Delete(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

type memUserSource struct {
	mu    sync.Mutex
	users map[int64]*model.User
}

func newMemUserSource(users ...*model.User) *memUserSource {
	src := &memUserSource{users: make(map[int64]*model.User)}
	for _, u := range users {
		src.users[u.ID] = u
	}
	return src
}

func (s *memUserSource) GetByID(_ context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (s *memUserSource) BindDevice(_ context.Context, userID int64, deviceHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	if u.DeviceHash != nil {
		return repository.ErrDeviceAlreadyBound
	}
	bound := deviceHash
	u.DeviceHash = &bound
	return nil
}

func newAuthTestRig(users *memUserSource) (*gin.Engine, *service.AuthService) {
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour}
	authService := service.NewAuthService(cfg, &memSessionStore{sessions: make(map[int64]string)})

	r := gin.New()
	r.GET("/probe", RequireAuth(authService, users), RequireDevice(users), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r, authService
}

func probe(r *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuthWithBearerToken(t *testing.T) {
	student := &model.User{ID: 100, Name: "Amina", Role: model.RoleStudent}
	r, authService := newAuthTestRig(newMemUserSource(student))

	token, err := authService.GenerateToken(context.Background(), 100, model.RoleStudent)
	require.NoError(t, err)

	w := probe(r, map[string]string{
		"Authorization": "Bearer " + token,
		HeaderDeviceID:  "fp-1",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuthRejectsMissingIdentity(t *testing.T) {
	r, _ := newAuthTestRig(newMemUserSource())

	w := probe(r, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_REQUIRED")
}

func TestRequireAuthRejectsSupersededToken(t *testing.T) {
	student := &model.User{ID: 100, Name: "Amina", Role: model.RoleStudent}
	r, authService := newAuthTestRig(newMemUserSource(student))

	oldToken, err := authService.GenerateToken(context.Background(), 100, model.RoleStudent)
	require.NoError(t, err)
	// A second login replaces the active session.
	_, err = authService.GenerateToken(context.Background(), 100, model.RoleStudent)
	require.NoError(t, err)

	w := probe(r, map[string]string{
		"Authorization": "Bearer " + oldToken,
		HeaderDeviceID:  "fp-1",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "SESSION_SUPERSEDED")
}

func TestRequireAuthLegacyHeaders(t *testing.T) {
	student := &model.User{ID: 100, Name: "Amina", Role: model.RoleStudent}
	r, _ := newAuthTestRig(newMemUserSource(student))

	// Identity header without a device fingerprint is not enough.
	w := probe(r, map[string]string{HeaderUserID: "100"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = probe(r, map[string]string{HeaderUserID: "100", HeaderDeviceID: "fp-1"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = probe(r, map[string]string{HeaderUserID: "not-a-number", HeaderDeviceID: "fp-1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeviceGateBindsFirstFingerprint(t *testing.T) {
	student := &model.User{ID: 100, Name: "Amina", Role: model.RoleStudent}
	users := newMemUserSource(student)
	r, _ := newAuthTestRig(users)

	// First contact binds fp-1.
	w := probe(r, map[string]string{HeaderUserID: "100", HeaderDeviceID: "fp-1"})
	assert.Equal(t, http.StatusOK, w.Code)

	stored, err := users.GetByID(context.Background(), 100)
	require.NoError(t, err)
	require.NotNil(t, stored.DeviceHash)
	assert.Equal(t, "fp-1", *stored.DeviceHash)

	// Same device keeps working, another device is rejected.
	w = probe(r, map[string]string{HeaderUserID: "100", HeaderDeviceID: "fp-1"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = probe(r, map[string]string{HeaderUserID: "100", HeaderDeviceID: "fp-2"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "DEVICE_MISMATCH")
}

func TestDeviceGateBindRace(t *testing.T) {
	// Another request bound fp-1 between this request's user load and its
	// bind attempt. The gate must re-read and compare.
	fp := "fp-1"
	student := &model.User{ID: 100, Name: "Amina", Role: model.RoleStudent, DeviceHash: &fp}
	users := newMemUserSource(student)

	stale := &model.User{ID: 100, Name: "Amina", Role: model.RoleStudent}
	r := gin.New()
	r.GET("/probe",
		func(c *gin.Context) { c.Set(ContextKeyUser, stale) },
		RequireDevice(users),
		func(c *gin.Context) { c.String(http.StatusOK, "ok") },
	)

	w := probe(r, map[string]string{HeaderDeviceID: "fp-1"})
	assert.Equal(t, http.StatusOK, w.Code)

	stale = &model.User{ID: 100, Name: "Amina", Role: model.RoleStudent}
	w = probe(r, map[string]string{HeaderDeviceID: "fp-2"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeviceGateSkipsStaff(t *testing.T) {
	admin := &model.User{ID: -1, Name: "Root", Role: model.RoleAdmin}
	r, authService := newAuthTestRig(newMemUserSource(admin))

	token, err := authService.GenerateToken(context.Background(), -1, model.RoleAdmin)
	require.NoError(t, err)

	// No device header at all.
	w := probe(r, map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireStaffAndOwner(t *testing.T) {
	student := &model.User{ID: 100, Role: model.RoleStudent}
	admin := &model.User{ID: -1, Role: model.RoleAdmin}
	owner := &model.User{ID: -2, Role: model.RoleOwner}

	r := gin.New()
	inject := func(u *model.User) gin.HandlerFunc {
		return func(c *gin.Context) { c.Set(ContextKeyUser, u) }
	}
	ok := func(c *gin.Context) { c.String(http.StatusOK, "ok") }

	r.GET("/staff-student", inject(student), RequireStaff(), ok)
	r.GET("/staff-admin", inject(admin), RequireStaff(), ok)
	r.GET("/owner-admin", inject(admin), RequireOwner(), ok)
	r.GET("/owner-owner", inject(owner), RequireOwner(), ok)

	get := func(path string) int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w.Code
	}

	assert.Equal(t, http.StatusForbidden, get("/staff-student"))
	assert.Equal(t, http.StatusOK, get("/staff-admin"))
	assert.Equal(t, http.StatusForbidden, get("/owner-admin"))
	assert.Equal(t, http.StatusOK, get("/owner-owner"))
}
