package service

import (
	"context"
	"errors"
	"testing"

	"github.com/maarifahub/maarifa-backend/internal/model"
	"github.com/maarifahub/maarifa-backend/internal/telegram"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserStore struct {
	users map[int64]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[int64]*model.User)}
}

func (s *fakeUserStore) GetByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

func (s *fakeUserStore) GetByUsername(_ context.Context, _ string) (*model.User, error) {
	return nil, errors.New("not found")
}

func (s *fakeUserStore) EnsureStudent(_ context.Context, telegramID int64, name string) (*model.User, error) {
	u, ok := s.users[telegramID]
	if !ok {
		u = &model.User{ID: telegramID, Role: model.RoleStudent}
		s.users[telegramID] = u
	}
	if name != "" {
		u.Name = name
	}
	return u, nil
}

func (s *fakeUserStore) UpdateAvatar(_ context.Context, _ int64, _ string) error { return nil }

func (s *fakeUserStore) ListStaff(_ context.Context) ([]model.User, error) { return nil, nil }

func (s *fakeUserStore) CreateStaff(_ context.Context, _, _, _ string, _ model.Role) (*model.User, error) {
	return nil, errors.New("unsupported")
}

func (s *fakeUserStore) UpdateStaff(_ context.Context, _ int64, _, _, _ string, _ model.Role) (*model.User, error) {
	return nil, errors.New("unsupported")
}

func (s *fakeUserStore) DeleteStaff(_ context.Context, _ int64) error { return nil }

type fakeProfileResolver struct {
	chat  *telegram.Chat
	err   error
	calls int
}

func (r *fakeProfileResolver) Enabled() bool { return true }

func (r *fakeProfileResolver) GetChat(_ context.Context, _ int64) (*telegram.Chat, error) {
	r.calls++
	return r.chat, r.err
}

func newUserFixture(resolver ProfileResolver) (*UserService, *fakeUserStore) {
	store := newFakeUserStore()
	auth, _ := newTestAuthService()
	svc := NewUserService(store, auth, resolver, zerolog.Nop())
	return svc, store
}

func TestEnsureStudentResolvesMissingName(t *testing.T) {
	resolver := &fakeProfileResolver{
		chat: &telegram.Chat{ID: 700, FirstName: "Amina", LastName: "Hassan"},
	}
	svc, _ := newUserFixture(resolver)

	user, err := svc.EnsureStudent(context.Background(), 700, "")
	require.NoError(t, err)
	assert.Equal(t, "Amina Hassan", user.Name)
	assert.Equal(t, 1, resolver.calls)
}

func TestEnsureStudentPrefersDeclaredName(t *testing.T) {
	resolver := &fakeProfileResolver{
		chat: &telegram.Chat{ID: 700, FirstName: "Amina"},
	}
	svc, _ := newUserFixture(resolver)

	user, err := svc.EnsureStudent(context.Background(), 700, "Declared Name")
	require.NoError(t, err)
	assert.Equal(t, "Declared Name", user.Name)
	assert.Zero(t, resolver.calls, "lookup must not run when a name is declared")
}

func TestEnsureStudentSurvivesLookupFailure(t *testing.T) {
	resolver := &fakeProfileResolver{err: errors.New("telegram getChat: chat not found")}
	svc, store := newUserFixture(resolver)

	user, err := svc.EnsureStudent(context.Background(), 700, "")
	require.NoError(t, err)
	assert.Empty(t, user.Name)
	assert.Contains(t, store.users, int64(700))
}

func TestChatDisplayName(t *testing.T) {
	tests := []struct {
		chat telegram.Chat
		want string
	}{
		{telegram.Chat{FirstName: "Amina", LastName: "Hassan"}, "Amina Hassan"},
		{telegram.Chat{FirstName: "Amina"}, "Amina"},
		{telegram.Chat{Username: "amina_h"}, "amina_h"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.chat.DisplayName())
	}
}
