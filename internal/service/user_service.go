package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/maarifahub/maarifa-backend/internal/model"
	"github.com/maarifahub/maarifa-backend/internal/telegram"
	"github.com/rs/zerolog"
)

// ErrUsernameTaken is returned when a staff username already exists.
var ErrUsernameTaken = errors.New("username already registered")

// UserStore is the persistence surface for identities.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	EnsureStudent(ctx context.Context, telegramID int64, name string) (*model.User, error)
	UpdateAvatar(ctx context.Context, userID int64, path string) error
	ListStaff(ctx context.Context) ([]model.User, error)
	CreateStaff(ctx context.Context, name, username, passwordHash string, role model.Role) (*model.User, error)
	UpdateStaff(ctx context.Context, id int64, name, username, passwordHash string, role model.Role) (*model.User, error)
	DeleteStaff(ctx context.Context, id int64) error
}

// ProfileResolver looks up Telegram profiles for display names.
type ProfileResolver interface {
	Enabled() bool
	GetChat(ctx context.Context, chatID int64) (*telegram.Chat, error)
}

// UserService handles identity lookups and owner-side staff management.
type UserService struct {
	users    UserStore
	auth     *AuthService
	profiles ProfileResolver
	log      zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore, auth *AuthService, profiles ProfileResolver, log zerolog.Logger) *UserService {
	return &UserService{
		users:    users,
		auth:     auth,
		profiles: profiles,
		log:      log.With().Str("component", "user_service").Logger(),
	}
}

// GetByID retrieves a user.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

// EnsureStudent creates or refreshes a student identity on Telegram login.
// When the client declares no name, the display name is resolved through the
// bot API instead; a failed lookup falls back to the declared value.
func (s *UserService) EnsureStudent(ctx context.Context, telegramID int64, name string) (*model.User, error) {
	if strings.TrimSpace(name) == "" && s.profiles.Enabled() {
		chat, err := s.profiles.GetChat(ctx, telegramID)
		if err != nil {
			s.log.Warn().Err(err).Int64("telegram_id", telegramID).Msg("Profile lookup failed")
		} else {
			name = chat.DisplayName()
		}
	}
	return s.users.EnsureStudent(ctx, telegramID, name)
}

// AuthenticateStaff validates staff credentials.
func (s *UserService) AuthenticateStaff(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.Role.IsStaff() {
		return nil, ErrInvalidCredentials
	}
	if err := s.auth.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// UpdateAvatar stores the caller's avatar path.
func (s *UserService) UpdateAvatar(ctx context.Context, userID int64, path string) error {
	return s.users.UpdateAvatar(ctx, userID, path)
}

// ListStaff returns all staff accounts.
func (s *UserService) ListStaff(ctx context.Context) ([]model.User, error) {
	return s.users.ListStaff(ctx)
}

// CreateStaff creates a teacher/admin account. Owner-only at the route level.
func (s *UserService) CreateStaff(ctx context.Context, req model.CreateStaffRequest) (*model.User, error) {
	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateStaff(ctx, req.Name, req.Username, hash, req.Role)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	s.log.Info().Int64("user_id", user.ID).Str("role", string(user.Role)).Msg("Staff account created")
	return user, nil
}

// UpdateStaff updates a teacher/admin account; an empty password keeps the
// stored credential.
func (s *UserService) UpdateStaff(ctx context.Context, id int64, req model.UpdateStaffRequest) (*model.User, error) {
	existing, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Role == model.RoleOwner {
		// The owner account cannot be demoted through this path.
		return nil, pgx.ErrNoRows
	}

	hash := ""
	if req.Password != "" {
		hash, err = s.auth.HashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}

	user, err := s.users.UpdateStaff(ctx, id, req.Name, req.Username, hash, req.Role)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return user, nil
}

// DeleteStaff removes a teacher/admin account.
func (s *UserService) DeleteStaff(ctx context.Context, id int64) error {
	return s.users.DeleteStaff(ctx, id)
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
