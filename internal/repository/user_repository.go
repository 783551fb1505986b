package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maarifahub/maarifa-backend/internal/model"
)

// ErrDeviceAlreadyBound is returned when a bind is attempted on an identity
// that already has a device fingerprint on file.
var ErrDeviceAlreadyBound = errors.New("device already bound")

// UserRepository handles user data access.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, name, username, role, password_hash, device_hash, chat_id, avatar_path, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Username, &u.Role, &u.PasswordHash,
		&u.DeviceHash, &u.ChatID, &u.AvatarPath, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetByID retrieves a user by numeric ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByUsername retrieves a staff user by login username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

// EnsureStudent creates a student row for a Telegram identity on first contact,
// or refreshes the display name on subsequent logins. The Telegram numeric ID
// doubles as the user ID and the notification chat ID.
func (r *UserRepository) EnsureStudent(ctx context.Context, telegramID int64, name string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`INSERT INTO users (id, name, role, chat_id)
		 VALUES ($1, $2, $3, $1)
		 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, updated_at = NOW()
		 RETURNING `+userColumns,
		telegramID, name, model.RoleStudent))
}

// BindDevice stores a device fingerprint for a user that has none yet.
// Returns ErrDeviceAlreadyBound if a fingerprint is already on file (the
// caller must then compare against the stored value).
func (r *UserRepository) BindDevice(ctx context.Context, userID int64, deviceHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET device_hash = $2, updated_at = NOW()
		 WHERE id = $1 AND device_hash IS NULL`, userID, deviceHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDeviceAlreadyBound
	}
	return nil
}

// UpdateAvatar stores the relative path of an uploaded avatar.
func (r *UserRepository) UpdateAvatar(ctx context.Context, userID int64, path string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET avatar_path = $2, updated_at = NOW() WHERE id = $1`, userID, path)
	return err
}

// ListStaff retrieves all teacher/admin/owner accounts.
func (r *UserRepository) ListStaff(ctx context.Context) ([]model.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE role IN ($1, $2, $3)
		 ORDER BY created_at ASC`,
		model.RoleTeacher, model.RoleAdmin, model.RoleOwner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// CreateStaff inserts a staff account. Staff IDs are allocated from a negative
// sequence so they can never collide with Telegram numeric IDs.
func (r *UserRepository) CreateStaff(ctx context.Context, name, username, passwordHash string, role model.Role) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`INSERT INTO users (id, name, username, role, password_hash)
		 VALUES (-nextval('staff_id_seq'), $1, $2, $3, $4)
		 RETURNING `+userColumns,
		name, username, role, passwordHash))
}

// UpdateStaff updates a staff account. An empty passwordHash keeps the stored one.
func (r *UserRepository) UpdateStaff(ctx context.Context, id int64, name, username, passwordHash string, role model.Role) (*model.User, error) {
	if passwordHash != "" {
		return scanUser(r.pool.QueryRow(ctx,
			`UPDATE users SET name = $2, username = $3, password_hash = $4, role = $5, updated_at = NOW()
			 WHERE id = $1
			 RETURNING `+userColumns,
			id, name, username, passwordHash, role))
	}
	return scanUser(r.pool.QueryRow(ctx,
		`UPDATE users SET name = $2, username = $3, role = $4, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, name, username, role))
}

// DeleteStaff removes a staff account.
func (r *UserRepository) DeleteStaff(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM users WHERE id = $1 AND role IN ($2, $3)`,
		id, model.RoleTeacher, model.RoleAdmin)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
