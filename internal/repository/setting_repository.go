package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maarifahub/maarifa-backend/internal/model"
)

// SettingRepository handles platform setting data access.
type SettingRepository struct {
	pool *pgxpool.Pool
}

// NewSettingRepository creates a new SettingRepository.
func NewSettingRepository(pool *pgxpool.Pool) *SettingRepository {
	return &SettingRepository{pool: pool}
}

// GetAll retrieves every setting row.
func (r *SettingRepository) GetAll(ctx context.Context) ([]model.Setting, error) {
	return r.list(ctx, `SELECT key, value, is_public FROM settings ORDER BY key ASC`)
}

// GetPublic retrieves only settings flagged public.
func (r *SettingRepository) GetPublic(ctx context.Context) ([]model.Setting, error) {
	return r.list(ctx, `SELECT key, value, is_public FROM settings WHERE is_public ORDER BY key ASC`)
}

func (r *SettingRepository) list(ctx context.Context, query string) ([]model.Setting, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []model.Setting
	for rows.Next() {
		var s model.Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.IsPublic); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// Upsert writes a setting value, preserving an existing is_public flag.
func (r *SettingRepository) Upsert(ctx context.Context, key, value string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO settings (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, value)
	return err
}
