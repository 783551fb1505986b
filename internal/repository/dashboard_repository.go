package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maarifahub/maarifa-backend/internal/model"
)

// DashboardStats is the counter block shown on the admin dashboard.
type DashboardStats struct {
	Students        int `json:"students"`
	Courses         int `json:"courses"`
	Exams           int `json:"exams"`
	PendingRequests int `json:"pending_requests"`
	AttemptsToday   int `json:"attempts_today"`
}

// DashboardRepository aggregates counters for the admin dashboard.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// GetStats collects all dashboard counters.
func (r *DashboardRepository) GetStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	midnight := time.Now().Truncate(24 * time.Hour)

	err := r.pool.QueryRow(ctx,
		`SELECT
		    (SELECT COUNT(*) FROM users WHERE role = $1),
		    (SELECT COUNT(*) FROM courses),
		    (SELECT COUNT(*) FROM exams),
		    (SELECT COUNT(*) FROM subscription_requests WHERE status = $2),
		    (SELECT COUNT(*) FROM attempts WHERE started_at >= $3)`,
		model.RoleStudent, model.SubscriptionPending, midnight,
	).Scan(&stats.Students, &stats.Courses, &stats.Exams, &stats.PendingRequests, &stats.AttemptsToday)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
