package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maarifahub/maarifa-backend/internal/model"
)

// SubscriptionRepository handles subscription request data access.
type SubscriptionRepository struct {
	pool *pgxpool.Pool
}

// NewSubscriptionRepository creates a new SubscriptionRepository.
func NewSubscriptionRepository(pool *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{pool: pool}
}

// Create inserts a pending subscription request.
func (r *SubscriptionRepository) Create(ctx context.Context, s *model.SubscriptionRequest) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO subscription_requests (user_id, course_id, receipt_path, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		s.UserID, s.CourseID, s.ReceiptPath, model.SubscriptionPending,
	).Scan(&s.ID, &s.CreatedAt)
}

// GetByID retrieves a subscription request.
func (r *SubscriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.SubscriptionRequest, error) {
	s := &model.SubscriptionRequest{}
	err := r.pool.QueryRow(ctx,
		`SELECT sr.id, sr.user_id, u.name, sr.course_id, c.title, sr.receipt_path, sr.status, sr.created_at, sr.decided_at
		 FROM subscription_requests sr
		 JOIN users u ON sr.user_id = u.id
		 JOIN courses c ON sr.course_id = c.id
		 WHERE sr.id = $1`, id,
	).Scan(&s.ID, &s.UserID, &s.UserName, &s.CourseID, &s.CourseTitle, &s.ReceiptPath, &s.Status, &s.CreatedAt, &s.DecidedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListByStatus retrieves requests in a given state, oldest first.
func (r *SubscriptionRepository) ListByStatus(ctx context.Context, status model.SubscriptionStatus) ([]model.SubscriptionRequest, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT sr.id, sr.user_id, u.name, sr.course_id, c.title, sr.receipt_path, sr.status, sr.created_at, sr.decided_at
		 FROM subscription_requests sr
		 JOIN users u ON sr.user_id = u.id
		 JOIN courses c ON sr.course_id = c.id
		 WHERE sr.status = $1
		 ORDER BY sr.created_at ASC`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []model.SubscriptionRequest
	for rows.Next() {
		var s model.SubscriptionRequest
		if err := rows.Scan(&s.ID, &s.UserID, &s.UserName, &s.CourseID, &s.CourseTitle,
			&s.ReceiptPath, &s.Status, &s.CreatedAt, &s.DecidedAt); err != nil {
			return nil, err
		}
		reqs = append(reqs, s)
	}
	return reqs, rows.Err()
}

// Approve grants course access and marks the request approved in a single
// transaction, so a crash mid-sequence cannot leave a grant without the
// status flip (or the reverse).
func (r *SubscriptionRepository) Approve(ctx context.Context, id uuid.UUID) (*model.SubscriptionRequest, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	s := &model.SubscriptionRequest{}
	err = tx.QueryRow(ctx,
		`UPDATE subscription_requests
		 SET status = $2, decided_at = NOW()
		 WHERE id = $1 AND status = $3
		 RETURNING id, user_id, course_id, receipt_path, status, created_at, decided_at`,
		id, model.SubscriptionApproved, model.SubscriptionPending,
	).Scan(&s.ID, &s.UserID, &s.CourseID, &s.ReceiptPath, &s.Status, &s.CreatedAt, &s.DecidedAt)
	if err != nil {
		// pgx.ErrNoRows covers both a missing request and one already decided.
		return nil, err
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO course_access (user_id, course_id) VALUES ($1, $2)
		 ON CONFLICT (user_id, course_id) DO NOTHING`,
		s.UserID, s.CourseID); err != nil {
		return nil, fmt.Errorf("grant access: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s, nil
}

// Reject marks a pending request rejected.
func (r *SubscriptionRepository) Reject(ctx context.Context, id uuid.UUID) (*model.SubscriptionRequest, error) {
	s := &model.SubscriptionRequest{}
	err := r.pool.QueryRow(ctx,
		`UPDATE subscription_requests
		 SET status = $2, decided_at = NOW()
		 WHERE id = $1 AND status = $3
		 RETURNING id, user_id, course_id, receipt_path, status, created_at, decided_at`,
		id, model.SubscriptionRejected, model.SubscriptionPending,
	).Scan(&s.ID, &s.UserID, &s.CourseID, &s.ReceiptPath, &s.Status, &s.CreatedAt, &s.DecidedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CountPending counts undecided requests (dashboard stat).
func (r *SubscriptionRepository) CountPending(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM subscription_requests WHERE status = $1`,
		model.SubscriptionPending).Scan(&n)
	return n, err
}
