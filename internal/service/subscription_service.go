package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/maarifahub/maarifa-backend/internal/model"
	"github.com/maarifahub/maarifa-backend/internal/worker"
	"github.com/rs/zerolog"
)

// SubscriptionStore is the persistence surface for subscription requests.
// Approve must flip the status and create the access grant atomically.
type SubscriptionStore interface {
	Create(ctx context.Context, s *model.SubscriptionRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.SubscriptionRequest, error)
	ListByStatus(ctx context.Context, status model.SubscriptionStatus) ([]model.SubscriptionRequest, error)
	Approve(ctx context.Context, id uuid.UUID) (*model.SubscriptionRequest, error)
	Reject(ctx context.Context, id uuid.UUID) (*model.SubscriptionRequest, error)
}

// CourseReader loads course rows for validation and notification text.
type CourseReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error)
}

// Notifier queues fire-and-forget user notifications.
type Notifier interface {
	Enqueue(ctx context.Context, n worker.Notification) error
}

// SubscriptionService handles the subscription request workflow.
type SubscriptionService struct {
	subs     SubscriptionStore
	courses  CourseReader
	notifier Notifier
	log      zerolog.Logger
}

// NewSubscriptionService creates a new SubscriptionService.
func NewSubscriptionService(subs SubscriptionStore, courses CourseReader, notifier Notifier, log zerolog.Logger) *SubscriptionService {
	return &SubscriptionService{
		subs:     subs,
		courses:  courses,
		notifier: notifier,
		log:      log.With().Str("component", "subscription_service").Logger(),
	}
}

// Request creates a pending subscription request backed by a receipt upload.
func (s *SubscriptionService) Request(ctx context.Context, userID int64, courseID uuid.UUID, receiptPath string) (*model.SubscriptionRequest, error) {
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}

	req := &model.SubscriptionRequest{
		UserID:      userID,
		CourseID:    courseID,
		ReceiptPath: receiptPath,
		Status:      model.SubscriptionPending,
	}
	if err := s.subs.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return req, nil
}

// ListPending returns undecided requests for the admin review queue.
func (s *SubscriptionService) ListPending(ctx context.Context) ([]model.SubscriptionRequest, error) {
	return s.subs.ListByStatus(ctx, model.SubscriptionPending)
}

// Approve grants course access and marks the request approved (one atomic
// store operation), then queues a Telegram notification. Notification
// failure never fails the approval.
func (s *SubscriptionService) Approve(ctx context.Context, id uuid.UUID) (*model.SubscriptionRequest, error) {
	req, err := s.subs.Approve(ctx, id)
	if err != nil {
		return nil, err
	}

	course, courseErr := s.courses.GetByID(ctx, req.CourseID)
	title := ""
	if courseErr == nil {
		title = course.Title
	}

	n := worker.Notification{
		ChatID:     req.UserID,
		Text:       fmt.Sprintf("Your subscription to <b>%s</b> has been approved. Happy studying!", title),
		ButtonText: "Open app",
	}
	if err := s.notifier.Enqueue(ctx, n); err != nil {
		s.log.Warn().Err(err).Str("request_id", id.String()).Msg("Failed to queue approval notification")
	}

	s.log.Info().
		Str("request_id", id.String()).
		Int64("user_id", req.UserID).
		Str("course_id", req.CourseID.String()).
		Msg("Subscription approved")
	return req, nil
}

// Reject marks a pending request rejected.
func (s *SubscriptionService) Reject(ctx context.Context, id uuid.UUID) (*model.SubscriptionRequest, error) {
	return s.subs.Reject(ctx, id)
}
