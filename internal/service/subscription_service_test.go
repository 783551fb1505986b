package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/maarifahub/maarifa-backend/internal/model"
	"github.com/maarifahub/maarifa-backend/internal/worker"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubscriptionStore struct {
	requests map[uuid.UUID]*model.SubscriptionRequest
	// grants records course access created by Approve, keyed by user.
	grants map[int64][]uuid.UUID
}

func newFakeSubscriptionStore() *fakeSubscriptionStore {
	return &fakeSubscriptionStore{
		requests: make(map[uuid.UUID]*model.SubscriptionRequest),
		grants:   make(map[int64][]uuid.UUID),
	}
}

func (s *fakeSubscriptionStore) Create(_ context.Context, r *model.SubscriptionRequest) error {
	r.ID = uuid.New()
	r.CreatedAt = time.Now()
	cp := *r
	s.requests[r.ID] = &cp
	return nil
}

func (s *fakeSubscriptionStore) GetByID(_ context.Context, id uuid.UUID) (*model.SubscriptionRequest, error) {
	r, ok := s.requests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *r
	return &cp, nil
}

func (s *fakeSubscriptionStore) ListByStatus(_ context.Context, status model.SubscriptionStatus) ([]model.SubscriptionRequest, error) {
	var out []model.SubscriptionRequest
	for _, r := range s.requests {
		if r.Status == status {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *fakeSubscriptionStore) Approve(_ context.Context, id uuid.UUID) (*model.SubscriptionRequest, error) {
	r, ok := s.requests[id]
	if !ok || r.Status != model.SubscriptionPending {
		return nil, pgx.ErrNoRows
	}
	now := time.Now()
	r.Status = model.SubscriptionApproved
	r.DecidedAt = &now
	s.grants[r.UserID] = append(s.grants[r.UserID], r.CourseID)
	cp := *r
	return &cp, nil
}

func (s *fakeSubscriptionStore) Reject(_ context.Context, id uuid.UUID) (*model.SubscriptionRequest, error) {
	r, ok := s.requests[id]
	if !ok || r.Status != model.SubscriptionPending {
		return nil, pgx.ErrNoRows
	}
	now := time.Now()
	r.Status = model.SubscriptionRejected
	r.DecidedAt = &now
	cp := *r
	return &cp, nil
}

type fakeCourseReader struct {
	courses map[uuid.UUID]*model.Course
}

func (r *fakeCourseReader) GetByID(_ context.Context, id uuid.UUID) (*model.Course, error) {
	c, ok := r.courses[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return c, nil
}

type fakeNotifier struct {
	sent []worker.Notification
	fail bool
}

func (n *fakeNotifier) Enqueue(_ context.Context, msg worker.Notification) error {
	if n.fail {
		return errors.New("queue unavailable")
	}
	n.sent = append(n.sent, msg)
	return nil
}

func newSubscriptionFixture() (*SubscriptionService, *fakeSubscriptionStore, *fakeNotifier, *model.Course) {
	course := &model.Course{ID: uuid.New(), Title: "Physics 101"}
	store := newFakeSubscriptionStore()
	notifier := &fakeNotifier{}
	svc := NewSubscriptionService(
		store,
		&fakeCourseReader{courses: map[uuid.UUID]*model.Course{course.ID: course}},
		notifier,
		zerolog.Nop(),
	)
	return svc, store, notifier, course
}

func TestRequestUnknownCourse(t *testing.T) {
	svc, _, _, _ := newSubscriptionFixture()

	_, err := svc.Request(context.Background(), 100, uuid.New(), "receipt.jpg")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestApproveGrantsAccessAndNotifies(t *testing.T) {
	svc, store, notifier, course := newSubscriptionFixture()
	ctx := context.Background()

	req, err := svc.Request(ctx, 100, course.ID, "receipt.jpg")
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionPending, req.Status)

	approved, err := svc.Approve(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionApproved, approved.Status)
	assert.NotNil(t, approved.DecidedAt)

	assert.Contains(t, store.grants[100], course.ID)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, int64(100), notifier.sent[0].ChatID)
	assert.Contains(t, notifier.sent[0].Text, "Physics 101")
}

func TestApproveSucceedsWhenNotificationFails(t *testing.T) {
	svc, store, notifier, course := newSubscriptionFixture()
	notifier.fail = true
	ctx := context.Background()

	req, err := svc.Request(ctx, 100, course.ID, "receipt.jpg")
	require.NoError(t, err)

	approved, err := svc.Approve(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionApproved, approved.Status)
	assert.Contains(t, store.grants[100], course.ID)
}

func TestApproveIsSingleShot(t *testing.T) {
	svc, store, _, course := newSubscriptionFixture()
	ctx := context.Background()

	req, err := svc.Request(ctx, 100, course.ID, "receipt.jpg")
	require.NoError(t, err)

	_, err = svc.Approve(ctx, req.ID)
	require.NoError(t, err)

	// A second decision on the same request hits no pending row.
	_, err = svc.Approve(ctx, req.ID)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	_, err = svc.Reject(ctx, req.ID)
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	assert.Len(t, store.grants[100], 1)
}

func TestRejectLeavesNoGrant(t *testing.T) {
	svc, store, notifier, course := newSubscriptionFixture()
	ctx := context.Background()

	req, err := svc.Request(ctx, 100, course.ID, "receipt.jpg")
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionRejected, rejected.Status)
	assert.Empty(t, store.grants[100])
	assert.Empty(t, notifier.sent)
}

func TestListPendingFiltersDecided(t *testing.T) {
	svc, _, _, course := newSubscriptionFixture()
	ctx := context.Background()

	first, err := svc.Request(ctx, 100, course.ID, "a.jpg")
	require.NoError(t, err)
	second, err := svc.Request(ctx, 200, course.ID, "b.jpg")
	require.NoError(t, err)

	_, err = svc.Approve(ctx, first.ID)
	require.NoError(t, err)

	pending, err := svc.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)
}
