package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/maarifahub/maarifa-backend/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCourseStore struct {
	courses []model.Course
	details map[uuid.UUID]*model.CourseDetail
}

func (s *fakeCourseStore) List(_ context.Context) ([]model.Course, error) {
	return s.courses, nil
}

func (s *fakeCourseStore) GetByID(_ context.Context, id uuid.UUID) (*model.Course, error) {
	for i := range s.courses {
		if s.courses[i].ID == id {
			return &s.courses[i], nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *fakeCourseStore) GetDetail(_ context.Context, id uuid.UUID) (*model.CourseDetail, error) {
	d, ok := s.details[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return d, nil
}

func (s *fakeCourseStore) Create(_ context.Context, c *model.Course) error {
	c.ID = uuid.New()
	s.courses = append(s.courses, *c)
	return nil
}

func (s *fakeCourseStore) Update(_ context.Context, _ *model.Course) error  { return nil }
func (s *fakeCourseStore) Delete(_ context.Context, _ uuid.UUID) error      { return nil }
func (s *fakeCourseStore) GetSubject(_ context.Context, _ uuid.UUID) (*model.Subject, error) {
	return nil, pgx.ErrNoRows
}
func (s *fakeCourseStore) CreateSubject(_ context.Context, _ *model.Subject) error { return nil }
func (s *fakeCourseStore) UpdateSubject(_ context.Context, _ *model.Subject) error { return nil }
func (s *fakeCourseStore) DeleteSubject(_ context.Context, _ uuid.UUID) error      { return nil }

type fakeAccessLister struct {
	grants map[int64][]uuid.UUID
}

func (l *fakeAccessLister) ListUserCourses(_ context.Context, userID int64) ([]uuid.UUID, error) {
	return l.grants[userID], nil
}

func (l *fakeAccessLister) HasCourseAccess(_ context.Context, userID int64, courseID uuid.UUID) (bool, error) {
	for _, id := range l.grants[userID] {
		if id == courseID {
			return true, nil
		}
	}
	return false, nil
}

func TestListForUserAnnotatesOwnership(t *testing.T) {
	free := model.Course{ID: uuid.New(), Title: "Free Course", IsFree: true}
	paid := model.Course{ID: uuid.New(), Title: "Paid Course"}
	granted := model.Course{ID: uuid.New(), Title: "Granted Course"}

	store := &fakeCourseStore{courses: []model.Course{free, paid, granted}}
	access := &fakeAccessLister{grants: map[int64][]uuid.UUID{100: {granted.ID}}}
	svc := NewCatalogService(store, access, zerolog.Nop())

	out, err := svc.ListForUser(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, out, 3)

	owned := map[string]bool{}
	for _, c := range out {
		owned[c.Title] = c.Owned
	}
	assert.True(t, owned["Free Course"])
	assert.False(t, owned["Paid Course"])
	assert.True(t, owned["Granted Course"])
}

func TestGetDetailGuardsPaidCourses(t *testing.T) {
	paid := model.Course{ID: uuid.New(), Title: "Paid Course"}
	detail := &model.CourseDetail{Course: paid}

	store := &fakeCourseStore{
		courses: []model.Course{paid},
		details: map[uuid.UUID]*model.CourseDetail{paid.ID: detail},
	}
	access := &fakeAccessLister{grants: map[int64][]uuid.UUID{200: {paid.ID}}}
	svc := NewCatalogService(store, access, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.GetDetail(ctx, 100, paid.ID)
	assert.ErrorIs(t, err, ErrNoAccess)

	got, err := svc.GetDetail(ctx, 200, paid.ID)
	require.NoError(t, err)
	assert.Equal(t, paid.ID, got.ID)
}

func TestGetDetailServesFreeCourses(t *testing.T) {
	free := model.Course{ID: uuid.New(), Title: "Free Course", IsFree: true}
	store := &fakeCourseStore{
		courses: []model.Course{free},
		details: map[uuid.UUID]*model.CourseDetail{free.ID: {Course: free}},
	}
	svc := NewCatalogService(store, &fakeAccessLister{}, zerolog.Nop())

	got, err := svc.GetDetail(context.Background(), 999, free.ID)
	require.NoError(t, err)
	assert.True(t, got.IsFree)
}
