package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/maarifahub/maarifa-backend/internal/model"
	"github.com/rs/zerolog"
)

// CourseStore is the persistence surface for the catalog.
type CourseStore interface {
	List(ctx context.Context) ([]model.Course, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error)
	GetDetail(ctx context.Context, id uuid.UUID) (*model.CourseDetail, error)
	Create(ctx context.Context, c *model.Course) error
	Update(ctx context.Context, c *model.Course) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetSubject(ctx context.Context, id uuid.UUID) (*model.Subject, error)
	CreateSubject(ctx context.Context, s *model.Subject) error
	UpdateSubject(ctx context.Context, s *model.Subject) error
	DeleteSubject(ctx context.Context, id uuid.UUID) error
}

// AccessLister reads a user's course grants.
type AccessLister interface {
	ListUserCourses(ctx context.Context, userID int64) ([]uuid.UUID, error)
	HasCourseAccess(ctx context.Context, userID int64, courseID uuid.UUID) (bool, error)
}

// CatalogCourse is a course with the caller's ownership overlaid.
type CatalogCourse struct {
	model.Course
	Owned bool `json:"owned"`
}

// CatalogService serves the student catalog and the admin course/subject CRUD.
type CatalogService struct {
	courses CourseStore
	access  AccessLister
	log     zerolog.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(courses CourseStore, access AccessLister, log zerolog.Logger) *CatalogService {
	return &CatalogService{
		courses: courses,
		access:  access,
		log:     log.With().Str("component", "catalog_service").Logger(),
	}
}

// ListForUser returns all courses with ownership flags for the caller.
func (s *CatalogService) ListForUser(ctx context.Context, userID int64) ([]CatalogCourse, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}

	ownedIDs, err := s.access.ListUserCourses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	owned := make(map[uuid.UUID]bool, len(ownedIDs))
	for _, id := range ownedIDs {
		owned[id] = true
	}

	out := make([]CatalogCourse, len(courses))
	for i, c := range courses {
		out[i] = CatalogCourse{Course: c, Owned: c.IsFree || owned[c.ID]}
	}
	return out, nil
}

// GetDetail returns a course with subjects and exam summaries. Detail of a
// paid course is only served to owners; the catalog entry itself is public.
func (s *CatalogService) GetDetail(ctx context.Context, userID int64, courseID uuid.UUID) (*model.CourseDetail, error) {
	detail, err := s.courses.GetDetail(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !detail.IsFree {
		ok, err := s.access.HasCourseAccess(ctx, userID, courseID)
		if err != nil {
			return nil, fmt.Errorf("check access: %w", err)
		}
		if !ok {
			return nil, ErrNoAccess
		}
	}
	return detail, nil
}

// CreateCourse inserts a new course.
func (s *CatalogService) CreateCourse(ctx context.Context, req model.CreateCourseRequest) (*model.Course, error) {
	c := &model.Course{Title: req.Title, Description: req.Description, IsFree: req.IsFree}
	if err := s.courses.Create(ctx, c); err != nil {
		return nil, err
	}
	s.log.Info().Str("course_id", c.ID.String()).Msg("Course created")
	return c, nil
}

// UpdateCourse modifies an existing course.
func (s *CatalogService) UpdateCourse(ctx context.Context, id uuid.UUID, req model.CreateCourseRequest) (*model.Course, error) {
	c := &model.Course{ID: id, Title: req.Title, Description: req.Description, IsFree: req.IsFree}
	if err := s.courses.Update(ctx, c); err != nil {
		return nil, err
	}
	return s.courses.GetByID(ctx, id)
}

// DeleteCourse removes a course.
func (s *CatalogService) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	return s.courses.Delete(ctx, id)
}

// CreateSubject adds a subject to a course.
func (s *CatalogService) CreateSubject(ctx context.Context, courseID uuid.UUID, req model.CreateSubjectRequest) (*model.Subject, error) {
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		return nil, err
	}
	sub := &model.Subject{CourseID: courseID, Title: req.Title, IsFree: req.IsFree, Position: req.Position}
	if err := s.courses.CreateSubject(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// UpdateSubject modifies an existing subject.
func (s *CatalogService) UpdateSubject(ctx context.Context, id uuid.UUID, req model.CreateSubjectRequest) (*model.Subject, error) {
	existing, err := s.courses.GetSubject(ctx, id)
	if err != nil {
		return nil, err
	}
	existing.Title = req.Title
	existing.IsFree = req.IsFree
	existing.Position = req.Position
	if err := s.courses.UpdateSubject(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// DeleteSubject removes a subject.
func (s *CatalogService) DeleteSubject(ctx context.Context, id uuid.UUID) error {
	return s.courses.DeleteSubject(ctx, id)
}
