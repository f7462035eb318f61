package lesson

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/pownas/dancecourse/core"
	"github.com/pownas/dancecourse/core/user"
)

var (
	ErrNotFound       = core.NewNotFoundError("lesson")
	errCourseNotFound = errors.New("course not found")
)

type (
	Repository interface {
		CreateLesson(ctx context.Context, l Lesson) (Lesson, error)
		GetLessonByID(ctx context.Context, id string) (Lesson, error)
		QueryLessons(ctx context.Context, filter QueryFilter) ([]Lesson, error)
		UpdateLesson(ctx context.Context, l Lesson) (Lesson, error)
		DeleteLesson(ctx context.Context, id string) error
		CourseExists(ctx context.Context, courseID string) (bool, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkCourse(ctx context.Context, courseID string) error {
	if courseID == "" {
		return nil
	}
	exists, err := svc.repo.CourseExists(ctx, courseID)
	if err != nil {
		return errors.Wrap(err, "checking course")
	}
	if !exists {
		return core.NewValidationError(errCourseNotFound, core.FieldError{Field: "courseId", Error: errCourseNotFound.Error()})
	}
	return nil
}

// Create stores a new Lesson authored by actor; NewLesson must have been validated.
func (svc *Service) Create(ctx context.Context, nl NewLesson, actor user.User) (Lesson, error) {
	if !actor.Can(user.PermAuthor) {
		return Lesson{}, core.ErrPermissionDenied
	}
	if err := svc.checkCourse(ctx, nl.CourseID); err != nil {
		return Lesson{}, err
	}
	now := time.Now().UTC()
	l := Lesson{
		CourseID:  nl.CourseID,
		Date:      nl.Date,
		Duration:  nl.Duration,
		Sections:  nl.Sections,
		Notes:     nl.Notes,
		Version:   CurrentVersion,
		CreatedBy: actor.ID,
		Reviewers: nl.Reviewers,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if l.Duration == 0 {
		l.Duration = DefaultDuration
	}
	l.refresh()
	return svc.repo.CreateLesson(ctx, l)
}

func (svc *Service) Get(ctx context.Context, id string) (Lesson, error) {
	return svc.repo.GetLessonByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Lesson, error) {
	return svc.repo.QueryLessons(ctx, filter)
}

// Update merges ul into the Lesson; only its creator or an admin may do so.
func (svc *Service) Update(ctx context.Context, id string, ul UpdateLesson, actor user.User) (Lesson, error) {
	l, err := svc.repo.GetLessonByID(ctx, id)
	if err != nil {
		return Lesson{}, err
	}
	if !actor.CanModify(l.CreatedBy) {
		return Lesson{}, core.ErrPermissionDenied
	}
	if ul.CourseID != nil && *ul.CourseID != l.CourseID {
		if err = svc.checkCourse(ctx, *ul.CourseID); err != nil {
			return Lesson{}, err
		}
	}

	ul.apply(&l)
	l.refresh()
	l.UpdatedAt = time.Now().UTC()

	l, err = svc.repo.UpdateLesson(ctx, l)
	return l, errors.Wrap(err, "updating lesson")
}

func (svc *Service) Delete(ctx context.Context, id string, actor user.User) error {
	l, err := svc.repo.GetLessonByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanModify(l.CreatedBy) {
		return core.ErrPermissionDenied
	}
	return errors.Wrap(svc.repo.DeleteLesson(ctx, id), "deleting lesson")
}
