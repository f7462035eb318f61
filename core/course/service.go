package course

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/pownas/dancecourse/core"
	"github.com/pownas/dancecourse/core/user"
)

var ErrNotFound = core.NewNotFoundError("course")

type (
	Repository interface {
		CreateCourse(ctx context.Context, c Course) (Course, error)
		// GetCourseByID fills in the lesson derived fields.
		GetCourseByID(ctx context.Context, id string) (Course, error)
		QueryCourses(ctx context.Context, filter QueryFilter) ([]Course, error)
		UpdateCourse(ctx context.Context, c Course) (Course, error)
		// DeleteCourse detaches the lessons of the course before removing it.
		DeleteCourse(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create stores a new Course authored by actor; NewCourse must have been validated.
func (svc *Service) Create(ctx context.Context, nc NewCourse, actor user.User) (Course, error) {
	if !actor.Can(user.PermAuthor) {
		return Course{}, core.ErrPermissionDenied
	}
	if nc.DurationWeeks == 0 {
		nc.DurationWeeks = DefaultDurationWeeks
	}
	if nc.PlannedLessonCount == 0 {
		nc.PlannedLessonCount = nc.DurationWeeks
	}
	if nc.Type == "" {
		nc.Type = TypeWeekly
	}
	if nc.Level == "" {
		nc.Level = core.LevelBeginner
	}

	now := time.Now().UTC()
	c := Course{
		Name:               nc.Name,
		Level:              nc.Level,
		DanceStyle:         nc.DanceStyle,
		Type:               nc.Type,
		DurationWeeks:      nc.DurationWeeks,
		PlannedLessonCount: nc.PlannedLessonCount,
		Goals:              nc.Goals,
		ThemesByWeek:       nc.ThemesByWeek,
		LessonIDs:          nc.LessonIDs,
		CoverageMetrics:    nc.CoverageMetrics,
		RepetitionPlan:     nc.RepetitionPlan,
		CreatedBy:          actor.ID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	c.refresh()
	return svc.repo.CreateCourse(ctx, c)
}

func (svc *Service) Get(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Course, error) {
	return svc.repo.QueryCourses(ctx, filter)
}

// Update merges uc into the Course; only its creator or an admin may do so.
// themesByWeek is resized whenever durationWeeks or the themes change.
func (svc *Service) Update(ctx context.Context, id string, uc UpdateCourse, actor user.User) (Course, error) {
	c, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if !actor.CanModify(c.CreatedBy) {
		return Course{}, core.ErrPermissionDenied
	}

	uc.apply(&c)
	c.refresh()
	c.UpdatedAt = time.Now().UTC()

	if _, err = svc.repo.UpdateCourse(ctx, c); err != nil {
		return Course{}, errors.Wrap(err, "updating course")
	}
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *Service) Delete(ctx context.Context, id string, actor user.User) error {
	c, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanModify(c.CreatedBy) {
		return core.ErrPermissionDenied
	}
	return errors.Wrap(svc.repo.DeleteCourse(ctx, id), "deleting course")
}

// Coverage reports, week by week, the themes of the course.
func (svc *Service) Coverage(ctx context.Context, id string) (Coverage, error) {
	c, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Coverage{}, err
	}
	cov := Coverage{
		CourseID:             c.ID,
		FundamentalsProgress: map[string]bool{},
		WeeklyProgress:       make([]WeekCoverage, 0, c.DurationWeeks),
	}
	themes := ResizeThemes(c.ThemesByWeek, c.DurationWeeks)
	for week := 1; week <= c.DurationWeeks; week++ {
		cov.WeeklyProgress = append(cov.WeeklyProgress, WeekCoverage{
			Week:              week,
			Theme:             themes[week-1],
			CompletedConcepts: []string{},
			PlannedConcepts:   []string{},
		})
	}
	return cov, nil
}
