package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/pownas/dancecourse/core"
	"github.com/pownas/dancecourse/core/course"
)

const (
	courseColumns = "id, name, level, dance_style, type, duration_weeks, planned_lesson_count, goals, " +
		"themes_by_week, lesson_ids, coverage_metrics, repetition_plan, created_by, created_at, updated_at"

	// courseSelect adds the lesson aggregates to every course row.
	courseSelect = "SELECT c.id, c.name, c.level, c.dance_style, c.type, c.duration_weeks, " +
		"c.planned_lesson_count, c.goals, c.themes_by_week, c.lesson_ids, c.coverage_metrics, " +
		"c.repetition_plan, c.created_by, c.created_at, c.updated_at, " +
		"(SELECT COUNT(*) FROM lessons l WHERE l.course_id = c.id) AS actual_lesson_count, " +
		"(SELECT COALESCE(SUM(l.duration), 0) FROM lessons l WHERE l.course_id = c.id) AS total_planned_minutes " +
		"FROM courses c"
)

type courseRow struct {
	ID                  string     `db:"id"`
	Name                string     `db:"name"`
	Level               string     `db:"level"`
	DanceStyle          string     `db:"dance_style"`
	Type                string     `db:"type"`
	DurationWeeks       int        `db:"duration_weeks"`
	PlannedLessonCount  int        `db:"planned_lesson_count"`
	Goals               stringList `db:"goals"`
	ThemesByWeek        stringList `db:"themes_by_week"`
	LessonIDs           stringList `db:"lesson_ids"`
	CoverageMetrics     string     `db:"coverage_metrics"`
	RepetitionPlan      string     `db:"repetition_plan"`
	CreatedBy           string     `db:"created_by"`
	CreatedAt           time.Time  `db:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at"`
	ActualLessonCount   int        `db:"actual_lesson_count"`
	TotalPlannedMinutes int        `db:"total_planned_minutes"`
}

type courseRepository struct {
	db core.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db core.DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo courseRepository) toRow(c course.Course) courseRow {
	return courseRow{
		ID:                 c.ID,
		Name:               c.Name,
		Level:              string(c.Level),
		DanceStyle:         c.DanceStyle,
		Type:               string(c.Type),
		DurationWeeks:      c.DurationWeeks,
		PlannedLessonCount: c.PlannedLessonCount,
		Goals:              c.Goals,
		ThemesByWeek:       c.ThemesByWeek,
		LessonIDs:          c.LessonIDs,
		CoverageMetrics:    c.CoverageMetrics,
		RepetitionPlan:     c.RepetitionPlan,
		CreatedBy:          c.CreatedBy,
		CreatedAt:          c.CreatedAt.UTC(),
		UpdatedAt:          c.UpdatedAt.UTC(),
	}
}

func (repo courseRepository) fromRow(row courseRow) course.Course {
	return course.Course{
		ID:                  row.ID,
		Name:                row.Name,
		Level:               core.Level(row.Level),
		DanceStyle:          row.DanceStyle,
		Type:                course.Type(row.Type),
		DurationWeeks:       row.DurationWeeks,
		PlannedLessonCount:  row.PlannedLessonCount,
		Goals:               core.NonNilStrings(row.Goals),
		ThemesByWeek:        core.NonNilStrings(row.ThemesByWeek),
		LessonIDs:           core.NonNilStrings(row.LessonIDs),
		CoverageMetrics:     row.CoverageMetrics,
		RepetitionPlan:      row.RepetitionPlan,
		CreatedBy:           row.CreatedBy,
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
		ActualLessonCount:   row.ActualLessonCount,
		TotalPlannedMinutes: row.TotalPlannedMinutes,
	}
}

func (repo courseRepository) CreateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	c.ID = uuid.New().String()
	q := "INSERT INTO courses (" + courseColumns + ") VALUES (:id, :name, :level, :dance_style, :type, " +
		":duration_weeks, :planned_lesson_count, :goals, :themes_by_week, :lesson_ids, :coverage_metrics, " +
		":repetition_plan, :created_by, :created_at, :updated_at)"
	if _, err := sqlx.NamedExecContext(ctx, repo.db, q, repo.toRow(c)); err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return c, nil
}

func (repo courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	var row courseRow
	q := repo.db.Rebind(courseSelect + " WHERE c.id = ?")
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return course.Course{}, trapNoRowsErr(err, course.ErrNotFound, "selecting course")
	}
	return repo.fromRow(row), nil
}

func (repo courseRepository) QueryCourses(ctx context.Context, filter course.QueryFilter) ([]course.Course, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.Level != "" {
		conds = append(conds, "c.level = ?")
		args = append(args, string(filter.Level))
	}
	if filter.DanceStyle != "" {
		conds = append(conds, "LOWER(c.dance_style) = ?")
		args = append(args, core.CleanString(filter.DanceStyle, true /* lower */))
	}
	if filter.Search != "" {
		val := containsPattern(filter.Search)
		conds = append(conds, "("+ilike("c.name")+" OR "+ilikeJSONItem(repo.db.DriverName(), "c.goals")+")")
		args = append(args, val, val)
	}
	q := courseSelect + whereClause(conds) +
		orderBy(core.DBOrdering{Field: "c.name", Ascending: true}, core.DBOrdering{Field: "c.created_at", Ascending: true})

	var rows []courseRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting courses")
	}
	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, repo.fromRow(row))
	}
	return courses, nil
}

func (repo courseRepository) UpdateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	q := "UPDATE courses SET name = :name, level = :level, dance_style = :dance_style, type = :type, " +
		"duration_weeks = :duration_weeks, planned_lesson_count = :planned_lesson_count, goals = :goals, " +
		"themes_by_week = :themes_by_week, lesson_ids = :lesson_ids, coverage_metrics = :coverage_metrics, " +
		"repetition_plan = :repetition_plan, updated_at = :updated_at WHERE id = :id"
	res, err := sqlx.NamedExecContext(ctx, repo.db, q, repo.toRow(c))
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	if err = checkAffected(res, course.ErrNotFound, "updating course"); err != nil {
		return course.Course{}, err
	}
	return c, nil
}

func (repo courseRepository) DeleteCourse(ctx context.Context, id string) (err error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, tx.Rebind("UPDATE lessons SET course_id = NULL WHERE course_id = ?"), id); err != nil {
		return errors.Wrap(err, "detaching lessons")
	}
	res, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM courses WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "deleting course")
	}
	if err = checkAffected(res, course.ErrNotFound, "deleting course"); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "committing course deletion")
}
