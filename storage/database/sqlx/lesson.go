package sqlxrepos

import (
	"context"
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/pownas/dancecourse/core"
	"github.com/pownas/dancecourse/core/lesson"
)

const lessonColumns = "id, course_id, lesson_date, duration, sections, total_estimated_minutes, notes, version, " +
	"created_by, reviewers, history, created_at, updated_at"

// sectionList is the sections column, stored as a JSON array.
type sectionList []lesson.Section

func (l sectionList) Value() (driver.Value, error) {
	if l == nil {
		l = sectionList{}
	}
	data, err := json.Marshal([]lesson.Section(l))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *sectionList) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*l = sectionList{}
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("sectionList: cannot scan %T", src)
	}
	var sections []lesson.Section
	if len(data) > 0 {
		if err := json.Unmarshal(data, &sections); err != nil {
			return errors.Wrap(err, "sectionList: decoding")
		}
	}
	if sections == nil {
		sections = []lesson.Section{}
	}
	*l = sections
	return nil
}

type lessonRow struct {
	ID                    string      `db:"id"`
	CourseID              null.String `db:"course_id"`
	Date                  null.Time   `db:"lesson_date"`
	Duration              int         `db:"duration"`
	Sections              sectionList `db:"sections"`
	TotalEstimatedMinutes int         `db:"total_estimated_minutes"`
	Notes                 string      `db:"notes"`
	Version               int         `db:"version"`
	CreatedBy             string      `db:"created_by"`
	Reviewers             stringList  `db:"reviewers"`
	History               stringList  `db:"history"`
	CreatedAt             time.Time   `db:"created_at"`
	UpdatedAt             time.Time   `db:"updated_at"`
}

type lessonRepository struct {
	db core.DBExecutor
}

var _ lesson.Repository = (*lessonRepository)(nil) // interface compliance check

func NewLessonRepository(db core.DBExecutor) *lessonRepository {
	return &lessonRepository{db: db}
}

func (repo lessonRepository) toRow(l lesson.Lesson) lessonRow {
	row := lessonRow{
		ID:                    l.ID,
		CourseID:              null.NewString(l.CourseID, l.CourseID != ""),
		Duration:              l.Duration,
		Sections:              l.Sections,
		TotalEstimatedMinutes: l.TotalEstimatedMinutes,
		Notes:                 l.Notes,
		Version:               l.Version,
		CreatedBy:             l.CreatedBy,
		Reviewers:             l.Reviewers,
		History:               l.History,
		CreatedAt:             l.CreatedAt.UTC(),
		UpdatedAt:             l.UpdatedAt.UTC(),
	}
	if l.Date != nil {
		row.Date = null.TimeFrom(l.Date.UTC())
	}
	return row
}

func (repo lessonRepository) fromRow(row lessonRow) lesson.Lesson {
	l := lesson.Lesson{
		ID:                    row.ID,
		CourseID:              row.CourseID.String,
		Date:                  row.Date.Ptr(),
		Duration:              row.Duration,
		Sections:              row.Sections,
		TotalEstimatedMinutes: row.TotalEstimatedMinutes,
		Notes:                 row.Notes,
		Version:               row.Version,
		CreatedBy:             row.CreatedBy,
		Reviewers:             core.NonNilStrings(row.Reviewers),
		History:               core.NonNilStrings(row.History),
		CreatedAt:             row.CreatedAt,
		UpdatedAt:             row.UpdatedAt,
	}
	if l.Sections == nil {
		l.Sections = []lesson.Section{}
	}
	return l
}

func (repo lessonRepository) CreateLesson(ctx context.Context, l lesson.Lesson) (lesson.Lesson, error) {
	l.ID = uuid.New().String()
	q := "INSERT INTO lessons (" + lessonColumns + ") VALUES (:id, :course_id, :lesson_date, :duration, " +
		":sections, :total_estimated_minutes, :notes, :version, :created_by, :reviewers, :history, " +
		":created_at, :updated_at)"
	if _, err := sqlx.NamedExecContext(ctx, repo.db, q, repo.toRow(l)); err != nil {
		return lesson.Lesson{}, errors.Wrap(err, "inserting lesson")
	}
	return l, nil
}

func (repo lessonRepository) GetLessonByID(ctx context.Context, id string) (lesson.Lesson, error) {
	var row lessonRow
	q := repo.db.Rebind("SELECT " + lessonColumns + " FROM lessons WHERE id = ?")
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return lesson.Lesson{}, trapNoRowsErr(err, lesson.ErrNotFound, "selecting lesson")
	}
	return repo.fromRow(row), nil
}

func (repo lessonRepository) QueryLessons(ctx context.Context, filter lesson.QueryFilter) ([]lesson.Lesson, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.CourseID != "" {
		conds = append(conds, "course_id = ?")
		args = append(args, filter.CourseID)
	}
	q := "SELECT " + lessonColumns + " FROM lessons" + whereClause(conds) +
		orderBy(core.DBOrdering{Field: "created_at", Ascending: true})

	var rows []lessonRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting lessons")
	}
	lessons := make([]lesson.Lesson, 0, len(rows))
	for _, row := range rows {
		lessons = append(lessons, repo.fromRow(row))
	}
	return lessons, nil
}

func (repo lessonRepository) UpdateLesson(ctx context.Context, l lesson.Lesson) (lesson.Lesson, error) {
	q := "UPDATE lessons SET course_id = :course_id, lesson_date = :lesson_date, duration = :duration, " +
		"sections = :sections, total_estimated_minutes = :total_estimated_minutes, notes = :notes, " +
		"reviewers = :reviewers, updated_at = :updated_at WHERE id = :id"
	res, err := sqlx.NamedExecContext(ctx, repo.db, q, repo.toRow(l))
	if err != nil {
		return lesson.Lesson{}, errors.Wrap(err, "updating lesson")
	}
	if err = checkAffected(res, lesson.ErrNotFound, "updating lesson"); err != nil {
		return lesson.Lesson{}, err
	}
	return l, nil
}

func (repo lessonRepository) DeleteLesson(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM lessons WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "deleting lesson")
	}
	return checkAffected(res, lesson.ErrNotFound, "deleting lesson")
}

func (repo lessonRepository) CourseExists(ctx context.Context, courseID string) (bool, error) {
	var count int
	q := repo.db.Rebind("SELECT COUNT(*) FROM courses WHERE id = ?")
	if err := repo.db.GetContext(ctx, &count, q, courseID); err != nil {
		return false, errors.Wrap(err, "checking course")
	}
	return count > 0, nil
}
