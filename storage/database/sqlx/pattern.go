package sqlxrepos

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/pownas/dancecourse/core"
	"github.com/pownas/dancecourse/core/pattern"
)

const patternColumns = "id, type, name, dance_style, level, description, steps, counts, holds, rotations, " +
	"prerequisites, related, teaching_points, common_mistakes, variations, tags, media_links, aliases, slot, " +
	"estimated_minutes, bpm_min, bpm_max, created_by, created_at, updated_at"

type patternRow struct {
	ID               string     `db:"id"`
	Type             string     `db:"type"`
	Name             string     `db:"name"`
	DanceStyle       string     `db:"dance_style"`
	Level            string     `db:"level"`
	Description      string     `db:"description"`
	Steps            stringList `db:"steps"`
	Counts           stringList `db:"counts"`
	Holds            stringList `db:"holds"`
	Rotations        stringList `db:"rotations"`
	Prerequisites    stringList `db:"prerequisites"`
	Related          stringList `db:"related"`
	TeachingPoints   stringList `db:"teaching_points"`
	CommonMistakes   stringList `db:"common_mistakes"`
	Variations       stringList `db:"variations"`
	Tags             stringList `db:"tags"`
	MediaLinks       stringList `db:"media_links"`
	Aliases          stringList `db:"aliases"`
	Slot             string     `db:"slot"`
	EstimatedMinutes int        `db:"estimated_minutes"`
	BpmMin           int        `db:"bpm_min"`
	BpmMax           int        `db:"bpm_max"`
	CreatedBy        string     `db:"created_by"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

type patternRepository struct {
	db core.DBExecutor
}

var _ pattern.Repository = (*patternRepository)(nil) // interface compliance check

func NewPatternRepository(db core.DBExecutor) *patternRepository {
	return &patternRepository{db: db}
}

func (repo patternRepository) toRow(p pattern.Pattern) patternRow {
	return patternRow{
		ID:               p.ID,
		Type:             string(p.Type),
		Name:             p.Name,
		DanceStyle:       p.DanceStyle,
		Level:            string(p.Level),
		Description:      p.Description,
		Steps:            p.Steps,
		Counts:           p.Counts,
		Holds:            p.Holds,
		Rotations:        p.Rotations,
		Prerequisites:    p.Prerequisites,
		Related:          p.Related,
		TeachingPoints:   p.TeachingPoints,
		CommonMistakes:   p.CommonMistakes,
		Variations:       p.Variations,
		Tags:             p.Tags,
		MediaLinks:       p.MediaLinks,
		Aliases:          p.Aliases,
		Slot:             p.Slot,
		EstimatedMinutes: p.EstimatedMinutes,
		BpmMin:           p.BpmRange.Min,
		BpmMax:           p.BpmRange.Max,
		CreatedBy:        p.CreatedBy,
		CreatedAt:        p.CreatedAt.UTC(),
		UpdatedAt:        p.UpdatedAt.UTC(),
	}
}

func (repo patternRepository) fromRow(row patternRow) pattern.Pattern {
	return pattern.Pattern{
		ID:               row.ID,
		Type:             pattern.Type(row.Type),
		Name:             row.Name,
		DanceStyle:       row.DanceStyle,
		Level:            core.Level(row.Level),
		Description:      row.Description,
		Steps:            core.NonNilStrings(row.Steps),
		Counts:           core.NonNilStrings(row.Counts),
		Holds:            core.NonNilStrings(row.Holds),
		Rotations:        core.NonNilStrings(row.Rotations),
		Prerequisites:    core.NonNilStrings(row.Prerequisites),
		Related:          core.NonNilStrings(row.Related),
		TeachingPoints:   core.NonNilStrings(row.TeachingPoints),
		CommonMistakes:   core.NonNilStrings(row.CommonMistakes),
		Variations:       core.NonNilStrings(row.Variations),
		Tags:             core.NonNilStrings(row.Tags),
		MediaLinks:       core.NonNilStrings(row.MediaLinks),
		Aliases:          core.NonNilStrings(row.Aliases),
		Slot:             row.Slot,
		EstimatedMinutes: row.EstimatedMinutes,
		BpmRange:         pattern.BpmRange{Min: row.BpmMin, Max: row.BpmMax},
		CreatedBy:        row.CreatedBy,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}

func (repo patternRepository) CreatePattern(ctx context.Context, p pattern.Pattern) (pattern.Pattern, error) {
	p.ID = uuid.New().String()
	q := "INSERT INTO patterns (" + patternColumns + ") VALUES (:id, :type, :name, :dance_style, :level, " +
		":description, :steps, :counts, :holds, :rotations, :prerequisites, :related, :teaching_points, " +
		":common_mistakes, :variations, :tags, :media_links, :aliases, :slot, :estimated_minutes, :bpm_min, " +
		":bpm_max, :created_by, :created_at, :updated_at)"
	if _, err := sqlx.NamedExecContext(ctx, repo.db, q, repo.toRow(p)); err != nil {
		return pattern.Pattern{}, errors.Wrap(err, "inserting pattern")
	}
	return p, nil
}

func (repo patternRepository) GetPatternByID(ctx context.Context, id string) (pattern.Pattern, error) {
	var row patternRow
	q := repo.db.Rebind("SELECT " + patternColumns + " FROM patterns WHERE id = ?")
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return pattern.Pattern{}, trapNoRowsErr(err, pattern.ErrNotFound, "selecting pattern")
	}
	return repo.fromRow(row), nil
}

func (repo patternRepository) QueryPatterns(ctx context.Context, filter pattern.QueryFilter) ([]pattern.Pattern, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.Level != "" {
		conds = append(conds, "level = ?")
		args = append(args, string(filter.Level))
	}
	if filter.DanceStyle != "" {
		conds = append(conds, "LOWER(dance_style) = ?")
		args = append(args, core.CleanString(filter.DanceStyle, true /* lower */))
	}
	if filter.Search != "" {
		val := containsPattern(filter.Search)
		conds = append(conds, ilike("name", "description"))
		args = append(args, val, val)
	}
	// every tag must be present, with the same case: match the JSON encoded item inside the array text
	for _, tag := range filter.Tags {
		encoded, err := json.Marshal(tag)
		if err != nil {
			return nil, errors.Wrap(err, "encoding tag")
		}
		conds = append(conds, contains(repo.db.DriverName(), "tags"))
		args = append(args, string(encoded))
	}

	q := "SELECT " + patternColumns + " FROM patterns" + whereClause(conds) +
		orderBy(core.DBOrdering{Field: "name", Ascending: true}, core.DBOrdering{Field: "created_at", Ascending: true})

	var rows []patternRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting patterns")
	}
	patterns := make([]pattern.Pattern, 0, len(rows))
	for _, row := range rows {
		patterns = append(patterns, repo.fromRow(row))
	}
	return patterns, nil
}

func (repo patternRepository) UpdatePattern(ctx context.Context, p pattern.Pattern) (pattern.Pattern, error) {
	q := "UPDATE patterns SET type = :type, name = :name, dance_style = :dance_style, level = :level, " +
		"description = :description, steps = :steps, counts = :counts, holds = :holds, rotations = :rotations, " +
		"prerequisites = :prerequisites, related = :related, teaching_points = :teaching_points, " +
		"common_mistakes = :common_mistakes, variations = :variations, tags = :tags, media_links = :media_links, " +
		"aliases = :aliases, slot = :slot, estimated_minutes = :estimated_minutes, bpm_min = :bpm_min, " +
		"bpm_max = :bpm_max, updated_at = :updated_at WHERE id = :id"
	res, err := sqlx.NamedExecContext(ctx, repo.db, q, repo.toRow(p))
	if err != nil {
		return pattern.Pattern{}, errors.Wrap(err, "updating pattern")
	}
	if err = checkAffected(res, pattern.ErrNotFound, "updating pattern"); err != nil {
		return pattern.Pattern{}, err
	}
	return p, nil
}

func (repo patternRepository) DeletePattern(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM patterns WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "deleting pattern")
	}
	return checkAffected(res, pattern.ErrNotFound, "deleting pattern")
}
