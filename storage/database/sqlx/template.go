package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/pownas/dancecourse/core"
	"github.com/pownas/dancecourse/core/template"
)

const templateColumns = "id, scope, name, content, owner, team, created_at, updated_at"

var templateOrdering = []core.DBOrdering{
	{Field: "updated_at", Ascending: false},
	{Field: "id", Ascending: true},
}

type templateRow struct {
	ID        string      `db:"id"`
	Scope     string      `db:"scope"`
	Name      string      `db:"name"`
	Content   string      `db:"content"`
	Owner     string      `db:"owner"`
	Team      null.String `db:"team"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

type templateRepository struct {
	db core.DBExecutor
}

var _ template.Repository = (*templateRepository)(nil) // interface compliance check

func NewTemplateRepository(db core.DBExecutor) *templateRepository {
	return &templateRepository{db: db}
}

func (repo templateRepository) toRow(t template.Template) templateRow {
	return templateRow{
		ID:        t.ID,
		Scope:     string(t.Scope),
		Name:      t.Name,
		Content:   t.Content,
		Owner:     t.Owner,
		Team:      null.NewString(t.Team, t.Team != ""),
		CreatedAt: t.CreatedAt.UTC(),
		UpdatedAt: t.UpdatedAt.UTC(),
	}
}

func (repo templateRepository) fromRow(row templateRow) template.Template {
	return template.Template{
		ID:        row.ID,
		Scope:     template.Scope(row.Scope),
		Name:      row.Name,
		Content:   row.Content,
		Owner:     row.Owner,
		Team:      row.Team.String,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func (repo templateRepository) fromRows(rows []templateRow) []template.Template {
	templates := make([]template.Template, 0, len(rows))
	for _, row := range rows {
		templates = append(templates, repo.fromRow(row))
	}
	return templates
}

func (repo templateRepository) CreateTemplate(ctx context.Context, t template.Template) (template.Template, error) {
	t.ID = uuid.New().String()
	q := "INSERT INTO templates (" + templateColumns + ") " +
		"VALUES (:id, :scope, :name, :content, :owner, :team, :created_at, :updated_at)"
	if _, err := sqlx.NamedExecContext(ctx, repo.db, q, repo.toRow(t)); err != nil {
		return template.Template{}, errors.Wrap(err, "inserting template")
	}
	return t, nil
}

func (repo templateRepository) GetTemplateByID(ctx context.Context, id string) (template.Template, error) {
	var row templateRow
	q := repo.db.Rebind("SELECT " + templateColumns + " FROM templates WHERE id = ?")
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return template.Template{}, trapNoRowsErr(err, template.ErrNotFound, "selecting template")
	}
	return repo.fromRow(row), nil
}

func (repo templateRepository) QueryTemplates(
	ctx context.Context,
	filter template.QueryFilter,
	ownerID, teamID string,
) ([]template.Template, int, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.TeamID != "" {
		conds = append(conds, "team = ?")
		args = append(args, filter.TeamID)
	} else if teamID != "" {
		conds = append(conds, "(owner = ? OR team = ?)")
		args = append(args, ownerID, teamID)
	} else {
		conds = append(conds, "owner = ?")
		args = append(args, ownerID)
	}
	if filter.Scope != "" {
		conds = append(conds, "scope = ?")
		args = append(args, string(filter.Scope))
	}
	if filter.Search != "" {
		val := containsPattern(filter.Search)
		conds = append(conds, ilike("name", "content"))
		args = append(args, val, val)
	}
	where := whereClause(conds)

	var total int
	if err := repo.db.GetContext(ctx, &total, repo.db.Rebind("SELECT COUNT(*) FROM templates"+where), args...); err != nil {
		return nil, 0, errors.Wrap(err, "counting templates")
	}

	q := "SELECT " + templateColumns + " FROM templates" + where + orderBy(templateOrdering...) + " LIMIT ? OFFSET ?"
	pageArgs := append(append([]interface{}{}, args...), filter.PageSize, filter.Offset())

	var rows []templateRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), pageArgs...); err != nil {
		return nil, 0, errors.Wrap(err, "selecting templates")
	}
	return repo.fromRows(rows), total, nil
}

func (repo templateRepository) QueryTeamTemplates(ctx context.Context, teamID string) ([]template.Template, error) {
	q := "SELECT " + templateColumns + " FROM templates WHERE team = ?" + orderBy(templateOrdering...)
	var rows []templateRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), teamID); err != nil {
		return nil, errors.Wrap(err, "selecting team templates")
	}
	return repo.fromRows(rows), nil
}

func (repo templateRepository) UpdateTemplate(ctx context.Context, t template.Template) (template.Template, error) {
	q := "UPDATE templates SET name = :name, content = :content, team = :team, updated_at = :updated_at WHERE id = :id"
	res, err := sqlx.NamedExecContext(ctx, repo.db, q, repo.toRow(t))
	if err != nil {
		return template.Template{}, errors.Wrap(err, "updating template")
	}
	if err = checkAffected(res, template.ErrNotFound, "updating template"); err != nil {
		return template.Template{}, err
	}
	return t, nil
}

func (repo templateRepository) DeleteTemplate(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM templates WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "deleting template")
	}
	return checkAffected(res, template.ErrNotFound, "deleting template")
}
