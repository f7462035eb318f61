package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/pownas/dancecourse/core"
	"github.com/pownas/dancecourse/core/team"
)

type teamRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type teamRepository struct {
	db core.DBExecutor
}

var _ team.Repository = (*teamRepository)(nil) // interface compliance check

func NewTeamRepository(db core.DBExecutor) *teamRepository {
	return &teamRepository{db: db}
}

func (repo teamRepository) fromRow(row teamRow) team.Team {
	return team.Team(row)
}

func (repo teamRepository) CreateTeam(ctx context.Context, tm team.Team) (team.Team, error) {
	tm.ID = uuid.New().String()
	row := teamRow{ID: tm.ID, Name: tm.Name, CreatedAt: tm.CreatedAt.UTC(), UpdatedAt: tm.UpdatedAt.UTC()}
	q := "INSERT INTO teams (id, name, created_at, updated_at) VALUES (:id, :name, :created_at, :updated_at)"
	if _, err := sqlx.NamedExecContext(ctx, repo.db, q, row); err != nil {
		return team.Team{}, errors.Wrap(err, "inserting team")
	}
	return tm, nil
}

func (repo teamRepository) GetTeamByID(ctx context.Context, id string) (team.Team, error) {
	var row teamRow
	q := repo.db.Rebind("SELECT id, name, created_at, updated_at FROM teams WHERE id = ?")
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return team.Team{}, trapNoRowsErr(err, team.ErrNotFound, "selecting team")
	}
	return repo.fromRow(row), nil
}

func (repo teamRepository) QueryTeams(ctx context.Context) ([]team.Team, error) {
	var rows []teamRow
	q := "SELECT id, name, created_at, updated_at FROM teams ORDER BY name ASC"
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "selecting teams")
	}
	teams := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		teams = append(teams, repo.fromRow(row))
	}
	return teams, nil
}
