package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/pownas/dancecourse/core"
	"github.com/pownas/dancecourse/core/user"
)

const userColumns = "id, name, email, role, team_id, password_hash, created_at, updated_at"

type userRow struct {
	ID           string      `db:"id"`
	Name         string      `db:"name"`
	Email        string      `db:"email"`
	Role         string      `db:"role"`
	TeamID       null.String `db:"team_id"`
	PasswordHash string      `db:"password_hash"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

type userRepository struct {
	db core.DBExecutor
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db core.DBExecutor) *userRepository {
	return &userRepository{db: db}
}

func (repo userRepository) toRow(usr user.User) userRow {
	return userRow{
		ID:           usr.ID,
		Name:         usr.Name,
		Email:        usr.Email,
		Role:         string(usr.Role),
		TeamID:       null.NewString(usr.TeamID, usr.TeamID != ""),
		PasswordHash: string(usr.PasswordHash),
		CreatedAt:    usr.CreatedAt.UTC(),
		UpdatedAt:    usr.UpdatedAt.UTC(),
	}
}

func (repo userRepository) fromRow(row userRow) user.User {
	return user.User{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		Role:         user.Role(row.Role),
		TeamID:       row.TeamID.String,
		PasswordHash: []byte(row.PasswordHash),
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func (repo userRepository) getOne(ctx context.Context, cond string, arg interface{}) (user.User, error) {
	var row userRow
	q := repo.db.Rebind("SELECT " + userColumns + " FROM users WHERE " + cond)
	if err := repo.db.GetContext(ctx, &row, q, arg); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "selecting user")
	}
	return repo.fromRow(row), nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	q := "INSERT INTO users (" + userColumns + ") " +
		"VALUES (:id, :name, :email, :role, :team_id, :password_hash, :created_at, :updated_at)"
	if _, err := sqlx.NamedExecContext(ctx, repo.db, q, repo.toRow(usr)); err != nil {
		// a concurrent registration may win between the uniqueness check and the insert
		if isUniqueViolation(err) {
			return user.User{}, user.NewEmailExistsError()
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.getOne(ctx, "id = ?", id)
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.getOne(ctx, "email = ?", email)
}

func (repo userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int
	q := repo.db.Rebind("SELECT COUNT(*) FROM users WHERE email = ?")
	if err := repo.db.GetContext(ctx, &count, q, email); err != nil {
		return false, errors.Wrap(err, "checking user email")
	}
	return count > 0, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := "UPDATE users SET name = :name, email = :email, role = :role, team_id = :team_id, " +
		"password_hash = :password_hash, updated_at = :updated_at WHERE id = :id"
	res, err := sqlx.NamedExecContext(ctx, repo.db, q, repo.toRow(usr))
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if err = checkAffected(res, user.ErrNotFound, "updating user"); err != nil {
		return user.User{}, err
	}
	return usr, nil
}
