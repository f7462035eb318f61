package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/pownas/dancecourse/core"
	"github.com/pownas/dancecourse/core/team"
	"github.com/pownas/dancecourse/core/user"
	"github.com/pownas/dancecourse/storage/database"
)

// NewConfig returns a Config suited for tests: no request logs, no debug output, a throwaway secret.
func NewConfig(dbName string) *core.Config {
	return &core.Config{
		Env:       "TEST",
		TestMode:  true,
		AppName:   "DanceCourseCreator",
		Build:     "test",
		SecretKey: "test-secret-key",
		Database: core.DatabaseConfig{
			Engine: "sqlite3",
			Name:   dbName,
		},
		Server: core.ServerConfig{
			CORSAllowOrigins:   []string{"*"},
			ShutdownTimeout:    time.Second,
			DisableReqLogs:     true,
			JWTExpirationDelta: time.Hour,
		},
	}
}

// PrepareDB opens a migrated SQLite database living in the test's temp dir.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()

	conf := NewConfig(filepath.Join(t.TempDir(), "test.db"))
	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("database.Open() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db); err != nil {
		t.Fatalf("database.Migrate() failed: %v", err)
	}
	return db
}

// NewValidator returns a validator with every custom validation registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd string,
	role user.Role,
	teamID string,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	usr := user.User{
		Name:      name,
		Email:     email,
		Role:      role,
		TeamID:    teamID,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func CreateTeam(t *testing.T, repo team.Repository, name string) team.Team {
	t.Helper()

	tstamp := time.Now().UTC()
	tm, err := repo.CreateTeam(context.Background(), team.Team{Name: name, CreatedAt: tstamp, UpdatedAt: tstamp})
	if err != nil {
		t.Fatalf("createTeam() failed: %v", err)
	}
	return tm
}
