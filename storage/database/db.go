package database

import (
	"fmt"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/pownas/dancecourse/core"
	appfs "github.com/pownas/dancecourse/fs"
)

const migrationsDir = "migrations"

func dsn(dbName string, conf *core.Config) (driver, source string) {
	if conf.Database.IsSQLite() {
		q := make(url.Values)
		q.Set("_foreign_keys", "1")
		q.Set("_busy_timeout", "5000")
		return "sqlite3", fmt.Sprintf("file:%s?%s", dbName, q.Encode())
	}

	sslMode := "require"
	if conf.Database.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(conf.Database.User, conf.Database.Password),
		Host:     conf.Database.Address(),
		Path:     dbName,
		RawQuery: q.Encode(),
	}
	return "postgres", u.String()
}

// Open opens and pings the configured database.
func Open(conf *core.Config) (*sqlx.DB, error) {
	return open(conf.Database.Name, conf)
}

func open(dbName string, conf *core.Config) (*sqlx.DB, error) {
	driver, source := dsn(dbName, conf)
	db, err := sqlx.Open(driver, source)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if driver == "sqlite3" {
		// sqlite allows a single writer at a time
		db.SetMaxOpenConns(1)
	}
	if err = ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// CreateIfNotExist creates the postgres database when missing; sqlite creates its file on open.
func CreateIfNotExist(conf *core.Config) error {
	if conf.Database.IsSQLite() {
		return nil
	}

	db, err := open("postgres", conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = db.Close() }()

	var exists bool
	if err = db.Get(&exists, "SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", conf.Database.Name); err != nil {
		return errors.Wrap(err, "checking DB")
	}
	if !exists {
		if _, err = db.Exec(fmt.Sprintf("CREATE DATABASE %q", conf.Database.Name)); err != nil {
			return errors.Wrap(err, "creating database")
		}
	}
	return nil
}

// SetUpGoose points goose at the embedded migrations for the dialect of db.
func SetUpGoose(db *sqlx.DB) error {
	goose.SetBaseFS(appfs.FS)
	return goose.SetDialect(db.DriverName())
}

func Migrate(db *sqlx.DB) error {
	if err := SetUpGoose(db); err != nil {
		return errors.Wrap(err, "setting up goose")
	}
	if err := goose.Up(db.DB, migrationsDir); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}

// RunMigrations runs any goose command (up, down, status, ...) against db.
func RunMigrations(db *sqlx.DB, command string, args ...string) error {
	if err := SetUpGoose(db); err != nil {
		return errors.Wrap(err, "setting up goose")
	}
	return goose.Run(command, db.DB, migrationsDir, args...)
}
