package main

import (
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/pownas/dancecourse/core"
	"github.com/pownas/dancecourse/core/pattern"
	"github.com/pownas/dancecourse/core/team"
	"github.com/pownas/dancecourse/core/user"
	"github.com/pownas/dancecourse/storage/database"
	sqlxrepos "github.com/pownas/dancecourse/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)

	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// start CLI
	cli := commandLine{
		db:         db,
		validate:   validate,
		usrSvc:     user.NewService(sqlxrepos.NewUserRepository(db)),
		teamSvc:    team.NewService(sqlxrepos.NewTeamRepository(db)),
		patternSvc: pattern.NewService(sqlxrepos.NewPatternRepository(db)),
	}
	err = cli.run(os.Args)
	if cErr := db.Close(); cErr != nil {
		logger.Printf("closing database: %s", cErr)
	}
	if err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
