package dig_container

import (
	"fmt"
	"log"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/pownas/dancecourse/apps/api/echo"
	"github.com/pownas/dancecourse/core"
	"github.com/pownas/dancecourse/core/course"
	"github.com/pownas/dancecourse/core/lesson"
	"github.com/pownas/dancecourse/core/pattern"
	"github.com/pownas/dancecourse/core/template"
	"github.com/pownas/dancecourse/core/user"
	logsvc "github.com/pownas/dancecourse/services/logger"
	"github.com/pownas/dancecourse/storage/database"
	sqlxrepos "github.com/pownas/dancecourse/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

type serverParams struct {
	dig.In
	Conf        *core.Config
	Logger      core.Logger
	Validate    *validator.Validate
	Translator  ut.Translator
	UserSvc     *user.Service
	PatternSvc  *pattern.Service
	LessonSvc   *lesson.Service
	CourseSvc   *course.Service
	TemplateSvc *template.Service
}

func newLogger(conf *core.Config) core.Logger {
	return logsvc.New("API", conf)
}

func newDBLogger(conf *core.Config) core.Logger {
	return logsvc.New("DB", conf)
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) (*sqlx.DB, core.DB, core.DBExecutor) {
	setUp := func() (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db, db, db
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate
}

func newContentValidator() *template.ContentValidator {
	cv, err := template.NewContentValidator()
	if err != nil {
		log.Fatal(errors.Wrap(err, "loading template schemas").Error())
	}
	return cv
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:        p.Conf,
		Logger:      p.Logger,
		Validate:    p.Validate,
		Translator:  p.Translator,
		UserSvc:     p.UserSvc,
		PatternSvc:  p.PatternSvc,
		LessonSvc:   p.LessonSvc,
		CourseSvc:   p.CourseSvc,
		TemplateSvc: p.TemplateSvc,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(newContentValidator))

	// repositories
	must(c.Provide(sqlxrepos.NewUserRepository, dig.As(new(user.Repository))))
	must(c.Provide(sqlxrepos.NewPatternRepository, dig.As(new(pattern.Repository))))
	must(c.Provide(sqlxrepos.NewLessonRepository, dig.As(new(lesson.Repository))))
	must(c.Provide(sqlxrepos.NewCourseRepository, dig.As(new(course.Repository))))
	must(c.Provide(sqlxrepos.NewTemplateRepository, dig.As(new(template.Repository))))

	// services
	must(c.Provide(user.NewService))
	must(c.Provide(pattern.NewService))
	must(c.Provide(lesson.NewService))
	must(c.Provide(course.NewService))
	must(c.Provide(func(svc *lesson.Service) template.LessonCreator { return svc }))
	must(c.Provide(func(svc *course.Service) template.CourseCreator { return svc }))
	must(c.Provide(template.NewService))

	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
