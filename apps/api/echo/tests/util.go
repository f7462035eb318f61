package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/pownas/dancecourse/apps/api/echo"
	"github.com/pownas/dancecourse/core"
	"github.com/pownas/dancecourse/core/course"
	"github.com/pownas/dancecourse/core/lesson"
	"github.com/pownas/dancecourse/core/pattern"
	"github.com/pownas/dancecourse/core/team"
	"github.com/pownas/dancecourse/core/template"
	"github.com/pownas/dancecourse/core/user"
	logsvc "github.com/pownas/dancecourse/services/logger"
	sqlxrepos "github.com/pownas/dancecourse/storage/database/sqlx"
	"github.com/pownas/dancecourse/tests"
)

var (
	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
)

// testApp is a server backed by a fresh database.
type testApp struct {
	*Server
	conf     *core.Config
	db       *sqlx.DB
	usrRepo  user.Repository
	teamRepo team.Repository
}

// setup builds the app; configure may adjust the config before the server is created.
func setup(t *testing.T, configure ...func(conf *core.Config)) *testApp {
	t.Helper()

	// set up DB & repos
	db := testutil.PrepareDB(t)
	conf := testutil.NewConfig("")
	for _, fn := range configure {
		fn(conf)
	}
	usrRepo := sqlxrepos.NewUserRepository(db)
	lessonSvc := lesson.NewService(sqlxrepos.NewLessonRepository(db))
	courseSvc := course.NewService(sqlxrepos.NewCourseRepository(db))
	content, err := template.NewContentValidator()
	require.NoError(t, err)

	validate, translator := testutil.NewValidator()

	// set up server
	server := NewServer(ServerDeps{
		Conf:        conf,
		Logger:      logsvc.New("TEST", conf),
		Validate:    validate,
		Translator:  translator,
		UserSvc:     user.NewService(usrRepo),
		PatternSvc:  pattern.NewService(sqlxrepos.NewPatternRepository(db)),
		LessonSvc:   lessonSvc,
		CourseSvc:   courseSvc,
		TemplateSvc: template.NewService(sqlxrepos.NewTemplateRepository(db), lessonSvc, courseSvc, content),
	})
	return &testApp{
		Server:   server,
		conf:     conf,
		db:       db,
		usrRepo:  usrRepo,
		teamRepo: sqlxrepos.NewTeamRepository(db),
	}
}

func (app *testApp) createUser(t *testing.T, name, email string, role user.Role, teamID ...string) user.User {
	var tid string
	if len(teamID) > 0 {
		tid = teamID[0]
	}
	return testutil.CreateUser(t, app.usrRepo, name, email, "password123", role, tid)
}

func (app *testApp) token(t *testing.T, usr user.User) string {
	token, err := GenerateToken(GetUserClaims(usr, app.conf), app.conf)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

// do serves the request and returns the recorder.
func (app *testApp) do(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, data...)
	app.ServeHTTP(rec, req)
	return rec
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

// decode unmarshals the response body into v.
func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app *testApp, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			rec := app.do(method, tt.path, tt.token, tt.body)
			checkCodeAndData(t, tt, rec)
		})
	}
}
