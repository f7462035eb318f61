package tests

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pownas/dancecourse/core"
	"github.com/pownas/dancecourse/core/pattern"
	"github.com/pownas/dancecourse/core/user"
)

func createPattern(t *testing.T, app *testApp, token string, body string) pattern.Pattern {
	t.Helper()
	rec := app.do(http.MethodPost, "/api/patterns", token, []byte(body))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var p pattern.Pattern
	decode(t, rec, &p)
	return p
}

func Test_patternApi_roundTrip(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "Demo", "demo@example.com", user.RoleInstructor)
	token := app.token(t, usr)

	created := createPattern(t, app, token,
		`{"type":"pattern","name":"Sugar Push","level":"beginner","steps":["Leader steps back on 1","Compress on 2"]}`)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, usr.ID, created.CreatedBy)
	assert.Equal(t, []string{"Leader steps back on 1", "Compress on 2"}, created.Steps)
	assert.Equal(t, pattern.BpmRange{}, created.BpmRange)

	rec := app.do(http.MethodGet, "/api/patterns/"+created.ID, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, created)}, rec)

	// omitted lists come back as empty arrays
	var raw map[string]interface{}
	decode(t, rec, &raw)
	for _, key := range []string{
		"counts", "holds", "rotations", "prerequisites", "related", "teachingPoints",
		"commonMistakes", "variations", "tags", "mediaLinks", "aliases",
	} {
		assert.Equal(t, []interface{}{}, raw[key], key)
	}
}

func Test_patternApi_create(t *testing.T) {
	app := setup(t)
	instructor := app.createUser(t, "Demo", "demo@example.com", user.RoleInstructor)
	reader := app.createUser(t, "Reader", "reader@example.com", user.RoleReader)

	tests := []httpTest{
		{
			name: "auth required", method: http.MethodPost, path: "/api/patterns", body: []byte(`{}`),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "author role required", method: http.MethodPost, path: "/api/patterns", token: app.token(t, reader),
			body:     []byte(`{"type":"pattern","name":"Whip","level":"improver"}`),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "missing fields", method: http.MethodPost, path: "/api/patterns", token: app.token(t, instructor),
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"type":  "this field is required",
				"name":  "this field is required",
				"level": "this field is required",
			}),
		},
		{
			name: "unknown level", method: http.MethodPost, path: "/api/patterns", token: app.token(t, instructor),
			body:     []byte(`{"type":"pattern","name":"Whip","level":"expert"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"level": "level must be one of beginner, improver, intermediate or advanced",
			}),
		},
		{
			name: "inverted bpm range", method: http.MethodPost, path: "/api/patterns", token: app.token(t, instructor),
			body:     []byte(`{"type":"pattern","name":"Whip","level":"improver","bpmRange":{"min":110,"max":95}}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "exercise", method: http.MethodPost, path: "/api/patterns", token: app.token(t, instructor),
			body:     []byte(`{"type":"exercise","name":"Anchor Exercise","level":"Beginner","bpmRange":{"min":85,"max":95}}`),
			wantCode: http.StatusCreated,
		},
	}
	runHTTPTests(t, app, tests)
}

func Test_patternApi_query(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "Demo", "demo@example.com", user.RoleInstructor)
	token := app.token(t, usr)

	sugarPush := createPattern(t, app, token,
		`{"type":"pattern","name":"Sugar Push","level":"beginner","danceStyle":"West Coast Swing","tags":["fundamental","basic"]}`)
	whip := createPattern(t, app, token,
		`{"type":"pattern","name":"Whip","level":"improver","danceStyle":"West Coast Swing","description":"Starts like a sugar push","tags":["rotation"]}`)
	anchor := createPattern(t, app, token,
		`{"type":"exercise","name":"Anchor Exercise","level":"beginner","danceStyle":"West Coast Swing","tags":["fundamental","timing"]}`)
	lindy := createPattern(t, app, token,
		`{"type":"pattern","name":"Swing Out","level":"beginner","danceStyle":"Lindy Hop","tags":["basic"]}`)

	path := func(params ...string) string {
		v := make(url.Values)
		for i := 0; i+1 < len(params); i += 2 {
			v.Add(params[i], params[i+1])
		}
		return "/api/patterns?" + v.Encode()
	}
	list := func(patterns ...pattern.Pattern) []byte {
		if patterns == nil {
			patterns = []pattern.Pattern{}
		}
		return marchallObj(t, patterns)
	}

	tests := []httpTest{
		{name: "auth required", path: "/api/patterns", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "all, by name", path: "/api/patterns", token: token, wantCode: http.StatusOK, wantData: list(anchor, sugarPush, lindy, whip)},
		{name: "search sugar", path: path("search", "SUGAR"), token: token, wantCode: http.StatusOK, wantData: list(sugarPush, whip)},
		{
			name: "search sugar, beginner", path: path("search", "sugar push", "level", string(core.LevelBeginner)),
			token: token, wantCode: http.StatusOK, wantData: list(sugarPush),
		},
		{name: "search (unknown)", path: path("search", "lol"), token: token, wantCode: http.StatusOK, wantData: list()},
		{name: "search with wildcard", path: path("search", "%"), token: token, wantCode: http.StatusOK, wantData: list()},
		{name: "type", path: path("type", "exercise"), token: token, wantCode: http.StatusOK, wantData: list(anchor)},
		{name: "dance style", path: path("danceStyle", "Lindy Hop"), token: token, wantCode: http.StatusOK, wantData: list(lindy)},
		{name: "one tag", path: path("tags", "basic"), token: token, wantCode: http.StatusOK, wantData: list(sugarPush, lindy)},
		{
			name: "every tag must match", path: path("tags", "fundamental", "tags", "timing"),
			token: token, wantCode: http.StatusOK, wantData: list(anchor),
		},
		{name: "comma separated tags", path: path("tags", "fundamental,basic"), token: token, wantCode: http.StatusOK, wantData: list(sugarPush)},
		{name: "tags match case", path: path("tags", "BASIC"), token: token, wantCode: http.StatusOK, wantData: list()},
		{name: "tags match whole items", path: path("tags", "basi"), token: token, wantCode: http.StatusOK, wantData: list()},
	}
	runHTTPTests(t, app, tests)
}

func Test_patternApi_updateDelete(t *testing.T) {
	app := setup(t)
	owner := app.createUser(t, "Owner", "owner@example.com", user.RoleInstructor)
	other := app.createUser(t, "Other", "other@example.com", user.RoleEditor)
	admin := app.createUser(t, "Admin", "admin@example.com", user.RoleAdmin)

	p := createPattern(t, app, app.token(t, owner),
		`{"type":"pattern","name":"Whip","level":"improver","steps":["a","b"],"bpmRange":{"min":95,"max":110}}`)
	path := "/api/patterns/" + p.ID

	tests := []httpTest{
		{
			name: "not found", method: http.MethodPut, path: "/api/patterns/nope", token: app.token(t, owner),
			body: []byte(`{"name":"Whip 2"}`), wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "pattern not found"}),
		},
		{
			name: "non-owner update", method: http.MethodPut, path: path, token: app.token(t, other),
			body: []byte(`{"name":"Mine now"}`), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "non-owner delete", method: http.MethodDelete, path: path, token: app.token(t, other),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "bpm range broken by partial update", method: http.MethodPut, path: path, token: app.token(t, owner),
			body: []byte(`{"bpmRange":{"min":120,"max":100}}`), wantCode: http.StatusBadRequest,
		},
	}
	runHTTPTests(t, app, tests)

	// owner: partial update keeps omitted fields
	rec := app.do(http.MethodPut, path, app.token(t, owner), []byte(`{"name":"Basic Whip","tags":["rotation"]}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated pattern.Pattern
	decode(t, rec, &updated)
	assert.Equal(t, "Basic Whip", updated.Name)
	assert.Equal(t, []string{"rotation"}, updated.Tags)
	assert.Equal(t, []string{"a", "b"}, updated.Steps)
	assert.Equal(t, pattern.BpmRange{Min: 95, Max: 110}, updated.BpmRange)
	assert.Equal(t, p.CreatedAt, updated.CreatedAt)
	assert.False(t, updated.UpdatedAt.Before(p.UpdatedAt))

	// admin may modify anything
	rec = app.do(http.MethodPut, path, app.token(t, admin), []byte(`{"level":"intermediate"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = app.do(http.MethodDelete, path, app.token(t, admin))
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	assert.Empty(t, rec.Body.String())

	rec = app.do(http.MethodGet, path, app.token(t, owner))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
