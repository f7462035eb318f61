package tests

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pownas/dancecourse/core"
	"github.com/pownas/dancecourse/core/course"
	"github.com/pownas/dancecourse/core/lesson"
	"github.com/pownas/dancecourse/core/template"
	"github.com/pownas/dancecourse/core/user"
	"github.com/pownas/dancecourse/tests"
)

func createTemplate(t *testing.T, app *testApp, token string, nt template.NewTemplate) template.Template {
	t.Helper()
	rec := app.do(http.MethodPost, "/api/templates", token, marchallObj(t, nt))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var tmpl template.Template
	decode(t, rec, &tmpl)
	return tmpl
}

func countLessons(t *testing.T, app *testApp, token string) int {
	t.Helper()
	rec := app.do(http.MethodGet, "/api/lessons", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var lessons []lesson.Lesson
	decode(t, rec, &lessons)
	return len(lessons)
}

func Test_templateApi_duplicateLesson(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "Demo", "demo@example.com", user.RoleInstructor)
	token := app.token(t, usr)

	tmpl := createTemplate(t, app, token, template.NewTemplate{
		Scope:   template.ScopeLesson,
		Name:    "Beginner lesson",
		Content: `{"duration":90,"notes":"standard plan","sections":[{"type":"warmup","items":["a","b"]},{"type":"patterns","items":["Sugar Push"]}]}`,
	})
	path := "/api/templates/" + tmpl.ID + "/duplicate"

	// stored content
	rec := app.do(http.MethodPost, path, token, []byte(`{"name":"Week 1"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res template.DuplicateResult
	decode(t, rec, &res)
	assert.Equal(t, template.ScopeLesson, res.ResourceType)
	assert.Equal(t, "Week 1", res.Name)

	rec = app.do(http.MethodGet, "/api/lessons/"+res.CreatedResourceID, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var l lesson.Lesson
	decode(t, rec, &l)
	assert.Equal(t, 90, l.Duration)
	assert.Equal(t, "standard plan", l.Notes)
	assert.Equal(t, 15, l.TotalEstimatedMinutes)
	assert.Equal(t, usr.ID, l.CreatedBy)

	// valid JSON with an unexpected shape degrades to a notes-only lesson
	odd := `{"foo":1}`
	rec = app.do(http.MethodPost, path, token, marchallObj(t, template.Duplicate{Name: "Odd", ModifiedContent: odd}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &res)

	rec = app.do(http.MethodGet, "/api/lessons/"+res.CreatedResourceID, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &l)
	assert.Equal(t, lesson.DefaultDuration, l.Duration)
	assert.Empty(t, l.Sections)
	assert.Equal(t, fmt.Sprintf("Created from template: %s\n\nTemplate content:\n%s", tmpl.Name, odd), l.Notes)

	// invalid JSON is rejected and nothing gets created
	before := countLessons(t, app, token)
	rec = app.do(http.MethodPost, path, token, marchallObj(t, template.Duplicate{Name: "Broken", ModifiedContent: `{"sections": [`}))
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, before, countLessons(t, app, token))
}

func Test_templateApi_duplicateSectionIDs(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "Demo", "demo@example.com", user.RoleInstructor)
	token := app.token(t, usr)

	tmpl := createTemplate(t, app, token, template.NewTemplate{
		Scope:   template.ScopeLesson,
		Name:    "Saved lesson",
		Content: `{"sections":[{"id":"warmup-1","type":"warmup","items":["a"]},{"id":"social-1","type":"social","items":["b"]}]}`,
	})

	duplicate := func(name string) lesson.Lesson {
		rec := app.do(http.MethodPost, "/api/templates/"+tmpl.ID+"/duplicate", token,
			marchallObj(t, template.Duplicate{Name: name}))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var res template.DuplicateResult
		decode(t, rec, &res)

		rec = app.do(http.MethodGet, "/api/lessons/"+res.CreatedResourceID, token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var l lesson.Lesson
		decode(t, rec, &l)
		require.Len(t, l.Sections, 2)
		return l
	}
	first, second := duplicate("Week 1"), duplicate("Week 2")

	seen := map[string]bool{"warmup-1": true, "social-1": true}
	for _, l := range []lesson.Lesson{first, second} {
		for _, s := range l.Sections {
			assert.NotEmpty(t, s.ID)
			assert.False(t, seen[s.ID], "section id %s reused", s.ID)
			seen[s.ID] = true
		}
	}
	assert.Equal(t, lesson.SectionWarmup, first.Sections[0].Type)
	assert.Equal(t, lesson.SectionSocial, second.Sections[1].Type)
}

func Test_templateApi_duplicateCourse(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "Demo", "demo@example.com", user.RoleInstructor)
	token := app.token(t, usr)

	tmpl := createTemplate(t, app, token, template.NewTemplate{
		Scope:   template.ScopeCourse,
		Name:    "Six weeks",
		Content: `{"level":"Improver","durationWeeks":4,"goals":["Whips"],"themesByWeek":["Whip","Tuck"]}`,
	})
	path := "/api/templates/" + tmpl.ID + "/duplicate"

	rec := app.do(http.MethodPost, path, token, []byte(`{"name":"Spring term"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res template.DuplicateResult
	decode(t, rec, &res)
	assert.Equal(t, template.ScopeCourse, res.ResourceType)

	rec = app.do(http.MethodGet, "/api/courses/"+res.CreatedResourceID, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var c course.Course
	decode(t, rec, &c)
	assert.Equal(t, "Spring term", c.Name)
	assert.Equal(t, core.LevelImprover, c.Level)
	assert.Equal(t, 4, c.DurationWeeks)
	assert.Equal(t, []string{"Whips"}, c.Goals)
	assert.Equal(t, []string{"Whip", "Tuck", "", ""}, c.ThemesByWeek)

	// malformed keys fall back to their defaults
	rec = app.do(http.MethodPost, path, token,
		marchallObj(t, template.Duplicate{Name: "Defaults", ModifiedContent: `{"level":"expert","durationWeeks":"six","goals":3}`}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &res)

	rec = app.do(http.MethodGet, "/api/courses/"+res.CreatedResourceID, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &c)
	assert.Equal(t, core.LevelBeginner, c.Level)
	assert.Equal(t, course.DefaultDurationWeeks, c.DurationWeeks)
	assert.Equal(t, []string{}, c.Goals)
	assert.Len(t, c.ThemesByWeek, course.DefaultDurationWeeks)
}

func Test_templateApi_access(t *testing.T) {
	app := setup(t)
	salsa := createTeam(t, app, "Salsa Crew")
	owner := app.createUser(t, "Owner", "owner@example.com", user.RoleInstructor, salsa)
	mate := app.createUser(t, "Mate", "mate@example.com", user.RoleReader, salsa)
	stranger := app.createUser(t, "Stranger", "stranger@example.com", user.RoleInstructor)
	admin := app.createUser(t, "Admin", "admin@example.com", user.RoleAdmin)

	private := createTemplate(t, app, app.token(t, owner), template.NewTemplate{
		Scope: template.ScopeLesson, Name: "Private", Content: `{"sections":[]}`,
	})
	shared := createTemplate(t, app, app.token(t, owner), template.NewTemplate{
		Scope: template.ScopeCourse, Name: "Shared", Content: `{}`, Team: salsa,
	})

	page := func(templates ...template.Template) []byte {
		if templates == nil {
			templates = []template.Template{}
		}
		return marchallObj(t, template.Page{
			Templates: templates, TotalCount: len(templates), Page: 1, PageSize: core.DefaultPageSize,
		})
	}

	tests := []httpTest{
		{
			name: "invalid JSON content", method: http.MethodPost, path: "/api/templates", token: app.token(t, owner),
			body:     marchallObj(t, template.NewTemplate{Scope: template.ScopeLesson, Name: "Bad", Content: "{nope"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"content": "content must be a valid JSON document"}),
		},
		{
			name: "share with a foreign team", method: http.MethodPost, path: "/api/templates", token: app.token(t, stranger),
			body:     marchallObj(t, template.NewTemplate{Scope: template.ScopeLesson, Name: "Sneaky", Content: "{}", Team: salsa}),
			wantCode: http.StatusBadRequest,
		},
		{name: "owner list", path: "/api/templates", token: app.token(t, owner), wantCode: http.StatusOK, wantData: page(shared, private)},
		{name: "team mate list", path: "/api/templates", token: app.token(t, mate), wantCode: http.StatusOK, wantData: page(shared)},
		{name: "stranger list", path: "/api/templates", token: app.token(t, stranger), wantCode: http.StatusOK, wantData: page()},
		{name: "scope filter", path: "/api/templates?scope=lesson", token: app.token(t, owner), wantCode: http.StatusOK, wantData: page(private)},
		{name: "search", path: "/api/templates?search=PRIV", token: app.token(t, owner), wantCode: http.StatusOK, wantData: page(private)},
		{name: "team filter", path: "/api/templates?teamId=" + salsa, token: app.token(t, mate), wantCode: http.StatusOK, wantData: page(shared)},
		{name: "foreign team filter", path: "/api/templates?teamId=" + salsa, token: app.token(t, stranger), wantCode: http.StatusForbidden},
		{name: "team endpoint", path: "/api/templates/team/" + salsa, token: app.token(t, mate), wantCode: http.StatusOK, wantData: marchallObj(t, []template.Template{shared})},
		{name: "team endpoint, stranger", path: "/api/templates/team/" + salsa, token: app.token(t, stranger), wantCode: http.StatusForbidden},
		{name: "team endpoint, admin", path: "/api/templates/team/" + salsa, token: app.token(t, admin), wantCode: http.StatusOK},
		{name: "mate reads shared", path: "/api/templates/" + shared.ID, token: app.token(t, mate), wantCode: http.StatusOK, wantData: marchallObj(t, shared)},
		{name: "mate cannot read private", path: "/api/templates/" + private.ID, token: app.token(t, mate), wantCode: http.StatusForbidden},
		{name: "admin reads private", path: "/api/templates/" + private.ID, token: app.token(t, admin), wantCode: http.StatusOK},
		{
			name: "reader mate cannot duplicate", method: http.MethodPost, path: "/api/templates/" + shared.ID + "/duplicate",
			token: app.token(t, mate), body: []byte(`{"name":"Copy"}`), wantCode: http.StatusForbidden,
		},
		{
			name: "stranger cannot duplicate", method: http.MethodPost, path: "/api/templates/" + private.ID + "/duplicate",
			token: app.token(t, stranger), body: []byte(`{"name":"Copy"}`), wantCode: http.StatusForbidden,
		},
		{
			name: "duplicate unknown template", method: http.MethodPost, path: "/api/templates/nope/duplicate",
			token: app.token(t, owner), body: []byte(`{"name":"Copy"}`), wantCode: http.StatusNotFound,
		},
		{
			name: "mate cannot update", method: http.MethodPut, path: "/api/templates/" + shared.ID,
			token: app.token(t, mate), body: []byte(`{"name":"Ours"}`), wantCode: http.StatusForbidden,
		},
		{
			name: "owner update", method: http.MethodPut, path: "/api/templates/" + private.ID,
			token: app.token(t, owner), body: []byte(`{"name":"Still private"}`), wantCode: http.StatusOK,
		},
		{
			name: "stranger cannot delete", method: http.MethodDelete, path: "/api/templates/" + shared.ID,
			token: app.token(t, stranger), wantCode: http.StatusForbidden,
		},
		{name: "owner delete", method: http.MethodDelete, path: "/api/templates/" + shared.ID, token: app.token(t, owner), wantCode: http.StatusNoContent},
	}
	runHTTPTests(t, app, tests)
}

func Test_templateApi_pagination(t *testing.T) {
	app := setup(t)
	usr := app.createUser(t, "Demo", "demo@example.com", user.RoleInstructor)
	token := app.token(t, usr)

	for i := 0; i < 5; i++ {
		createTemplate(t, app, token, template.NewTemplate{
			Scope: template.ScopeLesson, Name: fmt.Sprintf("Template %d", i), Content: `{"sections":[]}`,
		})
	}

	tests := []struct {
		query        string
		wantLen      int
		wantPage     int
		wantPageSize int
		wantNext     bool
		wantPrevious bool
	}{
		{query: "", wantLen: 5, wantPage: 1, wantPageSize: core.DefaultPageSize},
		{query: "?pageSize=2", wantLen: 2, wantPage: 1, wantPageSize: 2, wantNext: true},
		{query: "?pageSize=2&page=2", wantLen: 2, wantPage: 2, wantPageSize: 2, wantNext: true, wantPrevious: true},
		{query: "?pageSize=2&page=3", wantLen: 1, wantPage: 3, wantPageSize: 2, wantPrevious: true},
		{query: "?pageSize=1000", wantLen: 5, wantPage: 1, wantPageSize: core.MaxPageSize},
		{query: "?page=0&pageSize=0", wantLen: 5, wantPage: 1, wantPageSize: core.DefaultPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := app.do(http.MethodGet, "/api/templates"+tt.query, token)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var page template.Page
			decode(t, rec, &page)
			assert.Len(t, page.Templates, tt.wantLen)
			assert.Equal(t, 5, page.TotalCount)
			assert.Equal(t, tt.wantPage, page.Page)
			assert.Equal(t, tt.wantPageSize, page.PageSize)
			assert.Equal(t, tt.wantNext, page.HasNext)
			assert.Equal(t, tt.wantPrevious, page.HasPrevious)
		})
	}
}

func createTeam(t *testing.T, app *testApp, name string) string {
	t.Helper()
	return testutil.CreateTeam(t, app.teamRepo, name).ID
}
