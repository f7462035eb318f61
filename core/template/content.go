package template

import (
	"embed"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"

	"github.com/pownas/dancecourse/core"
	"github.com/pownas/dancecourse/core/course"
	"github.com/pownas/dancecourse/core/lesson"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// ContentValidator checks template contents against the embedded JSON schemas,
// keyed by their file name: schemas/lesson.json validates the lesson scope.
type ContentValidator struct {
	schemas map[string]*gojsonschema.Schema
}

func NewContentValidator() (*ContentValidator, error) {
	files, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, errors.Wrap(err, "reading schemas")
	}
	cv := &ContentValidator{schemas: make(map[string]*gojsonschema.Schema, len(files))}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		raw, err := schemaFS.ReadFile("schemas/" + f.Name())
		if err != nil {
			return nil, errors.Wrapf(err, "reading schema %s", f.Name())
		}
		var s struct {
			ID string `json:"$id"`
		}
		if err = json.Unmarshal(raw, &s); err != nil || s.ID == "" {
			return nil, fmt.Errorf("schema %s does not contain a valid $id", f.Name())
		}
		schema, err := gojsonschema.NewSchemaLoader().Compile(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			return nil, errors.Wrapf(err, "compiling schema %s", s.ID)
		}
		cv.schemas[strings.TrimSuffix(f.Name(), ".json")] = schema
	}
	return cv, nil
}

// Matches reports whether content satisfies the schema registered for scope.
// Scopes without a schema always match.
func (cv *ContentValidator) Matches(scope Scope, content string) bool {
	schema, ok := cv.schemas[string(scope)]
	if !ok {
		return true
	}
	result, err := schema.Validate(gojsonschema.NewStringLoader(content))
	return err == nil && result.Valid()
}

type lessonContent struct {
	Duration int              `json:"duration"`
	Sections []lesson.Section `json:"sections"`
	Notes    string           `json:"notes"`
}

// lessonFromContent builds the NewLesson described by content.
// Content not matching the lesson schema yields a minimal lesson embedding the raw content in its notes.
func (cv *ContentValidator) lessonFromContent(tmplName, content string) lesson.NewLesson {
	fallback := lesson.NewLesson{
		Duration: lesson.DefaultDuration,
		Sections: []lesson.Section{},
		Notes:    fmt.Sprintf("Created from template: %s\n\nTemplate content:\n%s", tmplName, content),
	}
	if !cv.Matches(ScopeLesson, content) {
		return fallback
	}
	var lc lessonContent
	if err := json.Unmarshal([]byte(content), &lc); err != nil {
		return fallback
	}
	if lc.Duration == 0 {
		lc.Duration = lesson.DefaultDuration
	}
	// every copy gets its own section ids
	for i := range lc.Sections {
		lc.Sections[i].ID = ""
	}
	return lesson.NewLesson{
		Duration: lc.Duration,
		Sections: lc.Sections,
		Notes:    lc.Notes,
	}
}

// courseFromContent builds the NewCourse described by content.
// Every key is read on its own; missing or malformed keys take their default value.
func courseFromContent(name, content string) course.NewCourse {
	nc := course.NewCourse{
		Name:          name,
		Level:         core.LevelBeginner,
		DurationWeeks: course.DefaultDurationWeeks,
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		return nc
	}
	var (
		lvl    string
		weeks  int
		goals  []string
		themes []string
	)
	if raw, ok := fields["level"]; ok && json.Unmarshal(raw, &lvl) == nil {
		if l, valid := core.ParseLevel(lvl); valid {
			nc.Level = l
		}
	}
	if raw, ok := fields["durationWeeks"]; ok && json.Unmarshal(raw, &weeks) == nil {
		if weeks >= course.MinDurationWeeks && weeks <= course.MaxDurationWeeks {
			nc.DurationWeeks = weeks
		}
	}
	if raw, ok := fields["goals"]; ok && json.Unmarshal(raw, &goals) == nil {
		nc.Goals = goals
	}
	if raw, ok := fields["themesByWeek"]; ok && json.Unmarshal(raw, &themes) == nil {
		nc.ThemesByWeek = themes
	}
	return nc
}
