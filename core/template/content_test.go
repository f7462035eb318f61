package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pownas/dancecourse/core"
	"github.com/pownas/dancecourse/core/course"
	"github.com/pownas/dancecourse/core/lesson"
)

func TestContentValidator_Matches(t *testing.T) {
	cv, err := NewContentValidator()
	require.NoError(t, err)

	tests := []struct {
		name    string
		scope   Scope
		content string
		want    bool
	}{
		{name: "lesson", scope: ScopeLesson, content: `{"sections":[{"type":"warmup","items":["a"]}]}`, want: true},
		{name: "lesson without sections", scope: ScopeLesson, content: `{"duration":90}`},
		{name: "lesson with short duration", scope: ScopeLesson, content: `{"duration":30,"sections":[]}`},
		{name: "lesson with bad items", scope: ScopeLesson, content: `{"sections":[{"items":[1,2]}]}`},
		{name: "not an object", scope: ScopeLesson, content: `[]`},
		{name: "course has no schema", scope: ScopeCourse, content: `{"anything":true}`, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cv.Matches(tt.scope, tt.content))
		})
	}
}

func TestContentValidator_lessonFromContent(t *testing.T) {
	cv, err := NewContentValidator()
	require.NoError(t, err)

	nl := cv.lessonFromContent("Basics", `{"notes":"n","sections":[{"id":"s1","type":"social","items":["x"]}]}`)
	assert.Equal(t, lesson.DefaultDuration, nl.Duration)
	assert.Equal(t, "n", nl.Notes)
	require.Len(t, nl.Sections, 1)
	assert.Equal(t, lesson.SectionSocial, nl.Sections[0].Type)
	assert.Empty(t, nl.Sections[0].ID)

	nl = cv.lessonFromContent("Basics", `{"foo":1}`)
	assert.Equal(t, lesson.DefaultDuration, nl.Duration)
	assert.Empty(t, nl.Sections)
	assert.Equal(t, "Created from template: Basics\n\nTemplate content:\n{\"foo\":1}", nl.Notes)
}

func Test_courseFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    course.NewCourse
	}{
		{
			name:    "full",
			content: `{"level":"Advanced","durationWeeks":8,"goals":["Musicality"],"themesByWeek":["A","B"]}`,
			want: course.NewCourse{
				Name: "Copy", Level: core.LevelAdvanced, DurationWeeks: 8,
				Goals: []string{"Musicality"}, ThemesByWeek: []string{"A", "B"},
			},
		},
		{
			name:    "defaults",
			content: `{}`,
			want:    course.NewCourse{Name: "Copy", Level: core.LevelBeginner, DurationWeeks: course.DefaultDurationWeeks},
		},
		{
			name:    "malformed keys",
			content: `{"level":"pro","durationWeeks":99,"goals":"all","themesByWeek":[1]}`,
			want:    course.NewCourse{Name: "Copy", Level: core.LevelBeginner, DurationWeeks: course.DefaultDurationWeeks},
		},
		{
			name:    "not an object",
			content: `"just text"`,
			want:    course.NewCourse{Name: "Copy", Level: core.LevelBeginner, DurationWeeks: course.DefaultDurationWeeks},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, courseFromContent("Copy", tt.content))
		})
	}
}
