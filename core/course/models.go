package course

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pownas/dancecourse/core"
)

type Type string

const (
	TypeWeekly  Type = "weekly"
	TypeWeekend Type = "weekend"
)

const (
	MinDurationWeeks     = 1
	MaxDurationWeeks     = 52
	DefaultDurationWeeks = 6

	emptyJSONObject = "{}"
)

type Course struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Level              core.Level `json:"level"`
	DanceStyle         string     `json:"danceStyle"`
	Type               Type       `json:"type"`
	DurationWeeks      int        `json:"durationWeeks"`
	PlannedLessonCount int        `json:"plannedLessonCount"`
	Goals              []string   `json:"goals"`
	ThemesByWeek       []string   `json:"themesByWeek"`
	LessonIDs          []string   `json:"lessonIds"`
	CoverageMetrics    string     `json:"coverageMetrics"` // opaque JSON
	RepetitionPlan     string     `json:"repetitionPlan"`  // opaque JSON
	CreatedBy          string     `json:"createdBy"`
	CreatedAt          time.Time  `json:"createdAt"` // UTC
	UpdatedAt          time.Time  `json:"updatedAt"` // UTC

	// computed at read time from the lessons linked to the course
	ActualLessonCount   int `json:"actualLessonCount"`
	TotalPlannedMinutes int `json:"totalPlannedMinutes"`
}

// ResizeThemes pads themes with empty strings or truncates it to exactly weeks entries.
func ResizeThemes(themes []string, weeks int) []string {
	if weeks < 0 {
		weeks = 0
	}
	resized := make([]string, weeks)
	copy(resized, themes)
	return resized
}

// refresh enforces the Course invariants.
func (c *Course) refresh() {
	c.ThemesByWeek = ResizeThemes(c.ThemesByWeek, c.DurationWeeks)
	c.Goals = core.NonNilStrings(c.Goals)
	c.LessonIDs = core.NonNilStrings(c.LessonIDs)
	if c.CoverageMetrics == "" {
		c.CoverageMetrics = emptyJSONObject
	}
	if c.RepetitionPlan == "" {
		c.RepetitionPlan = emptyJSONObject
	}
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Name               string     `json:"name" validate:"required,notblank,max=200"`
	Level              core.Level `json:"level" validate:"required,level"`
	DanceStyle         string     `json:"danceStyle" validate:"max=100"`
	Type               Type       `json:"type" validate:"omitempty,oneof=weekly weekend"`
	DurationWeeks      int        `json:"durationWeeks" validate:"omitempty,min=1,max=52"`
	PlannedLessonCount int        `json:"plannedLessonCount" validate:"min=0,max=520"`
	Goals              []string   `json:"goals"`
	ThemesByWeek       []string   `json:"themesByWeek"`
	LessonIDs          []string   `json:"lessonIds"`
	CoverageMetrics    string     `json:"coverageMetrics" validate:"omitempty,jsontext"`
	RepetitionPlan     string     `json:"repetitionPlan" validate:"omitempty,jsontext"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Level = core.Level(core.CleanString(string(nc.Level), true /* lower */))
	nc.Type = Type(core.CleanString(string(nc.Type), true /* lower */))
	return validate.Struct(nc)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
// Omitted (nil) fields keep their current value.
type UpdateCourse struct {
	Name               *string     `json:"name" validate:"omitempty,notblank,max=200"`
	Level              *core.Level `json:"level" validate:"omitempty,level"`
	DanceStyle         *string     `json:"danceStyle" validate:"omitempty,max=100"`
	Type               *Type       `json:"type" validate:"omitempty,oneof=weekly weekend"`
	DurationWeeks      *int        `json:"durationWeeks" validate:"omitempty,min=1,max=52"`
	PlannedLessonCount *int        `json:"plannedLessonCount" validate:"omitempty,min=0,max=520"`
	Goals              *[]string   `json:"goals"`
	ThemesByWeek       *[]string   `json:"themesByWeek"`
	LessonIDs          *[]string   `json:"lessonIds"`
	CoverageMetrics    *string     `json:"coverageMetrics" validate:"omitempty,jsontext"`
	RepetitionPlan     *string     `json:"repetitionPlan" validate:"omitempty,jsontext"`
}

func (uc *UpdateCourse) Validate(validate *validator.Validate) error {
	if uc.Name != nil {
		name := core.CleanString(*uc.Name)
		uc.Name = &name
	}
	if uc.Level != nil {
		lvl := core.Level(core.CleanString(string(*uc.Level), true /* lower */))
		uc.Level = &lvl
	}
	if uc.Type != nil {
		t := Type(core.CleanString(string(*uc.Type), true /* lower */))
		uc.Type = &t
	}
	return validate.Struct(uc)
}

func (uc UpdateCourse) apply(c *Course) {
	if uc.Name != nil {
		c.Name = *uc.Name
	}
	if uc.Level != nil {
		c.Level = *uc.Level
	}
	if uc.DanceStyle != nil {
		c.DanceStyle = *uc.DanceStyle
	}
	if uc.Type != nil {
		c.Type = *uc.Type
	}
	if uc.DurationWeeks != nil {
		c.DurationWeeks = *uc.DurationWeeks
	}
	if uc.PlannedLessonCount != nil {
		c.PlannedLessonCount = *uc.PlannedLessonCount
	}
	if uc.Goals != nil {
		c.Goals = *uc.Goals
	}
	if uc.ThemesByWeek != nil {
		c.ThemesByWeek = *uc.ThemesByWeek
	}
	if uc.LessonIDs != nil {
		c.LessonIDs = *uc.LessonIDs
	}
	if uc.CoverageMetrics != nil {
		c.CoverageMetrics = *uc.CoverageMetrics
	}
	if uc.RepetitionPlan != nil {
		c.RepetitionPlan = *uc.RepetitionPlan
	}
}

type QueryFilter struct {
	Level      core.Level `query:"level"`
	DanceStyle string     `query:"danceStyle"`
	// Search does a case-insensitive substring match on name or goals.
	Search string `query:"search"`
}

func (qf *QueryFilter) Clean() {
	qf.Level = core.Level(core.CleanString(string(qf.Level), true /* lower */))
	qf.DanceStyle = core.CleanString(qf.DanceStyle)
	qf.Search = core.CleanString(qf.Search)
}

// Coverage is the shape of the course coverage report.
// Concept lists stay empty until lessons are analysed against patterns.
type Coverage struct {
	CourseID             string          `json:"courseId"`
	FundamentalsProgress map[string]bool `json:"fundamentalsProgress"`
	WeeklyProgress       []WeekCoverage  `json:"weeklyProgress"`
}

type WeekCoverage struct {
	Week              int      `json:"week"`
	Theme             string   `json:"theme"`
	CompletedConcepts []string `json:"completedConcepts"`
	PlannedConcepts   []string `json:"plannedConcepts"`
}
