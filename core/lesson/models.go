package lesson

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/pownas/dancecourse/core"
)

var errDateConflict = errors.New("date cannot be set together with clearDate")

type SectionType string

const (
	SectionWarmup      SectionType = "warmup"
	SectionTechnique   SectionType = "technique"
	SectionPatterns    SectionType = "patterns"
	SectionCombination SectionType = "combination"
	SectionRepetition  SectionType = "repetition"
	SectionSocial      SectionType = "social"
)

var SectionTypes = []SectionType{
	SectionWarmup, SectionTechnique, SectionPatterns, SectionCombination, SectionRepetition, SectionSocial,
}

const (
	MinDuration     = 60
	MaxDuration     = 300
	DefaultDuration = 75

	// MinutesPerItem is the time budgeted for every section item.
	MinutesPerItem = 5

	// CurrentVersion is carried on every Lesson; nothing increments it.
	CurrentVersion = 1
)

// ParseSectionType maps s to one of SectionTypes; unknown values fall back to SectionPatterns.
func ParseSectionType(s string) SectionType {
	st := SectionType(strings.ToLower(strings.TrimSpace(s)))
	for _, t := range SectionTypes {
		if t == st {
			return st
		}
	}
	return SectionPatterns
}

type Section struct {
	ID    string      `json:"id"`
	Type  SectionType `json:"type"`
	Items []string    `json:"items"`
	Notes string      `json:"notes" validate:"max=4000"`
}

type Lesson struct {
	ID                    string     `json:"id"`
	CourseID              string     `json:"courseId,omitempty"`
	Date                  *time.Time `json:"date,omitempty"`
	Duration              int        `json:"duration"` // minutes
	Sections              []Section  `json:"sections"`
	TotalEstimatedMinutes int        `json:"totalEstimatedMinutes"`
	Notes                 string     `json:"notes"`
	Version               int        `json:"version"`
	CreatedBy             string     `json:"createdBy"`
	Reviewers             []string   `json:"reviewers"`
	History               []string   `json:"history"`
	CreatedAt             time.Time  `json:"createdAt"` // UTC
	UpdatedAt             time.Time  `json:"updatedAt"` // UTC
}

// TotalEstimatedMinutes budgets MinutesPerItem for every item of every section.
func TotalEstimatedMinutes(sections []Section) int {
	var items int
	for _, s := range sections {
		items += len(s.Items)
	}
	return items * MinutesPerItem
}

// NormalizeSections assigns missing ids, coerces types and materializes item lists.
func NormalizeSections(sections []Section) []Section {
	normalized := make([]Section, 0, len(sections))
	for _, s := range sections {
		if s.ID == "" {
			s.ID = uuid.New().String()
		}
		s.Type = ParseSectionType(string(s.Type))
		s.Items = core.NonNilStrings(s.Items)
		normalized = append(normalized, s)
	}
	return normalized
}

// refresh recomputes the derived fields of l.
func (l *Lesson) refresh() {
	l.Sections = NormalizeSections(l.Sections)
	l.TotalEstimatedMinutes = TotalEstimatedMinutes(l.Sections)
	l.Reviewers = core.NonNilStrings(l.Reviewers)
	l.History = core.NonNilStrings(l.History)
	if l.Version == 0 {
		l.Version = CurrentVersion
	}
}

// NewLesson contains information needed to create a new Lesson.
type NewLesson struct {
	CourseID  string     `json:"courseId" validate:"omitempty,max=64"`
	Date      *time.Time `json:"date"`
	Duration  int        `json:"duration" validate:"omitempty,min=60,max=300"`
	Sections  []Section  `json:"sections" validate:"dive"`
	Notes     string     `json:"notes" validate:"max=4000"`
	Reviewers []string   `json:"reviewers"`
}

func (nl *NewLesson) Validate(validate *validator.Validate) error {
	nl.CourseID = core.CleanString(nl.CourseID)
	if nl.Duration == 0 {
		nl.Duration = DefaultDuration
	}
	return validate.Struct(nl)
}

// UpdateLesson defines what information may be provided to modify an existing Lesson.
// Omitted (nil) fields keep their current value; an empty courseId detaches the Lesson
// and clearDate removes its date.
type UpdateLesson struct {
	CourseID  *string    `json:"courseId" validate:"omitempty,max=64"`
	Date      *time.Time `json:"date"`
	ClearDate bool       `json:"clearDate"`
	Duration  *int       `json:"duration" validate:"omitempty,min=60,max=300"`
	Sections  *[]Section `json:"sections" validate:"omitempty,dive"`
	Notes     *string    `json:"notes" validate:"omitempty,max=4000"`
	Reviewers *[]string  `json:"reviewers"`
}

func (ul *UpdateLesson) Validate(validate *validator.Validate) error {
	if ul.CourseID != nil {
		id := core.CleanString(*ul.CourseID)
		ul.CourseID = &id
	}
	if ul.ClearDate && ul.Date != nil {
		return core.NewValidationError(errDateConflict, core.FieldError{Field: "date", Error: errDateConflict.Error()})
	}
	return validate.Struct(ul)
}

func (ul UpdateLesson) apply(l *Lesson) {
	if ul.CourseID != nil {
		l.CourseID = *ul.CourseID
	}
	if ul.ClearDate {
		l.Date = nil
	} else if ul.Date != nil {
		l.Date = ul.Date
	}
	if ul.Duration != nil {
		l.Duration = *ul.Duration
	}
	if ul.Sections != nil {
		l.Sections = *ul.Sections
	}
	if ul.Notes != nil {
		l.Notes = *ul.Notes
	}
	if ul.Reviewers != nil {
		l.Reviewers = *ul.Reviewers
	}
}

type QueryFilter struct {
	CourseID string `query:"courseId"`
}

func (qf *QueryFilter) Clean() {
	qf.CourseID = core.CleanString(qf.CourseID)
}
