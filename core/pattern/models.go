package pattern

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/pownas/dancecourse/core"
)

type Type string

const (
	TypePattern  Type = "pattern"
	TypeExercise Type = "exercise"
)

type BpmRange struct {
	Min int `json:"min" validate:"min=0"`
	Max int `json:"max" validate:"min=0"`
}

// Pattern is a dance figure or a drill (exercise).
type Pattern struct {
	ID               string     `json:"id"`
	Type             Type       `json:"type"`
	Name             string     `json:"name"`
	DanceStyle       string     `json:"danceStyle"`
	Level            core.Level `json:"level"`
	Description      string     `json:"description"`
	Steps            []string   `json:"steps"`
	Counts           []string   `json:"counts"`
	Holds            []string   `json:"holds"`
	Rotations        []string   `json:"rotations"`
	Prerequisites    []string   `json:"prerequisites"`
	Related          []string   `json:"related"`
	TeachingPoints   []string   `json:"teachingPoints"`
	CommonMistakes   []string   `json:"commonMistakes"`
	Variations       []string   `json:"variations"`
	Tags             []string   `json:"tags"`
	MediaLinks       []string   `json:"mediaLinks"`
	Aliases          []string   `json:"aliases"`
	Slot             string     `json:"slot"`
	EstimatedMinutes int        `json:"estimatedMinutes"`
	BpmRange         BpmRange   `json:"bpmRange"`
	CreatedBy        string     `json:"createdBy"`
	CreatedAt        time.Time  `json:"createdAt"` // UTC
	UpdatedAt        time.Time  `json:"updatedAt"` // UTC
}

// materializeLists replaces nil lists with empty ones.
func (p *Pattern) materializeLists() {
	for _, l := range p.lists() {
		*l = core.NonNilStrings(*l)
	}
}

func (p *Pattern) lists() []*[]string {
	return []*[]string{
		&p.Steps, &p.Counts, &p.Holds, &p.Rotations, &p.Prerequisites, &p.Related,
		&p.TeachingPoints, &p.CommonMistakes, &p.Variations, &p.Tags, &p.MediaLinks, &p.Aliases,
	}
}

// NewPattern contains information needed to create a new Pattern.
type NewPattern struct {
	Type             Type       `json:"type" validate:"required,oneof=pattern exercise"`
	Name             string     `json:"name" validate:"required,notblank,max=200"`
	DanceStyle       string     `json:"danceStyle" validate:"max=100"`
	Level            core.Level `json:"level" validate:"required,level"`
	Description      string     `json:"description" validate:"max=4000"`
	Steps            []string   `json:"steps"`
	Counts           []string   `json:"counts"`
	Holds            []string   `json:"holds"`
	Rotations        []string   `json:"rotations"`
	Prerequisites    []string   `json:"prerequisites"`
	Related          []string   `json:"related"`
	TeachingPoints   []string   `json:"teachingPoints"`
	CommonMistakes   []string   `json:"commonMistakes"`
	Variations       []string   `json:"variations"`
	Tags             []string   `json:"tags"`
	MediaLinks       []string   `json:"mediaLinks"`
	Aliases          []string   `json:"aliases"`
	Slot             string     `json:"slot" validate:"max=100"`
	EstimatedMinutes int        `json:"estimatedMinutes" validate:"min=0"`
	BpmRange         BpmRange   `json:"bpmRange"`
}

func (np *NewPattern) Validate(validate *validator.Validate) error {
	np.Type = Type(core.CleanString(string(np.Type), true /* lower */))
	np.Name = core.CleanString(np.Name)
	np.Level = core.Level(core.CleanString(string(np.Level), true /* lower */))

	if err := validate.Struct(np); err != nil {
		return err
	}
	return checkBpmRange(np.BpmRange)
}

// UpdatePattern defines what information may be provided to modify an existing Pattern.
// Omitted (nil) fields keep their current value.
type UpdatePattern struct {
	Type             *Type       `json:"type" validate:"omitempty,oneof=pattern exercise"`
	Name             *string     `json:"name" validate:"omitempty,notblank,max=200"`
	DanceStyle       *string     `json:"danceStyle" validate:"omitempty,max=100"`
	Level            *core.Level `json:"level" validate:"omitempty,level"`
	Description      *string     `json:"description" validate:"omitempty,max=4000"`
	Steps            *[]string   `json:"steps"`
	Counts           *[]string   `json:"counts"`
	Holds            *[]string   `json:"holds"`
	Rotations        *[]string   `json:"rotations"`
	Prerequisites    *[]string   `json:"prerequisites"`
	Related          *[]string   `json:"related"`
	TeachingPoints   *[]string   `json:"teachingPoints"`
	CommonMistakes   *[]string   `json:"commonMistakes"`
	Variations       *[]string   `json:"variations"`
	Tags             *[]string   `json:"tags"`
	MediaLinks       *[]string   `json:"mediaLinks"`
	Aliases          *[]string   `json:"aliases"`
	Slot             *string     `json:"slot" validate:"omitempty,max=100"`
	EstimatedMinutes *int        `json:"estimatedMinutes" validate:"omitempty,min=0"`
	BpmRange         *BpmRange   `json:"bpmRange"`
}

func (up *UpdatePattern) Validate(validate *validator.Validate) error {
	if up.Type != nil {
		t := Type(core.CleanString(string(*up.Type), true /* lower */))
		up.Type = &t
	}
	if up.Name != nil {
		name := core.CleanString(*up.Name)
		up.Name = &name
	}
	if up.Level != nil {
		lvl := core.Level(core.CleanString(string(*up.Level), true /* lower */))
		up.Level = &lvl
	}
	return validate.Struct(up)
}

// apply merges the provided fields into p.
func (up UpdatePattern) apply(p *Pattern) {
	if up.Type != nil {
		p.Type = *up.Type
	}
	if up.Name != nil {
		p.Name = *up.Name
	}
	if up.DanceStyle != nil {
		p.DanceStyle = *up.DanceStyle
	}
	if up.Level != nil {
		p.Level = *up.Level
	}
	if up.Description != nil {
		p.Description = *up.Description
	}
	lists := p.lists()
	for i, l := range []*[]string{
		up.Steps, up.Counts, up.Holds, up.Rotations, up.Prerequisites, up.Related,
		up.TeachingPoints, up.CommonMistakes, up.Variations, up.Tags, up.MediaLinks, up.Aliases,
	} {
		if l != nil {
			*lists[i] = *l
		}
	}
	if up.Slot != nil {
		p.Slot = *up.Slot
	}
	if up.EstimatedMinutes != nil {
		p.EstimatedMinutes = *up.EstimatedMinutes
	}
	if up.BpmRange != nil {
		p.BpmRange = *up.BpmRange
	}
}

type QueryFilter struct {
	Type       Type       `query:"type"`
	Level      core.Level `query:"level"`
	DanceStyle string     `query:"danceStyle"`
	// Search does a case-insensitive substring match on name or description.
	Search string `query:"search"`
	// Tags must all be present on a Pattern.
	Tags []string `query:"tags"`
}

func (qf *QueryFilter) Clean() {
	qf.Type = Type(core.CleanString(string(qf.Type), true /* lower */))
	qf.Level = core.Level(core.CleanString(string(qf.Level), true /* lower */))
	qf.DanceStyle = core.CleanString(qf.DanceStyle)
	qf.Search = core.CleanString(qf.Search)

	// accept both `tags=a&tags=b` and `tags=a,b`
	var tags []string
	for _, t := range qf.Tags {
		tags = append(tags, core.SplitList(t)...)
	}
	qf.Tags = tags
}

var errBpmRange = errors.New("bpmRange.min cannot be greater than bpmRange.max")

func checkBpmRange(bpm BpmRange) error {
	if bpm.Min > bpm.Max {
		return core.NewValidationError(errBpmRange, core.FieldError{Field: "bpmRange", Error: errBpmRange.Error()})
	}
	return nil
}
