package template

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pownas/dancecourse/core"
)

type Scope string

const (
	ScopeLesson Scope = "lesson"
	ScopeCourse Scope = "course"
)

// Template is a reusable lesson or course skeleton, its content being any JSON document.
type Template struct {
	ID        string    `json:"id"`
	Scope     Scope     `json:"scope"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	Owner     string    `json:"owner"`
	Team      string    `json:"team,omitempty"`
	CreatedAt time.Time `json:"createdAt"` // UTC
	UpdatedAt time.Time `json:"updatedAt"` // UTC
}

// NewTemplate contains information needed to create a new Template.
type NewTemplate struct {
	Scope   Scope  `json:"scope" validate:"required,oneof=lesson course"`
	Name    string `json:"name" validate:"required,notblank,max=200"`
	Content string `json:"content" validate:"required,jsontext"`
	Team    string `json:"team" validate:"omitempty,max=64"`
}

func (nt *NewTemplate) Validate(validate *validator.Validate) error {
	nt.Scope = Scope(core.CleanString(string(nt.Scope), true /* lower */))
	nt.Name = core.CleanString(nt.Name)
	nt.Team = core.CleanString(nt.Team)
	return validate.Struct(nt)
}

// UpdateTemplate defines what information may be provided to modify an existing Template.
// Omitted (nil) fields keep their current value; an empty team unshares the Template.
type UpdateTemplate struct {
	Name    *string `json:"name" validate:"omitempty,notblank,max=200"`
	Content *string `json:"content" validate:"omitempty,jsontext"`
	Team    *string `json:"team" validate:"omitempty,max=64"`
}

func (ut *UpdateTemplate) Validate(validate *validator.Validate) error {
	if ut.Name != nil {
		name := core.CleanString(*ut.Name)
		ut.Name = &name
	}
	if ut.Team != nil {
		team := core.CleanString(*ut.Team)
		ut.Team = &team
	}
	return validate.Struct(ut)
}

func (ut UpdateTemplate) apply(t *Template) {
	if ut.Name != nil {
		t.Name = *ut.Name
	}
	if ut.Content != nil {
		t.Content = *ut.Content
	}
	if ut.Team != nil {
		t.Team = *ut.Team
	}
}

type QueryFilter struct {
	core.Pagination
	Scope Scope `query:"scope"`
	// Search does a case-insensitive substring match on name or content.
	Search string `query:"search"`
	TeamID string `query:"teamId"`
}

func (qf *QueryFilter) Clean() {
	qf.Pagination.Clean()
	qf.Scope = Scope(core.CleanString(string(qf.Scope), true /* lower */))
	qf.Search = core.CleanString(qf.Search)
	qf.TeamID = core.CleanString(qf.TeamID)
}

// Page is one page of templates visible to a user.
type Page struct {
	Templates   []Template `json:"templates"`
	TotalCount  int        `json:"totalCount"`
	Page        int        `json:"page"`
	PageSize    int        `json:"pageSize"`
	HasNext     bool       `json:"hasNext"`
	HasPrevious bool       `json:"hasPrevious"`
}

// Duplicate defines how a Template is turned into a Lesson or a Course.
type Duplicate struct {
	Name string `json:"name" validate:"required,notblank,max=200"`
	// ModifiedContent, when not empty, is used instead of the stored content.
	ModifiedContent string `json:"modifiedContent"`
}

func (d *Duplicate) Validate(validate *validator.Validate) error {
	d.Name = core.CleanString(d.Name)
	return validate.Struct(d)
}

type DuplicateResult struct {
	CreatedResourceID string `json:"createdResourceId"`
	ResourceType      Scope  `json:"resourceType"`
	Name              string `json:"name"`
}
