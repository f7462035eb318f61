package template

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/pownas/dancecourse/core"
	"github.com/pownas/dancecourse/core/course"
	"github.com/pownas/dancecourse/core/lesson"
	"github.com/pownas/dancecourse/core/user"
)

var (
	ErrNotFound = core.NewNotFoundError("template")

	errNotTeamMember  = errors.New("you are not a member of this team")
	errInvalidContent = errors.New("template content must be valid JSON")
)

type (
	Repository interface {
		CreateTemplate(ctx context.Context, t Template) (Template, error)
		GetTemplateByID(ctx context.Context, id string) (Template, error)
		// QueryTemplates returns one page of the templates owned by ownerID or shared with teamID,
		// newest first, plus the total count. filter.TeamID restricts the result to that team only.
		QueryTemplates(ctx context.Context, filter QueryFilter, ownerID, teamID string) ([]Template, int, error)
		QueryTeamTemplates(ctx context.Context, teamID string) ([]Template, error)
		UpdateTemplate(ctx context.Context, t Template) (Template, error)
		DeleteTemplate(ctx context.Context, id string) error
	}

	LessonCreator interface {
		Create(ctx context.Context, nl lesson.NewLesson, actor user.User) (lesson.Lesson, error)
	}

	CourseCreator interface {
		Create(ctx context.Context, nc course.NewCourse, actor user.User) (course.Course, error)
	}

	Service struct {
		repo    Repository
		lessons LessonCreator
		courses CourseCreator
		content *ContentValidator
	}
)

func NewService(repo Repository, lessons LessonCreator, courses CourseCreator, content *ContentValidator) *Service {
	return &Service{repo: repo, lessons: lessons, courses: courses, content: content}
}

// canRead: owner, members of the template's team and admins.
func canRead(t Template, actor user.User) bool {
	return t.Owner == actor.ID || actor.InTeam(t.Team) || actor.IsAdmin()
}

func checkTeam(team string, actor user.User) error {
	if team != "" && !actor.InTeam(team) {
		return core.NewValidationError(errNotTeamMember, core.FieldError{Field: "team", Error: errNotTeamMember.Error()})
	}
	return nil
}

// Create stores a new Template owned by actor; NewTemplate must have been validated.
func (svc *Service) Create(ctx context.Context, nt NewTemplate, actor user.User) (Template, error) {
	if !actor.Can(user.PermAuthor) {
		return Template{}, core.ErrPermissionDenied
	}
	if err := checkTeam(nt.Team, actor); err != nil {
		return Template{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CreateTemplate(ctx, Template{
		Scope:     nt.Scope,
		Name:      nt.Name,
		Content:   nt.Content,
		Owner:     actor.ID,
		Team:      nt.Team,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) Get(ctx context.Context, id string, actor user.User) (Template, error) {
	t, err := svc.repo.GetTemplateByID(ctx, id)
	if err != nil {
		return Template{}, err
	}
	if !canRead(t, actor) {
		return Template{}, core.ErrPermissionDenied
	}
	return t, nil
}

// Query lists the templates visible to actor.
func (svc *Service) Query(ctx context.Context, filter QueryFilter, actor user.User) (Page, error) {
	filter.Clean()
	if filter.TeamID != "" && !(actor.InTeam(filter.TeamID) || actor.IsAdmin()) {
		return Page{}, core.ErrPermissionDenied
	}
	templates, total, err := svc.repo.QueryTemplates(ctx, filter, actor.ID, actor.TeamID)
	if err != nil {
		return Page{}, errors.Wrap(err, "querying templates")
	}
	if templates == nil {
		templates = []Template{}
	}
	return Page{
		Templates:   templates,
		TotalCount:  total,
		Page:        filter.Page,
		PageSize:    filter.PageSize,
		HasNext:     filter.HasNext(total),
		HasPrevious: filter.HasPrevious(),
	}, nil
}

// QueryTeam lists every template shared with teamID; actor must be a member or an admin.
func (svc *Service) QueryTeam(ctx context.Context, teamID string, actor user.User) ([]Template, error) {
	if !(actor.InTeam(teamID) || actor.IsAdmin()) {
		return nil, core.ErrPermissionDenied
	}
	return svc.repo.QueryTeamTemplates(ctx, teamID)
}

// Update merges ut into the Template; only its owner or an admin may do so.
func (svc *Service) Update(ctx context.Context, id string, ut UpdateTemplate, actor user.User) (Template, error) {
	t, err := svc.repo.GetTemplateByID(ctx, id)
	if err != nil {
		return Template{}, err
	}
	if !actor.CanModify(t.Owner) {
		return Template{}, core.ErrPermissionDenied
	}
	if ut.Team != nil && *ut.Team != t.Team {
		if err = checkTeam(*ut.Team, actor); err != nil {
			return Template{}, err
		}
	}

	ut.apply(&t)
	t.UpdatedAt = time.Now().UTC()

	t, err = svc.repo.UpdateTemplate(ctx, t)
	return t, errors.Wrap(err, "updating template")
}

func (svc *Service) Delete(ctx context.Context, id string, actor user.User) error {
	t, err := svc.repo.GetTemplateByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanModify(t.Owner) {
		return core.ErrPermissionDenied
	}
	return errors.Wrap(svc.repo.DeleteTemplate(ctx, id), "deleting template")
}

// Duplicate creates a Lesson or a Course out of the Template content.
// Content that is not valid JSON is rejected before anything gets written.
func (svc *Service) Duplicate(ctx context.Context, id string, d Duplicate, actor user.User) (DuplicateResult, error) {
	t, err := svc.Get(ctx, id, actor)
	if err != nil {
		return DuplicateResult{}, err
	}
	if !actor.Can(user.PermAuthor) {
		return DuplicateResult{}, core.ErrPermissionDenied
	}

	content := t.Content
	if d.ModifiedContent != "" {
		content = d.ModifiedContent
	}
	if !json.Valid([]byte(content)) {
		return DuplicateResult{}, core.NewValidationError(
			errInvalidContent, core.FieldError{Field: "content", Error: errInvalidContent.Error()},
		)
	}

	res := DuplicateResult{ResourceType: t.Scope, Name: d.Name}
	switch t.Scope {
	case ScopeLesson:
		l, err := svc.lessons.Create(ctx, svc.content.lessonFromContent(t.Name, content), actor)
		if err != nil {
			return DuplicateResult{}, errors.Wrap(err, "creating lesson from template")
		}
		res.CreatedResourceID = l.ID
	case ScopeCourse:
		c, err := svc.courses.Create(ctx, courseFromContent(d.Name, content), actor)
		if err != nil {
			return DuplicateResult{}, errors.Wrap(err, "creating course from template")
		}
		res.CreatedResourceID = c.ID
	default:
		return DuplicateResult{}, errors.Errorf("unknown template scope %q", t.Scope)
	}
	return res, nil
}
