package pattern

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/pownas/dancecourse/core"
	"github.com/pownas/dancecourse/core/user"
)

var ErrNotFound = core.NewNotFoundError("pattern")

type (
	Repository interface {
		CreatePattern(ctx context.Context, p Pattern) (Pattern, error)
		GetPatternByID(ctx context.Context, id string) (Pattern, error)
		// QueryPatterns applies AND operation on available QueryFilter fields, ordered by name.
		QueryPatterns(ctx context.Context, filter QueryFilter) ([]Pattern, error)
		UpdatePattern(ctx context.Context, p Pattern) (Pattern, error)
		DeletePattern(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create stores a new Pattern authored by actor; NewPattern must have been validated.
func (svc *Service) Create(ctx context.Context, np NewPattern, actor user.User) (Pattern, error) {
	if !actor.Can(user.PermAuthor) {
		return Pattern{}, core.ErrPermissionDenied
	}
	now := time.Now().UTC()
	p := Pattern{
		Type:             np.Type,
		Name:             np.Name,
		DanceStyle:       np.DanceStyle,
		Level:            np.Level,
		Description:      np.Description,
		Steps:            np.Steps,
		Counts:           np.Counts,
		Holds:            np.Holds,
		Rotations:        np.Rotations,
		Prerequisites:    np.Prerequisites,
		Related:          np.Related,
		TeachingPoints:   np.TeachingPoints,
		CommonMistakes:   np.CommonMistakes,
		Variations:       np.Variations,
		Tags:             np.Tags,
		MediaLinks:       np.MediaLinks,
		Aliases:          np.Aliases,
		Slot:             np.Slot,
		EstimatedMinutes: np.EstimatedMinutes,
		BpmRange:         np.BpmRange,
		CreatedBy:        actor.ID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	p.materializeLists()
	return svc.repo.CreatePattern(ctx, p)
}

func (svc *Service) Get(ctx context.Context, id string) (Pattern, error) {
	return svc.repo.GetPatternByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Pattern, error) {
	return svc.repo.QueryPatterns(ctx, filter)
}

// Update merges up into the Pattern; only its creator or an admin may do so.
func (svc *Service) Update(ctx context.Context, id string, up UpdatePattern, actor user.User) (Pattern, error) {
	p, err := svc.repo.GetPatternByID(ctx, id)
	if err != nil {
		return Pattern{}, err
	}
	if !actor.CanModify(p.CreatedBy) {
		return Pattern{}, core.ErrPermissionDenied
	}

	up.apply(&p)
	if err = checkBpmRange(p.BpmRange); err != nil {
		return Pattern{}, err
	}
	p.materializeLists()
	p.UpdatedAt = time.Now().UTC()

	p, err = svc.repo.UpdatePattern(ctx, p)
	return p, errors.Wrap(err, "updating pattern")
}

func (svc *Service) Delete(ctx context.Context, id string, actor user.User) error {
	p, err := svc.repo.GetPatternByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanModify(p.CreatedBy) {
		return core.ErrPermissionDenied
	}
	return errors.Wrap(svc.repo.DeletePattern(ctx, id), "deleting pattern")
}
