package team

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/pownas/dancecourse/core"
)

var ErrNotFound = core.NewNotFoundError("team")

// Team groups users sharing templates.
type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type NewTeam struct {
	Name string `json:"name" validate:"required,notblank,max=100"`
}

func (nt *NewTeam) Validate(validate *validator.Validate) error {
	nt.Name = core.CleanString(nt.Name)
	return validate.Struct(nt)
}

type (
	Repository interface {
		CreateTeam(ctx context.Context, tm Team) (Team, error)
		GetTeamByID(ctx context.Context, id string) (Team, error)
		QueryTeams(ctx context.Context) ([]Team, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nt NewTeam) (Team, error) {
	now := time.Now().UTC()
	tm, err := svc.repo.CreateTeam(ctx, Team{Name: nt.Name, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		return Team{}, errors.Wrap(err, "creating team")
	}
	return tm, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Team, error) {
	return svc.repo.GetTeamByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context) ([]Team, error) {
	return svc.repo.QueryTeams(ctx)
}
