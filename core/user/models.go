package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/pownas/dancecourse/core"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	TeamID       string    `json:"teamId,omitempty"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"` // UTC
	UpdatedAt    time.Time `json:"updatedAt"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u User) Can(perm Permission) bool {
	return u.Role.Can(perm)
}

// CanModify reports whether u may update or delete a resource created by ownerID.
func (u User) CanModify(ownerID string) bool {
	if u.Can(PermModifyAny) {
		return true
	}
	return u.Can(PermModifyOwn) && ownerID != "" && u.ID == ownerID
}

// InTeam reports whether u belongs to teamID.
func (u User) InTeam(teamID string) bool {
	return teamID != "" && u.TeamID == teamID
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name     string `json:"name" validate:"required,notblank,max=100"`
	Email    string `json:"email" validate:"required,email,max=200"`
	Password string `json:"password" validate:"required"`
	Role     Role   `json:"role" validate:"omitempty,role"`
	TeamID   string `json:"-"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email)
	if nu.Role != "" {
		nu.Role, _ = ParseRole(string(nu.Role))
	}

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.checkUniqueness(ctx, nu.Email)
}
