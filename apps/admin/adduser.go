package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/pownas/dancecourse/core/user"
)

// addUser creates a user.User; unlike self-registration it may create admins.
func (cli *commandLine) addUser(ctx context.Context, name, email, pwd, role, teamID string) error {
	if teamID != "" {
		if _, err := cli.teamSvc.GetByID(ctx, teamID); err != nil {
			return err
		}
	}
	nu := user.NewUser{
		Name:     name,
		Email:    email,
		Password: pwd,
		Role:     user.Role(role),
		TeamID:   teamID,
	}
	if err := nu.Validate(ctx, cli.validate, cli.usrSvc); err != nil {
		return err
	}
	usr, err := cli.usrSvc.Create(ctx, nu)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	fmt.Printf("created %s %s (%s)\n", usr.Role, usr.Email, usr.ID)
	return nil
}
