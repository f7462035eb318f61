package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/pownas/dancecourse/core/team"
)

func (cli *commandLine) addTeam(ctx context.Context, name string) error {
	nt := team.NewTeam{Name: name}
	if err := nt.Validate(cli.validate); err != nil {
		return err
	}
	t, err := cli.teamSvc.Create(ctx, nt)
	if err != nil {
		return errors.Wrap(err, "creating team")
	}
	fmt.Printf("created team %q (%s)\n", t.Name, t.ID)
	return nil
}

func (cli *commandLine) setTeam(ctx context.Context, email, teamID string) error {
	if teamID != "" {
		if _, err := cli.teamSvc.GetByID(ctx, teamID); err != nil {
			return err
		}
	}
	usr, err := cli.usrSvc.AssignTeam(ctx, email, teamID)
	if err != nil {
		return err
	}
	fmt.Printf("%s team set to %q\n", usr.Email, usr.TeamID)
	return nil
}
