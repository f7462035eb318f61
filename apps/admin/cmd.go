package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/pownas/dancecourse/core/pattern"
	"github.com/pownas/dancecourse/core/team"
	"github.com/pownas/dancecourse/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db         *sqlx.DB
	validate   *validator.Validate
	usrSvc     *user.Service
	teamSvc    *team.Service
	patternSvc *pattern.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run goose migrations (up, down, status, version, ...)")
	fmt.Println("  adduser -name NAME -email EMAIL [-role ROLE] [-team TEAM_ID] - create a user")
	fmt.Println("  addteam -name NAME - create a team")
	fmt.Println("  setteam -email EMAIL [-team TEAM_ID] - move a user to a team, or out of it when TEAM_ID is empty")
	fmt.Println("  resetpassword -email EMAIL - reset user's password")
	fmt.Println("  seed - load the demo instructor and the starter patterns")
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserName := addUserCmd.String("name", "", "The user's display name.")
	addUserEmail := addUserCmd.String("email", "", "The user's email. The password will be prompted next.")
	addUserRole := addUserCmd.String("role", string(user.DefaultRole), "One of instructor, editor, reader or admin.")
	addUserTeam := addUserCmd.String("team", "", "ID of the team the user belongs to.")

	addTeamCmd := flag.NewFlagSet("addteam", flag.ContinueOnError)
	addTeamName := addTeamCmd.String("name", "", "The team's name.")

	setTeamCmd := flag.NewFlagSet("setteam", flag.ContinueOnError)
	setTeamEmail := setTeamCmd.String("email", "", "The user's email.")
	setTeamID := setTeamCmd.String("team", "", "ID of the team; leave empty to remove the membership.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The user's email. The password will be prompted next.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserName == "" || *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(ctx, *addUserName, *addUserEmail, pwd, *addUserRole, *addUserTeam)
	case "addteam":
		if err := addTeamCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addTeamName == "" {
			addTeamCmd.Usage()
			return errHelp
		}
		return cli.addTeam(ctx, *addTeamName)
	case "setteam":
		if err := setTeamCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *setTeamEmail == "" {
			setTeamCmd.Usage()
			return errHelp
		}
		return cli.setTeam(ctx, *setTeamEmail, *setTeamID)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(ctx, *resetPasswordEmail, pwd)
	case "seed":
		return cli.seed(ctx)
	default:
		cli.printUsage()
		return errHelp
	}
}
