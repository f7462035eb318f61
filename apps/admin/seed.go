package main

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/pownas/dancecourse/core"
	"github.com/pownas/dancecourse/core/pattern"
	"github.com/pownas/dancecourse/core/user"
)

const (
	demoName     = "Demo Instructor"
	demoEmail    = "demo@example.com"
	demoPassword = "password123"
)

//go:embed seed_patterns.json
var seedPatterns []byte

// seed loads the demo instructor and the starter patterns.
// Running it again leaves existing rows untouched.
func (cli *commandLine) seed(ctx context.Context) error {
	demo, err := cli.usrSvc.GetByEmail(ctx, demoEmail)
	if err != nil {
		if !core.IsNotFound(err) {
			return errors.Wrap(err, "finding demo user")
		}
		demo, err = cli.usrSvc.Create(ctx, user.NewUser{
			Name:     demoName,
			Email:    demoEmail,
			Password: demoPassword,
			Role:     user.RoleInstructor,
		})
		if err != nil {
			return errors.Wrap(err, "creating demo user")
		}
		fmt.Printf("created user: %s / %s\n", demoEmail, demoPassword)
	}

	var patterns []pattern.NewPattern
	if err = json.Unmarshal(seedPatterns, &patterns); err != nil {
		return errors.Wrap(err, "decoding seed patterns")
	}

	var created int
	for _, np := range patterns {
		exists, err := cli.patternExists(ctx, np.Name)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if err = np.Validate(cli.validate); err != nil {
			return errors.Wrapf(err, "validating seed pattern %q", np.Name)
		}
		if _, err = cli.patternSvc.Create(ctx, np, demo); err != nil {
			return errors.Wrapf(err, "creating seed pattern %q", np.Name)
		}
		created++
	}
	fmt.Printf("created %d patterns and exercises\n", created)
	return nil
}

func (cli *commandLine) patternExists(ctx context.Context, name string) (bool, error) {
	matches, err := cli.patternSvc.Query(ctx, pattern.QueryFilter{Search: name})
	if err != nil {
		return false, errors.Wrap(err, "querying patterns")
	}
	for _, p := range matches {
		if p.Name == name {
			return true, nil
		}
	}
	return false, nil
}
