package command

import (
	"context"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/hyperlocal-go/internal/core/domain"
)

// ProfileCommand returns the profile subcommand group.
func ProfileCommand() *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "View or edit your profile",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show your profile",
				Action: profileShow,
			},
			{
				Name:  "update",
				Usage: "Change profile fields; unset flags are left as they are",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Full name"},
					&cli.StringFlag{Name: "email", Usage: "Email"},
					&cli.StringFlag{Name: "phone", Usage: "Phone number"},
					&cli.StringFlag{Name: "address", Usage: "Address"},
				},
				Action: profileUpdate,
			},
		},
	}
}

func profileShow(c *cli.Context) error {
	a, err := getApp(c)
	if err != nil {
		return err
	}

	var (
		user  *domain.User
		stale bool
	)
	err = withSpinner(c, "Loading profile", func(ctx context.Context) error {
		var err error
		user, stale, err = a.Profile(ctx)
		return err
	})
	if err != nil {
		return err
	}
	if stale {
		printf(c, "(server unavailable, showing stored profile)\n")
	}
	return render(c, user)
}

// setString returns a pointer to the trimmed flag value when it was given.
func setString(c *cli.Context, name string) *string {
	if !c.IsSet(name) {
		return nil
	}
	v := strings.TrimSpace(c.String(name))
	return &v
}

func profileUpdate(c *cli.Context) error {
	a, err := getApp(c)
	if err != nil {
		return err
	}

	upd := domain.ProfileUpdate{
		Name:    setString(c, "name"),
		Email:   setString(c, "email"),
		Phone:   setString(c, "phone"),
		Address: setString(c, "address"),
	}
	if err := domain.ValidateProfileUpdate(upd); err != nil {
		return err
	}

	var user *domain.User
	err = withSpinner(c, "Saving profile", func(ctx context.Context) error {
		var err error
		user, err = a.UpdateProfile(ctx, upd)
		return err
	})
	if err != nil {
		return err
	}

	if isTable(c) {
		printf(c, "Profile updated successfully!\n")
	}
	return render(c, user)
}
