package command

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/yndnr/hyperlocal-go/internal/core/domain"
	"github.com/yndnr/hyperlocal-go/pkg/token"
)

const metaReader = "hyperlocal.reader"

// LoginCommand returns the login command.
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in with email and password",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email"},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Account password", EnvVars: []string{"HYPERLOCAL_PASSWORD"}},
		},
		Action: login,
	}
}

// RegisterCommand returns the register command.
func RegisterCommand() *cli.Command {
	return &cli.Command{
		Name:    "register",
		Aliases: []string{"signup"},
		Usage:   "Create an account and sign in",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Full name"},
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email"},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Password (at least 6 characters)", EnvVars: []string{"HYPERLOCAL_PASSWORD"}},
			&cli.StringFlag{Name: "confirm-password", Usage: "Repeat the password"},
			&cli.StringFlag{Name: "phone", Usage: "Phone number"},
		},
		Action: register,
	}
}

// LogoutCommand returns the logout command.
func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Sign out and forget the stored session",
		Action: logout,
	}
}

// WhoamiCommand returns the whoami command.
func WhoamiCommand() *cli.Command {
	return &cli.Command{
		Name:   "whoami",
		Usage:  "Show the signed-in user from the stored session",
		Action: whoami,
	}
}

// ask returns the flag value, prompting for it in single-command mode.
func ask(c *cli.Context, flag, label string) (string, error) {
	if v := c.String(flag); v != "" || inREPL(c) || c.App.Reader == nil {
		return v, nil
	}
	r, ok := c.App.Metadata[metaReader].(*bufio.Reader)
	if !ok {
		r = bufio.NewReader(c.App.Reader)
		c.App.Metadata[metaReader] = r
	}
	fmt.Fprintf(c.App.ErrWriter, "%s: ", label)
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", nil
	}
	return strings.TrimSpace(line), nil
}

// askSecret is ask without echo when stdin is a terminal.
func askSecret(c *cli.Context, flag, label string) (string, error) {
	if v := c.String(flag); v != "" || inREPL(c) {
		return v, nil
	}
	f, ok := c.App.Reader.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return ask(c, flag, label)
	}
	fmt.Fprintf(c.App.ErrWriter, "%s: ", label)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(c.App.ErrWriter)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(string(b)), nil
}

func login(c *cli.Context) error {
	a, err := getApp(c)
	if err != nil {
		return err
	}

	var creds domain.Credentials
	if creds.Email, err = ask(c, "email", "Email"); err != nil {
		return err
	}
	if creds.Password, err = askSecret(c, "password", "Password"); err != nil {
		return err
	}
	creds.Email = strings.TrimSpace(creds.Email)
	if err := domain.ValidateCredentials(creds); err != nil {
		return err
	}

	var user *domain.User
	err = withSpinner(c, "Signing in", func(ctx context.Context) error {
		var err error
		user, err = a.Login(ctx, creds)
		return err
	})
	if err != nil {
		return err
	}

	if !isTable(c) {
		return render(c, user)
	}
	printf(c, "Welcome back, %s!\n", displayName(user))
	return nil
}

func register(c *cli.Context) error {
	a, err := getApp(c)
	if err != nil {
		return err
	}

	var reg domain.Registration
	if reg.Name, err = ask(c, "name", "Name"); err != nil {
		return err
	}
	if reg.Email, err = ask(c, "email", "Email"); err != nil {
		return err
	}
	if reg.Password, err = askSecret(c, "password", "Password"); err != nil {
		return err
	}
	confirm, err := askSecret(c, "confirm-password", "Confirm password")
	if err != nil {
		return err
	}
	reg.Name = strings.TrimSpace(reg.Name)
	reg.Email = strings.TrimSpace(reg.Email)
	reg.Phone = strings.TrimSpace(c.String("phone"))
	if err := domain.ValidateRegistration(reg, confirm); err != nil {
		return err
	}

	var user *domain.User
	err = withSpinner(c, "Creating account", func(ctx context.Context) error {
		var err error
		user, err = a.Register(ctx, reg)
		return err
	})
	if err != nil {
		return err
	}

	if !isTable(c) {
		return render(c, user)
	}
	printf(c, "Account created. Welcome, %s!\n", displayName(user))
	return nil
}

func logout(c *cli.Context) error {
	a, err := getApp(c)
	if err != nil {
		return err
	}
	was := a.Session.IsAuthenticated()
	if err := a.Logout(c.Context); err != nil {
		return err
	}
	if was {
		printf(c, "Logged out.\n")
	} else {
		printf(c, "Not logged in.\n")
	}
	return nil
}

// identity is the whoami view of the session.
type identity struct {
	ID          int64  `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Email       string `json:"email" yaml:"email"`
	Phone       string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Fingerprint string `json:"tokenFingerprint" yaml:"tokenFingerprint"`
	LocalToken  bool   `json:"localToken" yaml:"localToken"`
}

func whoami(c *cli.Context) error {
	a, err := getApp(c)
	if err != nil {
		return err
	}
	snap := a.Session.Snapshot()
	if !snap.IsAuthenticated() {
		return domain.ErrNotAuthenticated
	}

	id := identity{
		Fingerprint: token.Fingerprint(snap.Token),
		LocalToken:  token.IsPlaceholder(snap.Token),
	}
	if snap.User != nil {
		id.ID = snap.User.ID
		id.Name = snap.User.Name
		id.Email = snap.User.Email
		id.Phone = snap.User.Phone
	}
	return render(c, id)
}

func displayName(u *domain.User) string {
	if u == nil {
		return "there"
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
