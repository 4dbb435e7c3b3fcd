package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/hyperlocal-go/internal/cli/connection"
	"github.com/yndnr/hyperlocal-go/internal/core/domain"
)

func TestLogin_PersistsSession(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("login", "--email", "asha@example.com", "--password", "secret1")
	if !strings.Contains(out, "Welcome back, Asha!") {
		t.Errorf("login output = %q", out)
	}
	if _, err := os.Stat(h.session); err != nil {
		t.Fatalf("session file not written: %v", err)
	}

	out = h.mustRun("--output", "json", "whoami")
	var id identity
	if err := json.Unmarshal([]byte(out), &id); err != nil {
		t.Fatalf("whoami output %q: %v", out, err)
	}
	if id.ID != 7 || id.Email != "asha@example.com" || !id.LocalToken || id.Fingerprint == "" {
		t.Errorf("whoami = %+v", id)
	}
}

func TestLogin_PromptsWhenPiped(t *testing.T) {
	h := newHarness(t)

	out, errOut, err := h.runWithInput("asha@example.com\nsecret1\n", "login")
	if err != nil {
		t.Fatalf("login: %v (stderr %q)", err, errOut)
	}
	if !strings.Contains(out, "Welcome back, Asha!") {
		t.Errorf("login output = %q", out)
	}
	if !strings.Contains(errOut, "Email: ") || !strings.Contains(errOut, "Password: ") {
		t.Errorf("prompts = %q", errOut)
	}
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing email", []string{"login", "--password", "secret1"}, "Email is required"},
		{"short password", []string{"login", "--email", "a@b.co", "--password", "abc"}, "at least 6 characters"},
		{"wrong password", []string{"login", "--email", "a@b.co", "--password", "wrong12"}, "Invalid email or password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			_, _, err := h.run(tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := Describe(err); !strings.Contains(got, tt.want) {
				t.Errorf("Describe() = %q, want it to contain %q", got, tt.want)
			}
			if _, err := os.Stat(h.session); !errors.Is(err, os.ErrNotExist) {
				t.Errorf("session file exists after failed login")
			}
		})
	}
}

func TestRegister(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("register", "--name", "Asha", "--email", "asha@example.com",
		"--password", "secret1", "--confirm-password", "secret2")
	if err == nil || !strings.Contains(Describe(err), "Passwords do not match") {
		t.Fatalf("mismatched confirmation error = %v", err)
	}

	out := h.mustRun("register", "--name", "Asha", "--email", "asha@example.com",
		"--password", "secret1", "--confirm-password", "secret1")
	if !strings.Contains(out, "Account created. Welcome, Asha!") {
		t.Errorf("register output = %q", out)
	}
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	h.login()

	if out := h.mustRun("logout"); !strings.Contains(out, "Logged out.") {
		t.Errorf("logout output = %q", out)
	}
	if out := h.mustRun("logout"); !strings.Contains(out, "Not logged in.") {
		t.Errorf("second logout output = %q", out)
	}
	if _, _, err := h.run("whoami"); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Errorf("whoami after logout error = %v", err)
	}
}

func TestOpen(t *testing.T) {
	h := newHarness(t)

	if out := h.mustRun("open", "/bookings"); !strings.Contains(out, "/login (redirected: login required)") {
		t.Errorf("anonymous open = %q", out)
	}
	if out := h.mustRun("open", "/register"); strings.TrimSpace(out) != "/register" {
		t.Errorf("open /register = %q", out)
	}

	h.login()
	if out := h.mustRun("open", "/login"); !strings.Contains(out, "/dashboard (redirected: already signed in)") {
		t.Errorf("signed-in open /login = %q", out)
	}
	if out := h.mustRun("open", "/nowhere"); !strings.Contains(out, "/ (redirected: page not found)") {
		t.Errorf("open unknown = %q", out)
	}
	if _, _, err := h.run("open"); err == nil {
		t.Error("open without a path should fail")
	}

	out := h.mustRun("open", "--list")
	for _, want := range []string{"/booking/new", "protected", "guest", "Become a Provider"} {
		if !strings.Contains(out, want) {
			t.Errorf("open --list missing %q:\n%s", want, out)
		}
	}
}

func TestBookingList(t *testing.T) {
	h := newHarness(t)

	if _, _, err := h.run("booking", "list"); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("anonymous list error = %v", err)
	}

	h.login()
	out := h.mustRun("booking", "list")
	if !strings.Contains(out, "Plumbing") || !strings.Contains(out, "Painting") {
		t.Errorf("list output = %q", out)
	}

	out = h.mustRun("booking", "list", "--status", "completed")
	if strings.Contains(out, "Plumbing") || !strings.Contains(out, "Painting") {
		t.Errorf("filtered output = %q", out)
	}

	out = h.mustRun("booking", "list", "--search", "gardening")
	if !strings.Contains(out, "No bookings match the filter.") {
		t.Errorf("empty filter output = %q", out)
	}
}

func TestBookingGet(t *testing.T) {
	h := newHarness(t)
	h.login()

	if out := h.mustRun("booking", "get", "3"); !strings.Contains(out, "Completed") {
		t.Errorf("get output = %q", out)
	}
	_, _, err := h.run("booking", "get", "404")
	if err == nil || Describe(err) != "booking 404 not found" {
		t.Errorf("missing booking error = %v", err)
	}
}

func TestBookingCreate(t *testing.T) {
	h := newHarness(t)
	h.login()

	_, _, err := h.run("booking", "create", "--provider", "1", "--date", "2020-01-01", "--time", "10:00")
	if err == nil || !strings.Contains(Describe(err), "Date cannot be in the past") {
		t.Fatalf("past date error = %v", err)
	}
	_, _, err = h.run("booking", "create", "--date", "2030-01-01", "--time", "07:15")
	msg := Describe(err)
	if !strings.Contains(msg, "Please select a service provider") || !strings.Contains(msg, "half-hour slot") {
		t.Errorf("invalid request message = %q", msg)
	}
	if got := h.api.createdBodies(); len(got) != 0 {
		t.Fatalf("invalid requests reached the server: %v", got)
	}

	out := h.mustRun("booking", "create", "-P", "1", "-d", "2030-01-01", "-t", "10:30", "-n", "Leaking tap")
	if !strings.Contains(out, "Booking 11 created for 2030-01-01 at 10:30.") {
		t.Errorf("create output = %q", out)
	}
	created := h.api.createdBodies()
	if len(created) != 1 {
		t.Fatalf("created = %d, want 1", len(created))
	}
	body := created[0]
	if body["status"] != domain.StatusPending || body["bookingDate"] != "2030-01-01" {
		t.Errorf("payload = %v", body)
	}
}

func TestBookingCancel(t *testing.T) {
	h := newHarness(t)
	h.login()

	if out := h.mustRun("booking", "cancel", "1"); !strings.Contains(out, "Booking 1 cancelled.") {
		t.Errorf("cancel output = %q", out)
	}
	if _, _, err := h.run("booking", "cancel", "3"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("cancel completed error = %v", err)
	}
	h.mustRun("booking", "cancel", "--force", "3")

	if got := strings.Join(h.api.canceledIDs(), ","); got != "1,3" {
		t.Errorf("canceled = %s, want 1,3", got)
	}
}

func TestExpiredSession(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.api.expired.Store(true)

	_, _, err := h.run("booking", "list")
	if !errors.Is(err, connection.ErrUnauthorized) {
		t.Fatalf("error = %v, want ErrUnauthorized", err)
	}
	if got := Describe(err); got != "session expired, please log in again" {
		t.Errorf("Describe() = %q", got)
	}

	h.api.expired.Store(false)
	if _, _, err := h.run("whoami"); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Errorf("session survived a 401: whoami error = %v", err)
	}
}

func TestProviderList(t *testing.T) {
	h := newHarness(t)
	h.login()

	out := h.mustRun("provider", "list", "--service", "cleaning")
	if !strings.Contains(out, "Sparkle Co") || strings.Contains(out, "Ravi Pipes") {
		t.Errorf("filtered providers = %q", out)
	}
	out = h.mustRun("provider", "list", "-q", "carpentry")
	if !strings.Contains(out, "No providers found.") {
		t.Errorf("empty providers = %q", out)
	}
}

func TestDashboard(t *testing.T) {
	h := newHarness(t)
	h.login()

	out := h.mustRun("dashboard")
	for _, want := range []string{"Welcome back, Asha!", "Total bookings: 2", "Recent bookings:"} {
		if !strings.Contains(out, want) {
			t.Errorf("dashboard missing %q:\n%s", want, out)
		}
	}
}

func TestConfigCommands(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "cli.yaml")

	out := h.mustRun("--config", path, "config", "init")
	if !strings.Contains(out, path) {
		t.Errorf("init output = %q", out)
	}
	if _, _, err := h.run("--config", path, "config", "init"); err == nil {
		t.Error("init over an existing file should fail without --force")
	}
	h.mustRun("--config", path, "config", "init", "--force")

	out = h.mustRun("--config", path, "config", "show")
	if !strings.Contains(out, "base_url: "+h.url) {
		t.Errorf("show output = %q", out)
	}
	if out := h.mustRun("--config", path, "config", "validate"); !strings.Contains(out, "Configuration is valid.") {
		t.Errorf("validate output = %q", out)
	}
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("--output", "json", "version")
	var v map[string]any
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("version output %q: %v", out, err)
	}
	if v["go_version"] == "" || v["go_version"] == nil {
		t.Errorf("version = %v", v)
	}
}

func TestDescribe(t *testing.T) {
	verr := &domain.ValidationError{Fields: map[string]string{
		"password": "Password is required",
		"email":    "Email is required",
	}}
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation sorted by field", verr, "Email is required; Password is required"},
		{"wrapped validation", fmt.Errorf("login: %w", verr), "Email is required; Password is required"},
		{"unauthorized", fmt.Errorf("get: %w", connection.ErrUnauthorized), "session expired, please log in again"},
		{"not authenticated", domain.ErrNotAuthenticated, "not logged in (run `hyperlocal-cli login`)"},
		{"domain error", domain.ErrMissingArgument.WithDetails("booking id"), "missing required argument: booking id"},
		{"other", errors.New("boom"), "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Describe(tt.err); got != tt.want {
				t.Errorf("Describe() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		args    []string
		want    int64
		wantErr error
	}{
		{[]string{"42"}, 42, nil},
		{nil, 0, domain.ErrMissingArgument},
		{[]string{"abc"}, 0, domain.ErrInvalidArgument},
		{[]string{"-3"}, 0, domain.ErrInvalidArgument},
	}
	for _, tt := range tests {
		var got int64
		var gotErr error
		a := &cli.App{
			Writer: &strings.Builder{},
			Action: func(c *cli.Context) error {
				got, gotErr = parseID(c, "booking id")
				return nil
			},
		}
		if err := a.Run(append([]string{"x", "--"}, tt.args...)); err != nil {
			t.Fatalf("Run(%v) error = %v", tt.args, err)
		}
		if tt.wantErr != nil {
			if !errors.Is(gotErr, tt.wantErr) {
				t.Errorf("parseID(%v) error = %v, want %v", tt.args, gotErr, tt.wantErr)
			}
			continue
		}
		if gotErr != nil || got != tt.want {
			t.Errorf("parseID(%v) = %d, %v", tt.args, got, gotErr)
		}
	}
}
