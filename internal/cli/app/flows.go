package app

import (
	"context"
	"errors"

	"github.com/yndnr/hyperlocal-go/internal/cli/connection"
	"github.com/yndnr/hyperlocal-go/internal/cli/guard"
	"github.com/yndnr/hyperlocal-go/internal/core/domain"
	"github.com/yndnr/hyperlocal-go/pkg/token"
)

// Login authenticates, stores the session and moves to the dashboard.
//
// The backend's login endpoint returns the user record without a token; a
// local placeholder token then marks the session as signed in.
func (a *App) Login(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	res, err := a.API.Auth.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	return a.establish(ctx, res, EventLogin)
}

// Register creates the account and signs in with it.
func (a *App) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	res, err := a.API.Auth.Register(ctx, reg)
	if err != nil {
		return nil, err
	}
	return a.establish(ctx, res, EventRegister)
}

func (a *App) establish(ctx context.Context, res *domain.AuthResult, event string) (*domain.User, error) {
	tok := res.Token
	if tok == "" {
		var err error
		if tok, err = token.Placeholder(); err != nil {
			return nil, domain.ErrSessionStorage.WithCause(err)
		}
		a.Logger.Debug("server issued no token, using placeholder", "user_id", res.User.ID)
	}

	if err := a.Session.Set(ctx, tok, res.User); err != nil {
		return nil, err
	}
	a.Metrics.SessionEvents.WithLabelValues(event).Inc()
	a.Navigator.Navigate(guard.PathDashboard)

	return a.Session.User(), nil
}

// Logout clears the session and moves to the login page. The navigation
// happens even when the backend could not be cleared.
func (a *App) Logout(ctx context.Context) error {
	wasAuthenticated := a.Session.IsAuthenticated()
	err := a.API.Auth.Logout(ctx)
	if wasAuthenticated {
		a.Metrics.SessionEvents.WithLabelValues(EventLogout).Inc()
	}
	a.Navigator.Navigate(guard.PathLogin)
	return err
}

// Require navigates to dest and reports whether the user may stay there.
// A redirect to the login page yields domain.ErrNotAuthenticated.
func (a *App) Require(dest string) (guard.Decision, error) {
	d := a.Navigator.Navigate(dest)
	if !d.Allowed && d.Target == guard.PathLogin {
		return d, domain.ErrNotAuthenticated.WithDetails(guard.Clean(dest))
	}
	return d, nil
}

// Reload re-reads the persisted session and re-checks the current location.
// It is called when another process changed the session.
func (a *App) Reload(ctx context.Context) (guard.Decision, error) {
	before := a.Session.IsAuthenticated()
	if err := a.Session.Reload(ctx); err != nil {
		return guard.Decision{}, err
	}
	if a.Session.IsAuthenticated() != before {
		a.Metrics.SessionEvents.WithLabelValues(EventReload).Inc()
	}
	return a.Navigator.Refresh(), nil
}

// Dashboard is the signed-in landing page data.
type Dashboard struct {
	User   *domain.User        `json:"user" yaml:"user"`
	Stats  domain.BookingStats `json:"stats" yaml:"stats"`
	Recent []domain.Booking    `json:"recentBookings" yaml:"recentBookings"`
}

// RecentLimit is the number of bookings shown on the dashboard.
const RecentLimit = 5

// LoadDashboard fetches the bookings and summarises them.
func (a *App) LoadDashboard(ctx context.Context) (*Dashboard, error) {
	if _, err := a.Require(guard.PathDashboard); err != nil {
		return nil, err
	}
	bookings, err := a.API.Bookings.List(ctx)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		User:   a.Session.User(),
		Stats:  domain.SummarizeBookings(bookings),
		Recent: domain.RecentBookings(bookings, RecentLimit),
	}, nil
}

// Profile fetches the signed-in user's record. When the request fails for
// any reason other than a rejected session, the copy held in the session is
// returned with stale set.
func (a *App) Profile(ctx context.Context) (user *domain.User, stale bool, err error) {
	if _, err := a.Require(guard.PathProfile); err != nil {
		return nil, false, err
	}
	u, err := a.API.Users.GetProfile(ctx)
	if err == nil {
		return u, false, nil
	}
	if errors.Is(err, connection.ErrUnauthorized) {
		return nil, false, err
	}
	if cached := a.Session.User(); cached != nil {
		a.Logger.Warn("profile request failed, showing stored copy", "error", err)
		return cached, true, nil
	}
	return nil, false, err
}

// UpdateProfile sends the changed fields and stores the returned record
// in the session.
func (a *App) UpdateProfile(ctx context.Context, upd domain.ProfileUpdate) (*domain.User, error) {
	if _, err := a.Require(guard.PathProfile); err != nil {
		return nil, err
	}
	u, err := a.API.Users.UpdateProfile(ctx, upd)
	if err != nil {
		return nil, err
	}
	if tok := a.Session.Token(); tok != "" {
		if err := a.Session.Set(ctx, tok, *u); err != nil {
			return u, err
		}
	}
	return u, nil
}
