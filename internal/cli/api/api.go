package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/yndnr/hyperlocal-go/internal/core/domain"
)

// Doer issues one request and decodes the 2xx JSON body into out.
// *connection.HTTPClient implements it.
type Doer interface {
	Do(ctx context.Context, method, path string, body, out any) error
}

// UserIDSource yields the id of the signed-in user.
// *session.Store implements it.
type UserIDSource interface {
	UserID() (int64, bool)
}

// SessionClearer is what Auth.Logout needs from the session.
type SessionClearer interface {
	Clear(ctx context.Context) error
}

// Session combines the session capabilities the modules use.
type Session interface {
	UserIDSource
	SessionClearer
}

// Client bundles every module.
type Client struct {
	Auth      *Auth
	Users     *Users
	Providers *Providers
	Bookings  *Bookings
}

// New creates all modules over doer and sess.
func New(doer Doer, sess Session) *Client {
	return &Client{
		Auth:      &Auth{doer: doer, session: sess},
		Users:     &Users{doer: doer, session: sess},
		Providers: &Providers{doer: doer, session: sess},
		Bookings:  &Bookings{doer: doer, session: sess},
	}
}

// currentUser returns the nested `{id}` reference for payloads.
func currentUser(src UserIDSource) (domain.UserRef, error) {
	if src == nil {
		return domain.UserRef{}, domain.ErrNoCurrentUser
	}
	id, ok := src.UserID()
	if !ok {
		return domain.UserRef{}, domain.ErrNoCurrentUser
	}
	return domain.UserRef{ID: id}, nil
}

func itemPath(collection string, id int64) string {
	return collection + "/" + url.PathEscape(strconv.FormatInt(id, 10))
}
