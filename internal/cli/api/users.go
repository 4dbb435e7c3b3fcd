package api

import (
	"context"
	"net/http"

	"github.com/yndnr/hyperlocal-go/internal/core/domain"
)

const pathUsers = "/api/users"

// Users covers profile operations.
type Users struct {
	doer    Doer
	session UserIDSource
}

// GetProfile fetches the signed-in user's record.
func (u *Users) GetProfile(ctx context.Context) (*domain.User, error) {
	me, err := currentUser(u.session)
	if err != nil {
		return nil, err
	}
	var out domain.User
	if err := u.doer.Do(ctx, http.MethodGet, itemPath(pathUsers, me.ID), nil, &out); err != nil {
		return nil, err
	}
	out = out.Redacted()
	return &out, nil
}

// UpdateProfile sends the set fields of upd and returns the updated record.
func (u *Users) UpdateProfile(ctx context.Context, upd domain.ProfileUpdate) (*domain.User, error) {
	me, err := currentUser(u.session)
	if err != nil {
		return nil, err
	}
	var out domain.User
	if err := u.doer.Do(ctx, http.MethodPut, itemPath(pathUsers, me.ID), upd, &out); err != nil {
		return nil, err
	}
	out = out.Redacted()
	return &out, nil
}

// List returns every user.
func (u *Users) List(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	if err := u.doer.Do(ctx, http.MethodGet, pathUsers, nil, &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i] = out[i].Redacted()
	}
	return out, nil
}
