package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/yndnr/hyperlocal-go/internal/core/domain"
)

const (
	pathLogin    = "/api/users/login"
	pathRegister = "/api/users"
)

// Auth covers login, registration and logout.
type Auth struct {
	doer    Doer
	session SessionClearer
}

// Login posts credentials. The backend may answer with `{token, user}` or
// with the bare user record; in the latter case the result has no token.
func (a *Auth) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error) {
	return a.authenticate(ctx, pathLogin, creds)
}

// Register creates an account.
func (a *Auth) Register(ctx context.Context, reg domain.Registration) (*domain.AuthResult, error) {
	return a.authenticate(ctx, pathRegister, reg)
}

// Logout clears the local session. No request is sent.
func (a *Auth) Logout(ctx context.Context) error {
	if a.session == nil {
		return nil
	}
	return a.session.Clear(ctx)
}

func (a *Auth) authenticate(ctx context.Context, path string, body any) (*domain.AuthResult, error) {
	var raw json.RawMessage
	if err := a.doer.Do(ctx, http.MethodPost, path, body, &raw); err != nil {
		return nil, err
	}
	return decodeAuthResult(raw)
}

// decodeAuthResult accepts both response shapes of the auth endpoints.
func decodeAuthResult(raw json.RawMessage) (*domain.AuthResult, error) {
	var wrapped struct {
		Token string       `json:"token"`
		User  *domain.User `json:"user"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("parse auth response: %w", err)
	}
	if wrapped.User != nil {
		return &domain.AuthResult{Token: wrapped.Token, User: wrapped.User.Redacted()}, nil
	}

	var bare domain.User
	if err := json.Unmarshal(raw, &bare); err != nil {
		return nil, fmt.Errorf("parse auth response: %w", err)
	}
	if bare.ID == 0 && bare.Email == "" {
		return nil, fmt.Errorf("parse auth response: no user record")
	}
	return &domain.AuthResult{Token: wrapped.Token, User: bare.Redacted()}, nil
}
