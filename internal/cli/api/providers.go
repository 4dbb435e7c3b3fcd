package api

import (
	"context"
	"net/http"

	"github.com/yndnr/hyperlocal-go/internal/core/domain"
)

const pathProviders = "/api/providers"

// Providers covers the provider directory.
type Providers struct {
	doer    Doer
	session UserIDSource
}

type providerPayload struct {
	domain.ProviderRequest
	User domain.UserRef `json:"user"`
}

// List returns all providers.
func (p *Providers) List(ctx context.Context) ([]domain.Provider, error) {
	var out []domain.Provider
	if err := p.doer.Do(ctx, http.MethodGet, pathProviders, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one provider.
func (p *Providers) Get(ctx context.Context, id int64) (*domain.Provider, error) {
	var out domain.Provider
	if err := p.doer.Do(ctx, http.MethodGet, itemPath(pathProviders, id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create registers the signed-in user as a provider.
func (p *Providers) Create(ctx context.Context, req domain.ProviderRequest) (*domain.Provider, error) {
	me, err := currentUser(p.session)
	if err != nil {
		return nil, err
	}
	var out domain.Provider
	if err := p.doer.Do(ctx, http.MethodPost, pathProviders, providerPayload{ProviderRequest: req, User: me}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a provider.
func (p *Providers) Delete(ctx context.Context, id int64) error {
	return p.doer.Do(ctx, http.MethodDelete, itemPath(pathProviders, id), nil, nil)
}
