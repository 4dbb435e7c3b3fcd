package domain

import "strings"

// Provider is a service provider listing.
//
// The backend entity and the older listing shape use different field names
// for the same data (serviceType/service, priceRange/price); both are kept.
type Provider struct {
	ID          int64    `json:"id" yaml:"id"`
	User        *UserRef `json:"user,omitempty" yaml:"user,omitempty" table:"-"`
	Name        string   `json:"name,omitempty" yaml:"name,omitempty"`
	ServiceType string   `json:"serviceType,omitempty" yaml:"serviceType,omitempty"`
	Service     string   `json:"service,omitempty" yaml:"service,omitempty" table:"wide"`
	Area        string   `json:"area,omitempty" yaml:"area,omitempty"`
	Experience  string   `json:"experience,omitempty" yaml:"experience,omitempty" table:"wide"`
	PriceRange  string   `json:"priceRange,omitempty" yaml:"priceRange,omitempty" table:"wide"`
	Price       float64  `json:"price,omitempty" yaml:"price,omitempty" table:"wide"`
	Rating      float64  `json:"rating,omitempty" yaml:"rating,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty" table:"wide"`
	Phone       string   `json:"phone,omitempty" yaml:"phone,omitempty"`
}

// Category returns the provider's service category, whichever field holds it.
func (p Provider) Category() string {
	if p.ServiceType != "" {
		return p.ServiceType
	}
	return p.Service
}

// ProviderRequest is the create-provider payload before the owner is nested in.
type ProviderRequest struct {
	Name        string  `json:"name,omitempty"`
	ServiceType string  `json:"serviceType"`
	Area        string  `json:"area,omitempty"`
	Experience  string  `json:"experience,omitempty"`
	PriceRange  string  `json:"priceRange,omitempty"`
	Description string  `json:"description,omitempty"`
	Phone       string  `json:"phone,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
}

// ServiceCategories lists the categories offered in the provider browser.
var ServiceCategories = []string{
	"Home Cleaning",
	"Plumbing",
	"Electrical",
	"Carpentry",
	"Painting",
	"Gardening",
	"Tech Repair",
	"Beauty & Wellness",
}

// ProviderFilter narrows a provider listing.
type ProviderFilter struct {
	// Service matches the category exactly, ignoring case. Empty or "All"
	// disables the filter.
	Service string
	// Query matches a substring of name, category or description.
	Query string
}

// FilterProviders returns the providers matching f, preserving order.
func FilterProviders(providers []Provider, f ProviderFilter) []Provider {
	service := strings.TrimSpace(f.Service)
	query := strings.ToLower(strings.TrimSpace(f.Query))

	out := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if service != "" && !strings.EqualFold(service, "All") &&
			!strings.EqualFold(p.Category(), service) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.Category()), query) &&
			!strings.Contains(strings.ToLower(p.Description), query) {
			continue
		}
		out = append(out, p)
	}
	return out
}
