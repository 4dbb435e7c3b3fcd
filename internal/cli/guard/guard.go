package guard

import (
	"path"
	"sort"
	"strings"
)

// Well-known locations.
const (
	PathHome        = "/"
	PathLogin       = "/login"
	PathRegister    = "/register"
	PathDashboard   = "/dashboard"
	PathBookings    = "/bookings"
	PathNewBooking  = "/booking/new"
	PathProviders   = "/providers"
	PathNewProvider = "/providers/new"
	PathProfile     = "/profile"
)

// Access is the protection class of a route.
type Access int

const (
	// Public routes are reachable by everyone.
	Public Access = iota
	// GuestOnly routes redirect signed-in users to the dashboard.
	GuestOnly
	// Protected routes redirect anonymous users to login.
	Protected
)

func (a Access) String() string {
	switch a {
	case Public:
		return "public"
	case GuestOnly:
		return "guest"
	case Protected:
		return "protected"
	default:
		return "unknown"
	}
}

// Route is one entry of the route table.
type Route struct {
	Path   string
	Access Access
	Title  string
}

// DefaultRoutes is the client's route table.
var DefaultRoutes = []Route{
	{Path: PathHome, Access: Public, Title: "Home"},
	{Path: PathLogin, Access: GuestOnly, Title: "Login"},
	{Path: PathRegister, Access: GuestOnly, Title: "Register"},
	{Path: PathDashboard, Access: Protected, Title: "Dashboard"},
	{Path: PathBookings, Access: Protected, Title: "My Bookings"},
	{Path: PathNewBooking, Access: Protected, Title: "New Booking"},
	{Path: PathProviders, Access: Protected, Title: "Service Providers"},
	{Path: PathNewProvider, Access: Protected, Title: "Become a Provider"},
	{Path: PathProfile, Access: Protected, Title: "Profile"},
}

// Authenticator reports whether a session is present.
type Authenticator interface {
	IsAuthenticated() bool
}

// Decision is the outcome of evaluating a destination.
type Decision struct {
	// Allowed is true when Target equals the requested path.
	Allowed bool
	// Target is where the caller should end up.
	Target string
	// Reason explains a redirect.
	Reason string
}

// Redirect reasons.
const (
	ReasonLoginRequired = "login required"
	ReasonSignedIn      = "already signed in"
	ReasonNotFound      = "page not found"
)

// Guard evaluates destinations against a route table.
type Guard struct {
	auth   Authenticator
	routes map[string]Route
}

// New creates a guard over the default route table.
func New(auth Authenticator) *Guard {
	return NewWithRoutes(auth, DefaultRoutes)
}

// NewWithRoutes creates a guard over routes.
func NewWithRoutes(auth Authenticator, routes []Route) *Guard {
	g := &Guard{auth: auth, routes: make(map[string]Route, len(routes))}
	for _, r := range routes {
		g.routes[Clean(r.Path)] = r
	}
	return g
}

// Evaluate decides where a navigation to dest ends up.
func (g *Guard) Evaluate(dest string) Decision {
	p := Clean(dest)
	r, ok := g.routes[p]
	if !ok {
		return Decision{Target: PathHome, Reason: ReasonNotFound}
	}

	authed := g.auth != nil && g.auth.IsAuthenticated()
	switch r.Access {
	case Protected:
		if !authed {
			return Decision{Target: PathLogin, Reason: ReasonLoginRequired}
		}
	case GuestOnly:
		if authed {
			return Decision{Target: PathDashboard, Reason: ReasonSignedIn}
		}
	}
	return Decision{Allowed: true, Target: p}
}

// Route returns the table entry for p.
func (g *Guard) Route(p string) (Route, bool) {
	r, ok := g.routes[Clean(p)]
	return r, ok
}

// Routes returns the route table sorted by path.
func (g *Guard) Routes() []Route {
	out := make([]Route, 0, len(g.routes))
	for _, r := range g.routes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Clean normalises a location: leading slash, no trailing slash, no query.
func Clean(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = strings.TrimSpace(p)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
