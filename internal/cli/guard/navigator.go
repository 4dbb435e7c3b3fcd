package guard

import (
	"context"
	"sync"
)

// maxRedirects bounds redirect chains in Navigate.
const maxRedirects = 5

// Navigator holds the current location and applies the guard on every
// move. It is safe for concurrent use.
type Navigator struct {
	guard *Guard

	mu      sync.Mutex
	current string
	history []string

	subMu  sync.Mutex
	subs   map[int]func(from, to string)
	nextID int
}

// NewNavigator creates a navigator starting at home.
func NewNavigator(g *Guard) *Navigator {
	return &Navigator{
		guard:   g,
		current: PathHome,
		subs:    make(map[int]func(from, to string)),
	}
}

// Current returns the current location.
func (n *Navigator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// History returns previously visited locations, oldest first.
func (n *Navigator) History() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.history...)
}

// Navigate moves to dest, following guard redirects. The returned decision
// describes the first hop; its Target is the final location.
func (n *Navigator) Navigate(dest string) Decision {
	return n.navigate(dest, true)
}

func (n *Navigator) navigate(dest string, record bool) Decision {
	first := n.guard.Evaluate(dest)
	d := first
	for i := 0; !d.Allowed && i < maxRedirects; i++ {
		d = n.guard.Evaluate(d.Target)
	}
	first.Target = d.Target

	n.moveTo(d.Target, record)
	return first
}

// Back returns to the previous location, re-checking the guard.
func (n *Navigator) Back() Decision {
	n.mu.Lock()
	if len(n.history) == 0 {
		cur := n.current
		n.mu.Unlock()
		return Decision{Allowed: true, Target: cur}
	}
	prev := n.history[len(n.history)-1]
	n.history = n.history[:len(n.history)-1]
	n.mu.Unlock()

	return n.navigate(prev, false)
}

// HandleUnauthorized moves to the login page after the server rejected
// the session.
func (n *Navigator) HandleUnauthorized(_ context.Context) {
	n.moveTo(PathLogin, true)
}

// Refresh re-evaluates the current location, e.g. after the session
// changed in another process.
func (n *Navigator) Refresh() Decision {
	return n.Navigate(n.Current())
}

// Subscribe registers fn for location changes.
func (n *Navigator) Subscribe(fn func(from, to string)) func() {
	n.subMu.Lock()
	id := n.nextID
	n.nextID++
	n.subs[id] = fn
	n.subMu.Unlock()

	return func() {
		n.subMu.Lock()
		delete(n.subs, id)
		n.subMu.Unlock()
	}
}

func (n *Navigator) moveTo(to string, record bool) {
	n.mu.Lock()
	from := n.current
	if from == to {
		n.mu.Unlock()
		return
	}
	if record {
		n.history = append(n.history, from)
	}
	n.current = to
	n.mu.Unlock()

	n.subMu.Lock()
	fns := make([]func(from, to string), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.subMu.Unlock()

	for _, fn := range fns {
		fn(from, to)
	}
}
