// Package guard decides which client locations are reachable.
//
// The route table mirrors the application's pages: public pages, guest
// pages that signed-in users skip, and protected pages that require a
// session. Evaluate consults the authenticator on every call; nothing is
// cached, so a session cleared by a 401 takes effect on the next
// navigation.
//
// Navigator tracks the current location for interactive use and moves to
// the login page when the server rejects the session.
package guard
