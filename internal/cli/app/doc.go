// Package app assembles the client from configuration.
//
// An App owns the session store, the HTTP client, the API modules, the
// route guard and the navigator. The HTTP client reports a rejected token
// to the navigator, which moves the user to the login page; the store has
// already been cleared by then.
//
// The login and registration flows live here because they span several
// components: the API call, the session write and the navigation that
// follows it.
package app
