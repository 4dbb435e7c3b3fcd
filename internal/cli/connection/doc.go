// Package connection is the single funnel for calls to the Hyperlocal
// backend.
//
//   - http.go: request pipeline (headers, bearer token, dispatch, decode)
//   - errors.go: error taxonomy returned by Send
//   - events.go: unauthorized notifications
//
// Every request reads the current token from the session at dispatch
// time. A 401 response clears the session and notifies the registered
// handlers before the call fails with ErrUnauthorized. Requests are never
// retried.
package connection
