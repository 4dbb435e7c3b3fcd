// Package api maps marketplace operations onto backend routes.
//
// Each function is a pass-through: a fixed method and path, the payload
// forwarded as given (with the current user id nested where the backend
// expects it), and the JSON result decoded. Input validation happens
// before these calls; retries never happen.
package api
