// Package domain defines the marketplace models used by the Hyperlocal client.
//
// Domain models are pure value objects without any IO dependencies or
// framework coupling. This package contains:
//
//   - User: account record, credentials and registration payloads
//   - Provider: service provider record and creation payload
//   - Booking: booking record, creation payload, filters and dashboard stats
//   - Validation: form checks run before a request is sent
//   - Errors: coded client-side error definitions
//
// Records are opaque to the request pipeline; they are decoded from and
// encoded to the backend's JSON shapes unchanged.
package domain
