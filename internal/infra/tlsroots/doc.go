// Package tlsroots builds the trust store used for HTTPS calls.
//
// The system roots are always trusted; api.ca_file adds private CAs, for
// example a staging backend behind a corporate proxy.
package tlsroots
