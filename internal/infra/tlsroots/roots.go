package tlsroots

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

// ErrNoCertsFound is returned when a CA file holds no certificate.
var ErrNoCertsFound = errors.New("tlsroots: no certificates found in PEM data")

// ClientConfig returns a TLS config trusting the system roots plus the CAs
// in caFile. An empty caFile yields nil, which selects Go's defaults.
func ClientConfig(caFile string) (*tls.Config, error) {
	if caFile == "" {
		return nil, nil
	}
	data, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("tlsroots: read %s: %w", caFile, err)
	}

	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}
	if _, err := appendPEM(pool, data); err != nil {
		return nil, fmt.Errorf("tlsroots: %s: %w", caFile, err)
	}
	return &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

// appendPEM adds every CERTIFICATE block in data to pool and returns how
// many were added. Unlike x509.CertPool.AppendCertsFromPEM it fails on a
// certificate that does not parse.
func appendPEM(pool *x509.CertPool, data []byte) (int, error) {
	n := 0
	for block, rest := pem.Decode(data); block != nil; block, rest = pem.Decode(rest) {
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return n, fmt.Errorf("parse certificate %d: %w", n+1, err)
		}
		pool.AddCert(cert)
		n++
	}
	if n == 0 {
		return 0, ErrNoCertsFound
	}
	return n, nil
}
