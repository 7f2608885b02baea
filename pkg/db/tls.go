package db

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/url"
	"os"
)

// TLS pins database connections to a private CA bundle
type TLS struct {
	CACertPath string
	// ServerName overrides the name checked against the server certificate
	ServerName string
}

// sslModes that make pgx negotiate TLS
var encryptedModes = map[string]bool{
	"require":     true,
	"verify-ca":   true,
	"verify-full": true,
}

// config returns nil when the URL does not ask for TLS or no bundle is set.
// pgx then applies the URL's sslmode on its own.
func (t TLS) config(databaseURL string) (*tls.Config, error) {
	if t.CACertPath == "" || !encryptedModes[sslMode(databaseURL)] {
		return nil, nil
	}

	pem, err := os.ReadFile(t.CACertPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA certificate from %s: %w", t.CACertPath, err)
	}

	roots := x509.NewCertPool()
	if !roots.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates found in %s", t.CACertPath)
	}

	return &tls.Config{
		RootCAs:    roots,
		ServerName: t.ServerName,
		MinVersion: tls.VersionTLS12,
	}, nil
}

func sslMode(databaseURL string) string {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return ""
	}
	return u.Query().Get("sslmode")
}
