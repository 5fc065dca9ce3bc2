// internal/app/system/certcheck/certcheck.go
package certcheck

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"
)

// CertInfo describes the TLS certificate an ERP host presents.
type CertInfo struct {
	Host      string    `json:"host"`
	ExpiresAt time.Time `json:"expires_at"`
	DaysLeft  int       `json:"days_left"`
	Issuer    string    `json:"issuer"`
}

// ErrNotTLS is returned for plain http base URLs.
var ErrNotTLS = errors.New("certcheck: not an https URL")

// Check dials the host of an https base URL and reads its leaf certificate.
func Check(ctx context.Context, baseURL string) (CertInfo, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return CertInfo{}, fmt.Errorf("certcheck: %w", err)
	}
	if u.Scheme != "https" || u.Hostname() == "" {
		return CertInfo{}, ErrNotTLS
	}
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "443"
	}

	d := &tls.Dialer{Config: &tls.Config{ServerName: host}}
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, port))
	if err != nil {
		return CertInfo{Host: host}, fmt.Errorf("certcheck %s: %w", host, err)
	}
	defer conn.Close()

	certs := conn.(*tls.Conn).ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return CertInfo{Host: host}, fmt.Errorf("certcheck %s: no certificates", host)
	}
	leaf := certs[0]
	return CertInfo{
		Host:      host,
		ExpiresAt: leaf.NotAfter,
		DaysLeft:  int(time.Until(leaf.NotAfter).Hours() / 24),
		Issuer:    leaf.Issuer.CommonName,
	}, nil
}

// ExpiryCheck returns a health check that fails when the certificate of baseURL
// expires within minDays. Plain http URLs always pass.
func ExpiryCheck(baseURL string, minDays int) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		info, err := Check(ctx, baseURL)
		if errors.Is(err, ErrNotTLS) {
			return nil
		}
		if err != nil {
			return err
		}
		if info.DaysLeft < minDays {
			return fmt.Errorf("certificate for %s expires in %d days (%s)",
				info.Host, info.DaysLeft, info.ExpiresAt.Format(time.DateOnly))
		}
		return nil
	}
}
