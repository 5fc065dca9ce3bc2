// Package network resolves the address a request came from.
package network

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the caller's address for the schedule history. It
// prefers the first X-Forwarded-For hop, then X-Real-IP, then RemoteAddr
// without its port. A nil request yields "".
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
