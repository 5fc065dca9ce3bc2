package testutil

import (
	"net/http"
	"net/http/httptest"

	"github.com/gorilla/csrf"
)

// csrfTestKey is a fixed 32-byte key for test CSRF middleware.
var csrfTestKey = []byte("stratasched-test-csrf-key-32byte")

// NewRequest creates an HTTP request for handler tests.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// WithCSRF wraps h in the same gorilla/csrf middleware the app uses, minus
// the Secure flag, so pages rendered in tests carry a real token. Only safe
// methods pass without a token.
func WithCSRF(h http.Handler) http.Handler {
	return csrf.Protect(csrfTestKey,
		csrf.Secure(false),
		csrf.Path("/"),
		csrf.FieldName("csrf_token"),
	)(h)
}
