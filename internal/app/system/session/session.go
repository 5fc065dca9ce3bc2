// internal/app/system/session/session.go
package session

import (
	"crypto/sha256"
	"encoding/gob"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
	"golang.org/x/crypto/hkdf"
)

// Session error classification for logging.
type errorType int

const (
	errUnknown   errorType = iota
	errExpired             // timestamp expired - normal
	errTampered            // MAC invalid - potential attack
	errCorrupted           // decode/decrypt failed - corruption or key rotation
	errBackend             // store/backend failure
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session keys                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	boardIDKey = "board_id"
	flashKey   = "_flash"
)

// DefaultName is the cookie name used when none is configured.
const DefaultName = "stratasched-session"

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Flash is a one-shot message shown on the next page render.
type Flash struct {
	Kind    string
	Message string
}

func init() {
	gob.Register(Flash{})
}

// ConfigError is returned when session configuration is invalid.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

/*─────────────────────────────────────────────────────────────────────────────*
| Manager                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// Manager owns the cookie store that ties a browser to its calendar board
// and carries flash messages across redirects.
type Manager struct {
	store  *sessions.CookieStore
	logger *zap.Logger
	name   string
}

// NewManager creates a Manager. The configured key is stretched with HKDF
// into separate signing and encryption keys, so cookie contents are both
// authenticated and private.
//
// A weak key (short or an obvious placeholder) is an error when secure is
// set and a warning otherwise.
func NewManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*Manager, error) {
	if sessionKey == "" {
		return nil, &ConfigError{Message: "session key is empty; provide ≥32 random chars"}
	}

	isWeak := len(sessionKey) < 32 || isDefaultKey(sessionKey)
	if secure {
		if isWeak {
			return nil, &ConfigError{
				Message: "session key is too weak for production; provide ≥32 random chars (not the default dev key)",
			}
		}
	} else if isWeak {
		logger.Warn("session key is weak; 32+ random chars required in production",
			zap.Int("length", len(sessionKey)),
			zap.Bool("is_default", isDefaultKey(sessionKey)))
	}

	if name == "" {
		name = DefaultName
	}

	hashKey, blockKey, err := deriveKeys(sessionKey)
	if err != nil {
		return nil, fmt.Errorf("derive session keys: %w", err)
	}

	store := sessions.NewCookieStore(hashKey, blockKey)
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	logger.Info("session manager initialized",
		zap.Bool("secure", secure),
		zap.String("name", name),
		zap.String("domain", domain))

	return &Manager{store: store, logger: logger, name: name}, nil
}

// deriveKeys expands the configured secret into a 64-byte HMAC key and a
// 32-byte AES key.
func deriveKeys(secret string) (hashKey, blockKey []byte, err error) {
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte("stratasched session v1"))
	hashKey = make([]byte, 64)
	blockKey = make([]byte, 32)
	if _, err = io.ReadFull(r, hashKey); err != nil {
		return nil, nil, err
	}
	if _, err = io.ReadFull(r, blockKey); err != nil {
		return nil, nil, err
	}
	return hashKey, blockKey, nil
}

// Name returns the session cookie name.
func (m *Manager) Name() string {
	return m.name
}

// get loads the session, logging decode failures by cause. A fresh session
// is returned on error so callers can always proceed.
func (m *Manager) get(r *http.Request) *sessions.Session {
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		typ, category := classifyError(err)
		switch typ {
		case errExpired:
			m.logger.Debug("session expired, starting fresh session",
				zap.String("category", category),
				zap.String("path", r.URL.Path))
		case errTampered:
			m.logger.Warn("session MAC validation failed (possible tampering)",
				zap.String("category", category),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()))
		case errCorrupted:
			m.logger.Info("session decode failed, starting fresh session",
				zap.String("category", category),
				zap.String("path", r.URL.Path))
		default:
			m.logger.Error("session store error, starting fresh session",
				zap.Error(err),
				zap.String("path", r.URL.Path))
		}
	}
	return sess
}

// BoardID returns the calendar board bound to this browser, or "".
func (m *Manager) BoardID(r *http.Request) string {
	if v, ok := m.get(r).Values[boardIDKey].(string); ok {
		return v
	}
	return ""
}

// SetBoardID binds a calendar board to this browser.
func (m *Manager) SetBoardID(w http.ResponseWriter, r *http.Request, id string) error {
	sess := m.get(r)
	sess.Values[boardIDKey] = id
	return sess.Save(r, w)
}

// ClearBoardID unbinds the browser's board.
func (m *Manager) ClearBoardID(w http.ResponseWriter, r *http.Request) error {
	sess := m.get(r)
	delete(sess.Values, boardIDKey)
	return sess.Save(r, w)
}

// AddFlash queues a message for the next page render.
func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, kind, msg string) error {
	sess := m.get(r)
	sess.AddFlash(Flash{Kind: kind, Message: msg}, flashKey)
	return sess.Save(r, w)
}

// Flashes drains queued messages.
func (m *Manager) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	sess := m.get(r)
	raw := sess.Flashes(flashKey)
	if len(raw) == 0 {
		return nil
	}
	out := make([]Flash, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(Flash); ok {
			out = append(out, f)
		}
	}
	if err := sess.Save(r, w); err != nil {
		m.logger.Warn("failed to save session after reading flashes", zap.Error(err))
	}
	return out
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// isDefaultKey checks if the session key appears to be a placeholder value.
func isDefaultKey(key string) bool {
	lower := strings.ToLower(key)
	patterns := []string{
		"dev-only",
		"change-me",
		"placeholder",
		"default",
		"example",
		"insecure",
		"test-key",
		"secret123",
		"password",
	}
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// classifyError categorizes a session/cookie error for logging.
func classifyError(err error) (errorType, string) {
	if err == nil {
		return errUnknown, "none"
	}

	msg := strings.ToLower(err.Error())

	if scErr, ok := err.(securecookie.Error); ok {
		if !scErr.IsDecode() {
			return errBackend, "backend"
		}

		switch {
		case strings.Contains(msg, "expired timestamp"):
			return errExpired, "expired"
		case strings.Contains(msg, "mac") || strings.Contains(msg, "hash"):
			return errTampered, "mac_invalid"
		case strings.Contains(msg, "decrypt"):
			return errCorrupted, "decrypt_failed"
		case strings.Contains(msg, "base64") || strings.Contains(msg, "decode"):
			return errCorrupted, "decode_failed"
		default:
			return errCorrupted, "decode_other"
		}
	}

	return errBackend, "unknown"
}
