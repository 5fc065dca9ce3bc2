// internal/app/system/frappe/errors.go
package frappe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// RemoteError is a failure reported by the ERP server.
type RemoteError struct {
	Method    string
	Status    int
	ExcType   string
	Exception string
	Messages  []string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("frappe %s: %s", e.Method, e.Reason())
}

// Reason is the human-readable cause, preferring the messages the server
// meant for the user over the raw exception text.
func (e *RemoteError) Reason() string {
	if len(e.Messages) > 0 {
		return strings.Join(e.Messages, "; ")
	}
	if e.Exception != "" {
		// "frappe.exceptions.ValidationError: reason" -> "reason"
		if i := strings.Index(e.Exception, ": "); i > 0 && !strings.Contains(e.Exception[:i], " ") {
			return e.Exception[i+2:]
		}
		return e.Exception
	}
	if e.ExcType != "" {
		return e.ExcType
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}

// Message extracts the reason to show a user for any gateway error.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Reason()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "the scheduling server did not respond in time"
	}
	if errors.Is(err, context.Canceled) {
		return "request cancelled"
	}
	return err.Error()
}

// IsNotFound reports whether the ERP said the requested document does not exist.
func IsNotFound(err error) bool {
	var re *RemoteError
	if !errors.As(err, &re) {
		return false
	}
	return re.Status == 404 || re.ExcType == "DoesNotExistError"
}

// errorBody is the JSON shape of a failed ERP call.
type errorBody struct {
	ExcType        string `json:"exc_type"`
	Exception      string `json:"exception"`
	ServerMessages string `json:"_server_messages"`
	Message        string `json:"message"`
}

func parseRemoteError(method string, status int, body []byte) *RemoteError {
	re := &RemoteError{Method: method, Status: status}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return re
	}
	re.ExcType = eb.ExcType
	re.Exception = strings.TrimSpace(eb.Exception)
	re.Messages = serverMessages(eb.ServerMessages)
	if len(re.Messages) == 0 && eb.Message != "" {
		re.Messages = []string{eb.Message}
	}
	return re
}

// serverMessages decodes _server_messages: a JSON string holding a JSON
// array whose items are themselves JSON-encoded objects with a "message".
func serverMessages(raw string) []string {
	if raw == "" {
		return nil
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	var out []string
	for _, item := range items {
		var m struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal([]byte(item), &m); err == nil && m.Message != "" {
			out = append(out, m.Message)
			continue
		}
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
