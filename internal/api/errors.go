package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-resty/resty/v2"
)

var (
	// ErrNotAuthenticated is returned by protected calls made without a session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrSessionExpired is returned when the server rejected the credential.
	// The session has already been logged out when it is returned.
	ErrSessionExpired = errors.New("session expired, please log in again")
	// ErrForbidden is returned for staff-only resources.
	ErrForbidden = errors.New("access denied")
)

// APIError is a non-2xx response that is not an authentication failure.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	if len(e.Message) > 0 {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}

func newAPIError(res *resty.Response, message string) *APIError {
	return &APIError{
		StatusCode: res.StatusCode(),
		Message:    message,
		Body:       res.Body(),
	}
}

// errorField returns body[field] when the body is a JSON object holding
// a string under that key.
func errorField(body []byte, field string) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	value, ok := payload[field].(string)
	if !ok {
		return ""
	}
	return value
}

// fieldErrors flattens a validation error body such as
// {"username": ["already taken"], "email": ["invalid"]} into one line.
// Keys are visited in sorted order.
func fieldErrors(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	var messages []string
	for _, key := range keys {
		messages = appendMessages(messages, payload[key])
	}
	return strings.Join(messages, " ")
}

func appendMessages(messages []string, value any) []string {
	switch v := value.(type) {
	case string:
		if len(v) > 0 {
			messages = append(messages, v)
		}
	case []any:
		for _, item := range v {
			messages = appendMessages(messages, item)
		}
	case nil:
	default:
		messages = append(messages, fmt.Sprint(v))
	}
	return messages
}
