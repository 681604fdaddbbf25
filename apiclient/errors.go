package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// StatusNoResponse is the status carried by transport errors, where no HTTP
// response was received.
const StatusNoResponse = 0

const transportMessage = "network error or server unavailable"

// Kind discriminates the failure classes a backend call can end in.
type Kind int

const (
	// KindHTTP is any non-success response not covered by another kind
	KindHTTP Kind = iota
	// KindValidation is a 400 carrying structured field errors
	KindValidation
	// KindAuthentication means the credential could not be recovered and the
	// operator has to sign in again
	KindAuthentication
	// KindTransport means no response was received
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindHTTP:
		return "http"
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindTransport:
		return "transport"
	}
	return "unknown"
}

// Sentinels matched by errors.Is against an *APIError of the same kind.
var (
	ErrHTTP                   = errors.New("backend request failed")
	ErrValidation             = errors.New("backend rejected the request")
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrTransport              = errors.New(transportMessage)
)

// APIError is the single error shape returned by every backend call.
type APIError struct {
	Kind    Kind
	Status  int
	Message string
	// FieldErrors maps a request field to the backend's messages for it.
	FieldErrors map[string][]string
	// Payload is the decoded response body: a map for JSON, a string otherwise.
	Payload any
	// Err is the underlying cause, if any.
	Err error
}

func (e *APIError) Error() string {
	if e.Status == StatusNoResponse {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s %d: %s", e.Kind, e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrHTTP:
		return e.Kind == KindHTTP || e.Kind == KindValidation
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrAuthenticationRequired:
		return e.Kind == KindAuthentication
	case ErrTransport:
		return e.Kind == KindTransport
	}
	return false
}

// FirstFieldErrors returns the first message for each field, which is what a
// form shows inline.
func (e *APIError) FirstFieldErrors() map[string]string {
	out := make(map[string]string, len(e.FieldErrors))
	for field, msgs := range e.FieldErrors {
		if len(msgs) > 0 {
			out[field] = msgs[0]
		}
	}
	return out
}

// AsAPIError returns the *APIError in err's chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsUnauthorized reports whether err is a 401 from the backend or a failed
// credential recovery.
func IsUnauthorized(err error) bool {
	apiErr, ok := AsAPIError(err)
	if !ok {
		return false
	}
	return apiErr.Kind == KindAuthentication || apiErr.Status == 401
}

func transportError(err error) *APIError {
	return &APIError{
		Kind:    KindTransport,
		Status:  StatusNoResponse,
		Message: transportMessage,
		Err:     err,
	}
}

func requestError(err error) *APIError {
	return &APIError{
		Kind:    KindHTTP,
		Status:  StatusNoResponse,
		Message: "request could not be built",
		Err:     err,
	}
}

func authenticationError(cause error) *APIError {
	return &APIError{
		Kind:    KindAuthentication,
		Status:  401,
		Message: "Authentication failed. Please log in again.",
		Payload: map[string]any{"requiresLogin": true},
		Err:     cause,
	}
}

// responseError builds the error for a non-success response. The message
// comes from the body's "message", then "title", else "Error {status}".
func responseError(status int, payload any) *APIError {
	e := &APIError{
		Kind:    KindHTTP,
		Status:  status,
		Message: fmt.Sprintf("Error %d", status),
		Payload: payload,
	}

	body, ok := payload.(map[string]any)
	if !ok {
		return e
	}
	if msg, ok := body["message"].(string); ok && msg != "" {
		e.Message = msg
	} else if title, ok := body["title"].(string); ok && title != "" {
		e.Message = title
	}
	if status == 400 {
		if fields := fieldErrors(body["errors"]); len(fields) > 0 {
			e.Kind = KindValidation
			e.FieldErrors = fields
		}
	}
	return e
}

// fieldErrors accepts {"field": ["msg", ...]} or {"field": "msg"}.
func fieldErrors(raw any) map[string][]string {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string][]string, len(obj))
	for field, v := range obj {
		switch msgs := v.(type) {
		case string:
			out[field] = []string{msgs}
		case []any:
			for _, m := range msgs {
				if s, ok := m.(string); ok {
					out[field] = append(out[field], s)
				}
			}
		}
	}
	return out
}

// FieldErrorSummary renders field errors in a stable order for logs.
func (e *APIError) FieldErrorSummary() string {
	if len(e.FieldErrors) == 0 {
		return ""
	}
	fields := make([]string, 0, len(e.FieldErrors))
	for f := range e.FieldErrors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(e.FieldErrors[f], "; "))
	}
	return strings.Join(parts, ", ")
}

// MarshalJSON renders the error the way the dashboard API returns it.
func (e *APIError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Message     string              `json:"message"`
		Status      int                 `json:"status"`
		Kind        string              `json:"kind"`
		FieldErrors map[string][]string `json:"fieldErrors,omitempty"`
	}{e.Message, e.Status, e.Kind.String(), e.FieldErrors})
}
