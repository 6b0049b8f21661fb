package backend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/rpggio/sitetrack/internal/repository"
)

// GenericErrorMessage is shown when the backend gives no usable message.
const GenericErrorMessage = "The request could not be completed. Please try again."

// APIError is a non-2xx backend response.
type APIError struct {
	Status  int                 `json:"status"`
	Method  string              `json:"method"`
	Path    string              `json:"path"`
	Message string              `json:"message,omitempty"`
	Fields  map[string][]string `json:"fields,omitempty"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("backend %s %s: %d %s", e.Method, e.Path, e.Status, msg)
}

// Is maps status codes onto the repository sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case repository.ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case repository.ErrNotFound:
		return e.Status == http.StatusNotFound
	case repository.ErrInvalidInput:
		return e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity
	case repository.ErrUnavailable:
		return e.Status >= http.StatusInternalServerError
	}
	return false
}

// UserMessage returns the backend's field messages verbatim, or a generic
// fallback when none were supplied.
func (e *APIError) UserMessage() string {
	if len(e.Fields) > 0 {
		names := make([]string, 0, len(e.Fields))
		for name := range e.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(e.Fields[name], " ")))
		}
		return strings.Join(parts, "; ")
	}
	if e.Message != "" {
		return e.Message
	}
	return GenericErrorMessage
}

// parseAPIError decodes the backend's error body. Django REST responses carry
// either {"detail": "..."} or a map of field name to message list.
func parseAPIError(status int, method, path string, body []byte) *APIError {
	apiErr := &APIError{Status: status, Method: method, Path: path}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return apiErr
	}
	for key, raw := range obj {
		msgs := decodeMessages(raw)
		if len(msgs) == 0 {
			continue
		}
		switch key {
		case "detail", "error", "message", "non_field_errors":
			if apiErr.Message == "" {
				apiErr.Message = strings.Join(msgs, " ")
			}
		default:
			if apiErr.Fields == nil {
				apiErr.Fields = make(map[string][]string)
			}
			apiErr.Fields[key] = msgs
		}
	}
	return apiErr
}

func decodeMessages(raw json.RawMessage) []string {
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if single == "" {
			return nil
		}
		return []string{single}
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	return nil
}
