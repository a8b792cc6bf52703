package atlassian

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrAuthentication marks 401/403 responses so callers can detect credential
// problems with errors.Is.
var ErrAuthentication = errors.New("atlassian: authentication failed")

// Error represents an Atlassian REST error response.
type Error struct {
	StatusCode    int               `json:"-"`
	Message       string            `json:"message"`
	ErrorMessages []string          `json:"errorMessages"`
	Errors        map[string]string `json:"errors"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	if e.Message != "" {
		return fmt.Sprintf("atlassian: %d %s", e.StatusCode, e.Message)
	}

	if len(e.ErrorMessages) > 0 {
		return fmt.Sprintf("atlassian: %d %s", e.StatusCode, e.ErrorMessages[0])
	}

	if len(e.Errors) > 0 {
		for field, msg := range e.Errors {
			return fmt.Sprintf("atlassian: %d %s: %s", e.StatusCode, field, msg)
		}
	}

	return fmt.Sprintf("atlassian: %d", e.StatusCode)
}

func (e *Error) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden {
		return ErrAuthentication
	}
	return nil
}

// NewError builds an Error from a status code and raw response body.
func NewError(statusCode int, body []byte) *Error {
	errRes := &Error{StatusCode: statusCode}
	if len(body) > 0 {
		_ = json.Unmarshal(body, errRes)
	}

	if errRes.Message == "" && len(errRes.ErrorMessages) == 0 && len(errRes.Errors) == 0 {
		errRes.Message = truncate(string(body), 512)
	}

	return errRes
}

func parseError(res *http.Response) error {
	data, _ := io.ReadAll(res.Body)
	return NewError(res.StatusCode, data)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
