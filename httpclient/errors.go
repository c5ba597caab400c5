package httpclient

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// APIError is the single failure shape for non-2xx responses. Payload holds
// the parsed JSON body, the raw text when the body was not JSON, or nil.
type APIError struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
	Payload any    `json:"payload"`
}

func (e *APIError) Error() string {
	return e.Message
}

// AsAPIError unwraps err into an *APIError when it carries one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Status == status
}

func newAPIError(status int, body Body) *APIError {
	msg := ""
	if body.IsJSON() {
		msg = messageField(body.Raw())
	}
	if msg == "" {
		msg = fmt.Sprintf("Request failed with status %d: %s", status, http.StatusText(status))
	}
	return &APIError{
		Message: msg,
		Status:  status,
		Payload: body.Value(),
	}
}

func messageField(raw []byte) string {
	res := gjson.GetBytes(raw, "message")
	switch res.Type {
	case gjson.String:
		return res.Str
	case gjson.Number:
		return res.Raw
	default:
		return ""
	}
}
