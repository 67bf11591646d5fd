package errors

import (
	"fmt"
	"net/http"
)

// ReasonForStatus returns the diagnostic reason logged before a reactive
// rotation. Requests that require authentication can come back 404 instead of
// 403 in some places, to avoid leaking the existence of private repositories.
func ReasonForStatus(code int) string {
	switch code {
	case http.StatusUnauthorized:
		return "bad credentials (401)"
	case http.StatusForbidden:
		return "exceeded rate limit or forbidden access (403)"
	case http.StatusNotFound:
		return "resource not found, possibly auth-gated (404)"
	default:
		return fmt.Sprintf("status code %d", code)
	}
}

// StatusClass collapses a status code into the label used by metrics.
func StatusClass(code int) string {
	switch {
	case code <= 0:
		return "error"
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
