package errors

import "fmt"

// Kind labels a transport-level failure class. HTTP error statuses are not
// errors at this layer; only failures to complete the exchange get a Kind.
type Kind string

const (
	KindTimeout    Kind = "timeout"
	KindDNS        Kind = "dns"
	KindConnReset  Kind = "conn_reset"
	KindBrokenPipe Kind = "conn_broken_pipe"
	KindCanceled   Kind = "canceled"
	KindDeadline   Kind = "deadline"
	KindTLS        Kind = "tls"
	KindRefused    Kind = "conn_refused"
	KindOther      Kind = "other"
)

// RequestError wraps a transport failure for one endpoint call.
type RequestError struct {
	Kind     Kind
	Method   string
	Endpoint string
	Err      error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s: %s: %v", e.Method, e.Endpoint, e.Kind, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// NewRequestError classifies err and attaches the call context.
func NewRequestError(method, endpoint string, err error) *RequestError {
	return &RequestError{
		Kind:     ClassifyNetworkError(err),
		Method:   method,
		Endpoint: endpoint,
		Err:      err,
	}
}
