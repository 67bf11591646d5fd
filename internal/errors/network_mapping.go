package errors

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

// ClassifyNetworkError maps a transport error to a stable Kind label.
func ClassifyNetworkError(err error) Kind {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindDeadline
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		if ue.Timeout() {
			return KindTimeout
		}
		if ue.Err != nil {
			if kind, ok := classifyMessage(ue.Err.Error()); ok {
				return kind
			}
		}
	}
	if kind, ok := classifyMessage(err.Error()); ok {
		return kind
	}
	return KindOther
}

func classifyMessage(s string) (Kind, bool) {
	switch {
	case strings.Contains(s, "no such host"), strings.Contains(s, "name resolution"):
		return KindDNS, true
	case strings.Contains(s, "connection refused"):
		return KindRefused, true
	case strings.Contains(s, "connection reset"):
		return KindConnReset, true
	case strings.Contains(s, "broken pipe"):
		return KindBrokenPipe, true
	case strings.Contains(s, "certificate"), strings.Contains(s, "tls"):
		return KindTLS, true
	case strings.Contains(s, "deadline exceeded"):
		return KindDeadline, true
	case strings.Contains(s, "context canceled"):
		return KindCanceled, true
	case strings.Contains(s, "i/o timeout"), strings.Contains(s, "timeout"):
		return KindTimeout, true
	}
	return "", false
}
