package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/nguyentantai21042004/notes-flow/internal/resilience"
	"google.golang.org/genai"
)

// statusError is a non-2xx answer from an HTTP model server.
type statusError struct {
	StatusCode int
	Body       string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// classifyHTTP maps local-server failures to policy kinds.
func classifyHTTP(err error) resilience.Kind {
	if errors.Is(err, context.Canceled) {
		return resilience.KindUnknown
	}

	var se *statusError
	if errors.As(err, &se) {
		switch {
		case se.StatusCode == http.StatusNotFound:
			return resilience.KindModelMissing
		case se.StatusCode == http.StatusTooManyRequests:
			return resilience.KindRateLimited
		case se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden:
			return resilience.KindUnauthorized
		case se.StatusCode >= 500:
			return resilience.KindTransient
		default:
			return resilience.KindInvalid
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.KindTransient
	}
	return resilience.KindUnknown
}

// classifyGemini maps cloud API failures to policy kinds. Typed API errors
// are classified by status code; anything else falls back to its text.
func classifyGemini(err error) resilience.Kind {
	if errors.Is(err, context.Canceled) {
		return resilience.KindUnknown
	}

	if apiErr, ok := asAPIError(err); ok {
		return classifyAPIError(apiErr)
	}

	msg := err.Error()
	switch {
	case containsAny(msg, "RESOURCE_EXHAUSTED"):
		return resilience.KindRateLimited
	case containsAny(msg, "NOT_FOUND"):
		return resilience.KindModelMissing
	case containsAny(msg, "PERMISSION_DENIED", "UNAUTHENTICATED", "API_KEY_INVALID"):
		return resilience.KindUnauthorized
	case containsAny(msg, "UNAVAILABLE", "INTERNAL", "DEADLINE_EXCEEDED"):
		return resilience.KindTransient
	case containsAny(msg, "INVALID_ARGUMENT"):
		return resilience.KindInvalid
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.KindTransient
	}
	return resilience.KindUnknown
}

func asAPIError(err error) (genai.APIError, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return *apiErrPtr, true
	}
	return genai.APIError{}, false
}

func classifyAPIError(e genai.APIError) resilience.Kind {
	switch {
	case e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden || keyRejected(e):
		return resilience.KindUnauthorized
	case e.Code == http.StatusTooManyRequests:
		return resilience.KindRateLimited
	case e.Code == http.StatusNotFound:
		return resilience.KindModelMissing
	case e.Code >= 500:
		return resilience.KindTransient
	case e.Code >= 400:
		return resilience.KindInvalid
	}
	return resilience.KindUnknown
}

// keyRejected spots the 400 INVALID_ARGUMENT the API returns for a bad key,
// which carries an ErrorInfo reason of API_KEY_INVALID.
func keyRejected(e genai.APIError) bool {
	for _, d := range e.Details {
		if reason, _ := d["reason"].(string); reason == "API_KEY_INVALID" {
			return true
		}
	}
	return false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
