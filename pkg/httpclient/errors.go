package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	apperrors "github.com/30-dung/salon-web/pkg/errors"
)

// GenericErrorMessage is shown when an upstream error body carries no usable
// message.
const GenericErrorMessage = "Something went wrong. Please try again later."

// maxPlainMessage bounds how much of an unstructured body is surfaced.
const maxPlainMessage = 200

// upstreamErrorBody covers the error shapes returned by the salon API:
// {"message": "..."}, {"error": "..."} and {"error": {"code": "...", "message": "..."}}.
type upstreamErrorBody struct {
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Error   json.RawMessage `json:"error"`
}

type nestedError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into an AppError carrying a user-facing message. The message is taken from
// the body when present, otherwise GenericErrorMessage is used.
//
// The caller should only invoke this when resp.StatusCode is not 2xx. The
// response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return mapDownstreamError(resp.StatusCode, "", "", serviceName,
			fmt.Errorf("%s returned status %d (failed to read body: %w)", serviceName, resp.StatusCode, err))
	}

	code, message := ExtractMessage(bodyBytes)
	cause := fmt.Errorf("%s returned status %d: %s", serviceName, resp.StatusCode, truncate(string(bodyBytes)))
	return mapDownstreamError(resp.StatusCode, code, message, serviceName, cause)
}

// ExtractMessage pulls an error code and message out of an upstream error body.
// Both are empty when nothing usable is found.
func ExtractMessage(body []byte) (code, message string) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "", ""
	}

	var parsed upstreamErrorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		// Plain-text bodies are surfaced only when they look like a sentence.
		if strings.HasPrefix(trimmed, "<") {
			return "", ""
		}
		return "", truncate(trimmed)
	}

	code = parsed.Code
	message = strings.TrimSpace(parsed.Message)

	if len(parsed.Error) > 0 {
		var nested nestedError
		var flat string
		switch {
		case json.Unmarshal(parsed.Error, &nested) == nil:
			if nested.Code != "" {
				code = nested.Code
			}
			if message == "" {
				message = strings.TrimSpace(nested.Message)
			}
		case json.Unmarshal(parsed.Error, &flat) == nil:
			if message == "" {
				message = strings.TrimSpace(flat)
			}
		}
	}

	return code, message
}

// mapDownstreamError translates an upstream HTTP status into an AppError that
// preserves the error semantics.
func mapDownstreamError(status int, code, message, serviceName string, cause error) error {
	if message == "" {
		message = GenericErrorMessage
	}

	var appErr *apperrors.AppError
	switch {
	case status == http.StatusNotFound:
		appErr = apperrors.NotFound(serviceName, "")
		appErr.Message = message
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		appErr = apperrors.InvalidInput(message)
	case status == http.StatusConflict:
		appErr = apperrors.Conflict(message)
	case status == http.StatusUnauthorized:
		appErr = apperrors.Unauthorized(message)
	case status == http.StatusForbidden:
		appErr = apperrors.Forbidden(message)
	case status == http.StatusServiceUnavailable:
		appErr = apperrors.ServiceUnavailable(message)
	case status >= 500:
		appErr = apperrors.Upstream(message, apperrors.ErrUpstream)
	default:
		appErr = &apperrors.AppError{
			Code:    "UPSTREAM_ERROR",
			Message: message,
			Status:  status,
			Err:     apperrors.ErrUpstream,
		}
	}

	if code != "" {
		appErr.Code = code
	}
	appErr.Err = fmt.Errorf("%w: %w", appErr.Err, cause)
	return appErr
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}

func truncate(s string) string {
	if len(s) <= maxPlainMessage {
		return s
	}
	cut := maxPlainMessage
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// unreachableMessage is shown when the upstream cannot be reached at all.
const unreachableMessage = "The salon service is unreachable. Please try again later."

// TranslateError converts a transport-level error from Do into an AppError.
// Context cancellation is returned unchanged so callers can tell an abandoned
// request from a failed one.
func TranslateError(err error, serviceName string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		code, message := ExtractMessage(statusErr.Body)
		return mapDownstreamError(statusErr.StatusCode, code, message, serviceName, err)
	}

	if errors.Is(err, ErrCircuitOpen) || errors.Is(err, ErrTooManyRequests) {
		appErr := apperrors.ServiceUnavailable(unreachableMessage)
		appErr.Err = fmt.Errorf("%w: %s: %w", apperrors.ErrServiceUnavail, serviceName, err)
		return appErr
	}

	return apperrors.Upstream(unreachableMessage, fmt.Errorf("%w: %s: %w", apperrors.ErrUpstream, serviceName, err))
}
