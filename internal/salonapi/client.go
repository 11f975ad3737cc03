// Package salonapi is the typed client for the upstream salon REST API.
package salonapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/30-dung/salon-web/pkg/errors"
	"github.com/30-dung/salon-web/pkg/httpclient"
	"github.com/30-dung/salon-web/pkg/tracing"
)

const serviceName = "salon-api"

const maxResponseBytes = 4 << 20

// HTTPDoer is the interface for executing HTTP requests.
// Both httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// normalizer is implemented by payloads that validate themselves after
// decoding.
type normalizer interface {
	Normalize() error
}

type tokenKey struct{}

// WithToken returns a context whose upstream calls carry the bearer token.
func WithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the bearer token set by WithToken.
func TokenFromContext(ctx context.Context) string {
	tok, _ := ctx.Value(tokenKey{}).(string)
	return tok
}

// Client calls the salon API.
type Client struct {
	doer    HTTPDoer
	baseURL string
	logger  *slog.Logger
}

// NewClient creates a client rooted at baseURL, e.g. "http://backend/api".
func NewClient(doer HTTPDoer, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		doer:    doer,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// call performs one request. A nil out discards the response body.
func (c *Client) call(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("create %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := TokenFromContext(ctx); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	ctx, span := tracing.StartClientSpan(ctx, "salonapi", req, "salonapi."+op)
	req = req.WithContext(ctx)

	start := time.Now()
	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		tracing.EndClientSpan(span, 0, err)
		observe(op, "error", start)
		c.logger.WarnContext(ctx, "salon api call failed",
			slog.String("operation", op),
			slog.String("error", err.Error()),
		)
		return httpclient.TranslateError(err, serviceName)
	}
	defer resp.Body.Close()

	tracing.EndClientSpan(span, resp.StatusCode, nil)
	observe(op, statusClass(resp.StatusCode), start)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpclient.ParseResponseError(resp, serviceName)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return httpclient.TranslateError(err, serviceName)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return apperrors.Upstream(httpclient.GenericErrorMessage, fmt.Errorf("%s: empty response body", op))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.Upstream(httpclient.GenericErrorMessage, fmt.Errorf("decode %s response: %w", op, err))
	}
	return nil
}

// get is call for a GET with no body.
func (c *Client) get(ctx context.Context, op, path string, query url.Values, out any) error {
	return c.call(ctx, op, http.MethodGet, path, query, nil, out)
}

// decodeOne validates a single decoded payload.
func decodeOne[T any, P interface {
	*T
	normalizer
}](op string, v P) (*T, error) {
	if err := v.Normalize(); err != nil {
		return nil, apperrors.Upstream(httpclient.GenericErrorMessage, fmt.Errorf("%s: malformed payload: %w", op, err))
	}
	return (*T)(v), nil
}

// decodeList drops malformed rows from a list, logging each one, so one bad
// record does not blank a whole screen.
func decodeList[T any, P interface {
	*T
	normalizer
}](ctx context.Context, logger *slog.Logger, op string, items []T) []T {
	out := make([]T, 0, len(items))
	for i := range items {
		if err := P(&items[i]).Normalize(); err != nil {
			logger.WarnContext(ctx, "dropping malformed salon api record",
				slog.String("operation", op),
				slog.Int("index", i),
				slog.String("error", err.Error()),
			)
			continue
		}
		out = append(out, items[i])
	}
	return out
}

func statusClass(code int) string {
	return fmt.Sprintf("%dxx", code/100)
}

func idPath(format string, id int64) string {
	return fmt.Sprintf(format, id)
}
