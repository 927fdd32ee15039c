package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/leofalp/promptfn/providers/observability"
)

// StatusError is returned by DoPostSync when the server answers with a
// non-2xx status. Body is truncated for readability.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("non-2xx status %d: %s", e.StatusCode, e.Body)
}

// IsTransient reports whether err is a status the server expects clients to
// retry: 408, 429, 500, 502, 503, 504 or 529.
func IsTransient(err error) bool {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	switch statusErr.StatusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout, 529:
		return true
	}
	return false
}

// HeaderOption is an extra request header.
type HeaderOption struct {
	Key   string
	Value string
}

// DoPostSync POSTs body as JSON to url and decodes a 2xx JSON answer into
// Out. A non-empty apiKey is sent as a bearer token. When ctx carries a span,
// request and response events are added to it.
//
// Context errors surface unchanged (wrapped). Non-2xx answers yield a
// *StatusError. A failure to close the body is logged, never returned.
func DoPostSync[Out any](ctx context.Context, client *http.Client, url, apiKey string, body any, headers ...HeaderOption) (*http.Response, *Out, error) {
	span := observability.SpanFromContext(ctx)

	if client == nil {
		client = http.DefaultClient
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("error marshaling body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	for _, h := range headers {
		req.Header.Set(h.Key, h.Value)
	}

	if span != nil {
		span.AddEvent("http.request",
			observability.String(observability.AttrHTTPMethod, http.MethodPost),
			observability.String(observability.AttrHTTPURL, url),
			observability.Int(observability.AttrHTTPRequestBodySize, len(payload)),
		)
	}

	start := time.Now()
	res, err := client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		if span != nil {
			span.AddEvent("http.error", observability.Error(err), observability.Duration(observability.AttrDuration, elapsed))
		}
		return nil, nil, fmt.Errorf("error sending request: %w", err)
	}
	defer func() {
		if closeErr := res.Body.Close(); closeErr != nil {
			slog.Warn("failed to close response body", "error", closeErr.Error(), "url", url)
		}
	}()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return res, nil, fmt.Errorf("error reading response body: %w", err)
	}

	if span != nil {
		span.AddEvent("http.response",
			observability.Int(observability.AttrHTTPStatusCode, res.StatusCode),
			observability.Int(observability.AttrHTTPResponseBodySize, len(raw)),
			observability.Duration(observability.AttrDuration, elapsed),
		)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return res, nil, &StatusError{StatusCode: res.StatusCode, Body: TruncateStringDefault(string(raw))}
	}

	var out Out
	if err := json.Unmarshal(raw, &out); err != nil {
		return res, nil, fmt.Errorf("error unmarshaling response body (status %d): %w\nresponse preview: %s",
			res.StatusCode, err, TruncateStringDefault(string(raw)))
	}
	return res, &out, nil
}
