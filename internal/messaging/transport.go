package messaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrNotConfigured is returned by Send when credentials disappeared between
// the Configured check and the request.
var ErrNotConfigured = errors.New("messaging: provider credentials missing")

const maxResponseBytes = 64 << 10

func defaultHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 10 * time.Second,
	}
}

// providerResponse is a provider answer that could be read in full.
type providerResponse struct {
	status int
	body   Body
}

func (r providerResponse) ok() bool {
	return r.status >= 200 && r.status < 300
}

// roundTrip executes req and reads the response body. Any failure before the
// body is fully read is reported as a *TransportError.
func roundTrip(ctx context.Context, client *http.Client, provider Channel, tracer trace.Tracer, req *http.Request) (providerResponse, error) {
	ctx, span := tracer.Start(ctx, "messaging."+string(provider)+".send", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("ambutrack.provider", string(provider)),
		attribute.String("http.url", req.URL.Redacted()),
	)

	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		span.RecordError(err)
		return providerResponse{}, &TransportError{Provider: provider, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		err = fmt.Errorf("read response: %w", err)
		span.RecordError(err)
		return providerResponse{}, &TransportError{Provider: provider, Err: err}
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	return providerResponse{status: resp.StatusCode, body: ParseBody(raw)}, nil
}
