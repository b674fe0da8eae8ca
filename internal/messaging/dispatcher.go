package messaging

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/ambutrack-notify/internal/observability/metrics"
	"github.com/wolfman30/ambutrack-notify/pkg/logging"
)

var dispatchTracer = otel.Tracer("ambutrack.internal.messaging.dispatcher")

// NoCredentialsMessage is reported when no provider in the chain was configured.
const NoCredentialsMessage = "no credentials configured"

// Dispatcher walks an ordered provider chain and returns the first defined
// outcome. A provider that is not configured is skipped. A transport error
// moves on to the next provider, except on the last provider of the chain
// where it becomes the outcome.
type Dispatcher struct {
	providers []Provider
	metrics   *metrics.DeliveryMetrics
	logger    *logging.Logger
}

// NewDispatcher builds a dispatcher over providers, tried in slice order.
func NewDispatcher(providers []Provider, m *metrics.DeliveryMetrics, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{
		providers: providers,
		metrics:   m,
		logger:    logger,
	}
}

// ChainOptions configures the default provider chain.
type ChainOptions struct {
	HTTPClient       *http.Client
	MetaGraphBaseURL string
	MetaAPIVersion   string
	TwilioBaseURL    string
}

// NewDefaultChain returns the production order: WhatsApp Cloud, Twilio
// WhatsApp, then plain Twilio SMS.
func NewDefaultChain(creds CredentialSource, opts ChainOptions, logger *logging.Logger) []Provider {
	return []Provider{
		NewWhatsAppCloudSender(creds, opts.MetaGraphBaseURL, opts.MetaAPIVersion, opts.HTTPClient, logger),
		NewTwilioWhatsAppSender(creds, opts.TwilioBaseURL, opts.HTTPClient, logger),
		NewTwilioSMSSender(creds, opts.TwilioBaseURL, opts.HTTPClient, logger),
	}
}

// ConfiguredProviders lists the providers whose credentials are currently complete.
func (d *Dispatcher) ConfiguredProviders() []Channel {
	var out []Channel
	for _, p := range d.providers {
		if p.Configured() {
			out = append(out, p.Name())
		}
	}
	return out
}

// Dispatch delivers text to phone, which must already be normalized.
func (d *Dispatcher) Dispatch(ctx context.Context, text, phone string) Outcome {
	ctx, span := dispatchTracer.Start(ctx, "messaging.dispatch")
	defer span.End()

	out := d.dispatch(ctx, text, phone)

	span.SetAttributes(
		attribute.String("ambutrack.via", string(out.Via)),
		attribute.Bool("ambutrack.ok", out.OK),
	)
	d.metrics.ObserveOutcome(string(out.Via), out.OK)
	return out
}

func (d *Dispatcher) dispatch(ctx context.Context, text, phone string) Outcome {
	last := len(d.providers) - 1
	for i, p := range d.providers {
		name := p.Name()
		if !p.Configured() {
			d.metrics.ObserveAttempt(string(name), metrics.AttemptSkipped)
			continue
		}

		start := time.Now()
		out, err := p.Send(ctx, text, phone)
		d.metrics.ObserveLatency(string(name), time.Since(start).Seconds())

		if err != nil {
			d.metrics.ObserveAttempt(string(name), metrics.AttemptTransportError)
			if i == last {
				d.logger.Error("final provider unreachable",
					"provider", name,
					"error", err,
					"to", phone,
				)
				return failed(name, TextBody(transportMessage(err)))
			}
			d.logger.Warn("provider unreachable; attempting fallback",
				"provider", name,
				"error", err,
				"to", phone,
			)
			continue
		}

		if out.OK {
			d.metrics.ObserveAttempt(string(name), metrics.AttemptSent)
		} else {
			d.metrics.ObserveAttempt(string(name), metrics.AttemptRejected)
			d.logger.Warn("provider rejected message",
				"provider", name,
				"to", phone,
				"error", out.Error,
			)
		}
		return out
	}
	return failed(ChannelNone, TextBody(NoCredentialsMessage))
}

// transportMessage strips the provider prefix added by TransportError.
func transportMessage(err error) string {
	var te *TransportError
	if errors.As(err, &te) && te.Err != nil {
		return te.Err.Error()
	}
	return err.Error()
}
