package bootstrap

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/ambutrack-notify/internal/api/router"
	appconfig "github.com/wolfman30/ambutrack-notify/internal/config"
	"github.com/wolfman30/ambutrack-notify/internal/http/handlers"
	"github.com/wolfman30/ambutrack-notify/internal/messaging"
	"github.com/wolfman30/ambutrack-notify/internal/observability/metrics"
	"github.com/wolfman30/ambutrack-notify/pkg/logging"
)

// BuildDispatcher creates the provider chain with credentials resolved from
// the environment (and CREDENTIALS_FILE when set) on every send.
func BuildDispatcher(cfg *appconfig.Config, reg prometheus.Registerer, logger *logging.Logger) *messaging.Dispatcher {
	chain := messaging.NewDefaultChain(cfg.CredentialSource(), messaging.ChainOptions{
		HTTPClient:       &http.Client{Timeout: cfg.ProviderHTTPTimeout},
		MetaGraphBaseURL: cfg.MetaGraphBaseURL,
		MetaAPIVersion:   cfg.MetaGraphAPIVersion,
		TwilioBaseURL:    cfg.TwilioAPIBaseURL,
	}, logger)
	return messaging.NewDispatcher(chain, metrics.NewDeliveryMetrics(reg), logger)
}

// BuildHTTPHandler wires the dispatcher, handlers and router. The returned
// handler serves /api/notify, /health and /metrics.
func BuildHTTPHandler(cfg *appconfig.Config, logger *logging.Logger) http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	dispatcher := BuildDispatcher(cfg, reg, logger)
	configured := dispatcher.ConfiguredProviders()
	if len(configured) == 0 {
		logger.Warn("no messaging providers configured; notifications will fail until credentials are set")
	} else {
		logger.Info("messaging providers configured", "providers", configured)
	}

	return router.New(&router.Config{
		Logger:             logger,
		NotifyHandler:      handlers.NewNotifyHandler(dispatcher, cfg.DefaultMessage, logger),
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})
}
