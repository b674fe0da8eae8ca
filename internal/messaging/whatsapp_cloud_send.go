package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"

	"github.com/wolfman30/ambutrack-notify/pkg/logging"
)

var whatsAppCloudTracer = otel.Tracer("ambutrack.internal.messaging.whatsapp_cloud_send")

// WhatsAppCloudSender posts text messages through Meta's WhatsApp Cloud API.
type WhatsAppCloudSender struct {
	creds      CredentialSource
	baseURL    string
	apiVersion string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewWhatsAppCloudSender builds a sender for the Graph API. Empty baseURL and
// apiVersion fall back to the public endpoint and v20.0.
func NewWhatsAppCloudSender(creds CredentialSource, baseURL, apiVersion string, client *http.Client, logger *logging.Logger) *WhatsAppCloudSender {
	if logger == nil {
		logger = logging.Default()
	}
	if client == nil {
		client = defaultHTTPClient()
	}
	if baseURL == "" {
		baseURL = "https://graph.facebook.com"
	}
	if apiVersion == "" {
		apiVersion = "v20.0"
	}
	return &WhatsAppCloudSender{
		creds:      creds,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiVersion: apiVersion,
		httpClient: client,
		logger:     logger,
	}
}

var _ Provider = (*WhatsAppCloudSender)(nil)

func (s *WhatsAppCloudSender) Name() Channel { return ChannelWhatsAppCloud }

func (s *WhatsAppCloudSender) Configured() bool {
	_, ok := lookupAll(s.creds, KeyMetaToken, KeyMetaPhoneID)
	return ok
}

type whatsAppTextMessage struct {
	MessagingProduct string           `json:"messaging_product"`
	To               string           `json:"to"`
	Type             string           `json:"type"`
	Text             whatsAppTextBody `json:"text"`
}

type whatsAppTextBody struct {
	Body       string `json:"body"`
	PreviewURL bool   `json:"preview_url"`
}

type whatsAppSendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// Send posts a single text message. Graph wants the recipient as bare digits.
func (s *WhatsAppCloudSender) Send(ctx context.Context, text, phone string) (Outcome, error) {
	values, ok := lookupAll(s.creds, KeyMetaToken, KeyMetaPhoneID)
	if !ok {
		return Outcome{}, &TransportError{Provider: ChannelWhatsAppCloud, Err: ErrNotConfigured}
	}
	token, phoneID := values[0], values[1]

	payload, err := json.Marshal(whatsAppTextMessage{
		MessagingProduct: "whatsapp",
		To:               stripPlus(phone),
		Type:             "text",
		Text:             whatsAppTextBody{Body: text, PreviewURL: false},
	})
	if err != nil {
		return Outcome{}, &TransportError{Provider: ChannelWhatsAppCloud, Err: fmt.Errorf("marshal payload: %w", err)}
	}

	endpoint := fmt.Sprintf("%s/%s/%s/messages", s.baseURL, s.apiVersion, phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Outcome{}, &TransportError{Provider: ChannelWhatsAppCloud, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := roundTrip(ctx, s.httpClient, ChannelWhatsAppCloud, whatsAppCloudTracer, req)
	if err != nil {
		return Outcome{}, err
	}

	if !resp.ok() {
		detail := resp.body
		if inner, ok := detail.Field("error"); ok {
			detail = inner
		}
		if detail.IsEmpty() {
			detail = TextBody("meta_failed")
		}
		return failed(ChannelWhatsAppCloud, detail), nil
	}

	var parsed whatsAppSendResponse
	_ = resp.body.Decode(&parsed)
	out := Outcome{OK: true, Via: ChannelWhatsAppCloud}
	if len(parsed.Messages) > 0 {
		out.ID = parsed.Messages[0].ID
	}
	s.logger.Info("whatsapp cloud message sent", "to", phone, "message_id", out.ID)
	return out, nil
}
