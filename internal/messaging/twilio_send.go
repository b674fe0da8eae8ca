package messaging

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"

	"github.com/wolfman30/ambutrack-notify/pkg/logging"
)

var twilioSendTracer = otel.Tracer("ambutrack.internal.messaging.twilio_send")

// TwilioSender posts messages using Twilio's Messages REST API. The same
// account serves the WhatsApp channel and plain SMS; they differ only in the
// sender key, the recipient prefix and the channel tag.
type TwilioSender struct {
	channel     Channel
	fromKey     string
	toPrefix    string
	failureText string

	creds      CredentialSource
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewTwilioWhatsAppSender sends through the account's WhatsApp sender
// (TWILIO_WHATSAPP_FROM, e.g. "whatsapp:+14155238886").
func NewTwilioWhatsAppSender(creds CredentialSource, baseURL string, client *http.Client, logger *logging.Logger) *TwilioSender {
	return newTwilioSender(ChannelTwilioWhatsApp, KeyTwilioWhatsAppFrom, "whatsapp:", "twilio_wa_failed", creds, baseURL, client, logger)
}

// NewTwilioSMSSender sends plain SMS from TWILIO_SMS_FROM.
func NewTwilioSMSSender(creds CredentialSource, baseURL string, client *http.Client, logger *logging.Logger) *TwilioSender {
	return newTwilioSender(ChannelTwilioSMS, KeyTwilioSMSFrom, "", "twilio_sms_failed", creds, baseURL, client, logger)
}

func newTwilioSender(channel Channel, fromKey, toPrefix, failureText string, creds CredentialSource, baseURL string, client *http.Client, logger *logging.Logger) *TwilioSender {
	if logger == nil {
		logger = logging.Default()
	}
	if client == nil {
		client = defaultHTTPClient()
	}
	if baseURL == "" {
		baseURL = "https://api.twilio.com"
	}
	return &TwilioSender{
		channel:     channel,
		fromKey:     fromKey,
		toPrefix:    toPrefix,
		failureText: failureText,
		creds:       creds,
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  client,
		logger:      logger,
	}
}

var _ Provider = (*TwilioSender)(nil)

func (s *TwilioSender) Name() Channel { return s.channel }

func (s *TwilioSender) Configured() bool {
	_, ok := s.credentials()
	return ok
}

func (s *TwilioSender) credentials() ([]string, bool) {
	return lookupAll(s.creds, KeyTwilioAccountSID, KeyTwilioAuthToken, s.fromKey)
}

type twilioMessageResponse struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

// Send dispatches a single message. The channel prefix only applies to To;
// the configured From already carries it.
func (s *TwilioSender) Send(ctx context.Context, text, phone string) (Outcome, error) {
	values, ok := s.credentials()
	if !ok {
		return Outcome{}, &TransportError{Provider: s.channel, Err: ErrNotConfigured}
	}
	accountSID, authToken, from := values[0], values[1], values[2]

	payload := url.Values{}
	payload.Set("From", from)
	payload.Set("To", s.toPrefix+phone)
	payload.Set("Body", text)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.baseURL, url.PathEscape(accountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(payload.Encode()))
	if err != nil {
		return Outcome{}, &TransportError{Provider: s.channel, Err: err}
	}
	req.SetBasicAuth(accountSID, authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := roundTrip(ctx, s.httpClient, s.channel, twilioSendTracer, req)
	if err != nil {
		return Outcome{}, err
	}

	if !resp.ok() {
		detail := resp.body
		if detail.IsEmpty() {
			detail = TextBody(s.failureText)
		}
		return failed(s.channel, detail), nil
	}

	var parsed twilioMessageResponse
	_ = resp.body.Decode(&parsed)
	s.logger.Info("twilio message sent",
		"channel", s.channel,
		"to", phone,
		"sid", parsed.SID,
		"status", parsed.Status,
	)
	return Outcome{OK: true, Via: s.channel, SID: parsed.SID}, nil
}
