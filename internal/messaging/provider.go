package messaging

import (
	"context"
	"fmt"
)

// Channel identifies the provider that produced an Outcome.
type Channel string

const (
	ChannelWhatsAppCloud  Channel = "whatsapp_cloud"
	ChannelTwilioWhatsApp Channel = "twilio_whatsapp"
	ChannelTwilioSMS      Channel = "twilio_sms"
	ChannelNone           Channel = "none"
)

// Credential keys, grouped by the provider that needs them.
const (
	KeyMetaToken   = "META_WABA_TOKEN"
	KeyMetaPhoneID = "META_WABA_PHONE_ID"

	KeyTwilioAccountSID   = "TWILIO_ACCOUNT_SID"
	KeyTwilioAuthToken    = "TWILIO_AUTH_TOKEN"
	KeyTwilioWhatsAppFrom = "TWILIO_WHATSAPP_FROM"
	KeyTwilioSMSFrom      = "TWILIO_SMS_FROM"
)

// CredentialSource hands out provider secrets. Implementations are consulted
// on every send, never cached.
type CredentialSource interface {
	Lookup(key string) (string, bool)
}

// Outcome is the single result of a delivery attempt.
type Outcome struct {
	OK    bool    `json:"ok"`
	Via   Channel `json:"via"`
	ID    string  `json:"id,omitempty"`
	SID   string  `json:"sid,omitempty"`
	Error *Body   `json:"error,omitempty"`
}

func failed(via Channel, body Body) Outcome {
	return Outcome{OK: false, Via: via, Error: &body}
}

// Provider is one outbound messaging integration.
//
// Send returns an Outcome whenever the provider answered, successfully or
// not. It returns a *TransportError when no usable response was obtained.
type Provider interface {
	Name() Channel
	Configured() bool
	Send(ctx context.Context, text, phone string) (Outcome, error)
}

// TransportError reports a failed network exchange: the request never
// produced a response that could be read.
type TransportError struct {
	Provider Channel
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// lookupAll returns the values of keys in order, or ok=false when any of
// them is missing.
func lookupAll(src CredentialSource, keys ...string) ([]string, bool) {
	if src == nil {
		return nil, false
	}
	values := make([]string, len(keys))
	for i, key := range keys {
		v, ok := src.Lookup(key)
		if !ok {
			return nil, false
		}
		values[i] = v
	}
	return values, true
}
