package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/ambutrack-notify/internal/messaging"
	"github.com/wolfman30/ambutrack-notify/pkg/logging"
)

type recordingDispatcher struct {
	out   messaging.Outcome
	calls int
	text  string
	phone string
	panic bool
}

func (d *recordingDispatcher) Dispatch(_ context.Context, text, phone string) messaging.Outcome {
	d.calls++
	d.text = text
	d.phone = phone
	if d.panic {
		panic("boom")
	}
	return d.out
}

func serveNotify(t *testing.T, d *recordingDispatcher, method, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := NewNotifyHandler(d, "AmbuTrack – mensaje", logging.Discard())
	req := httptest.NewRequest(method, "/api/notify", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestNotifyDelivered(t *testing.T) {
	d := &recordingDispatcher{out: messaging.Outcome{OK: true, Via: messaging.ChannelWhatsAppCloud, ID: "wamid.1"}}

	rec := serveNotify(t, d, http.MethodPost, `{"message":"hola","doctor_phone":"9 8765 4321"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"via":"whatsapp_cloud","id":"wamid.1"}`, rec.Body.String())
	assert.Equal(t, "hola", d.text)
	assert.Equal(t, "+56987654321", d.phone)
}

func TestNotifyDefaultMessage(t *testing.T) {
	d := &recordingDispatcher{out: messaging.Outcome{OK: true, Via: messaging.ChannelTwilioSMS, SID: "SM1"}}

	rec := serveNotify(t, d, http.MethodPost, `{"message":"","doctor_phone":"12345678"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "AmbuTrack – mensaje", d.text)
	assert.Equal(t, "+56912345678", d.phone)
}

func TestNotifyNumericPhone(t *testing.T) {
	d := &recordingDispatcher{out: messaging.Outcome{OK: true, Via: messaging.ChannelTwilioSMS}}

	rec := serveNotify(t, d, http.MethodPost, `{"doctor_phone":912345678}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "+56912345678", d.phone)
}

func TestNotifyInvalidPhone(t *testing.T) {
	for _, body := range []string{`{"doctor_phone":"123"}`, `{"doctor_phone":""}`, `{"doctor_phone":null}`, `{}`, ``} {
		d := &recordingDispatcher{}
		rec := serveNotify(t, d, http.MethodPost, body)

		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, map[string]any{"ok": false, "error": "doctor_phone inválido o vacío"}, decodeBody(t, rec))
		assert.Zero(t, d.calls, "dispatcher must not run for %q", body)
	}
}

func TestNotifyDeliveryFailure(t *testing.T) {
	errBody := messaging.ParseBody([]byte(`{"code":21211,"message":"Invalid 'To' Phone Number"}`))
	d := &recordingDispatcher{out: messaging.Outcome{OK: false, Via: messaging.ChannelTwilioWhatsApp, Error: &errBody}}

	rec := serveNotify(t, d, http.MethodPost, `{"doctor_phone":"+56987654321"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"ok":false,"via":"twilio_whatsapp","error":{"code":21211,"message":"Invalid 'To' Phone Number"}}`, rec.Body.String())
}

func TestNotifyNoCredentials(t *testing.T) {
	errBody := messaging.TextBody(messaging.NoCredentialsMessage)
	d := &recordingDispatcher{out: messaging.Outcome{OK: false, Via: messaging.ChannelNone, Error: &errBody}}

	rec := serveNotify(t, d, http.MethodPost, `{"doctor_phone":"+56987654321"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"ok":false,"via":"none","error":"no credentials configured"}`, rec.Body.String())
}

func TestNotifyMalformedJSON(t *testing.T) {
	d := &recordingDispatcher{}
	rec := serveNotify(t, d, http.MethodPost, `{"doctor_phone":`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["ok"])
	assert.Contains(t, body["error"], "invalid json body")
	assert.Zero(t, d.calls)
}

func TestNotifyRecoversPanic(t *testing.T) {
	d := &recordingDispatcher{panic: true}
	rec := serveNotify(t, d, http.MethodPost, `{"doctor_phone":"+56987654321"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, map[string]any{"ok": false, "error": "server_error"}, decodeBody(t, rec))
}

func TestNotifyMethods(t *testing.T) {
	rec := serveNotify(t, &recordingDispatcher{}, http.MethodOptions, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, rec.Body.Len())

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec := serveNotify(t, &recordingDispatcher{}, method, "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
		assert.Equal(t, map[string]any{"ok": false, "error": "Method not allowed"}, decodeBody(t, rec))
	}
}

func TestLooseString(t *testing.T) {
	tests := map[string]string{
		`"9 8765 4321"`: "9 8765 4321",
		`912345678`:     "912345678",
		`true`:          "true",
		`false`:         "",
		`null`:          "",
		`{"a":1}`:       "",
		`[1]`:           "",
		``:              "",
	}
	for raw, want := range tests {
		assert.Equal(t, want, looseString(json.RawMessage(raw)), raw)
	}
}

func TestHealthCheck(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
