package main

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(method, path, body string) events.APIGatewayV2HTTPRequest {
	return events.APIGatewayV2HTTPRequest{
		RawPath: path,
		Body:    body,
		Headers: map[string]string{"content-type": "application/json"},
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			DomainName: "notify.example.com",
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method:   method,
				Path:     path,
				SourceIP: "203.0.113.9",
			},
		},
	}
}

func TestHandleReplaysRequest(t *testing.T) {
	var gotMethod, gotPath, gotBody, gotType, gotHost string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		gotHost = r.Host
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"ok":false}`)
	})

	resp, err := handle(context.Background(), h, event(http.MethodPost, "/api/notify", `{"doctor_phone":"1"}`))
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/notify", gotPath)
	assert.Equal(t, `{"doctor_phone":"1"}`, gotBody)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, "notify.example.com", gotHost)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, `{"ok":false}`, resp.Body)
	assert.Equal(t, "*", resp.Headers["access-control-allow-origin"])
}

func TestHandleDecodesBase64Body(t *testing.T) {
	var gotBody string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
	})

	evt := event(http.MethodPost, "/api/notify", base64.StdEncoding.EncodeToString([]byte(`{"message":"hola"}`)))
	evt.IsBase64Encoded = true

	resp, err := handle(context.Background(), h, evt)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"message":"hola"}`, gotBody)
}

func TestHandleRejectsBadBase64(t *testing.T) {
	evt := event(http.MethodPost, "/api/notify", "%%%")
	evt.IsBase64Encoded = true

	resp, err := handle(context.Background(), http.NotFoundHandler(), evt)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleEmptyPreflight(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	resp, err := handle(context.Background(), h, event(http.MethodOptions, "/api/notify", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Body)
}
