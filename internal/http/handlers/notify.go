package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/ambutrack-notify/internal/messaging"
	"github.com/wolfman30/ambutrack-notify/pkg/logging"
)

var notifyTracer = otel.Tracer("ambutrack.internal.http.handlers.notify")

const (
	invalidPhoneMessage = "doctor_phone inválido o vacío"
	maxRequestBytes     = 1 << 20
)

type notificationDispatcher interface {
	Dispatch(ctx context.Context, text, phone string) messaging.Outcome
}

// NotifyHandler serves the notification endpoint: it validates the doctor's
// phone and relays the dispatcher outcome.
type NotifyHandler struct {
	dispatcher     notificationDispatcher
	defaultMessage string
	logger         *logging.Logger
}

// NewNotifyHandler creates the handler. defaultMessage is sent when the
// request carries no message.
func NewNotifyHandler(dispatcher notificationDispatcher, defaultMessage string, logger *logging.Logger) *NotifyHandler {
	if logger == nil {
		logger = logging.Default()
	}
	if dispatcher == nil {
		panic("handlers: notify dispatcher cannot be nil")
	}
	return &NotifyHandler{
		dispatcher:     dispatcher,
		defaultMessage: defaultMessage,
		logger:         logger,
	}
}

type notifyRequest struct {
	Message     json.RawMessage `json:"message"`
	DoctorPhone json.RawMessage `json:"doctor_phone"`
}

// ServeHTTP handles /api/notify for every method.
func (h *NotifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	case http.MethodPost:
		h.notify(w, r)
	default:
		jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *NotifyHandler) notify(w http.ResponseWriter, r *http.Request) {
	ctx, span := notifyTracer.Start(r.Context(), "http.notify")
	defer span.End()

	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("panic: %v", rec)
			span.RecordError(err)
			h.logger.Error("notify handler panic", "error", err)
			jsonError(w, "server_error", http.StatusInternalServerError)
		}
	}()

	req, err := decodeNotifyRequest(r.Body)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("failed to decode notify request", "error", err)
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	text := looseString(req.Message)
	if text == "" {
		text = h.defaultMessage
	}

	phone, ok := messaging.NormalizePhone(looseString(req.DoctorPhone))
	if !ok {
		jsonError(w, invalidPhoneMessage, http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.String("ambutrack.to", phone))

	out := h.dispatcher.Dispatch(ctx, text, phone)
	if !out.OK {
		h.logger.Error("notification not delivered", "via", out.Via, "to", phone, "error", out.Error)
		writeJSON(w, http.StatusInternalServerError, out)
		return
	}

	h.logger.Info("notification delivered", "via", out.Via, "to", phone)
	writeJSON(w, http.StatusOK, out)
}

func decodeNotifyRequest(body io.Reader) (notifyRequest, error) {
	var req notifyRequest
	if body == nil {
		return req, nil
	}
	raw, err := io.ReadAll(io.LimitReader(body, maxRequestBytes))
	if err != nil {
		return req, fmt.Errorf("read body: %w", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return req, nil
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return req, fmt.Errorf("invalid json body: %w", err)
	}
	return req, nil
}

// looseString reads a scalar JSON field the way a form would: strings as is,
// numbers by their literal text, true as "true". Null, false, objects and
// arrays read as empty.
func looseString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strings.TrimSpace(string(raw))
	case bool:
		if t {
			return "true"
		}
	}
	return ""
}
