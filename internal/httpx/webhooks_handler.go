package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kingdavidadedeji10/float-business/internal/orders"
	"github.com/kingdavidadedeji10/float-business/internal/paystack"
	"github.com/kingdavidadedeji10/float-business/internal/reconcile"
	"github.com/kingdavidadedeji10/float-business/internal/sendbox"
	"github.com/kingdavidadedeji10/float-business/internal/shipping"
	"github.com/kingdavidadedeji10/float-business/internal/webhook"
)

// WebhooksHandler terminates the provider callbacks. Authentication failures
// are the only non-200 business outcome; everything else acks so providers do
// not retry forever. Infrastructure failures return 500 on purpose: those
// retries are wanted.
type WebhooksHandler struct {
	Reconciler *reconcile.Service
	Tracker    *shipping.Tracker

	PaystackSecret string
	// SendboxSecret may be empty; courier webhooks are then accepted unsigned.
	SendboxSecret string

	Logger *zap.Logger
}

func (h *WebhooksHandler) Register(r *chi.Mux) {
	r.Post("/webhooks/paystack", h.paystackWebhook)
	r.Post("/webhooks/sendbox", h.sendboxWebhook)
}

func (h *WebhooksHandler) paystackWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable body"})
		return
	}

	signature := r.Header.Get(paystack.SignatureHeader)
	if !webhook.SignatureValid(h.PaystackSecret, body, signature) {
		h.Logger.Warn("rejected paystack webhook with invalid signature",
			zap.String("remote", r.RemoteAddr))
		writeJSON(w, http.StatusUnauthorized, map[string]string{"status": "invalid"})
		return
	}

	evt, err := paystack.ParseEvent(body)
	if err != nil {
		// Authenticated but unparseable: a data-quality problem, not a
		// security event. Ack so the provider stops retrying.
		h.Logger.Error("malformed paystack webhook payload", zap.Error(err))
		writeJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}

	if err := h.Reconciler.HandleEvent(r.Context(), evt); err != nil {
		h.Logger.Error("payment reconciliation failed",
			zap.String("reference", evt.Data.Reference),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "processing failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func (h *WebhooksHandler) sendboxWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable body"})
		return
	}

	if h.SendboxSecret != "" {
		signature := r.Header.Get(sendbox.SignatureHeader)
		if !webhook.SignatureValid(h.SendboxSecret, body, signature) {
			h.Logger.Warn("rejected sendbox webhook with invalid signature",
				zap.String("remote", r.RemoteAddr))
			writeJSON(w, http.StatusUnauthorized, map[string]string{"status": "invalid"})
			return
		}
	}

	var evt sendbox.WebhookEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		h.Logger.Error("malformed sendbox webhook payload", zap.Error(err))
		writeJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}
	if evt.TrackingCode == "" || evt.Status == "" {
		writeJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}

	err = h.Tracker.ApplyStatusUpdate(r.Context(), evt.TrackingCode,
		orders.DeliveryStatus(evt.Status), evt.Description)
	if err != nil && !errors.Is(err, orders.ErrNotFound) {
		h.Logger.Error("delivery status update failed",
			zap.String("tracking_code", evt.TrackingCode),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "processing failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
