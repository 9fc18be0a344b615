package handlers

import (
	"io"
	"log"
	"net/http"

	"github.com/imaginify/backend/internal/apperror"
	"github.com/imaginify/backend/internal/services"
	"github.com/imaginify/backend/internal/webhook"
)

const maxWebhookBody = 1_048_576

// WebhookResponse acknowledges a processed delivery.
type WebhookResponse struct {
	Message  string `json:"message"`
	Received bool   `json:"received"`
	Event    string `json:"event,omitempty"`
	Outcome  string `json:"outcome,omitempty"`
}

type WebhookHandler struct {
	gateway *webhook.Gateway
}

func NewWebhookHandler(gateway *webhook.Gateway) *WebhookHandler {
	return &WebhookHandler{gateway: gateway}
}

// Receive verifies and applies one provider callback. The body must reach the
// verifier byte for byte, so it is read raw and never re-encoded.
// @Summary Receive provider webhook
// @Description Signature-verified callback from the identity provider (/webhooks/clerk) or the payment processor (/webhooks/stripe)
// @Tags Webhooks
// @Accept json
// @Produce json
// @Success 200 {object} handlers.WebhookResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /webhooks/clerk [post]
// @Router /webhooks/stripe [post]
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		log.Printf("[WEBHOOK] %s body unreadable: %v", h.gateway.Provider(), err)
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	result, err := h.gateway.Process(r.Context(), body, r.Header)
	if err != nil {
		services.SendErrorResponse(w, apperror.Message(err), webhook.StatusCode(err), nil)
		return
	}

	services.WriteJSON(w, http.StatusOK, WebhookResponse{
		Message:  "OK",
		Received: true,
		Event:    result.EventType,
		Outcome:  string(result.Outcome.Kind),
	})
}
