package handlers

import (
	"context"
	"net/http"

	"github.com/imaginify/backend/internal/apperror"
	mW "github.com/imaginify/backend/internal/middleware"
	"github.com/imaginify/backend/internal/models"
	"github.com/imaginify/backend/internal/services"
)

type CheckoutCreator interface {
	CreateSession(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutSession, error)
}

type CheckoutHandler struct {
	checkout CheckoutCreator
}

func NewCheckoutHandler(checkout CheckoutCreator) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

// Checkout starts a hosted checkout for a credit package
// @Summary Checkout credits
// @Description Create a payment-processor checkout session and return its redirect URL
// @Tags Transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CheckoutRequest true "Credit package"
// @Success 200 {object} models.CheckoutSession
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /transactions/checkout [post]
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	callerID, ok := mW.UserIDFromContext(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req models.CheckoutRequest
	if err := services.DecodeJSON(w, r, &req); err != nil {
		services.SendAppError(w, err)
		return
	}
	if req.BuyerID == "" {
		req.BuyerID = callerID
	}
	if req.BuyerID != callerID {
		services.SendAppError(w, apperror.Forbidden("Cannot buy credits for another user"))
		return
	}

	session, err := h.checkout.CreateSession(r.Context(), req)
	if err != nil {
		services.SendAppError(w, err)
		return
	}
	services.WriteJSON(w, http.StatusOK, session)
}
