package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/imaginify/backend/internal/apperror"
	mW "github.com/imaginify/backend/internal/middleware"
	"github.com/imaginify/backend/internal/models"
	"github.com/imaginify/backend/internal/services"
)

// UserLedger is what the user routes need from the ledger.
type UserLedger interface {
	GetUser(ctx context.Context, subjectID string) (*models.User, error)
	AdjustCredits(ctx context.Context, subjectID string, delta int) (services.Outcome, error)
}

type UserHandler struct {
	ledger    UserLedger
	validator *services.ValidationHelper
}

func NewUserHandler(ledger UserLedger) *UserHandler {
	return &UserHandler{
		ledger:    ledger,
		validator: services.NewValidationHelper(),
	}
}

// selfOnly resolves the {userId} path parameter and checks it belongs to the caller.
func selfOnly(w http.ResponseWriter, r *http.Request) (string, bool) {
	callerID, ok := mW.UserIDFromContext(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return "", false
	}
	userID := chi.URLParam(r, "userId")
	if userID != callerID {
		services.SendAppError(w, apperror.Forbidden("Cannot access another user's account"))
		return "", false
	}
	return userID, true
}

// GetUser returns the caller's mirrored account
// @Summary Get user
// @Description Get a user by identity-provider subject id
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param userId path string true "Subject id"
// @Success 200 {object} models.User
// @Failure 401 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /users/{userId} [get]
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := selfOnly(w, r)
	if !ok {
		return
	}

	user, err := h.ledger.GetUser(r.Context(), userID)
	if err != nil {
		services.SendAppError(w, err)
		return
	}
	services.WriteJSON(w, http.StatusOK, user)
}

// UpdateCredits applies a signed credit delta
// @Summary Update credits
// @Description Add creditFee (negative to debit) to the user's balance
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path string true "Subject id"
// @Param request body object{creditFee=int} true "Credit delta"
// @Success 200 {object} models.User
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /users/{userId}/credits [patch]
func (h *UserHandler) UpdateCredits(w http.ResponseWriter, r *http.Request) {
	userID, ok := selfOnly(w, r)
	if !ok {
		return
	}

	var req struct {
		CreditFee int `json:"creditFee" validate:"required"`
	}
	if err := services.DecodeJSON(w, r, &req); err != nil {
		services.SendAppError(w, err)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	outcome, err := h.ledger.AdjustCredits(r.Context(), userID, req.CreditFee)
	if err != nil {
		services.SendAppError(w, err)
		return
	}
	services.WriteJSON(w, http.StatusOK, outcome.User)
}
